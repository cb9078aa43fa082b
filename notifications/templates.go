package notifications

import (
	"fmt"
	"html"
)

type Message struct {
	Subject string
	HTML    string
}

func Welcome(recipientName, body string) Message {
	return Message{
		Subject: "Welcome to Freelance Music",
		HTML: fmt.Sprintf("<h1>Welcome!</h1><p>Hi %s,</p><p>%s</p>",
			html.EscapeString(recipientName), html.EscapeString(body)),
	}
}

func LessonBooked(recipientName, instrument, date, clock, lessonType string) Message {
	return Message{
		Subject: "Your " + instrument + " lesson is booked",
		HTML: fmt.Sprintf(
			"<h1>Lesson Booked</h1><p>Hi %s,</p><p>Your %s lesson (%s) is scheduled for %s at %s.</p>",
			html.EscapeString(recipientName), html.EscapeString(instrument),
			html.EscapeString(lessonType), date, clock,
		),
	}
}

func LessonCompleted(recipientName, transactionID string, amount float64) Message {
	return Message{
		Subject: "Lesson completed - payment receipt",
		HTML: fmt.Sprintf(
			"<h1>Thanks for learning with us</h1><p>Hi %s,</p><p>We charged $%.2f for your lesson. Transaction: <b>%s</b>.</p>",
			html.EscapeString(recipientName), amount, transactionID,
		),
	}
}

func RecurringCharged(recipientName, lessonDate, nextLessonDate, transactionID string, amount float64) Message {
	return Message{
		Subject: "Recurring lesson confirmed",
		HTML: fmt.Sprintf(
			"<h1>Recurring Lesson Confirmed</h1><p>Hi %s,</p><p>Your lesson on %s was charged $%.2f (transaction <b>%s</b>). Your next lesson is on %s.</p>",
			html.EscapeString(recipientName), lessonDate, amount, transactionID, nextLessonDate,
		),
	}
}

func LessonReminder(recipientName, instrument, date, clock, lessonType string) Message {
	return Message{
		Subject: "Reminder: your " + instrument + " lesson is tomorrow",
		HTML: fmt.Sprintf(
			"<h1>Lesson Reminder</h1><p>Hi %s,</p><p>This is a friendly reminder that your %s lesson (%s) is on %s at %s.</p>",
			html.EscapeString(recipientName), html.EscapeString(instrument),
			html.EscapeString(lessonType), date, clock,
		),
	}
}
