package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/freelance_music/models"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func ParseWeekday(day string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return 0, validationMessage(fmt.Sprintf("unknown day of week %q", day))
	}
	return wd, nil
}

// FirstOccurrence returns the first date on or after start that falls on day.
func FirstOccurrence(start time.Time, day time.Weekday) time.Time {
	offset := (int(day) - int(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, offset)
}

// NextOccurrence advances current by one billing cycle.
//
// Weekly and biweekly add 7 and 14 days; a date that had drifted off day is
// moved forward onto it. Monthly adds one calendar month keeping the day of
// month, clamped to the month's last day: 2024-01-31 becomes 2024-02-29,
// never March.
func NextOccurrence(current time.Time, day time.Weekday, frequency string) (time.Time, error) {
	return NextOccurrenceFrom(current, day, frequency, current.Day())
}

// NextOccurrenceFrom is NextOccurrence for a monthly series anchored on
// anchorDay. Clamping a short month does not move the anchor, so a lesson
// booked on the 31st returns to the 31st whenever the month has one.
func NextOccurrenceFrom(current time.Time, day time.Weekday, frequency string, anchorDay int) (time.Time, error) {
	switch frequency {
	case models.FrequencyWeekly:
		return FirstOccurrence(current.AddDate(0, 0, 7), day), nil
	case models.FrequencyBiweekly:
		return FirstOccurrence(current.AddDate(0, 0, 14), day), nil
	case models.FrequencyMonthly:
		if anchorDay < 1 || anchorDay > 31 {
			anchorDay = current.Day()
		}
		return addMonthClamped(current, anchorDay), nil
	}
	return time.Time{}, validationMessage(fmt.Sprintf("unknown frequency %q", frequency))
}

func addMonthClamped(t time.Time, anchorDay int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	d := anchorDay
	if last := firstOfTarget.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, validationMessage(fmt.Sprintf("invalid date %q", s))
	}
	return t, nil
}

// addMinutes shifts an HH:MM clock time, wrapping past midnight.
func addMinutes(clockTime string, minutes int) (string, error) {
	t, err := time.Parse(models.TimeLayout, clockTime)
	if err != nil {
		return "", validationMessage(fmt.Sprintf("invalid time %q", clockTime))
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format(models.TimeLayout), nil
}
