package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends events to durable queues on the default exchange. A nil
// Publisher, or one without a broker URL, drops events silently so the
// API keeps working without RabbitMQ.
type Publisher struct {
	url  string
	dial func(url string) (*amqp.Connection, error)
}

func NewPublisher(url string) *Publisher {
	if url == "" {
		log.Println("⚠️ RABBITMQ_URL not set, event publishing disabled.")
		return nil
	}
	return &Publisher{url: url, dial: amqp.Dial}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.url != ""
}

// Publish marshals event to JSON and delivers it to the named queue as a
// persistent message. A connection is opened per call.
func (p *Publisher) Publish(ctx context.Context, queueName string, event any) error {
	if !p.Enabled() {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := p.dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, msg); err != nil {
		log.Printf("rabbitmq: publish to %s failed: %v", queueName, err)
		return err
	}
	return nil
}

func (p *Publisher) LessonBooked(ctx context.Context, lesson *models.Lesson) error {
	return p.Publish(ctx, LessonBookedQueue, LessonBookedEvent{
		LessonID:   lesson.ID,
		TeacherID:  lesson.TeacherID,
		StudentID:  lesson.StudentID,
		Instrument: lesson.Instrument,
		Date:       lesson.Date,
		Time:       lesson.Time,
		LessonType: lesson.LessonType,
		TotalCost:  lesson.TotalCost,
		BookedAt:   lesson.CreatedAt,
	})
}

func (p *Publisher) PaymentRecorded(ctx context.Context, payment *models.Payment) error {
	return p.Publish(ctx, PaymentRecordedQueue, PaymentRecordedEvent{
		PaymentID:         payment.ID,
		TransactionID:     payment.TransactionID,
		LessonID:          payment.LessonID,
		RecurringLessonID: payment.RecurringLessonID,
		StudentID:         payment.StudentID,
		TeacherID:         payment.TeacherID,
		Amount:            payment.Amount,
		PlatformFee:       payment.PlatformFee,
		TeacherEarnings:   payment.TeacherEarnings,
		PaidAt:            payment.PaymentDate,
	})
}
