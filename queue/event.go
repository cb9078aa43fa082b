// Package queue publishes marketplace events to RabbitMQ so other systems
// can react to bookings and payments without polling the database.
package queue

import (
	"time"

	"github.com/google/uuid"
)

const (
	LessonBookedQueue    = "lesson.booked"
	PaymentRecordedQueue = "payment.recorded"
)

type LessonBookedEvent struct {
	LessonID   uuid.UUID `json:"lesson_id"`
	TeacherID  uuid.UUID `json:"teacher_id"`
	StudentID  uuid.UUID `json:"student_id"`
	Instrument string    `json:"instrument"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	LessonType string    `json:"lesson_type"`
	TotalCost  float64   `json:"total_cost"`
	BookedAt   time.Time `json:"booked_at"`
}

// PaymentRecordedEvent carries either a lesson or a recurring lesson id,
// matching the ledger entry it describes.
type PaymentRecordedEvent struct {
	PaymentID         uuid.UUID  `json:"payment_id"`
	TransactionID     string     `json:"transaction_id"`
	LessonID          *uuid.UUID `json:"lesson_id,omitempty"`
	RecurringLessonID *uuid.UUID `json:"recurring_lesson_id,omitempty"`
	StudentID         uuid.UUID  `json:"student_id"`
	TeacherID         uuid.UUID  `json:"teacher_id"`
	Amount            float64    `json:"amount"`
	PlatformFee       float64    `json:"platform_fee"`
	TeacherEarnings   float64    `json:"teacher_earnings"`
	PaidAt            time.Time  `json:"paid_at"`
}
