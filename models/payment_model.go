package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
)

var ErrPaymentImmutable = errors.New("payments are immutable once recorded")

// Payment is a ledger entry. Exactly one of LessonID and RecurringLessonID
// is set, and a lesson is charged at most once.
type Payment struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	LessonID          *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"lesson_id,omitempty"`
	RecurringLessonID *uuid.UUID `gorm:"type:uuid;index" json:"recurring_lesson_id,omitempty"`
	StudentID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	TeacherID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"teacher_id"`
	PaymentMethodID   *uuid.UUID `gorm:"type:uuid" json:"payment_method_id,omitempty"`
	Amount            float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	PlatformFee       float64    `gorm:"type:numeric(10,2);not null" json:"platform_fee"`
	TeacherEarnings   float64    `gorm:"type:numeric(10,2);not null" json:"teacher_earnings"`
	TransactionID     string     `gorm:"size:64;not null;uniqueIndex" json:"transaction_id"`
	Status            string     `gorm:"size:20;not null" json:"status"`
	PaymentDate       time.Time  `gorm:"not null;index" json:"payment_date"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (p *Payment) BeforeUpdate(tx *gorm.DB) error {
	return ErrPaymentImmutable
}
