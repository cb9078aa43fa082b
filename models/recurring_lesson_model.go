package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

const (
	RecurringStatusActive    = "active"
	RecurringStatusPaused    = "paused"
	RecurringStatusCancelled = "cancelled"
)

// RecurringLesson is both the teacher's repeating slot and, once StudentID
// is set, the student's booking of it. NextLessonDate is empty until booked.
// AnchorDay is the day of month of the first booked lesson; monthly series
// are counted from it.
type RecurringLesson struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TeacherID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"teacher_id"`
	StudentID       *uuid.UUID `gorm:"type:uuid;index" json:"student_id"`
	Instrument      string     `gorm:"size:100;not null" json:"instrument"`
	DayOfWeek       string     `gorm:"size:10;not null" json:"day_of_week"`
	StartTime       string     `gorm:"size:5;not null" json:"start_time"`
	Duration        int        `gorm:"not null" json:"duration"`
	LessonType      string     `gorm:"size:20;not null" json:"lesson_type"`
	Frequency       string     `gorm:"size:20;not null;default:'weekly'" json:"frequency"`
	Status          string     `gorm:"size:20;not null;default:'active'" json:"status"`
	NextLessonDate  string     `gorm:"size:10" json:"next_lesson_date"`
	AnchorDay       int        `gorm:"not null;default:0" json:"anchor_day"`
	Notes           *string    `gorm:"type:text" json:"notes"`
	TotalCost       float64    `gorm:"type:numeric(10,2);not null;default:0" json:"total_cost"`
	TeacherEarnings float64    `gorm:"type:numeric(10,2);not null;default:0" json:"teacher_earnings"`
	PlatformFee     float64    `gorm:"type:numeric(10,2);not null;default:0" json:"platform_fee"`

	Teacher Teacher  `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`
	Student *Student `gorm:"foreignkey:StudentID" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *RecurringLesson) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

func (r *RecurringLesson) IsBooked() bool {
	return r.StudentID != nil
}
