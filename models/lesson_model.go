package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LessonStatusUpcoming  = "upcoming"
	LessonStatusCompleted = "completed"
	LessonStatusCancelled = "cancelled"
)

// InstrumentMixed marks lessons spanning several instruments. Instrument
// popularity reports leave it out.
const InstrumentMixed = "mixed"

type Lesson struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id"`
	TeacherID       uuid.UUID                   `gorm:"type:uuid;not null;index" json:"teacher_id"`
	StudentID       uuid.UUID                   `gorm:"type:uuid;not null;index" json:"student_id"`
	Instrument      string                      `gorm:"size:100;not null" json:"instrument"`
	Date            string                      `gorm:"size:10;not null" json:"date"`
	Time            string                      `gorm:"size:5;not null" json:"time"`
	Duration        int                         `gorm:"not null" json:"duration"`
	LessonType      string                      `gorm:"size:20;not null" json:"lesson_type"`
	Status          string                      `gorm:"size:20;not null;default:'upcoming'" json:"status"`
	Notes           *string                     `gorm:"type:text" json:"notes"`
	SheetMusicURLs  datatypes.JSONSlice[string] `json:"sheet_music_urls"`
	TotalCost       float64                     `gorm:"type:numeric(10,2);not null" json:"total_cost"`
	TeacherEarnings float64                     `gorm:"type:numeric(10,2);not null" json:"teacher_earnings"`
	PlatformFee     float64                     `gorm:"type:numeric(10,2);not null" json:"platform_fee"`

	// The slot consumed by the booking, kept so a cancellation can put it back.
	SlotEndTime     string                      `gorm:"size:5" json:"-"`
	SlotInstruments datatypes.JSONSlice[string] `json:"-"`

	CompletionNotes *string    `gorm:"type:text" json:"completion_notes,omitempty"`
	StudentRating   *int       `json:"student_rating,omitempty"`
	TeacherRating   *int       `json:"teacher_rating,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	Teacher Teacher `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`
	Student Student `gorm:"foreignkey:StudentID" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}
