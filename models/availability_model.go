package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LessonTypeVirtual  = "virtual"
	LessonTypeInPerson = "in-person"
)

// AvailabilitySlot is an open block of a teacher's time. Booking a lesson
// deletes the row, so a slot exists for at most one lesson.
type AvailabilitySlot struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id"`
	TeacherID   uuid.UUID                   `gorm:"type:uuid;not null;index:idx_slot_lookup" json:"teacher_id"`
	Date        string                      `gorm:"size:10;not null;index:idx_slot_lookup" json:"date"`
	StartTime   string                      `gorm:"size:5;not null;index:idx_slot_lookup" json:"start_time"`
	EndTime     string                      `gorm:"size:5;not null" json:"end_time"`
	LessonType  string                      `gorm:"size:20;not null" json:"lesson_type"`
	Instruments datatypes.JSONSlice[string] `json:"instruments"`

	Teacher Teacher `gorm:"foreignkey:TeacherID" json:"teacher,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (a *AvailabilitySlot) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
