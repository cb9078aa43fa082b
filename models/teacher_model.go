package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Teacher struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id"`
	UserID            uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Bio               *string                     `gorm:"type:text" json:"bio"`
	Instruments       datatypes.JSONSlice[string] `json:"instruments"`
	HourlyRate        float64                     `gorm:"type:numeric(10,2);not null" json:"hourly_rate"`
	VirtualAvailable  bool                        `gorm:"not null" json:"virtual_available"`
	InPersonAvailable bool                        `gorm:"not null" json:"in_person_available"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (t *Teacher) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// Offers reports whether the teacher gives lessons of the given type.
func (t *Teacher) Offers(lessonType string) bool {
	switch lessonType {
	case LessonTypeVirtual:
		return t.VirtualAvailable
	case LessonTypeInPerson:
		return t.InPersonAvailable
	}
	return false
}
