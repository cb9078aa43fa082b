package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Student struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PrimaryInstrument string    `gorm:"size:100" json:"primary_instrument"`
	SkillLevel        string    `gorm:"size:50" json:"skill_level"`
	LearningGoals     *string   `gorm:"type:text" json:"learning_goals"`
	ReferralSource    string    `gorm:"size:100" json:"referral_source"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
