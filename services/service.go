package services

import (
	"errors"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func today(now clock) string {
	return now().Format(models.DateLayout)
}

// notFound maps gorm.ErrRecordNotFound to the given domain error.
func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
