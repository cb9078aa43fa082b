package utils

import (
	"errors"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/payments"
	"gorm.io/gorm"
)

const maxTransactionIDAttempts = 5

var ErrTransactionIDExhausted = errors.New("could not generate an unused transaction id")

// GenerateUniqueTransactionID draws TXN ids until one is not yet in the
// payments table. The unique index still has the final word.
func GenerateUniqueTransactionID(tx *gorm.DB, now time.Time) (string, error) {
	for i := 0; i < maxTransactionIDAttempts; i++ {
		id, err := payments.NewTransactionID(now)
		if err != nil {
			return "", err
		}

		var payment models.Payment
		err = tx.Select("id").Where("transaction_id = ?", id).First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return id, nil
			}
			return "", err
		}
	}
	return "", ErrTransactionIDExhausted
}
