package payments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const (
	suffixLength   = 9
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewTransactionID returns TXN_<epoch-ms>_<random suffix>.
func NewTransactionID(now time.Time) (string, error) {
	suffix, err := randomSuffix(suffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN_%d_%s", now.UnixMilli(), suffix), nil
}

// RecurringTransactionID returns REC_<epoch-ms>_<recurring lesson id>.
func RecurringTransactionID(now time.Time, recurringID uuid.UUID) string {
	return fmt.Sprintf("REC_%d_%s", now.UnixMilli(), recurringID)
}

func randomSuffix(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}
	return string(b), nil
}
