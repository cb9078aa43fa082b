package payments

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionID(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	id, err := NewTransactionID(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^TXN_1705312800000_[a-z0-9]{9}$`), id)
}

func TestNewTransactionIDIsUniquePerCall(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		id, err := NewTransactionID(now)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate transaction id %s", id)
		seen[id] = struct{}{}
	}
}

func TestRecurringTransactionID(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-8d0b-4c1e-9a57-3f2b1d4e5c6a")
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "REC_1705312800000_6f1c2a9e-8d0b-4c1e-9a57-3f2b1d4e5c6a", RecurringTransactionID(now, id))
}
