package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextOccurrenceIntervals(t *testing.T) {
	start := date("2024-01-15") // a Monday

	weekly, err := NextOccurrence(start, time.Monday, models.FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, weekly.Sub(start))

	biweekly, err := NextOccurrence(start, time.Monday, models.FrequencyBiweekly)
	require.NoError(t, err)
	assert.Equal(t, 14*24*time.Hour, biweekly.Sub(start))

	monthly, err := NextOccurrence(start, time.Monday, models.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-15", monthly.Format(models.DateLayout))
}

func TestNextOccurrenceWeeklyHoldsForAYear(t *testing.T) {
	d := date("2024-01-01")
	for i := 0; i < 60; i++ {
		next, err := NextOccurrence(d, d.Weekday(), models.FrequencyWeekly)
		require.NoError(t, err)
		require.Equal(t, 7, int(next.Sub(d).Hours()/24))
		d = next
	}
}

func TestNextOccurrenceMonthlyClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		from, want string
	}{
		{"2024-01-31", "2024-02-29"},
		{"2023-01-31", "2023-02-28"},
		{"2024-03-31", "2024-04-30"},
		{"2024-12-31", "2025-01-31"},
		{"2024-02-28", "2024-03-28"},
		{"2024-05-10", "2024-06-10"},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			next, err := NextOccurrence(date(tt.from), time.Wednesday, models.FrequencyMonthly)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Format(models.DateLayout))
		})
	}
}

func TestNextOccurrenceMonthlyKeepsAnchorDay(t *testing.T) {
	want := []string{"2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31", "2024-06-30"}

	d := date("2024-01-31")
	for _, w := range want {
		next, err := NextOccurrenceFrom(d, time.Wednesday, models.FrequencyMonthly, 31)
		require.NoError(t, err)
		require.Equal(t, w, next.Format(models.DateLayout))
		d = next
	}
}

func TestNextOccurrenceFromFallsBackToCurrentDay(t *testing.T) {
	next, err := NextOccurrenceFrom(date("2024-05-10"), time.Friday, models.FrequencyMonthly, 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", next.Format(models.DateLayout))
}

func TestNextOccurrenceRealignsDriftedDate(t *testing.T) {
	// 2024-01-16 is a Tuesday; the lesson is on Mondays.
	next, err := NextOccurrence(date("2024-01-16"), time.Monday, models.FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-29", next.Format(models.DateLayout))
}

func TestNextOccurrenceUnknownFrequency(t *testing.T) {
	_, err := NextOccurrence(date("2024-01-15"), time.Monday, "daily")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFirstOccurrence(t *testing.T) {
	assert.Equal(t, "2024-01-15", FirstOccurrence(date("2024-01-15"), time.Monday).Format(models.DateLayout))
	assert.Equal(t, "2024-01-22", FirstOccurrence(date("2024-01-16"), time.Monday).Format(models.DateLayout))
	assert.Equal(t, "2024-01-20", FirstOccurrence(date("2024-01-15"), time.Saturday).Format(models.DateLayout))
}

func TestParseWeekday(t *testing.T) {
	wd, err := ParseWeekday(" Monday ")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wd)

	_, err = ParseWeekday("funday")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddMinutes(t *testing.T) {
	end, err := addMinutes("10:00", 45)
	require.NoError(t, err)
	assert.Equal(t, "10:45", end)

	end, err = addMinutes("23:30", 60)
	require.NoError(t, err)
	assert.Equal(t, "00:30", end)
}
