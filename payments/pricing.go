package payments

import "math"

// PlatformFeePercent is the marketplace commission on every lesson.
const PlatformFeePercent = 10

// Split is a charge broken into the platform's commission and the
// teacher's share. TotalCost always equals PlatformFee + TeacherEarnings.
type Split struct {
	TotalCost       float64 `json:"total_cost"`
	PlatformFee     float64 `json:"platform_fee"`
	TeacherEarnings float64 `json:"teacher_earnings"`
}

// LessonPrice charges durationMinutes at hourlyRate per hour.
func LessonPrice(durationMinutes int, hourlyRate float64) Split {
	rateCents := ToCents(hourlyRate)
	totalCents := int64(math.Round(float64(int64(durationMinutes)*rateCents) / 60))
	return SplitCents(totalCents)
}

func SplitAmount(amount float64) Split {
	return SplitCents(ToCents(amount))
}

// SplitCents rounds the fee half-up to the cent and gives the remainder to
// the teacher, so no cent is lost between the two.
func SplitCents(totalCents int64) Split {
	feeCents := (totalCents*PlatformFeePercent + 50) / 100
	return Split{
		TotalCost:       FromCents(totalCents),
		PlatformFee:     FromCents(feeCents),
		TeacherEarnings: FromCents(totalCents - feeCents),
	}
}

func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
