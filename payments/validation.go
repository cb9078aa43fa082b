package payments

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationResult reports whether payment details are acceptable. The
// validators never return errors: callers run them before any write.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func ok() ValidationResult { return ValidationResult{Valid: true} }

func invalid(msg string) ValidationResult { return ValidationResult{Error: msg} }

type CardDetails struct {
	Number   string
	CVV      string
	ExpMonth int
	ExpYear  int
}

type BankDetails struct {
	RoutingNumber string
	AccountNumber string
}

const (
	BrandVisa       = "visa"
	BrandMastercard = "mastercard"
	BrandAmex       = "amex"
	BrandDiscover   = "discover"
	BrandUnknown    = "unknown"
)

// ValidateCard checks number, CVV and expiry, reporting the first failure.
func ValidateCard(card CardDetails, now time.Time) ValidationResult {
	if r := ValidateCardNumber(card.Number); !r.Valid {
		return r
	}
	if r := ValidateCVV(card.CVV, card.Number); !r.Valid {
		return r
	}
	return ValidateExpiry(card.ExpMonth, card.ExpYear, now)
}

func ValidateBankAccount(bank BankDetails) ValidationResult {
	if r := ValidateRoutingNumber(bank.RoutingNumber); !r.Valid {
		return r
	}
	return ValidateAccountNumber(bank.AccountNumber)
}

// ValidateCardNumber accepts 13 to 19 digits passing the Luhn checksum.
// Spaces and dashes are ignored.
func ValidateCardNumber(number string) ValidationResult {
	digits, good := normalizeDigits(number)
	if !good || digits == "" {
		return invalid("card number must contain only digits")
	}
	if validate.Var(digits, "min=13,max=19") != nil {
		return invalid("card number must be between 13 and 19 digits")
	}
	if validate.Var(digits, "luhn_checksum") != nil {
		return invalid("card number failed checksum")
	}
	return ok()
}

// ValidateCVV requires four digits for American Express and three otherwise.
func ValidateCVV(cvv, cardNumber string) ValidationResult {
	digits, good := normalizeDigits(cvv)
	if !good || digits != strings.TrimSpace(cvv) {
		return invalid("cvv must contain only digits")
	}
	want := 3
	if CardBrand(cardNumber) == BrandAmex {
		want = 4
	}
	if len(digits) != want {
		return invalid("cvv has the wrong length")
	}
	return ok()
}

// ValidateExpiry accepts two or four digit years. A card is valid through
// the last day of its expiry month.
func ValidateExpiry(month, year int, now time.Time) ValidationResult {
	if month < 1 || month > 12 {
		return invalid("expiry month must be between 1 and 12")
	}
	if year < 100 {
		year += 2000
	}
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.UTC().Before(firstOfNext) {
		return invalid("card has expired")
	}
	if year > now.Year()+20 {
		return invalid("expiry year is too far in the future")
	}
	return ok()
}

// ValidateRoutingNumber checks a nine digit ABA routing number with the
// 3-7-1 weighted checksum.
func ValidateRoutingNumber(routing string) ValidationResult {
	digits, good := normalizeDigits(routing)
	if !good || len(digits) != 9 {
		return invalid("routing number must be 9 digits")
	}
	weights := [3]int{3, 7, 1}
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * weights[i%3]
	}
	if sum == 0 || sum%10 != 0 {
		return invalid("routing number failed checksum")
	}
	return ok()
}

func ValidateAccountNumber(account string) ValidationResult {
	digits, good := normalizeDigits(account)
	if !good || validate.Var(digits, "numeric,min=4,max=17") != nil {
		return invalid("account number must be between 4 and 17 digits")
	}
	return ok()
}

func CardBrand(number string) string {
	digits, _ := normalizeDigits(number)
	switch {
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return BrandAmex
	case strings.HasPrefix(digits, "4"):
		return BrandVisa
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5',
		strings.HasPrefix(digits, "22"), strings.HasPrefix(digits, "27"):
		return BrandMastercard
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return BrandDiscover
	}
	return BrandUnknown
}

// LastFour returns the trailing four digits used for masked display.
func LastFour(number string) string {
	digits, _ := normalizeDigits(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func normalizeDigits(s string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ' || r == '-':
			continue
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
		default:
			return "", false
		}
	}
	return b.String(), true
}
