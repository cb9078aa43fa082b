package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentMethodCreditCard  = "credit_card"
	PaymentMethodBankAccount = "bank_account"
)

// PaymentMethod never holds a full card or account number, only the
// masked trailing digits.
type PaymentMethod struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type   string    `gorm:"size:20;not null" json:"type"`

	CardBrand      *string `gorm:"size:20" json:"card_brand,omitempty"`
	CardLastFour   *string `gorm:"size:4" json:"card_last_four,omitempty"`
	CardExpMonth   *int    `json:"card_exp_month,omitempty"`
	CardExpYear    *int    `json:"card_exp_year,omitempty"`
	CardholderName *string `gorm:"size:255" json:"cardholder_name,omitempty"`

	BankName          *string `gorm:"size:255" json:"bank_name,omitempty"`
	AccountHolderName *string `gorm:"size:255" json:"account_holder_name,omitempty"`
	RoutingLastFour   *string `gorm:"size:4" json:"routing_last_four,omitempty"`
	AccountLastFour   *string `gorm:"size:4" json:"account_last_four,omitempty"`

	IsPrimary  bool `gorm:"not null" json:"is_primary"`
	IsVerified bool `gorm:"not null" json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
