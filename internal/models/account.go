package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a financial account.
type AccountType string

const (
	AccountTypeBankAccount AccountType = "bank_account"
	AccountTypeCreditCard  AccountType = "credit_card"
	AccountTypeOther       AccountType = "other"
)

// ParseAccountType parses a lowercase account type string or rejects it.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountTypeBankAccount, AccountTypeCreditCard, AccountTypeOther:
		return AccountType(s), nil
	}
	return "", fmt.Errorf("invalid account type: %s. Must be one of: bank_account, credit_card, other", s)
}

// Account is a financial account owned by a user.
// Limit is set only for credit cards.
type Account struct {
	ID          uint             `gorm:"primaryKey"`
	UUID        string           `gorm:"size:36;uniqueIndex;not null"`
	UserID      uint             `gorm:"index;not null"`
	Name        string           `gorm:"size:128;not null"`
	Type        AccountType      `gorm:"size:16;index;not null"`
	Description string           `gorm:"type:text"`
	Limit       *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
