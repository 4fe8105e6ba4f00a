package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a money movement.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// ParseTransactionType parses a lowercase transaction type string or rejects it.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return TransactionType(s), nil
	}
	return "", fmt.Errorf("invalid transaction type: %s", s)
}

// Transaction is a single recorded money movement. Transfers reference a
// destination account and may carry a fee charged against the source.
type Transaction struct {
	ID              uint            `gorm:"primaryKey"`
	UUID            string          `gorm:"size:36;uniqueIndex;not null"`
	UserID          uint            `gorm:"index;not null"`
	TransactionDate time.Time       `gorm:"index;not null"`
	Description     string          `gorm:"type:text;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Type            TransactionType `gorm:"column:transaction_type;size:16;index;not null"`
	TransferFee     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	AccountID            uint  `gorm:"index;not null"`
	CategoryID           *uint `gorm:"index"`
	DestinationAccountID *uint `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User               User      `gorm:"constraint:OnDelete:CASCADE"`
	Account            Account   `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Category           *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	DestinationAccount *Account  `gorm:"foreignKey:DestinationAccountID;constraint:OnDelete:SET NULL"`
}
