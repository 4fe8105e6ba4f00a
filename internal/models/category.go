package models

import (
	"fmt"
	"time"
)

// CategoryType classifies a transaction category.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// ParseCategoryType parses a lowercase category type string or rejects it.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(s) {
	case CategoryTypeIncome, CategoryTypeExpense:
		return CategoryType(s), nil
	}
	return "", fmt.Errorf("invalid category type: %s. Must be one of: income, expense", s)
}

// Category classifies income/expense transactions.
type Category struct {
	ID        uint         `gorm:"primaryKey"`
	UUID      string       `gorm:"size:36;uniqueIndex;not null"`
	UserID    uint         `gorm:"index;not null"`
	Name      string       `gorm:"size:64;not null"`
	Type      CategoryType `gorm:"size:16;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
