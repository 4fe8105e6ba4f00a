package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yudopr11/yupi/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ValidateAccount looks up an account scoped to the owning user.
func ValidateAccount(db *gorm.DB, id, userID uint) (*models.Account, error) {
	var account models.Account
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Account", ID: id}
		}
		return nil, err
	}
	return &account, nil
}

// ValidateCategory looks up a category scoped to the owning user.
// A nil id passes through and returns nil (category is optional).
func ValidateCategory(db *gorm.DB, id *uint, userID uint) (*models.Category, error) {
	if id == nil {
		return nil, nil
	}
	var category models.Category
	err := db.Where("id = ? AND user_id = ?", *id, userID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Category", ID: *id}
		}
		return nil, err
	}
	return &category, nil
}

// ValidateTransactionCategoryMatch requires the category type to agree with
// the transaction type. Transfers carry no category and are not checked.
func ValidateTransactionCategoryMatch(transactionType models.TransactionType, category *models.Category) error {
	if category == nil {
		return nil
	}
	if transactionType == models.TransactionTypeIncome && category.Type != models.CategoryTypeIncome {
		return &ValidationError{Reason: "Income transactions must use an income category"}
	}
	if transactionType == models.TransactionTypeExpense && category.Type != models.CategoryTypeExpense {
		return &ValidationError{Reason: "Expense transactions must use an expense category"}
	}
	return nil
}

// ValidateTransfer checks transfer transaction details and resolves the
// destination account. For non-transfers it only rejects a misapplied fee.
func ValidateTransfer(db *gorm.DB, transactionType models.TransactionType, destinationAccountID *uint, sourceAccountID uint, transferFee decimal.Decimal, userID uint) (*models.Account, error) {
	if transactionType != models.TransactionTypeTransfer {
		if transferFee.GreaterThan(decimal.Zero) {
			return nil, &ValidationError{Reason: "Transfer fee can only be applied to transfer transactions"}
		}
		return nil, nil
	}

	if destinationAccountID == nil {
		return nil, &ValidationError{Reason: "Destination account is required for transfers"}
	}
	if transferFee.IsNegative() {
		return nil, &ValidationError{Reason: "Transfer fee cannot be negative"}
	}
	if sourceAccountID == *destinationAccountID {
		return nil, &ValidationError{Reason: "Source and destination accounts cannot be the same for transfers"}
	}

	var destination models.Account
	err := db.Where("id = ? AND user_id = ?", *destinationAccountID, userID).First(&destination).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Destination account", ID: *destinationAccountID}
		}
		return nil, err
	}
	return &destination, nil
}

// ValidateAccountLimit enforces that credit cards have a limit and nothing
// else does.
func ValidateAccountLimit(accountType models.AccountType, limit *decimal.Decimal) error {
	if accountType == models.AccountTypeCreditCard {
		if limit == nil {
			return &ValidationError{Reason: "Credit card accounts must have a limit."}
		}
		return nil
	}
	if limit != nil {
		return &ValidationError{Reason: fmt.Sprintf("Account type '%s' cannot have a limit. Only credit cards are allowed a limit.", prettyAccountType(accountType))}
	}
	return nil
}

// prettyAccountType converts "bank_account" to "Bank Account" for error text.
func prettyAccountType(t models.AccountType) string {
	parts := strings.Split(string(t), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
