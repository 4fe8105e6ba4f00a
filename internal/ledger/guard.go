package ledger

import (
	"github.com/yudopr11/yupi/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckCreditCardExpense rejects a new expense against a credit card that has
// no available balance. The caller runs this inside the same database
// transaction as the insert so the check and the write commit together.
func CheckCreditCardExpense(db *gorm.DB, account *models.Account, transactionType models.TransactionType) error {
	if transactionType != models.TransactionTypeExpense || account.Type != models.AccountTypeCreditCard {
		return nil
	}
	summary, err := CalculateAccountBalance(db, account.ID, nil)
	if err != nil {
		return err
	}
	if summary.Balance.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Reason: "Cannot create expense with this credit card - no available balance. Please top up by creating a transfer to this account."}
	}
	return nil
}

// CheckCreditCardExpenseUpdate guards an update that turns a transaction into
// a credit-card expense or raises its amount. The prior amount is credited
// back when the existing transaction was already an expense on the same
// account.
func CheckCreditCardExpenseUpdate(db *gorm.DB, account *models.Account, existing *models.Transaction, newType models.TransactionType, newAmount decimal.Decimal) error {
	if newType != models.TransactionTypeExpense || account.Type != models.AccountTypeCreditCard {
		return nil
	}
	if existing.Type == models.TransactionTypeExpense && !newAmount.GreaterThan(existing.Amount) {
		return nil
	}

	summary, err := CalculateAccountBalance(db, account.ID, nil)
	if err != nil {
		return err
	}
	adjusted := summary.Balance
	if existing.Type == models.TransactionTypeExpense && existing.AccountID == account.ID {
		adjusted = adjusted.Add(existing.Amount)
	}
	if adjusted.Sub(newAmount).IsNegative() {
		return &ValidationError{Reason: "Insufficient credit card balance for this update. Please top up the account."}
	}
	return nil
}
