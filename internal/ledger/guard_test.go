package ledger

import (
	"testing"

	"github.com/yudopr11/yupi/internal/models"
)

func TestCheckCreditCardExpense_AllowsWithBalance(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")
	limit := dec("1000")
	card := seedAccount(t, db, user.ID, "Visa", models.AccountTypeCreditCard, &limit)

	seedTransaction(t, db, models.Transaction{
		UserID: user.ID, AccountID: card.ID,
		Type: models.TransactionTypeIncome, Amount: dec("1000"),
	})

	if err := CheckCreditCardExpense(db, card, models.TransactionTypeExpense); err != nil {
		t.Errorf("CheckCreditCardExpense() error = %v, want nil", err)
	}
}

func TestCheckCreditCardExpense_RejectsExhaustedCard(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")
	limit := dec("1000")
	card := seedAccount(t, db, user.ID, "Visa", models.AccountTypeCreditCard, &limit)

	seedTransaction(t, db, models.Transaction{
		UserID: user.ID, AccountID: card.ID,
		Type: models.TransactionTypeIncome, Amount: dec("1000"),
	})
	seedTransaction(t, db, models.Transaction{
		UserID: user.ID, AccountID: card.ID,
		Type: models.TransactionTypeExpense, Amount: dec("1000"),
	})

	if err := CheckCreditCardExpense(db, card, models.TransactionTypeExpense); !IsValidation(err) {
		t.Errorf("CheckCreditCardExpense() on zero balance error = %v, want validation error", err)
	}
}

func TestCheckCreditCardExpense_IgnoresOtherCases(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")
	bank := seedAccount(t, db, user.ID, "Checking", models.AccountTypeBankAccount, nil)
	limit := dec("1000")
	card := seedAccount(t, db, user.ID, "Visa", models.AccountTypeCreditCard, &limit)

	// expense on a bank account never hits the guard
	if err := CheckCreditCardExpense(db, bank, models.TransactionTypeExpense); err != nil {
		t.Errorf("bank account expense error = %v, want nil", err)
	}
	// income on an empty card is fine
	if err := CheckCreditCardExpense(db, card, models.TransactionTypeIncome); err != nil {
		t.Errorf("credit card income error = %v, want nil", err)
	}
}

func TestCheckCreditCardExpenseUpdate_LowerAmountAlwaysPasses(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")
	limit := dec("1000")
	card := seedAccount(t, db, user.ID, "Visa", models.AccountTypeCreditCard, &limit)

	existing := seedTransaction(t, db, models.Transaction{
		UserID: user.ID, AccountID: card.ID,
		Type: models.TransactionTypeExpense, Amount: dec("500"),
	})

	err := CheckCreditCardExpenseUpdate(db, card, existing, models.TransactionTypeExpense, dec("400"))
	if err != nil {
		t.Errorf("lowering the amount error = %v, want nil", err)
	}
}

func TestCheckCreditCardExpenseUpdate_CreditsBackPriorAmount(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")
	limit := dec("1000")
	card := seedAccount(t, db, user.ID, "Visa", models.AccountTypeCreditCard, &limit)

	seedTransaction(t, db, models.Transaction{
		UserID: user.ID, AccountID: card.ID,
		Type: models.TransactionTypeIncome, Amount: dec("1000"),
	})
	existing := seedTransaction(t, db, models.Transaction{
		UserID: user.ID, AccountID: card.ID,
		Type: models.TransactionTypeExpense, Amount: dec("900"),
	})

	// balance is 100; crediting back 900 leaves 1000 available for the update
	err := CheckCreditCardExpenseUpdate(db, card, existing, models.TransactionTypeExpense, dec("1000"))
	if err != nil {
		t.Errorf("update within credited-back balance error = %v, want nil", err)
	}

	err = CheckCreditCardExpenseUpdate(db, card, existing, models.TransactionTypeExpense, dec("1000.01"))
	if !IsValidation(err) {
		t.Errorf("update beyond credited-back balance error = %v, want validation error", err)
	}
}

func TestCheckCreditCardExpenseUpdate_TypeSwitchNeedsFullBalance(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")
	limit := dec("1000")
	card := seedAccount(t, db, user.ID, "Visa", models.AccountTypeCreditCard, &limit)

	seedTransaction(t, db, models.Transaction{
		UserID: user.ID, AccountID: card.ID,
		Type: models.TransactionTypeIncome, Amount: dec("100"),
	})
	existing := seedTransaction(t, db, models.Transaction{
		UserID: user.ID, AccountID: card.ID,
		Type: models.TransactionTypeIncome, Amount: dec("50"),
	})

	// existing income grants no credit-back; 150 available, 200 requested
	err := CheckCreditCardExpenseUpdate(db, card, existing, models.TransactionTypeExpense, dec("200"))
	if !IsValidation(err) {
		t.Errorf("income-to-expense switch beyond balance error = %v, want validation error", err)
	}
}
