package ledger

import (
	"strings"
	"testing"

	"github.com/yudopr11/yupi/internal/models"

	"github.com/shopspring/decimal"
)

func TestValidateAccount_OwnerScoped(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	account := seedAccount(t, db, alice.ID, "Checking", models.AccountTypeBankAccount, nil)

	got, err := ValidateAccount(db, account.ID, alice.ID)
	if err != nil {
		t.Fatalf("ValidateAccount() error = %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("ValidateAccount() ID = %d, want %d", got.ID, account.ID)
	}

	if _, err := ValidateAccount(db, account.ID, bob.ID); !IsNotFound(err) {
		t.Errorf("ValidateAccount() for foreign account error = %v, want not-found", err)
	}
}

func TestValidateCategory_NilPassesThrough(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")

	category, err := ValidateCategory(db, nil, user.ID)
	if err != nil {
		t.Fatalf("ValidateCategory(nil) error = %v", err)
	}
	if category != nil {
		t.Errorf("ValidateCategory(nil) = %v, want nil", category)
	}
}

func TestValidateCategory_NotFound(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")

	id := uint(42)
	if _, err := ValidateCategory(db, &id, user.ID); !IsNotFound(err) {
		t.Errorf("ValidateCategory(42) error = %v, want not-found", err)
	}
}

func TestValidateTransactionCategoryMatch(t *testing.T) {
	income := &models.Category{Type: models.CategoryTypeIncome}
	expense := &models.Category{Type: models.CategoryTypeExpense}

	cases := []struct {
		name            string
		transactionType models.TransactionType
		category        *models.Category
		wantErr         bool
	}{
		{"income with income category", models.TransactionTypeIncome, income, false},
		{"expense with expense category", models.TransactionTypeExpense, expense, false},
		{"income with expense category", models.TransactionTypeIncome, expense, true},
		{"expense with income category", models.TransactionTypeExpense, income, true},
		{"transfer skips the check", models.TransactionTypeTransfer, income, false},
		{"nil category passes", models.TransactionTypeExpense, nil, false},
	}
	for _, tc := range cases {
		err := ValidateTransactionCategoryMatch(tc.transactionType, tc.category)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestValidateTransfer_NonTransferRejectsFee(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")

	_, err := ValidateTransfer(db, models.TransactionTypeExpense, nil, 1, dec("5"), user.ID)
	if !IsValidation(err) {
		t.Fatalf("fee on expense error = %v, want validation error", err)
	}

	if _, err := ValidateTransfer(db, models.TransactionTypeExpense, nil, 1, decimal.Zero, user.ID); err != nil {
		t.Errorf("zero fee on expense error = %v, want nil", err)
	}
}

func TestValidateTransfer_TransferChecks(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "alice")
	source := seedAccount(t, db, user.ID, "Checking", models.AccountTypeBankAccount, nil)
	destination := seedAccount(t, db, user.ID, "Savings", models.AccountTypeBankAccount, nil)

	// missing destination
	if _, err := ValidateTransfer(db, models.TransactionTypeTransfer, nil, source.ID, decimal.Zero, user.ID); !IsValidation(err) {
		t.Errorf("missing destination error = %v, want validation error", err)
	}

	// negative fee
	if _, err := ValidateTransfer(db, models.TransactionTypeTransfer, &destination.ID, source.ID, dec("-1"), user.ID); !IsValidation(err) {
		t.Errorf("negative fee error = %v, want validation error", err)
	}

	// self transfer
	if _, err := ValidateTransfer(db, models.TransactionTypeTransfer, &source.ID, source.ID, decimal.Zero, user.ID); !IsValidation(err) {
		t.Errorf("self transfer error = %v, want validation error", err)
	}

	// unknown destination
	missing := uint(999)
	if _, err := ValidateTransfer(db, models.TransactionTypeTransfer, &missing, source.ID, decimal.Zero, user.ID); !IsNotFound(err) {
		t.Errorf("unknown destination error = %v, want not-found", err)
	}

	// valid transfer resolves the destination
	got, err := ValidateTransfer(db, models.TransactionTypeTransfer, &destination.ID, source.ID, dec("2.50"), user.ID)
	if err != nil {
		t.Fatalf("valid transfer error = %v", err)
	}
	if got.ID != destination.ID {
		t.Errorf("destination ID = %d, want %d", got.ID, destination.ID)
	}
}

func TestValidateAccountLimit(t *testing.T) {
	limit := dec("1000")

	if err := ValidateAccountLimit(models.AccountTypeCreditCard, &limit); err != nil {
		t.Errorf("credit card with limit error = %v, want nil", err)
	}
	if err := ValidateAccountLimit(models.AccountTypeCreditCard, nil); !IsValidation(err) {
		t.Errorf("credit card without limit error = %v, want validation error", err)
	}
	if err := ValidateAccountLimit(models.AccountTypeBankAccount, nil); err != nil {
		t.Errorf("bank account without limit error = %v, want nil", err)
	}

	err := ValidateAccountLimit(models.AccountTypeBankAccount, &limit)
	if !IsValidation(err) {
		t.Fatalf("bank account with limit error = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "Bank Account") {
		t.Errorf("error %q should name the pretty account type", err)
	}
}
