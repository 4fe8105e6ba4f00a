package ledger

import (
	"errors"
	"time"

	"github.com/yudopr11/yupi/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceSummary is the derived balance of an account, recomputed from the
// full transaction history on every call. PayableBalance is set only for
// credit cards (limit minus balance, the amount owed).
type BalanceSummary struct {
	Balance           decimal.Decimal  `json:"balance"`
	TotalIncome       decimal.Decimal  `json:"total_income"`
	TotalExpenses     decimal.Decimal  `json:"total_expenses"`
	TotalTransfersIn  decimal.Decimal  `json:"total_transfers_in"`
	TotalTransfersOut decimal.Decimal  `json:"total_transfers_out"`
	TotalTransferFees decimal.Decimal  `json:"total_transfer_fees"`
	PayableBalance    *decimal.Decimal `json:"payable_balance"`
}

type balanceTotals struct {
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	TotalTransfersOut decimal.Decimal
	TotalTransferFees decimal.Decimal
	TotalTransfersIn  decimal.Decimal
}

func (t *balanceTotals) summary(accountType models.AccountType, limit *decimal.Decimal) BalanceSummary {
	balance := t.TotalIncome.
		Add(t.TotalTransfersIn).
		Sub(t.TotalExpenses).
		Sub(t.TotalTransfersOut).
		Sub(t.TotalTransferFees)

	s := BalanceSummary{
		Balance:           balance,
		TotalIncome:       t.TotalIncome,
		TotalExpenses:     t.TotalExpenses,
		TotalTransfersIn:  t.TotalTransfersIn,
		TotalTransfersOut: t.TotalTransfersOut,
		TotalTransferFees: t.TotalTransferFees,
	}
	if accountType == models.AccountTypeCreditCard && limit != nil {
		payable := limit.Sub(balance)
		s.PayableBalance = &payable
	}
	return s
}

// conditional sums over a single pass of the account's transaction rows
const balanceSums = `
	COALESCE(SUM(CASE WHEN transaction_type = 'income' AND account_id = ? THEN amount ELSE 0 END), 0) AS total_income,
	COALESCE(SUM(CASE WHEN transaction_type = 'expense' AND account_id = ? THEN amount ELSE 0 END), 0) AS total_expenses,
	COALESCE(SUM(CASE WHEN transaction_type = 'transfer' AND account_id = ? THEN amount ELSE 0 END), 0) AS total_transfers_out,
	COALESCE(SUM(CASE WHEN transaction_type = 'transfer' AND account_id = ? THEN transfer_fee ELSE 0 END), 0) AS total_transfer_fees,
	COALESCE(SUM(CASE WHEN destination_account_id = ? THEN amount ELSE 0 END), 0) AS total_transfers_in`

// CalculateAccountBalance aggregates the detailed balance of an account in a
// single conditional-sum query. When userID is non-nil the account lookup is
// scoped to that user; otherwise the account's owner scopes the transactions.
func CalculateAccountBalance(db *gorm.DB, accountID uint, userID *uint) (BalanceSummary, error) {
	accountQuery := db.Where("id = ?", accountID)
	if userID != nil {
		accountQuery = accountQuery.Where("user_id = ?", *userID)
	}

	var account models.Account
	if err := accountQuery.First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceSummary{}, &NotFoundError{Entity: "Account", ID: accountID}
		}
		return BalanceSummary{}, err
	}

	ownerID := account.UserID
	if userID != nil {
		ownerID = *userID
	}

	var totals balanceTotals
	err := db.Model(&models.Transaction{}).
		Select(balanceSums, accountID, accountID, accountID, accountID, accountID).
		Where("(account_id = ? OR destination_account_id = ?) AND user_id = ?", accountID, accountID, ownerID).
		Scan(&totals).Error
	if err != nil {
		return BalanceSummary{}, err
	}

	return totals.summary(account.Type, account.Limit), nil
}

// AccountWithBalance is an account with its derived balance embedded.
type AccountWithBalance struct {
	ID          uint               `json:"id"`
	UUID        string             `json:"uuid"`
	Name        string             `json:"name"`
	Type        models.AccountType `json:"type"`
	Description string             `json:"description"`
	Limit       *decimal.Decimal   `json:"limit"`
	UserID      uint               `json:"user_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	BalanceSummary
}

type accountBalanceRow struct {
	ID                uint
	UUID              string
	Name              string
	Type              models.AccountType
	Description       string
	Limit             *decimal.Decimal
	UserID            uint
	CreatedAt         time.Time
	UpdatedAt         time.Time
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	TotalTransfersOut decimal.Decimal
	TotalTransferFees decimal.Decimal
	TotalTransfersIn  decimal.Decimal
}

// accountDisplayOrder sorts bank accounts first, then other, then credit
// cards, each group by name.
const accountDisplayOrder = `CASE accounts.type
	WHEN 'bank_account' THEN 1
	WHEN 'other' THEN 2
	WHEN 'credit_card' THEN 3
	ELSE 4 END, accounts.name`

// AccountsWithBalance returns all accounts of a user with balances computed
// in one grouped query (no per-account round trips). accountType optionally
// filters by account type.
func AccountsWithBalance(db *gorm.DB, userID uint, accountType string) ([]AccountWithBalance, error) {
	query := db.Table("accounts").
		Select(`accounts.*,
			COALESCE(SUM(CASE WHEN transactions.transaction_type = 'income' AND transactions.account_id = accounts.id THEN transactions.amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN transactions.transaction_type = 'expense' AND transactions.account_id = accounts.id THEN transactions.amount ELSE 0 END), 0) AS total_expenses,
			COALESCE(SUM(CASE WHEN transactions.transaction_type = 'transfer' AND transactions.account_id = accounts.id THEN transactions.amount ELSE 0 END), 0) AS total_transfers_out,
			COALESCE(SUM(CASE WHEN transactions.transaction_type = 'transfer' AND transactions.account_id = accounts.id THEN transactions.transfer_fee ELSE 0 END), 0) AS total_transfer_fees,
			COALESCE(SUM(CASE WHEN transactions.destination_account_id = accounts.id THEN transactions.amount ELSE 0 END), 0) AS total_transfers_in`).
		Joins("LEFT JOIN transactions ON transactions.account_id = accounts.id OR transactions.destination_account_id = accounts.id").
		Where("accounts.user_id = ?", userID).
		Group("accounts.id")

	if accountType != "" {
		parsed, err := models.ParseAccountType(accountType)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
		query = query.Where("accounts.type = ?", parsed)
	}

	var rows []accountBalanceRow
	if err := query.Order(accountDisplayOrder).Scan(&rows).Error; err != nil {
		return nil, err
	}

	accounts := make([]AccountWithBalance, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		totals := balanceTotals{
			TotalIncome:       row.TotalIncome,
			TotalExpenses:     row.TotalExpenses,
			TotalTransfersOut: row.TotalTransfersOut,
			TotalTransferFees: row.TotalTransferFees,
			TotalTransfersIn:  row.TotalTransfersIn,
		}
		accounts = append(accounts, AccountWithBalance{
			ID:             row.ID,
			UUID:           row.UUID,
			Name:           row.Name,
			Type:           row.Type,
			Description:    row.Description,
			Limit:          row.Limit,
			UserID:         row.UserID,
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
			BalanceSummary: totals.summary(row.Type, row.Limit),
		})
	}
	return accounts, nil
}
