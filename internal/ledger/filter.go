package ledger

import (
	"fmt"
	"time"

	"github.com/yudopr11/yupi/internal/models"

	"gorm.io/gorm"
)

// TransactionFilter is the optional predicate/sort set for listing
// transactions. Zero values mean "not filtered".
type TransactionFilter struct {
	AccountName     string
	CategoryName    string
	TransactionType string
	StartDate       *time.Time
	EndDate         *time.Time
	DateFilterType  string
	OrderBy         string
	SortOrder       string
}

var transactionOrderFields = map[string]bool{
	"created_at":       true,
	"transaction_date": true,
	"amount":           true,
}

// FilteredTransactions composes a query over the user's transactions from
// the filter. The caller paginates (count, offset, limit+1 probe) on the
// returned query.
func FilteredTransactions(db *gorm.DB, userID uint, f TransactionFilter) (*gorm.DB, error) {
	query := db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if f.AccountName != "" {
		var accountIDs []uint
		err := db.Model(&models.Account{}).
			Where("user_id = ? AND name LIKE ?", userID, "%"+f.AccountName+"%").
			Pluck("id", &accountIDs).Error
		if err != nil {
			return nil, err
		}
		if len(accountIDs) == 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("Account with name '%s' not found", f.AccountName)}
		}
		query = query.Where("account_id IN ? OR destination_account_id IN ?", accountIDs, accountIDs)
	}

	if f.CategoryName != "" {
		var categoryIDs []uint
		err := db.Model(&models.Category{}).
			Where("user_id = ? AND name LIKE ?", userID, "%"+f.CategoryName+"%").
			Pluck("id", &categoryIDs).Error
		if err != nil {
			return nil, err
		}
		if len(categoryIDs) == 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("Category with name '%s' not found", f.CategoryName)}
		}
		query = query.Where("category_id IN ?", categoryIDs)
	}

	if f.TransactionType != "" {
		parsed, err := models.ParseTransactionType(f.TransactionType)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
		query = query.Where("transaction_type = ?", parsed)
	}

	startDate, endDate := f.StartDate, f.EndDate
	if f.DateFilterType != "" {
		start, end, err := CalculateDateRange(f.DateFilterType)
		if err != nil {
			return nil, err
		}
		startDate, endDate = &start, &end
	}
	if startDate != nil {
		query = query.Where("transaction_date >= ?", *startDate)
	}
	if endDate != nil {
		query = query.Where("transaction_date <= ?", *endDate)
	}

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	if !transactionOrderFields[orderBy] {
		return nil, &ValidationError{Reason: "Invalid order_by field. Must be one of: created_at, transaction_date, amount"}
	}
	direction := "DESC"
	if f.SortOrder == "asc" {
		direction = "ASC"
	}

	return query.Order(orderBy + " " + direction), nil
}

// FilteredCategories returns the user's categories with optional type
// filtering, sorted by name.
func FilteredCategories(db *gorm.DB, userID uint, categoryType string) ([]models.Category, error) {
	query := db.Where("user_id = ?", userID)
	if categoryType != "" {
		parsed, err := models.ParseCategoryType(categoryType)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
		query = query.Where("type = ?", parsed)
	}

	var categories []models.Category
	if err := query.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FilteredAccounts returns the user's accounts with optional type filtering,
// in display order.
func FilteredAccounts(db *gorm.DB, userID uint, accountType string) ([]models.Account, error) {
	query := db.Where("user_id = ?", userID)
	if accountType != "" {
		parsed, err := models.ParseAccountType(accountType)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
		query = query.Where("type = ?", parsed)
	}

	var accounts []models.Account
	if err := query.Order(accountDisplayOrder).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
