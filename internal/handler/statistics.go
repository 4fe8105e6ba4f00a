package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/yudopr11/yupi/internal/ledger"
	"github.com/yudopr11/yupi/internal/middleware"
	"github.com/yudopr11/yupi/internal/models"
	"github.com/yudopr11/yupi/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatisticsHandler serves aggregated financial statistics.
type StatisticsHandler struct {
	DB *gorm.DB
}

func NewStatisticsHandler(db *gorm.DB) *StatisticsHandler {
	return &StatisticsHandler{DB: db}
}

// periodWindow resolves the reporting window: explicit start/end dates win,
// otherwise the symbolic period is expanded.
func periodWindow(c *gin.Context) (start, end time.Time, period string, err error) {
	period = c.DefaultQuery("period", "month")

	var startP, endP *time.Time
	if s := c.Query("start_date"); s != "" {
		t, perr := parseTransactionDate(s)
		if perr != nil {
			return start, end, period, &ledger.ValidationError{Reason: perr.Error()}
		}
		startP = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, perr := parseTransactionDate(s)
		if perr != nil {
			return start, end, period, &ledger.ValidationError{Reason: perr.Error()}
		}
		endP = &t
	}

	if startP != nil && endP != nil {
		return *startP, *endP, period, nil
	}
	start, end, err = ledger.CalculateDateRange(period)
	return start, end, period, err
}

func periodResp(start, end time.Time, period string) gin.H {
	return gin.H{
		"start_date":  start,
		"end_date":    end,
		"period_type": period,
	}
}

type typeTotalRow struct {
	TransactionType models.TransactionType
	Total           decimal.Decimal
}

// GetFinancialSummary returns income, expense and transfer totals plus net
// for the requested window.
func (h *StatisticsHandler) GetFinancialSummary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	start, end, period, err := periodWindow(c)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	var rows []typeTotalRow
	err = h.DB.Model(&models.Transaction{}).
		Select("transaction_type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND transaction_date BETWEEN ? AND ?", user.ID, start, end).
		Group("transaction_type").
		Scan(&rows).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to compute summary")
		return
	}

	totals := map[models.TransactionType]decimal.Decimal{
		models.TransactionTypeIncome:   decimal.Zero,
		models.TransactionTypeExpense:  decimal.Zero,
		models.TransactionTypeTransfer: decimal.Zero,
	}
	for _, row := range rows {
		if _, known := totals[row.TransactionType]; known {
			totals[row.TransactionType] = row.Total
		}
	}
	net := totals[models.TransactionTypeIncome].Sub(totals[models.TransactionTypeExpense])

	util.Success(c, util.Response{
		"period": periodResp(start, end, period),
		"totals": gin.H{
			"income":   totals[models.TransactionTypeIncome],
			"expense":  totals[models.TransactionTypeExpense],
			"transfer": totals[models.TransactionTypeTransfer],
			"net":      net,
		},
	})
}

type categoryTotalRow struct {
	Name  string
	ID    *uint
	Total decimal.Decimal
}

// GetCategoryDistribution breaks a window's income or expense down by
// category. Transactions without a category land in an "Uncategorized"
// bucket.
func (h *StatisticsHandler) GetCategoryDistribution(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	transactionType := c.DefaultQuery("transaction_type", "expense")
	if transactionType != "income" && transactionType != "expense" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Transaction type must be 'income' or 'expense'")
		return
	}

	start, end, period, err := periodWindow(c)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	var rows []categoryTotalRow
	err = h.DB.Table("transactions").
		Select("COALESCE(categories.name, 'Uncategorized') AS name, categories.id AS id, COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("LEFT JOIN categories ON transactions.category_id = categories.id").
		Where("transactions.user_id = ? AND transactions.transaction_date BETWEEN ? AND ? AND transactions.transaction_type = ?",
			user.ID, start, end, transactionType).
		Group("categories.id, categories.name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to compute distribution")
		return
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Total)
	}

	hundred := decimal.NewFromInt(100)
	categories := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		percentage := decimal.Zero
		if total.IsPositive() {
			percentage = row.Total.Div(total).Mul(hundred)
		}
		categories = append(categories, gin.H{
			"name":       row.Name,
			"id":         row.ID,
			"total":      row.Total,
			"percentage": percentage,
		})
	}

	util.Success(c, util.Response{
		"period":           periodResp(start, end, period),
		"transaction_type": transactionType,
		"total":            total,
		"categories":       categories,
	})
}

var trendGroupings = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

// truncateDate snaps a timestamp to the start of its day, week (Monday),
// month or year bucket.
func truncateDate(t time.Time, groupBy string) time.Time {
	t = t.UTC()
	switch groupBy {
	case "week":
		daysSinceMonday := (int(t.Weekday()) + 6) % 7
		t = t.AddDate(0, 0, -daysSinceMonday)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "year":
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

type trendBucket struct {
	Date     string          `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Transfer decimal.Decimal `json:"transfer"`
	Net      decimal.Decimal `json:"net"`
}

// GetTransactionTrends aggregates per-bucket totals over the window.
// Bucketing happens in Go since sqlite has no date_trunc.
func (h *StatisticsHandler) GetTransactionTrends(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	start, end, period, err := periodWindow(c)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	groupBy := c.DefaultQuery("group_by", "day")
	if !trendGroupings[groupBy] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid group_by parameter")
		return
	}

	transactionTypes := c.QueryArray("transaction_types")
	if len(transactionTypes) == 0 {
		transactionTypes = []string{"income", "expense"}
	}
	for _, t := range transactionTypes {
		if _, err := models.ParseTransactionType(t); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid transaction type '"+t+"'")
			return
		}
	}

	var transactions []models.Transaction
	err = h.DB.Where("user_id = ? AND transaction_date BETWEEN ? AND ? AND transaction_type IN ?",
		user.ID, start, end, transactionTypes).
		Order("transaction_date").
		Find(&transactions).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to compute trends")
		return
	}

	buckets := make(map[string]*trendBucket)
	for i := range transactions {
		tx := &transactions[i]
		key := truncateDate(tx.TransactionDate, groupBy).Format("2006-01-02")
		bucket, ok := buckets[key]
		if !ok {
			bucket = &trendBucket{Date: key}
			buckets[key] = bucket
		}
		switch tx.Type {
		case models.TransactionTypeIncome:
			bucket.Income = bucket.Income.Add(tx.Amount)
		case models.TransactionTypeExpense:
			bucket.Expense = bucket.Expense.Add(tx.Amount)
		case models.TransactionTypeTransfer:
			bucket.Transfer = bucket.Transfer.Add(tx.Amount)
		}
		bucket.Net = bucket.Income.Sub(bucket.Expense)
	}

	trends := make([]trendBucket, 0, len(buckets))
	for _, bucket := range buckets {
		trends = append(trends, *bucket)
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Date < trends[j].Date })

	util.Success(c, util.Response{
		"period": gin.H{
			"start_date":  start,
			"end_date":    end,
			"period_type": period,
			"group_by":    groupBy,
		},
		"trends": trends,
	})
}

// GetAccountSummary returns overall balance, credit availability and
// utilization across all accounts, most recently used accounts first.
func (h *StatisticsHandler) GetAccountSummary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	accounts, err := ledger.AccountsWithBalance(h.DB, user.ID, "")
	if err != nil {
		util.DomainError(c, err)
		return
	}

	hundred := decimal.NewFromInt(100)

	totalBalance := decimal.Zero
	totalAvailableCredit := decimal.Zero
	totalCreditLimit := decimal.Zero
	byType := map[models.AccountType]decimal.Decimal{
		models.AccountTypeBankAccount: decimal.Zero,
		models.AccountTypeCreditCard:  decimal.Zero,
		models.AccountTypeOther:       decimal.Zero,
	}

	for i := range accounts {
		acc := &accounts[i]
		totalBalance = totalBalance.Add(acc.Balance)
		byType[acc.Type] = byType[acc.Type].Add(acc.Balance)
		if acc.Type == models.AccountTypeCreditCard && acc.Limit != nil && acc.PayableBalance != nil {
			available := acc.Limit.Sub(*acc.PayableBalance)
			if available.IsNegative() {
				available = decimal.Zero
			}
			totalAvailableCredit = totalAvailableCredit.Add(available)
			totalCreditLimit = totalCreditLimit.Add(*acc.Limit)
		}
	}

	creditUtilization := decimal.Zero
	if totalCreditLimit.IsPositive() {
		creditUtilization = totalCreditLimit.Sub(totalAvailableCredit).Div(totalCreditLimit).Mul(hundred)
	}

	type accountActivity struct {
		item     gin.H
		lastUsed time.Time
	}
	summaries := make([]accountActivity, 0, len(accounts))
	for i := range accounts {
		acc := &accounts[i]

		var lastUsed time.Time
		row := struct{ Latest *time.Time }{}
		err := h.DB.Model(&models.Transaction{}).
			Select("MAX(transaction_date) AS latest").
			Where("account_id = ? OR destination_account_id = ?", acc.ID, acc.ID).
			Scan(&row).Error
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to compute summary")
			return
		}
		if row.Latest != nil {
			lastUsed = *row.Latest
		} else {
			lastUsed = acc.CreatedAt
		}

		var utilization *decimal.Decimal
		if acc.Limit != nil && acc.Limit.IsPositive() && acc.PayableBalance != nil {
			u := acc.PayableBalance.Div(*acc.Limit).Mul(hundred)
			utilization = &u
		}

		summaries = append(summaries, accountActivity{
			item: gin.H{
				"id":                     acc.ID,
				"uuid":                   acc.UUID,
				"name":                   acc.Name,
				"type":                   acc.Type,
				"limit":                  acc.Limit,
				"balance":                acc.Balance,
				"payable_balance":        acc.PayableBalance,
				"utilization_percentage": utilization,
			},
			lastUsed: lastUsed,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].lastUsed.After(summaries[j].lastUsed)
	})

	items := make([]gin.H, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, s.item)
	}

	util.Success(c, util.Response{
		"total_balance":      totalBalance,
		"available_credit":   totalAvailableCredit,
		"credit_utilization": creditUtilization,
		"by_account_type": gin.H{
			"bank_account": byType[models.AccountTypeBankAccount],
			"credit_card":  byType[models.AccountTypeCreditCard],
			"other":        byType[models.AccountTypeOther],
		},
		"accounts": items,
	})
}
