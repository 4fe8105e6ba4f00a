package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yudopr11/yupi/internal/ledger"
	"github.com/yudopr11/yupi/internal/middleware"
	"github.com/yudopr11/yupi/internal/models"
	"github.com/yudopr11/yupi/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionHandler serves transaction CRUD and the filtered listing.
type TransactionHandler struct {
	DB *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db}
}

type transactionReq struct {
	TransactionDate      string           `json:"transaction_date" binding:"required"`
	Description          string           `json:"description" binding:"required"`
	Amount               decimal.Decimal  `json:"amount"`
	TransactionType      string           `json:"transaction_type" binding:"required"`
	AccountID            uint             `json:"account_id" binding:"required"`
	CategoryID           *uint            `json:"category_id"`
	DestinationAccountID *uint            `json:"destination_account_id"`
	TransferFee          *decimal.Decimal `json:"transfer_fee"`
}

var transactionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTransactionDate(s string) (time.Time, error) {
	for _, layout := range transactionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid transaction_date: %s", s)
}

func (r *transactionReq) fee() decimal.Decimal {
	if r.TransferFee == nil {
		return decimal.Zero
	}
	return *r.TransferFee
}

func transactionResp(t *models.Transaction) gin.H {
	return gin.H{
		"id":                     t.ID,
		"uuid":                   t.UUID,
		"transaction_date":       t.TransactionDate,
		"description":            t.Description,
		"amount":                 t.Amount,
		"transaction_type":       t.Type,
		"transfer_fee":           t.TransferFee,
		"account_id":             t.AccountID,
		"category_id":            t.CategoryID,
		"destination_account_id": t.DestinationAccountID,
		"user_id":                t.UserID,
		"created_at":             t.CreatedAt,
		"updated_at":             t.UpdatedAt,
	}
}

// CreateTransaction records an income, expense or transfer. All validations
// and the credit-card guard run inside one database transaction with the
// insert.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	transactionType, err := models.ParseTransactionType(req.TransactionType)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if req.Amount.IsNegative() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Amount cannot be negative")
		return
	}
	transactionDate, err := parseTransactionDate(req.TransactionDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var transaction models.Transaction
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		account, err := ledger.ValidateAccount(tx, req.AccountID, user.ID)
		if err != nil {
			return err
		}
		category, err := ledger.ValidateCategory(tx, req.CategoryID, user.ID)
		if err != nil {
			return err
		}
		if err := ledger.ValidateTransactionCategoryMatch(transactionType, category); err != nil {
			return err
		}
		if err := ledger.CheckCreditCardExpense(tx, account, transactionType); err != nil {
			return err
		}
		if _, err := ledger.ValidateTransfer(tx, transactionType, req.DestinationAccountID, req.AccountID, req.fee(), user.ID); err != nil {
			return err
		}

		transaction = models.Transaction{
			UUID:                 uuid.NewString(),
			UserID:               user.ID,
			TransactionDate:      transactionDate,
			Description:          req.Description,
			Amount:               req.Amount,
			Type:                 transactionType,
			TransferFee:          req.fee(),
			AccountID:            req.AccountID,
			CategoryID:           req.CategoryID,
			DestinationAccountID: req.DestinationAccountID,
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		util.DomainError(c, err)
		return
	}

	util.Created(c, util.Response{
		"transaction": transactionResp(&transaction),
		"message":     "Transaction created successfully",
	})
}

// UpdateTransaction fully replaces a transaction after re-running the same
// validations as create. The credit-card guard credits back the prior amount
// when the transaction was already an expense on the same account.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid transaction id")
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	transactionType, err := models.ParseTransactionType(req.TransactionType)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if req.Amount.IsNegative() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Amount cannot be negative")
		return
	}
	transactionDate, err := parseTransactionDate(req.TransactionDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var transaction models.Transaction
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, user.ID).First(&transaction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ledger.NotFoundError{Entity: "Transaction", ID: uint(id)}
			}
			return err
		}

		account, err := ledger.ValidateAccount(tx, req.AccountID, user.ID)
		if err != nil {
			return err
		}
		category, err := ledger.ValidateCategory(tx, req.CategoryID, user.ID)
		if err != nil {
			return err
		}
		if err := ledger.ValidateTransactionCategoryMatch(transactionType, category); err != nil {
			return err
		}
		if err := ledger.CheckCreditCardExpenseUpdate(tx, account, &transaction, transactionType, req.Amount); err != nil {
			return err
		}
		if _, err := ledger.ValidateTransfer(tx, transactionType, req.DestinationAccountID, req.AccountID, req.fee(), user.ID); err != nil {
			return err
		}

		transaction.TransactionDate = transactionDate
		transaction.Description = req.Description
		transaction.Amount = req.Amount
		transaction.Type = transactionType
		transaction.TransferFee = req.fee()
		transaction.AccountID = req.AccountID
		transaction.CategoryID = req.CategoryID
		transaction.DestinationAccountID = req.DestinationAccountID
		return tx.Save(&transaction).Error
	})
	if err != nil {
		util.DomainError(c, err)
		return
	}

	util.Success(c, util.Response{
		"transaction": transactionResp(&transaction),
		"message":     "Transaction updated successfully",
	})
}

// DeleteTransaction removes a single transaction.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid transaction id")
		return
	}

	var transaction models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, fmt.Sprintf("Transaction with id %d not found", id))
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load transaction")
		}
		return
	}

	deleted := gin.H{
		"id":               transaction.ID,
		"description":      transaction.Description,
		"amount":           transaction.Amount,
		"transaction_type": transaction.Type,
	}
	if err := h.DB.Delete(&transaction).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete transaction")
		return
	}

	util.Success(c, util.Response{
		"message":      fmt.Sprintf("Transaction with id %d deleted successfully", transaction.ID),
		"deleted_item": deleted,
	})
}

// transactionFilterFromQuery builds the ledger filter from query parameters.
func transactionFilterFromQuery(c *gin.Context) (ledger.TransactionFilter, error) {
	f := ledger.TransactionFilter{
		AccountName:     c.Query("account_name"),
		CategoryName:    c.Query("category_name"),
		TransactionType: c.Query("transaction_type"),
		DateFilterType:  c.Query("date_filter_type"),
		OrderBy:         c.DefaultQuery("order_by", "created_at"),
		SortOrder:       c.DefaultQuery("sort_order", "desc"),
	}
	if s := c.Query("start_date"); s != "" {
		t, err := parseTransactionDate(s)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := parseTransactionDate(s)
		if err != nil {
			return f, err
		}
		f.EndDate = &t
	}
	return f, nil
}

// ListTransactions returns a filtered, sorted, paginated transaction list.
// Filter errors surface as an empty list with the error message so clients
// can show "no results" with a reason.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if skip < 0 {
		skip = 0
	}

	empty := func(msg string) {
		util.Success(c, util.Response{
			"transactions": []gin.H{},
			"total_count":  0,
			"has_more":     false,
			"limit":        limit,
			"skip":         skip,
			"message":      msg,
		})
	}

	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		empty(err.Error())
		return
	}

	query, err := ledger.FilteredTransactions(h.DB, user.ID, filter)
	if err != nil {
		if ledger.IsNotFound(err) || ledger.IsValidation(err) {
			empty(err.Error())
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list transactions")
		}
		return
	}

	var totalCount int64
	if err := query.Session(&gorm.Session{}).Count(&totalCount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list transactions")
		return
	}

	// fetch one extra row to probe for a further page
	var transactions []models.Transaction
	if err := query.Session(&gorm.Session{}).
		Offset(skip).
		Limit(limit + 1).
		Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list transactions")
		return
	}
	hasMore := len(transactions) > limit
	if hasMore {
		transactions = transactions[:limit]
	}

	items := make([]gin.H, 0, len(transactions))
	for i := range transactions {
		items = append(items, transactionResp(&transactions[i]))
	}

	util.Success(c, util.Response{
		"transactions": items,
		"total_count":  totalCount,
		"has_more":     hasMore,
		"limit":        limit,
		"skip":         skip,
		"message":      "Transactions retrieved successfully",
	})
}
