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

// AccountHandler serves financial account CRUD and balances.
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

type accountReq struct {
	Name        string           `json:"name" binding:"required,max=128"`
	Type        string           `json:"type" binding:"required"`
	Description string           `json:"description" binding:"max=1024"`
	Limit       *decimal.Decimal `json:"limit"`
}

func accountResp(a *models.Account) gin.H {
	return gin.H{
		"id":          a.ID,
		"uuid":        a.UUID,
		"name":        a.Name,
		"type":        a.Type,
		"description": a.Description,
		"limit":       a.Limit,
		"user_id":     a.UserID,
		"created_at":  a.CreatedAt,
		"updated_at":  a.UpdatedAt,
	}
}

// CreateAccount creates a financial account. Credit cards get an automatic
// initial income transaction equal to the limit so the card starts with its
// full balance available.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	var req accountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	accountType, err := models.ParseAccountType(req.Type)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := ledger.ValidateAccountLimit(accountType, req.Limit); err != nil {
		util.DomainError(c, err)
		return
	}

	account := models.Account{
		UUID:        uuid.NewString(),
		UserID:      user.ID,
		Name:        req.Name,
		Type:        accountType,
		Description: req.Description,
		Limit:       req.Limit,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		if account.Type == models.AccountTypeCreditCard && account.Limit != nil {
			return createInitialCreditTransaction(tx, &account, user.ID)
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create account")
		return
	}

	util.Created(c, util.Response{
		"account": accountResp(&account),
		"message": "Account created successfully",
	})
}

// createInitialCreditTransaction books the card's limit as income against a
// find-or-created "Other" income category.
func createInitialCreditTransaction(tx *gorm.DB, account *models.Account, userID uint) error {
	var category models.Category
	err := tx.Where("name = ? AND type = ? AND user_id = ?", "Other", models.CategoryTypeIncome, userID).
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.Category{
			UUID:   uuid.NewString(),
			UserID: userID,
			Name:   "Other",
			Type:   models.CategoryTypeIncome,
		}
		err = tx.Create(&category).Error
	}
	if err != nil {
		return err
	}

	initial := models.Transaction{
		UUID:            uuid.NewString(),
		UserID:          userID,
		TransactionDate: time.Now().UTC(),
		Description:     "Initial credit card balance",
		Amount:          *account.Limit,
		Type:            models.TransactionTypeIncome,
		AccountID:       account.ID,
		CategoryID:      &category.ID,
	}
	return tx.Create(&initial).Error
}

// UpdateAccount replaces an account's mutable fields.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid account id")
		return
	}

	var req accountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	accountType, err := models.ParseAccountType(req.Type)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := ledger.ValidateAccountLimit(accountType, req.Limit); err != nil {
		util.DomainError(c, err)
		return
	}

	account, err := ledger.ValidateAccount(h.DB, uint(id), user.ID)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	account.Name = req.Name
	account.Type = accountType
	account.Description = req.Description
	account.Limit = req.Limit

	if err := h.DB.Save(account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update account")
		return
	}

	util.Success(c, util.Response{
		"account": accountResp(account),
		"message": "Account updated successfully",
	})
}

// DeleteAccount removes an account; owned transactions cascade with it.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid account id")
		return
	}

	account, err := ledger.ValidateAccount(h.DB, uint(id), user.ID)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	deleted := gin.H{"id": account.ID, "name": account.Name, "type": account.Type}
	if err := h.DB.Delete(account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete account")
		return
	}

	util.Success(c, util.Response{
		"message":      fmt.Sprintf("Account with id %d deleted successfully", account.ID),
		"deleted_item": deleted,
	})
}

// GetAccountBalance returns the detailed balance of one account.
func (h *AccountHandler) GetAccountBalance(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid account id")
		return
	}

	account, err := ledger.ValidateAccount(h.DB, uint(id), user.ID)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	summary, err := ledger.CalculateAccountBalance(h.DB, account.ID, &user.ID)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	util.Success(c, util.Response{
		"account": accountResp(account),
		"balance": summary,
		"message": "Balance retrieved successfully",
	})
}

// ListAccounts returns the user's accounts with balances in one query.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	accounts, err := ledger.AccountsWithBalance(h.DB, user.ID, c.Query("account_type"))
	if err != nil {
		util.DomainError(c, err)
		return
	}

	util.Success(c, util.Response{"accounts": accounts})
}
