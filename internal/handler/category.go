package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/yudopr11/yupi/internal/ledger"
	"github.com/yudopr11/yupi/internal/middleware"
	"github.com/yudopr11/yupi/internal/models"
	"github.com/yudopr11/yupi/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryHandler serves transaction category CRUD.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type categoryReq struct {
	Name string `json:"name" binding:"required,max=64"`
	Type string `json:"type" binding:"required"`
}

func categoryResp(cat *models.Category) gin.H {
	return gin.H{
		"id":         cat.ID,
		"uuid":       cat.UUID,
		"name":       cat.Name,
		"type":       cat.Type,
		"user_id":    cat.UserID,
		"created_at": cat.CreatedAt,
		"updated_at": cat.UpdatedAt,
	}
}

// CreateCategory creates a transaction category.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	categoryType, err := models.ParseCategoryType(req.Type)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	category := models.Category{
		UUID:   uuid.NewString(),
		UserID: user.ID,
		Name:   req.Name,
		Type:   categoryType,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create category")
		return
	}

	util.Created(c, util.Response{
		"category": categoryResp(&category),
		"message":  "Category created successfully",
	})
}

// UpdateCategory replaces a category's name and type.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid category id")
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	categoryType, err := models.ParseCategoryType(req.Type)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	categoryID := uint(id)
	category, err := ledger.ValidateCategory(h.DB, &categoryID, user.ID)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	category.Name = req.Name
	category.Type = categoryType
	if err := h.DB.Save(category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update category")
		return
	}

	util.Success(c, util.Response{
		"category": categoryResp(category),
		"message":  "Category updated successfully",
	})
}

// DeleteCategory removes a category; transactions keep running with a null
// category reference.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid category id")
		return
	}

	categoryID := uint(id)
	category, err := ledger.ValidateCategory(h.DB, &categoryID, user.ID)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	deleted := gin.H{"id": category.ID, "name": category.Name, "type": category.Type}
	if err := h.DB.Delete(category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete category")
		return
	}

	util.Success(c, util.Response{
		"message":      fmt.Sprintf("Category with id %d deleted successfully", category.ID),
		"deleted_item": deleted,
	})
}

// ListCategories returns the user's categories with optional type filtering.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	categories, err := ledger.FilteredCategories(h.DB, user.ID, c.Query("category_type"))
	if err != nil {
		util.DomainError(c, err)
		return
	}

	items := make([]gin.H, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResp(&categories[i]))
	}
	util.Success(c, util.Response{"categories": items})
}
