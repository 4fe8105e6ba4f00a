package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yudopr11/yupi/internal/config"
	"github.com/yudopr11/yupi/internal/middleware"
	"github.com/yudopr11/yupi/internal/models"
	"github.com/yudopr11/yupi/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const refreshCookieName = "refresh_token"

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SecureCookies bool
}

func NewAuthHandler(db *gorm.DB, cfg config.JWTConfig) *AuthHandler {
	accessMinutes := cfg.AccessExpireMinutes
	if accessMinutes <= 0 {
		accessMinutes = 30
	}
	refreshDays := cfg.RefreshExpireDays
	if refreshDays <= 0 {
		refreshDays = 30
	}
	return &AuthHandler{
		DB:            db,
		JWTSecret:     cfg.Secret,
		AccessTTL:     time.Duration(accessMinutes) * time.Minute,
		RefreshTTL:    time.Duration(refreshDays) * 24 * time.Hour,
		SecureCookies: cfg.SecureCookies,
	}
}

type registerReq struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=64"`
	IsSuperuser bool   `json:"is_superuser"`
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

func userResp(u *models.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"uuid":         u.UUID,
		"username":     u.Username,
		"email":        u.Email,
		"is_superuser": u.IsSuperuser,
		"created_at":   u.CreatedAt,
	}
}

// Register creates a new user. Superuser only.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(req.Username) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Username must be 3-20 letters, digits or underscores")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", req.Username).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to check username")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Username already registered")
		return
	}
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", req.Email).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to check email")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email already registered")
		return
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to hash password")
		return
	}

	user := models.User{
		UUID:         uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsSuperuser:  req.IsSuperuser,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create user")
		return
	}

	util.Created(c, util.Response{"user": userResp(&user)})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues an access token in the body plus a
// refresh token in an HTTP-only cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	if err := h.DB.Where("LOWER(username) = LOWER(?)", req.Username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Incorrect username or password")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user")
		}
		return
	}

	if !util.VerifyPassword(req.Password, user.PasswordHash) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Incorrect username or password")
		return
	}

	access, refresh, err := util.GenerateTokenPair(h.JWTSecret, user.ID, h.AccessTTL, h.RefreshTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to generate tokens")
		return
	}

	h.setRefreshCookie(c, refresh, int(h.RefreshTTL.Seconds()))

	util.Success(c, util.Response{
		"access_token": access,
		"token_type":   "bearer",
		"user":         userResp(&user),
	})
}

// Refresh issues a new access token from the refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookieName)
	if err != nil || refresh == "" {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Refresh token missing")
		return
	}

	claims, err := util.ParseToken(h.JWTSecret, refresh, util.TokenTypeRefresh)
	if err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Invalid refresh token")
		return
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		h.setRefreshCookie(c, "", -1)
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "User not found")
		return
	}

	access, err := util.GenerateToken(h.JWTSecret, user.ID, util.TokenTypeAccess, h.AccessTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to generate token")
		return
	}

	util.Success(c, util.Response{
		"access_token": access,
		"token_type":   "bearer",
	})
}

// Logout clears the refresh token cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setRefreshCookie(c, "", -1)
	util.Success(c, util.Response{"message": "Successfully logged out"})
}

// DeleteUser removes a user by ID. Superuser only; self-deletion is blocked.
// Owned accounts, categories, transactions and posts cascade.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid user id")
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "User not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user")
		}
		return
	}

	if user.ID == current.ID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Cannot delete own superuser account")
		return
	}

	deleted := gin.H{"id": user.ID, "uuid": user.UUID, "username": user.Username}
	if err := h.DB.Delete(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete user")
		return
	}

	util.Success(c, util.Response{
		"message":      "User has been deleted successfully",
		"deleted_user": deleted,
	})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, value, maxAge, "/", "", h.SecureCookies, true)
}
