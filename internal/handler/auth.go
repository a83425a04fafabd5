package handler

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves register/login/logout.
type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:        db,
		JWTSecret: jwtSecret,
		TokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

type registerReq struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	DisplayName     string `json:"display_name" binding:"max=64"`
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(req.Username) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username must be 3-20 letters, digits or underscores")
		return
	}
	if len(req.Password) < 8 || len(req.Password) > 32 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "password must be 8-32 characters")
		return
	}
	if req.Password != req.ConfirmPassword {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "passwords do not match")
		return
	}

	// case-insensitive uniqueness
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", req.Username).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check username")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username already exists")
		return
	}

	const bcryptCost = 12
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
		},
	})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var user models.User
	if err := h.DB.Where("LOWER(username) = LOWER(?)", strings.TrimSpace(req.Username)).
		First(&user).Error; err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong username or password")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong username or password")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to issue token")
		return
	}

	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(h.TokenTTL),
	}
	if err := h.DB.Create(&session).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create session")
		return
	}

	now := time.Now()
	_ = h.DB.Model(&user).Updates(map[string]interface{}{
		"last_login_at": &now,
		"last_login_ip": c.ClientIP(),
	}).Error

	util.Success(c, util.Response{
		"token":      token,
		"session_id": session.ID,
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
		},
	})
}

type logoutReq struct {
	SessionID string `json:"session_id" binding:"required"`
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	user := currentUser(c)
	if user == nil {
		return
	}

	if err := h.DB.Model(&models.Session{}).
		Where("id = ? AND user_id = ?", req.SessionID, user.ID).
		Update("revoked", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to revoke session")
		return
	}

	util.Success(c, util.Response{"message": "logged out"})
}
