package handler

import (
	"net/http"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user from the context. It writes the
// error response itself and returns nil when unauthenticated.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil
	}
	return user
}

// GetMe returns the current logged-in user (requires AuthMiddleware).
func GetMe(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"display_name":  user.DisplayName,
			"created_at":    user.CreatedAt,
			"last_login_at": user.LastLoginAt,
		},
	})
}
