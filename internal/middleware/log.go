package middleware

import (
	"bytes"
	"io"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware records each authenticated request as an audit log row.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = user.ID
			}
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		// only record operations by logged-in users
		if userID == 0 {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		log := models.AuditLog{
			UserID:    &userID,
			Path:      path,
			Method:    c.Request.Method,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&log).Error
	}
}
