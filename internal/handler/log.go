package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves the audit log.
type LogHandler struct {
	DB *gorm.DB
}

func NewLogHandler(db *gorm.DB) *LogHandler {
	return &LogHandler{DB: db}
}

type logResp struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs lists the current user's operations, latest first, paginated.
func (h *LogHandler) ListLogs(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}

	q := h.DB.Model(&models.AuditLog{}).Where("user_id = ?", user.ID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count logs")
		return
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list logs")
		return
	}

	resp := make([]logResp, 0, len(logs))
	for _, l := range logs {
		resp = append(resp, logResp{
			ID:        l.ID,
			Action:    l.Action,
			Path:      l.Path,
			Method:    l.Method,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"logs":      resp,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}
