package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/ledger"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler appends stock movements and serves the movement history.
type TransactionHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db, Ledger: ledger.New(db)}
}

type createTransactionReq struct {
	ItemID     uint                   `json:"item_id" binding:"required"`
	Type       models.TransactionType `json:"type" binding:"required,oneof=Receipt Issue"`
	Magnitude  int                    `json:"magnitude" binding:"required"`
	Date       string                 `json:"date"`
	DocNo      string                 `json:"doc_no" binding:"max=50"`
	Department string                 `json:"department" binding:"max=100"`
}

// CreateTransaction records one movement. The magnitude is unsigned; the
// ledger derives the sign. ErrValidation and ErrNotFound become user-facing
// 400/404 responses, never a crash.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := util.ValidateMagnitude(req.Magnitude); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var date time.Time
	if req.Date != "" {
		if err := util.ValidateDate(req.Date); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		date, _ = time.Parse("2006-01-02", req.Date)
	}

	txn, err := h.Ledger.AppendEntry(req.ItemID, ledger.Entry{
		Type:       req.Type,
		Magnitude:  req.Magnitude,
		Date:       date,
		DocNo:      req.DocNo,
		Department: req.Department,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrValidation):
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		case errors.Is(err, ledger.ErrNotFound):
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "item not found")
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to record transaction")
		}
		return
	}

	balance, err := h.Ledger.CurrentBalance(req.ItemID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute balance")
		return
	}

	util.Success(c, util.Response{
		"transaction":     txn,
		"current_balance": balance,
	})
}

// ListTransactions returns the movement history, latest first, paginated.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}

	q := h.DB.Model(&models.StockTransaction{}).Preload("Item").Preload("Item.Store")
	if itemParam := c.Query("item"); itemParam != "" {
		if itemID, err := strconv.Atoi(itemParam); err == nil && itemID > 0 {
			q = q.Where("item_id = ?", itemID)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count transactions")
		return
	}

	var txns []models.StockTransaction
	if err := q.Order("date DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&txns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	util.Success(c, util.Response{
		"transactions": txns,
		"total":        total,
		"page":         page,
		"page_size":    size,
	})
}
