package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/ledger"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler serves the overview: totals and the most urgent reorder
// candidates.
type DashboardHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db, Ledger: ledger.New(db)}
}

type reorderItem struct {
	ID             uint                 `json:"id"`
	MaterialNo     string               `json:"material_no"`
	Description    string               `json:"description"`
	Unit           string               `json:"unit"`
	CurrentBalance int                  `json:"current_balance"`
	ReorderLevel   int                  `json:"reorder_level"`
	Status         models.ReorderStatus `json:"status"`
}

// Overview lists totals plus the twenty lowest-balance items that need
// reordering.
func (h *DashboardHandler) Overview(c *gin.Context) {
	var items []models.Item
	if err := h.DB.Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load items")
		return
	}

	var reorder []reorderItem
	outOfStock := 0
	for i := range items {
		b, err := h.Ledger.BalancesFor(&items[i])
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute balances")
			return
		}
		if b.Status == models.StatusOutOfStock {
			outOfStock++
		}
		if !b.NeedsReorder {
			continue
		}
		reorder = append(reorder, reorderItem{
			ID:             items[i].ID,
			MaterialNo:     items[i].MaterialNo,
			Description:    items[i].Description,
			Unit:           items[i].Unit,
			CurrentBalance: b.Current,
			ReorderLevel:   items[i].ReorderLevel,
			Status:         b.Status,
		})
	}

	// lowest balances first, top 20 most urgent
	sort.Slice(reorder, func(i, j int) bool {
		return reorder[i].CurrentBalance < reorder[j].CurrentBalance
	})
	top := reorder
	if len(top) > 20 {
		top = top[:20]
	}

	util.Success(c, util.Response{
		"today":              time.Now().Format("January 02, 2006"),
		"total_items":        len(items),
		"reorder_count":      len(reorder),
		"out_of_stock_count": outOfStock,
		"reorder_items":      top,
	})
}
