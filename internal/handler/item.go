package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/ledger"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ItemHandler serves item CRUD, the stock list and item detail with derived
// balances.
type ItemHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
}

func NewItemHandler(db *gorm.DB) *ItemHandler {
	return &ItemHandler{DB: db, Ledger: ledger.New(db)}
}

type itemResp struct {
	ID              uint                 `json:"id"`
	MaterialNo      string               `json:"material_no"`
	Description     string               `json:"description"`
	Unit            string               `json:"unit"`
	Store           string               `json:"store"`
	StoreID         uint                 `json:"store_id"`
	CurrentBalance  int                  `json:"current_balance"`
	PhysicalBalance int                  `json:"physical_balance"`
	Deficit         int                  `json:"deficit"`
	Surplus         int                  `json:"surplus"`
	ReorderQuantity int                  `json:"reorder_quantity"`
	ReorderLevel    int                  `json:"reorder_level"`
	NeedsReorder    bool                 `json:"needs_reorder"`
	Status          models.ReorderStatus `json:"status"`
}

func (h *ItemHandler) toItemResp(item *models.Item, b *ledger.Balances) itemResp {
	return itemResp{
		ID:              item.ID,
		MaterialNo:      item.MaterialNo,
		Description:     item.Description,
		Unit:            item.Unit,
		Store:           item.Store.Name,
		StoreID:         item.StoreID,
		CurrentBalance:  b.Current,
		PhysicalBalance: b.Physical,
		Deficit:         b.Deficit,
		Surplus:         b.Surplus,
		ReorderQuantity: item.ReorderQuantity,
		ReorderLevel:    item.ReorderLevel,
		NeedsReorder:    b.NeedsReorder,
		Status:          b.Status,
	}
}

// ListItems returns the stock list, optionally filtered by ?store=<id>,
// ordered by material number. Balances are recomputed from the transaction
// log on every call.
func (h *ItemHandler) ListItems(c *gin.Context) {
	q := h.DB.Preload("Store").Order("material_no ASC")
	if storeParam := c.Query("store"); storeParam != "" {
		if storeID, err := strconv.Atoi(storeParam); err == nil && storeID > 0 {
			q = q.Where("store_id = ?", storeID)
		}
	}

	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list items")
		return
	}

	resp := make([]itemResp, 0, len(items))
	for i := range items {
		b, err := h.Ledger.BalancesFor(&items[i])
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute balances")
			return
		}
		resp = append(resp, h.toItemResp(&items[i], b))
	}

	util.Success(c, util.Response{"items": resp})
}

// GetItem returns one item with balances and its full movement history,
// latest first.
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid item id")
		return
	}

	var item models.Item
	if err := h.DB.Preload("Store").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "item not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load item")
		}
		return
	}

	b, err := h.Ledger.BalancesFor(&item)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute balances")
		return
	}

	var txns []models.StockTransaction
	if err := h.DB.Where("item_id = ?", item.ID).
		Order("date DESC, id DESC").
		Find(&txns).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	util.Success(c, util.Response{
		"item":         h.toItemResp(&item, b),
		"transactions": txns,
	})
}

type createItemReq struct {
	MaterialNo        string `json:"material_no" binding:"required,max=20"`
	Description       string `json:"description" binding:"max=200"`
	Unit              string `json:"unit" binding:"max=20"`
	StoreID           uint   `json:"store_id" binding:"required"`
	OpeningBinBalance int    `json:"opening_bin_balance"`
	OpeningPhysical   int    `json:"opening_physical"`
	ReorderQuantity   int    `json:"reorder_quantity"`
	ReorderLevel      int    `json:"reorder_level"`
}

// CreateItem creates one item by hand. MaterialNo is immutable afterwards;
// only a re-import may overwrite the opening fields.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req createItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.MaterialNo = strings.TrimSpace(req.MaterialNo)
	if err := util.ValidateMaterialNo(req.MaterialNo); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var store models.Store
	if err := h.DB.First(&store, req.StoreID).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "store not found")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Item{}).
		Where("material_no = ?", req.MaterialNo).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check material no")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "material no already in use")
		return
	}

	item := models.Item{
		MaterialNo:        req.MaterialNo,
		Description:       req.Description,
		Unit:              req.Unit,
		StoreID:           req.StoreID,
		OpeningBinBalance: req.OpeningBinBalance,
		OpeningPhysical:   req.OpeningPhysical,
		ReorderQuantity:   req.ReorderQuantity,
		ReorderLevel:      req.ReorderLevel,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create item")
		return
	}

	item.Store = store
	b, err := h.Ledger.BalancesFor(&item)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute balances")
		return
	}

	util.Success(c, util.Response{"item": h.toItemResp(&item, b)})
}

type updateItemReq struct {
	Description     string `json:"description" binding:"max=200"`
	Unit            string `json:"unit" binding:"max=20"`
	StoreID         uint   `json:"store_id" binding:"required"`
	ReorderQuantity int    `json:"reorder_quantity"`
	ReorderLevel    int    `json:"reorder_level"`
}

// UpdateItem edits mutable item fields. MaterialNo and the opening balances
// are not editable here — opening values only change through a re-import.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid item id")
		return
	}

	var item models.Item
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "item not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load item")
		}
		return
	}

	var req updateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var store models.Store
	if err := h.DB.First(&store, req.StoreID).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "store not found")
		return
	}

	item.Description = req.Description
	item.Unit = req.Unit
	item.StoreID = req.StoreID
	item.ReorderQuantity = req.ReorderQuantity
	item.ReorderLevel = req.ReorderLevel
	if err := h.DB.Save(&item).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update item")
		return
	}

	item.Store = store
	b, err := h.Ledger.BalancesFor(&item)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute balances")
		return
	}

	util.Success(c, util.Response{"item": h.toItemResp(&item, b)})
}
