package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StoreHandler serves store CRUD and the bulk item reassignment.
type StoreHandler struct {
	DB *gorm.DB
}

func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return &StoreHandler{DB: db}
}

func (h *StoreHandler) ListStores(c *gin.Context) {
	var stores []models.Store
	if err := h.DB.Order("name ASC").Find(&stores).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list stores")
		return
	}
	util.Success(c, util.Response{"stores": stores})
}

type createStoreReq struct {
	Name string `json:"name" binding:"required,max=100"`
}

func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req createStoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateStoreName(req.Name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	store := models.Store{Name: req.Name}
	if err := h.DB.Create(&store).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "store name already in use")
		return
	}

	util.Success(c, util.Response{"store": store})
}

type assignItemsReq struct {
	ItemIDs []uint `json:"item_ids" binding:"required,min=1"`
}

// AssignItems reassigns a set of items to this store in one update — the
// generalised form of the per-store admin actions ("assign selected to SF
// STORE" etc.).
func (h *StoreHandler) AssignItems(c *gin.Context) {
	storeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || storeID <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid store id")
		return
	}

	var store models.Store
	if err := h.DB.First(&store, storeID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "store not found")
		return
	}

	var req assignItemsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	res := h.DB.Model(&models.Item{}).
		Where("id IN ?", req.ItemIDs).
		Update("store_id", store.ID)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to reassign items")
		return
	}

	util.Success(c, util.Response{
		"store":    store.Name,
		"assigned": res.RowsAffected,
	})
}
