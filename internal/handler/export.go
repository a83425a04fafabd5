package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/ledger"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler writes the stock report as CSV or XLSX.
type ExportHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db, Ledger: ledger.New(db)}
}

var exportColumns = []string{"Material No", "Description", "Unit", "Current Balance", "Reorder Level", "Status", "Store"}

type exportRow struct {
	MaterialNo   string
	Description  string
	Unit         string
	Balance      int
	ReorderLevel int
	Status       models.ReorderStatus
	Store        string
}

func (h *ExportHandler) rows(c *gin.Context) ([]exportRow, error) {
	q := h.DB.Preload("Store").Order("material_no ASC")
	if storeParam := c.Query("store"); storeParam != "" {
		if storeID, err := strconv.Atoi(storeParam); err == nil && storeID > 0 {
			q = q.Where("store_id = ?", storeID)
		}
	}

	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}

	rows := make([]exportRow, 0, len(items))
	for i := range items {
		b, err := h.Ledger.BalancesFor(&items[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, exportRow{
			MaterialNo:   items[i].MaterialNo,
			Description:  items[i].Description,
			Unit:         items[i].Unit,
			Balance:      b.Current,
			ReorderLevel: items[i].ReorderLevel,
			Status:       b.Status,
			Store:        items[i].Store.Name,
		})
	}
	return rows, nil
}

// ExportCSV writes the stock list as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, err := h.rows(c)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to build report")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"stock_list_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so Excel opens the file cleanly
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(exportColumns)
	for _, r := range rows {
		_ = writer.Write([]string{
			r.MaterialNo,
			r.Description,
			r.Unit,
			strconv.Itoa(r.Balance),
			strconv.Itoa(r.ReorderLevel),
			string(r.Status),
			r.Store,
		})
	}
}

// ExportXLSX writes the stock list as an xlsx workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, err := h.rows(c)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to build report")
		return
	}

	f := excelize.NewFile()
	const sheetName = "Stock List"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, col := range exportColumns {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, col)
	}

	for idx, r := range rows {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.MaterialNo)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Unit)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Balance)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.ReorderLevel)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), string(r.Status))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Store)
	}

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 40)
	f.SetColWidth(sheetName, "C", "G", 14)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"stock_list_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
