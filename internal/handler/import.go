package handler

import (
	"net/http"
	"strings"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/config"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/importer"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ImportHandler accepts an uploaded workbook and runs the bulk reconciliation
// import over it.
type ImportHandler struct {
	DB  *gorm.DB
	Cfg config.ImportConfig
}

func NewImportHandler(db *gorm.DB, cfg config.ImportConfig) *ImportHandler {
	return &ImportHandler{DB: db, Cfg: cfg}
}

// Upload runs the importer on a multipart "file" upload. Sheet names default
// to the configured mapping; the form may override them. Structural errors
// (no header row, missing column) come back as 400 with the sheet named;
// per-row problems appear in the returned reconciliation report.
func (h *ImportHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missing workbook upload")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot open upload")
		return
	}
	defer file.Close()

	src, err := importer.NewXLSXSource(file)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "not a readable xlsx workbook")
		return
	}
	defer src.Close()

	mapping := importer.Mapping{
		CatalogSheet: h.Cfg.CatalogSheet,
		CatalogStore: h.Cfg.CatalogStore,
		StoreSheets:  h.Cfg.StoreSheets,
	}
	if v := c.PostForm("catalog_sheet"); v != "" {
		mapping.CatalogSheet = v
	}
	if v := c.PostForm("catalog_store"); v != "" {
		mapping.CatalogStore = v
	}
	if v := c.PostForm("store_sheets"); v != "" {
		mapping.StoreSheets = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				mapping.StoreSheets = append(mapping.StoreSheets, s)
			}
		}
	}

	imp := importer.New(h.DB, config.GetLogger())
	if h.Cfg.HeaderScanRows > 0 {
		imp.HeaderScanRows = h.Cfg.HeaderScanRows
	}

	report, err := imp.Run(src, mapping)
	if err != nil {
		// structural failure: the offending sheet was rolled back
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	util.Success(c, util.Response{"report": report})
}
