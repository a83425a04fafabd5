package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/ledger"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeSource serves canned rows so tests don't need workbook files on disk.
type fakeSource struct {
	sheets map[string][][]string
}

func (f *fakeSource) Rows(sheet string) ([][]string, error) {
	rows, ok := f.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q does not exist", sheet)
	}
	return rows, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Store{}, &models.Item{}, &models.StockTransaction{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestImporter(db *gorm.DB) *Importer {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(db, log)
}

var catalogHeader = []string{
	"", colMaterialNo, colDescription, colUnit,
	colOpeningBin, colOpeningPhys, colReorderQty, colReorderLevel,
}

func catalogRow(materialNo, desc, unit, bin, phys, qty, level string) []string {
	return []string{"", materialNo, desc, unit, bin, phys, qty, level}
}

// txnRow follows the positional store sheet layout.
func txnRow(date, docNo, typ, materialNo, qty, dept string) []string {
	return []string{date, docNo, typ, materialNo, "", "", qty, dept}
}

func TestImportItems_CreatesCatalog(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	src := &fakeSource{sheets: map[string][][]string{
		"STOCK CONTROL SHEET": {
			{"", "STOCK CONTROL SHEET 2023"}, // title row above the header
			catalogHeader,
			catalogRow("100126", "A4 Paper", "RM", "50", "48", "100", "10"),
			catalogRow("100127", "Stapler", "PCS", "12.0", "12", "24", "4"),
		},
	}}

	rep, err := imp.ImportItems(src, "STOCK CONTROL SHEET", "SF STORE")
	if err != nil {
		t.Fatalf("ImportItems: %v", err)
	}
	if rep.ItemsCreated != 2 || rep.ItemsUpdated != 0 {
		t.Errorf("created/updated = %d/%d, want 2/0", rep.ItemsCreated, rep.ItemsUpdated)
	}

	var item models.Item
	if err := db.Where("material_no = ?", "100126").First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.Description != "A4 Paper" || item.Unit != "RM" {
		t.Errorf("item = %q %q, want A4 Paper / RM", item.Description, item.Unit)
	}
	if item.OpeningBinBalance != 50 || item.OpeningPhysical != 48 {
		t.Errorf("openings = %d/%d, want 50/48", item.OpeningBinBalance, item.OpeningPhysical)
	}
	if item.ReorderQuantity != 100 || item.ReorderLevel != 10 {
		t.Errorf("reorder = %d/%d, want 100/10", item.ReorderQuantity, item.ReorderLevel)
	}

	// float-rendered integer cell truncates cleanly
	var stapler models.Item
	if err := db.Where("material_no = ?", "100127").First(&stapler).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if stapler.OpeningBinBalance != 12 {
		t.Errorf("float cell parsed to %d, want 12", stapler.OpeningBinBalance)
	}

	var store models.Store
	if err := db.Where("name = ?", "SF STORE").First(&store).Error; err != nil {
		t.Fatalf("store not created: %v", err)
	}
	if item.StoreID != store.ID {
		t.Errorf("item assigned to store %d, want %d", item.StoreID, store.ID)
	}
}

func TestImportItems_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	src := &fakeSource{sheets: map[string][][]string{
		"STOCK CONTROL SHEET": {
			catalogHeader,
			catalogRow("100126", "A4 Paper", "RM", "50", "48", "100", "10"),
			catalogRow("100127", "Stapler", "PCS", "12", "12", "24", "4"),
		},
	}}

	first, err := imp.ImportItems(src, "STOCK CONTROL SHEET", "SF STORE")
	if err != nil {
		t.Fatalf("first import: %v", err)
	}

	// corrected sheet: same materials, one description fixed
	src.sheets["STOCK CONTROL SHEET"][1] = catalogRow("100126", "A4 Paper 80gsm", "RM", "55", "48", "100", "10")

	second, err := imp.ImportItems(src, "STOCK CONTROL SHEET", "SF STORE")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.ItemsCreated != 0 {
		t.Errorf("second run created %d items, want 0", second.ItemsCreated)
	}
	if second.ItemsUpdated != first.ItemsCreated {
		t.Errorf("second run updated %d, want %d (everything created by the first run)",
			second.ItemsUpdated, first.ItemsCreated)
	}

	var count int64
	db.Model(&models.Item{}).Count(&count)
	if count != 2 {
		t.Errorf("item count after re-import = %d, want 2 (no duplicates)", count)
	}

	var item models.Item
	db.Where("material_no = ?", "100126").First(&item)
	if item.Description != "A4 Paper 80gsm" || item.OpeningBinBalance != 55 {
		t.Errorf("re-import did not overwrite master data: %q / %d", item.Description, item.OpeningBinBalance)
	}
}

func TestImportItems_HeaderNotFound(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	src := &fakeSource{sheets: map[string][][]string{
		"STOCK CONTROL SHEET": {
			{"just", "some", "noise"},
			{"no", "marker", "here"},
		},
	}}

	_, err := imp.ImportItems(src, "STOCK CONTROL SHEET", "SF STORE")
	var hnf *HeaderNotFoundError
	if !errors.As(err, &hnf) {
		t.Fatalf("err = %v, want HeaderNotFoundError", err)
	}
	if hnf.Sheet != "STOCK CONTROL SHEET" {
		t.Errorf("error names sheet %q", hnf.Sheet)
	}

	// structural failure rolls the whole sheet back, store included
	var stores int64
	db.Model(&models.Store{}).Count(&stores)
	if stores != 0 {
		t.Errorf("rolled-back import left %d stores behind", stores)
	}
}

func TestImportItems_HeaderOutsideScanWindow(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	imp.HeaderScanRows = 3

	rows := [][]string{{"noise"}, {"noise"}, {"noise"}, catalogHeader,
		catalogRow("100126", "A4 Paper", "RM", "50", "50", "100", "10")}
	src := &fakeSource{sheets: map[string][][]string{"STOCK CONTROL SHEET": rows}}

	_, err := imp.ImportItems(src, "STOCK CONTROL SHEET", "SF STORE")
	var hnf *HeaderNotFoundError
	if !errors.As(err, &hnf) {
		t.Fatalf("header beyond scan window: err = %v, want HeaderNotFoundError", err)
	}
	if hnf.Window != 3 {
		t.Errorf("error reports window %d, want 3", hnf.Window)
	}
}

func TestImportItems_MissingColumn(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)

	header := []string{"", colMaterialNo, colDescription, colUnit,
		colOpeningBin, colOpeningPhys, colReorderQty} // no Reorder Levels
	src := &fakeSource{sheets: map[string][][]string{
		"STOCK CONTROL SHEET": {header},
	}}

	_, err := imp.ImportItems(src, "STOCK CONTROL SHEET", "SF STORE")
	var mc *MissingColumnError
	if !errors.As(err, &mc) {
		t.Fatalf("err = %v, want MissingColumnError", err)
	}
	if mc.Column != colReorderLevel {
		t.Errorf("error names column %q, want %q", mc.Column, colReorderLevel)
	}
}

func TestImportItems_GarbageNumericRowSkipped(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	src := &fakeSource{sheets: map[string][][]string{
		"STOCK CONTROL SHEET": {
			catalogHeader,
			catalogRow("100126", "A4 Paper", "RM", "N/A", "48", "100", "10"),
			catalogRow("100127", "Stapler", "PCS", "12", "12", "24", "4"),
		},
	}}

	rep, err := imp.ImportItems(src, "STOCK CONTROL SHEET", "SF STORE")
	if err != nil {
		t.Fatalf("row-level garbage must not abort the sheet: %v", err)
	}
	if rep.ItemsCreated != 1 {
		t.Errorf("created = %d, want 1 (good row survives)", rep.ItemsCreated)
	}
	if len(rep.Skipped) != 1 {
		t.Fatalf("skipped = %d rows, want 1", len(rep.Skipped))
	}
	if rep.Skipped[0].Row != 2 {
		t.Errorf("skipped row number = %d, want 2", rep.Skipped[0].Row)
	}

	var count int64
	db.Model(&models.Item{}).Where("material_no = ?", "100126").Count(&count)
	if count != 0 {
		t.Error("skipped row still created an item")
	}
}

func TestImportItems_BlankRowsAndEmptyCellsTolerated(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	src := &fakeSource{sheets: map[string][][]string{
		"STOCK CONTROL SHEET": {
			catalogHeader,
			{},                              // completely empty row
			catalogRow("", "", "", "", "", "", ""), // blank separator
			catalogRow("100126", "A4 Paper", "RM", "", "", "", ""), // blank numerics coerce to zero
		},
	}}

	rep, err := imp.ImportItems(src, "STOCK CONTROL SHEET", "SF STORE")
	if err != nil {
		t.Fatalf("ImportItems: %v", err)
	}
	if rep.ItemsCreated != 1 {
		t.Errorf("created = %d, want 1", rep.ItemsCreated)
	}
	if len(rep.Skipped) != 0 {
		t.Errorf("blank rows were reported as skipped: %v", rep.Skipped)
	}

	var item models.Item
	if err := db.Where("material_no = ?", "100126").First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.OpeningBinBalance != 0 || item.ReorderLevel != 0 {
		t.Errorf("blank numeric cells parsed to %d/%d, want 0/0", item.OpeningBinBalance, item.ReorderLevel)
	}
}

func seedItem(t *testing.T, db *gorm.DB, materialNo string, opening int) *models.Item {
	t.Helper()
	store := models.Store{Name: "SF STORE"}
	if err := db.Where("name = ?", store.Name).FirstOrCreate(&store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	item := models.Item{
		MaterialNo:        materialNo,
		Description:       "Seeded",
		Unit:              "PCS",
		StoreID:           store.ID,
		OpeningBinBalance: opening,
		OpeningPhysical:   opening,
		ReorderLevel:      10,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return &item
}

func TestImportTransactions_ReplaysWithDerivedSigns(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	item := seedItem(t, db, "100126", 50)

	src := &fakeSource{sheets: map[string][][]string{
		"SF STORE": {
			{"SF STORE"}, // banner rows before the data region
			{},
			txnRow("2023-01-05", "GRN-14", "Receipt", "100126", "20", "STORES"),
			txnRow("2023-02-10", "SIV-31", "Issue", "100126", "65", "ICT"),
			txnRow("2023-03-01", "SIV-40", "issued out", "100126", "10", "HR"), // unrecognised type counts as issue
		},
	}}

	rep, err := imp.ImportTransactions(src, "SF STORE", "SF STORE")
	if err != nil {
		t.Fatalf("ImportTransactions: %v", err)
	}
	if rep.TransactionsImported != 3 {
		t.Errorf("imported = %d, want 3", rep.TransactionsImported)
	}

	var txns []models.StockTransaction
	if err := db.Where("item_id = ?", item.ID).Order("date").Find(&txns).Error; err != nil {
		t.Fatalf("load txns: %v", err)
	}
	wantQty := []int{20, -65, -10}
	for i, txn := range txns {
		if txn.Qty != wantQty[i] {
			t.Errorf("txn %d qty = %d, want %d", i, txn.Qty, wantQty[i])
		}
	}
	if txns[2].Type != models.TypeIssue {
		t.Errorf("unrecognised type resolved to %q, want Issue", txns[2].Type)
	}

	bal, err := ledger.New(db).CurrentBalance(item.ID)
	if err != nil {
		t.Fatalf("CurrentBalance: %v", err)
	}
	if bal != 50+20-65-10 {
		t.Errorf("balance after replay = %d, want -5", bal)
	}
}

func TestImportTransactions_UnknownMaterialSkipped(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	seedItem(t, db, "100126", 50)

	src := &fakeSource{sheets: map[string][][]string{
		"SF STORE": {
			{}, {},
			txnRow("2023-01-05", "GRN-14", "Receipt", "999999", "20", "STORES"),
			txnRow("2023-01-06", "GRN-15", "Receipt", "100126", "5", "STORES"),
		},
	}}

	rep, err := imp.ImportTransactions(src, "SF STORE", "SF STORE")
	if err != nil {
		t.Fatalf("ImportTransactions: %v", err)
	}
	if rep.TransactionsImported != 1 {
		t.Errorf("imported = %d, want 1", rep.TransactionsImported)
	}
	if len(rep.Skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(rep.Skipped))
	}

	// never creates a placeholder item for an unresolved reference
	var count int64
	db.Model(&models.Item{}).Where("material_no = ?", "999999").Count(&count)
	if count != 0 {
		t.Error("unknown material manufactured a placeholder item")
	}
}

func TestImportTransactions_BadRowsSkipped(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)
	seedItem(t, db, "100126", 50)

	src := &fakeSource{sheets: map[string][][]string{
		"SF STORE": {
			{}, {},
			txnRow("", "GRN-1", "Receipt", "100126", "5", ""),          // no date: silent skip
			txnRow("2023-01-05", "GRN-2", "Receipt", "", "5", ""),      // no material: silent skip
			txnRow("someday", "GRN-3", "Receipt", "100126", "5", ""),   // bad date: reported
			txnRow("2023-01-07", "GRN-4", "Receipt", "100126", "?", ""), // bad qty: reported
			txnRow("2023-01-08", "GRN-5", "Receipt", "100126", "5", "STORES"),
		},
	}}

	rep, err := imp.ImportTransactions(src, "SF STORE", "SF STORE")
	if err != nil {
		t.Fatalf("ImportTransactions: %v", err)
	}
	if rep.TransactionsImported != 1 {
		t.Errorf("imported = %d, want 1", rep.TransactionsImported)
	}
	if len(rep.Skipped) != 2 {
		t.Errorf("reported skips = %d, want 2 (bad date, bad qty)", len(rep.Skipped))
	}

	var count int64
	db.Model(&models.StockTransaction{}).Count(&count)
	if count != 1 {
		t.Errorf("persisted %d transactions, want 1", count)
	}
}

func TestRun_FullWorkbook(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)

	src := &fakeSource{sheets: map[string][][]string{
		"STOCK CONTROL SHEET": {
			catalogHeader,
			catalogRow("100126", "A4 Paper", "RM", "50", "50", "100", "10"),
		},
		"SF STORE": {
			{}, {},
			txnRow("2023-01-05", "GRN-14", "Receipt", "100126", "20", "STORES"),
			txnRow("2023-02-10", "SIV-31", "Issue", "100126", "65", "ICT"),
		},
	}}

	report, err := imp.Run(src, Mapping{
		CatalogSheet: "STOCK CONTROL SHEET",
		CatalogStore: "SF STORE",
		StoreSheets:  []string{"SF STORE"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.TotalItemsCreated() != 1 {
		t.Errorf("TotalItemsCreated = %d, want 1", report.TotalItemsCreated())
	}
	if report.TotalTransactionsImported() != 2 {
		t.Errorf("TotalTransactionsImported = %d, want 2", report.TotalTransactionsImported())
	}
	if report.TotalSkipped() != 0 {
		t.Errorf("TotalSkipped = %d, want 0", report.TotalSkipped())
	}

	var item models.Item
	if err := db.Where("material_no = ?", "100126").First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	svc := ledger.New(db)
	b, err := svc.Balances(item.ID)
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if b.Current != 5 {
		t.Errorf("Current = %d, want 5", b.Current)
	}
	if b.Status != models.StatusReorder {
		t.Errorf("Status = %s, want REORDER at balance 5 / level 10", b.Status)
	}
}

func TestRun_LaterSheetFailureKeepsEarlierSheets(t *testing.T) {
	db := setupTestDB(t)
	imp := newTestImporter(db)

	src := &fakeSource{sheets: map[string][][]string{
		"STOCK CONTROL SHEET": {
			catalogHeader,
			catalogRow("100126", "A4 Paper", "RM", "50", "50", "100", "10"),
		},
		// "SF STORE" missing: Rows() errors after the catalog committed
	}}

	_, err := imp.Run(src, Mapping{
		CatalogSheet: "STOCK CONTROL SHEET",
		CatalogStore: "SF STORE",
		StoreSheets:  []string{"SF STORE"},
	})
	if err == nil {
		t.Fatal("Run succeeded with a missing store sheet")
	}

	var count int64
	db.Model(&models.Item{}).Count(&count)
	if count != 1 {
		t.Errorf("catalog sheet did not stay committed: %d items", count)
	}
}
