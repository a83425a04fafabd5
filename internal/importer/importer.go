package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/ledger"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Column labels the catalog sheet must carry, exactly as they appear in the
// master stock control workbook.
const (
	colMaterialNo   = "Material No"
	colDescription  = "Item Description"
	colUnit         = "Unit of Issue"
	colOpeningBin   = "Opening S5 Bin Card Bal."
	colOpeningPhys  = "Opening Physical Stock Count."
	colReorderQty   = "Reorder Quantity"
	colReorderLevel = "Reorder Levels"
)

var requiredColumns = []string{
	colMaterialNo,
	colDescription,
	colUnit,
	colOpeningBin,
	colOpeningPhys,
	colReorderQty,
	colReorderLevel,
}

// Store transaction sheets carry no usable header labels; the layout is
// positional: date, doc no, type, material no, two unused columns, quantity,
// department. Data starts on the third row.
const (
	txnColDate     = 0
	txnColDocNo    = 1
	txnColType     = 2
	txnColMaterial = 3
	txnColQty      = 6
	txnColDept     = 7

	txnDataStartRow = 2
)

// DefaultHeaderScanRows bounds the search for the catalog header row.
const DefaultHeaderScanRows = 10

var txnDateLayouts = []string{
	"2006-01-02",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// Importer merges an external workbook into the Item/StockTransaction model
// idempotently. Structural problems (missing header row or column) abort the
// sheet and roll back its transaction; per-row data problems are skipped and
// accumulated into the reconciliation report.
type Importer struct {
	DB             *gorm.DB
	Ledger         *ledger.Service
	Log            *logrus.Logger
	HeaderScanRows int
}

func New(db *gorm.DB, log *logrus.Logger) *Importer {
	if log == nil {
		log = logrus.New()
	}
	return &Importer{
		DB:             db,
		Ledger:         ledger.New(db),
		Log:            log,
		HeaderScanRows: DefaultHeaderScanRows,
	}
}

// Mapping tells Run which sheets to process. Each store sheet's name doubles
// as the store it records transactions for.
type Mapping struct {
	CatalogSheet string
	CatalogStore string
	StoreSheets  []string
}

// Run imports the item catalog and then replays each store's transaction
// history. Sheets already committed stay committed if a later sheet fails
// structurally; each sheet is atomic on its own.
func (imp *Importer) Run(src SheetReader, m Mapping) (*Report, error) {
	report := &Report{}

	itemsRep, err := imp.ImportItems(src, m.CatalogSheet, m.CatalogStore)
	if err != nil {
		return nil, err
	}
	report.Sheets = append(report.Sheets, *itemsRep)

	for _, sheet := range m.StoreSheets {
		rep, err := imp.ImportTransactions(src, sheet, sheet)
		if err != nil {
			return nil, err
		}
		report.Sheets = append(report.Sheets, *rep)
	}

	imp.Log.WithFields(logrus.Fields{
		"items_created": report.TotalItemsCreated(),
		"items_updated": report.TotalItemsUpdated(),
		"transactions":  report.TotalTransactionsImported(),
		"skipped":       report.TotalSkipped(),
	}).Info("import finished")

	return report, nil
}

// resolveHeader scans a bounded window of leading rows for the marker cell
// ("Material No" in the second column) and maps every required column label
// to its index. It never guesses: a missing header row or column is a
// structural error, not a fallback to positional columns.
func (imp *Importer) resolveHeader(sheet string, rows [][]string) (map[string]int, int, error) {
	window := imp.HeaderScanRows
	if window <= 0 {
		window = DefaultHeaderScanRows
	}

	for i := 0; i < len(rows) && i < window; i++ {
		row := rows[i]
		if cell(row, 1) != colMaterialNo {
			continue
		}

		cols := make(map[string]int, len(requiredColumns))
		for _, label := range requiredColumns {
			idx := -1
			for j, c := range row {
				if strings.TrimSpace(c) == label {
					idx = j
					break
				}
			}
			if idx < 0 {
				return nil, 0, &MissingColumnError{Sheet: sheet, Column: label}
			}
			cols[label] = idx
		}
		return cols, i + 1, nil
	}
	return nil, 0, &HeaderNotFoundError{Sheet: sheet, Window: window}
}

// cell returns the trimmed cell value, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseIntCell parses a numeric cell defensively. Empty cells coerce to zero;
// garbage is an error the caller treats as a recoverable row problem.
// Spreadsheets frequently render integers as floats ("12.0"), so float forms
// are accepted and truncated.
func parseIntCell(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), nil
	}
	return 0, fmt.Errorf("not a number: %q", s)
}

func getOrCreateStore(tx *gorm.DB, name string) (*models.Store, error) {
	var store models.Store
	err := tx.Where("name = ?", name).First(&store).Error
	if err == nil {
		return &store, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load store %q: %w", name, err)
	}
	store = models.Store{Name: name}
	if err := tx.Create(&store).Error; err != nil {
		return nil, fmt.Errorf("create store %q: %w", name, err)
	}
	return &store, nil
}

// ImportItems upserts the item catalog from the stock control sheet. The
// import is authoritative for master data: re-running it on a corrected
// spreadsheet overwrites description, unit, opening balances, reorder
// settings and store assignment for every material number it sees. The sheet
// runs in one transaction so a structural failure leaves nothing behind.
func (imp *Importer) ImportItems(src SheetReader, sheet, storeName string) (*SheetReport, error) {
	rows, err := src.Rows(sheet)
	if err != nil {
		return nil, err
	}

	report := &SheetReport{Sheet: sheet, Store: storeName}

	err = imp.DB.Transaction(func(tx *gorm.DB) error {
		cols, dataStart, err := imp.resolveHeader(sheet, rows)
		if err != nil {
			return err
		}

		store, err := getOrCreateStore(tx, storeName)
		if err != nil {
			return err
		}

		for i := dataStart; i < len(rows); i++ {
			row := rows[i]
			rowNo := i + 1

			materialNo := cell(row, cols[colMaterialNo])
			if materialNo == "" {
				continue // blank separator row
			}

			openBin, err := parseIntCell(cell(row, cols[colOpeningBin]))
			if err != nil {
				imp.skipRow(report, sheet, rowNo, fmt.Sprintf("opening bin balance: %v", err))
				continue
			}
			openPhys, err := parseIntCell(cell(row, cols[colOpeningPhys]))
			if err != nil {
				imp.skipRow(report, sheet, rowNo, fmt.Sprintf("opening physical count: %v", err))
				continue
			}
			reorderQty, err := parseIntCell(cell(row, cols[colReorderQty]))
			if err != nil {
				imp.skipRow(report, sheet, rowNo, fmt.Sprintf("reorder quantity: %v", err))
				continue
			}
			reorderLevel, err := parseIntCell(cell(row, cols[colReorderLevel]))
			if err != nil {
				imp.skipRow(report, sheet, rowNo, fmt.Sprintf("reorder level: %v", err))
				continue
			}

			var item models.Item
			err = tx.Where("material_no = ?", materialNo).First(&item).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				item = models.Item{
					MaterialNo:        materialNo,
					Description:       cell(row, cols[colDescription]),
					Unit:              cell(row, cols[colUnit]),
					StoreID:           store.ID,
					OpeningBinBalance: openBin,
					OpeningPhysical:   openPhys,
					ReorderQuantity:   reorderQty,
					ReorderLevel:      reorderLevel,
				}
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("create item %s: %w", materialNo, err)
				}
				report.ItemsCreated++
			case err != nil:
				return fmt.Errorf("lookup item %s: %w", materialNo, err)
			default:
				item.Description = cell(row, cols[colDescription])
				item.Unit = cell(row, cols[colUnit])
				item.StoreID = store.ID
				item.OpeningBinBalance = openBin
				item.OpeningPhysical = openPhys
				item.ReorderQuantity = reorderQty
				item.ReorderLevel = reorderLevel
				if err := tx.Save(&item).Error; err != nil {
					return fmt.Errorf("update item %s: %w", materialNo, err)
				}
				report.ItemsUpdated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ImportTransactions replays one store sheet's movement history onto the
// ledger. Rows missing a date or material number are skipped; unknown
// material numbers are recorded as unresolved references and never create a
// placeholder item. The whole sheet is one transaction.
func (imp *Importer) ImportTransactions(src SheetReader, sheet, storeName string) (*SheetReport, error) {
	rows, err := src.Rows(sheet)
	if err != nil {
		return nil, err
	}

	report := &SheetReport{Sheet: sheet, Store: storeName}

	err = imp.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreateStore(tx, storeName); err != nil {
			return err
		}

		for i := txnDataStartRow; i < len(rows); i++ {
			row := rows[i]
			rowNo := i + 1

			dateStr := cell(row, txnColDate)
			materialNo := cell(row, txnColMaterial)
			if dateStr == "" || materialNo == "" {
				continue
			}

			date, ok := parseTxnDate(dateStr)
			if !ok {
				imp.skipRow(report, sheet, rowNo, fmt.Sprintf("unparseable date %q", dateStr))
				continue
			}

			magnitude, err := parseIntCell(cell(row, txnColQty))
			if err != nil {
				imp.skipRow(report, sheet, rowNo, fmt.Sprintf("quantity: %v", err))
				continue
			}

			txnType := resolveType(cell(row, txnColType))

			var item models.Item
			if err := tx.Where("material_no = ?", materialNo).First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					imp.skipRow(report, sheet, rowNo, fmt.Sprintf("unknown material no %q", materialNo))
					continue
				}
				return fmt.Errorf("lookup item %s: %w", materialNo, err)
			}

			qty := ledger.SignedQuantity(txnType, magnitude)
			if _, err := imp.Ledger.AppendSigned(tx, item.ID, txnType, qty, date, cell(row, txnColDocNo), cell(row, txnColDept)); err != nil {
				return err
			}
			report.TransactionsImported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (imp *Importer) skipRow(report *SheetReport, sheet string, rowNo int, reason string) {
	report.skip(rowNo, reason)
	imp.Log.WithFields(logrus.Fields{
		"sheet": sheet,
		"row":   rowNo,
	}).Warn("skipping row: " + reason)
}

// resolveType maps the free-text type cell to a movement type. Anything that
// is not recognisably a receipt counts as an issue, so stray values can only
// ever reduce the balance.
func resolveType(s string) models.TransactionType {
	if strings.EqualFold(s, string(models.TypeReceipt)) {
		return models.TypeReceipt
	}
	return models.TypeIssue
}

func parseTxnDate(s string) (time.Time, bool) {
	for _, layout := range txnDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
