// One-shot administrative import: loads the master stock control workbook,
// upserts the item catalog and replays each store's transaction history,
// then prints the reconciliation report.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/config"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/database"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/importer"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/ledger"

	"gorm.io/gorm"
)

var errDryRun = errors.New("dry run, rolling back")

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	workbook := flag.String("workbook", "", "xlsx workbook path (overrides config)")
	dryRun := flag.Bool("dry-run", false, "run the import but roll everything back")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyLogLevel(cfg)
	log := config.GetLogger()

	path := cfg.Import.Workbook
	if *workbook != "" {
		path = *workbook
	}
	if path == "" {
		log.Fatal("no workbook configured; set import.workbook or pass -workbook")
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	src, err := importer.OpenXLSX(path)
	if err != nil {
		log.Fatalf("open workbook: %v", err)
	}
	defer src.Close()

	mapping := importer.Mapping{
		CatalogSheet: cfg.Import.CatalogSheet,
		CatalogStore: cfg.Import.CatalogStore,
		StoreSheets:  cfg.Import.StoreSheets,
	}

	log.Infof("importing %s (catalog sheet %q, %d store sheets, dry-run %v)",
		path, mapping.CatalogSheet, len(mapping.StoreSheets), *dryRun)

	var report *importer.Report
	run := func(tx *gorm.DB) error {
		imp := importer.New(tx, log)
		imp.Ledger = ledger.New(tx)
		if cfg.Import.HeaderScanRows > 0 {
			imp.HeaderScanRows = cfg.Import.HeaderScanRows
		}
		var runErr error
		report, runErr = imp.Run(src, mapping)
		if runErr != nil {
			return runErr
		}
		if *dryRun {
			return errDryRun
		}
		return nil
	}

	err = db.Transaction(run)
	if err != nil && !errors.Is(err, errDryRun) {
		log.Fatalf("import failed: %v", err)
	}

	printReport(report, *dryRun)
}

func printReport(report *importer.Report, dryRun bool) {
	for _, s := range report.Sheets {
		fmt.Printf("sheet %q (store %s): %d items created, %d items updated, %d transactions imported, %d rows skipped\n",
			s.Sheet, s.Store, s.ItemsCreated, s.ItemsUpdated, s.TransactionsImported, len(s.Skipped))
		for _, sk := range s.Skipped {
			fmt.Printf("  row %d skipped: %s\n", sk.Row, sk.Reason)
		}
	}
	fmt.Printf("total: %d created, %d updated, %d transactions, %d skipped\n",
		report.TotalItemsCreated(), report.TotalItemsUpdated(),
		report.TotalTransactionsImported(), report.TotalSkipped())
	if dryRun {
		fmt.Println("dry run: all changes rolled back")
	}
}
