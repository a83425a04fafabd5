package importer

// SkippedRow records one row the importer could not use and why. Row is the
// 1-based row number in the source sheet.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// SheetReport aggregates the outcome of one sheet.
type SheetReport struct {
	Sheet                string       `json:"sheet"`
	Store                string       `json:"store"`
	ItemsCreated         int          `json:"items_created"`
	ItemsUpdated         int          `json:"items_updated"`
	TransactionsImported int          `json:"transactions_imported"`
	Skipped              []SkippedRow `json:"skipped"`
}

func (r *SheetReport) skip(row int, reason string) {
	r.Skipped = append(r.Skipped, SkippedRow{Row: row, Reason: reason})
}

// Report is the reconciliation report for a whole import run.
type Report struct {
	Sheets []SheetReport `json:"sheets"`
}

func (r *Report) TotalItemsCreated() int {
	n := 0
	for _, s := range r.Sheets {
		n += s.ItemsCreated
	}
	return n
}

func (r *Report) TotalItemsUpdated() int {
	n := 0
	for _, s := range r.Sheets {
		n += s.ItemsUpdated
	}
	return n
}

func (r *Report) TotalTransactionsImported() int {
	n := 0
	for _, s := range r.Sheets {
		n += s.TransactionsImported
	}
	return n
}

func (r *Report) TotalSkipped() int {
	n := 0
	for _, s := range r.Sheets {
		n += len(s.Skipped)
	}
	return n
}
