package models

import "time"

// TransactionType enumerates the two stock movement directions.
type TransactionType string

const (
	TypeReceipt TransactionType = "Receipt"
	TypeIssue   TransactionType = "Issue"
)

// ReorderStatus summarises an item's stock position for reports.
type ReorderStatus string

const (
	StatusOutOfStock ReorderStatus = "OUT_OF_STOCK"
	StatusReorder    ReorderStatus = "REORDER"
	StatusAvailable  ReorderStatus = "AVAILABLE"
)

// StockTransaction is one immutable stock movement. Qty is stored signed:
// positive for receipts, negative for issues. Rows are append-only — they are
// never updated or deleted, and balances are always recomputed from the full
// log rather than stored alongside the item.
type StockTransaction struct {
	ID         uint            `gorm:"primaryKey"`
	ItemID     uint            `gorm:"index;not null"`
	Date       time.Time       `gorm:"index;not null"`
	DocNo      string          `gorm:"size:50"`
	Type       TransactionType `gorm:"size:20;not null"`
	Qty        int             `gorm:"not null"`
	Department string          `gorm:"size:100"`
	CreatedAt  time.Time

	Item Item `gorm:"constraint:OnDelete:CASCADE"`
}
