package models

import "time"

// Item is one stock keeping unit. MaterialNo is the natural key the
// spreadsheet import upserts by; it is unique and never changes once
// assigned. The opening balances and reorder settings are master data:
// re-importing a corrected sheet is the supported way to fix them.
type Item struct {
	ID                uint   `gorm:"primaryKey"`
	MaterialNo        string `gorm:"size:20;uniqueIndex;not null"`
	Description       string `gorm:"size:200"`
	Unit              string `gorm:"size:20"` // PCS, ROLL, NO, ...
	StoreID           uint   `gorm:"index;not null"`
	OpeningBinBalance int    `gorm:"not null;default:0"`
	OpeningPhysical   int    `gorm:"not null;default:0"`
	ReorderQuantity   int    `gorm:"not null;default:0"`
	ReorderLevel      int    `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Store Store `gorm:"constraint:OnDelete:RESTRICT"`
}
