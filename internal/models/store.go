package models

import "time"

// Store is a physical stock location, e.g. "SF STORE" or "COMPUTER STORE".
type Store struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
