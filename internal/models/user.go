package models

import "time"

// User is a storekeeper or administrator account.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	LastLoginAt *time.Time
	LastLoginIP string `gorm:"size:64"`
}
