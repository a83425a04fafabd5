package util

import (
	"fmt"
	"regexp"
	"time"
)

var materialNoRe = regexp.MustCompile(`^[A-Za-z0-9/-]{1,20}$`)

// ValidateMaterialNo checks a material number: 1-20 characters, letters,
// digits, slash or dash.
func ValidateMaterialNo(materialNo string) error {
	if materialNo == "" {
		return fmt.Errorf("material no is empty")
	}
	if !materialNoRe.MatchString(materialNo) {
		return fmt.Errorf("invalid material no: %q", materialNo)
	}
	return nil
}

// ValidateDate checks a calendar date string (YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateMagnitude checks a transaction magnitude (unsigned, bounded).
func ValidateMagnitude(magnitude int) error {
	if magnitude < 0 {
		return fmt.Errorf("magnitude must not be negative, got %d", magnitude)
	}
	if magnitude >= 1000000 {
		return fmt.Errorf("magnitude too large, got %d", magnitude)
	}
	return nil
}

// ValidateStoreName checks a store display name.
func ValidateStoreName(name string) error {
	if name == "" {
		return fmt.Errorf("store name is empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("store name too long, max 100 characters")
	}
	return nil
}
