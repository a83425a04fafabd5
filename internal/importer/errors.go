package importer

import "fmt"

// HeaderNotFoundError means no header row was found within the scan window.
// Structural: the sheet's whole contribution is rolled back.
type HeaderNotFoundError struct {
	Sheet  string
	Window int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q: header row not found in first %d rows", e.Sheet, e.Window)
}

// MissingColumnError means the header row was found but lacks a required
// column label. Structural, fatal for the sheet.
type MissingColumnError struct {
	Sheet  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("sheet %q: required column %q not found in header row", e.Sheet, e.Column)
}
