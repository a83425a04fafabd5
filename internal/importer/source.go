package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetReader is the tabular source the importer consumes. The production
// implementation is backed by excelize; tests feed sheets in memory.
type SheetReader interface {
	Rows(sheet string) ([][]string, error)
}

// XLSXSource reads sheets from an xlsx workbook.
type XLSXSource struct {
	f *excelize.File
}

// OpenXLSX opens a workbook from disk.
func OpenXLSX(path string) (*XLSXSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &XLSXSource{f: f}, nil
}

// NewXLSXSource wraps an already-open workbook, e.g. an uploaded file.
func NewXLSXSource(r io.Reader) (*XLSXSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return &XLSXSource{f: f}, nil
}

func (s *XLSXSource) Rows(sheet string) ([][]string, error) {
	rows, err := s.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (s *XLSXSource) Close() error {
	return s.f.Close()
}
