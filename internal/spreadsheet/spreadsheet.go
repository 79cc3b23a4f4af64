// Package spreadsheet reads .xlsx uploads for bulk registration.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Required column headers, matched case-insensitively after trimming
const (
	ColumnProductNumber = "product number"
	ColumnRFID          = "rfid"
)

// ErrMissingColumns means the workbook lacks a required header; the whole
// import is aborted before any row is processed.
var ErrMissingColumns = errors.New(`spreadsheet must contain "product number" and "RFID" columns`)

// Row is one data line of the workbook. Line is the 1-based spreadsheet
// line number, so the first data row is line 2.
type Row struct {
	Line          int
	ProductNumber string
	RFID          string
}

// Parse reads the first sheet of an .xlsx workbook. It returns every
// non-empty data row, including rows with a missing cell so the caller can
// report them by line number.
func Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingColumns
	}

	pnumCol, rfidCol := -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case ColumnProductNumber:
			pnumCol = i
		case ColumnRFID:
			rfidCol = i
		}
	}
	if pnumCol < 0 || rfidCol < 0 {
		return nil, ErrMissingColumns
	}

	out := make([]Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		row := Row{Line: i + 2}
		if pnumCol < len(cells) {
			row.ProductNumber = strings.TrimSpace(cells[pnumCol])
		}
		if rfidCol < len(cells) {
			row.RFID = strings.TrimSpace(cells[rfidCol])
		}
		if row.ProductNumber == "" && row.RFID == "" {
			continue // fully blank line
		}
		out = append(out, row)
	}

	return out, nil
}
