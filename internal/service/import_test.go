package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jaegodata/unsold-server/internal/models"
	"github.com/jaegodata/unsold-server/internal/spreadsheet"
)

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, cells := range rows {
		for j, value := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportSpreadsheet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// TAG001 is taken before the import runs
	f.register(t, "ABC123", "TAG001")

	buf := buildWorkbook(t, [][]string{
		{"product number", "RFID"},
		{"abc123", "TAG001"}, // duplicate
		{"CD456", "X"},       // untagged
		{"EF789", ""},        // half-filled row
		{"EF789", "TAG003"},
	})

	resp, err := f.svc.ImportSpreadsheet(ctx, "tester", f.sess, buf)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Registered)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Report, 4)
	assert.Equal(t, "duplicate, not registered: ABC123 (RFID: TAG001)", resp.Report[0])
	assert.Equal(t, "registered: CD456 (RFID: X)", resp.Report[1])
	assert.Equal(t, "missing data (row 4)", resp.Report[2])
	assert.Equal(t, "registered: EF789 (RFID: TAG003)", resp.Report[3])

	// The half-filled row wrote nothing
	products := f.search(t, "EF789", "")
	require.Len(t, products, 1)
	assert.Equal(t, "EF789_TAG003", products[0].Key)
}

func TestImportSpreadsheetIsOneShotPerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := buildWorkbook(t, [][]string{
		{"product number", "RFID"},
		{"ABC123", "TAG001"},
	})
	_, err := f.svc.ImportSpreadsheet(ctx, "tester", f.sess, first)
	require.NoError(t, err)

	second := buildWorkbook(t, [][]string{
		{"product number", "RFID"},
		{"CD456", "TAG002"},
	})
	_, err = f.svc.ImportSpreadsheet(ctx, "tester", f.sess, second)
	assert.ErrorIs(t, err, ErrImportDone)
}

func TestImportSpreadsheetMissingColumnsAbortsBeforeAnyRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	buf := buildWorkbook(t, [][]string{
		{"item", "tag"},
		{"ABC123", "TAG001"},
	})

	_, err := f.svc.ImportSpreadsheet(ctx, "tester", f.sess, buf)
	assert.ErrorIs(t, err, spreadsheet.ErrMissingColumns)
	assert.Equal(t, 0, f.pricer.calls)
	assert.Empty(t, f.search(t, "ABC123", ""))

	// A failed parse does not burn the session's one import
	retry := buildWorkbook(t, [][]string{
		{"product number", "RFID"},
		{"ABC123", "TAG001"},
	})
	resp, err := f.svc.ImportSpreadsheet(ctx, "tester", f.sess, retry)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Registered)
}

func TestImportResultsCarryRowStatuses(t *testing.T) {
	f := newFixture(t)
	f.pricer.fail["CD456"] = true

	buf := buildWorkbook(t, [][]string{
		{"product number", "RFID"},
		{"ABC123", "TAG001"},
		{"CD456", "TAG002"},
	})

	resp, err := f.svc.ImportSpreadsheet(context.Background(), "tester", f.sess, buf)
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, models.RowRegistered, resp.Results[0].Status)
	assert.Equal(t, models.RowPriceFailed, resp.Results[1].Status)
	assert.Equal(t, "price lookup failed: CD456", resp.Report[1])
}
