package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jaegodata/unsold-server/internal/api/testutils"
	"github.com/jaegodata/unsold-server/internal/models"
)

func workbookBytes(t *testing.T, rows [][]string) []byte {
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
	return buf.Bytes()
}

func TestImportSpreadsheet(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	token := testCtx.Login(t, testutils.StaffUser, testutils.StaffPassword)

	content := workbookBytes(t, [][]string{
		{"product number", "RFID"},
		{"ABC123", "TAG001"},
		{"CD456", "X"},
	})

	w := testutils.PerformUpload(
		testCtx.Router,
		"/api/imports/spreadsheet",
		"file", "items.xlsx", content,
		testutils.AuthHeaders(token),
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Registered)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, resp.Report, 2)
	assert.Equal(t, "registered: ABC123 (RFID: TAG001)", resp.Report[0])

	// A second upload in the same session is refused
	w = testutils.PerformUpload(
		testCtx.Router,
		"/api/imports/spreadsheet",
		"file", "items.xlsx", content,
		testutils.AuthHeaders(token),
	)
	assert.Equal(t, http.StatusConflict, w.Code)

	// A fresh login gets a fresh session and may import again
	freshToken := testCtx.Login(t, testutils.StaffUser, testutils.StaffPassword)
	w = testutils.PerformUpload(
		testCtx.Router,
		"/api/imports/spreadsheet",
		"file", "items.xlsx", content,
		testutils.AuthHeaders(freshToken),
	)
	require.Equal(t, http.StatusOK, w.Code)

	// Everything in it is a duplicate now, except the untagged row which
	// registers a second distinct record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Registered)
	assert.Equal(t, 1, resp.Failed)
}

func TestImportSpreadsheetMissingColumns(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	token := testCtx.Login(t, testutils.StaffUser, testutils.StaffPassword)

	content := workbookBytes(t, [][]string{
		{"item", "tag"},
		{"ABC123", "TAG001"},
	})

	w := testutils.PerformUpload(
		testCtx.Router,
		"/api/imports/spreadsheet",
		"file", "items.xlsx", content,
		testutils.AuthHeaders(token),
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "product number")
}

func TestImportSpreadsheetRequiresFile(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	token := testCtx.Login(t, testutils.StaffUser, testutils.StaffPassword)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/imports/spreadsheet",
		nil,
		testutils.AuthHeaders(token),
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
