package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaegodata/unsold-server/internal/api/testutils"
	"github.com/jaegodata/unsold-server/internal/models"
)

func TestAdminScreensAreRestricted(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	staffToken := testCtx.Login(t, testutils.StaffUser, testutils.StaffPassword)
	adminToken := testCtx.Login(t, testutils.AdminUser, testutils.AdminPassword)

	// Staff is refused
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/logs",
		nil,
		testutils.AuthHeaders(staffToken),
	)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/reports/reconciliation",
		models.ReconciliationRequest{EDIAmount: 1, POSAmount: 1, DiscountRate: 10},
		testutils.AuthHeaders(staffToken),
	)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin gets through
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/logs",
		nil,
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReconciliation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	staffToken := testCtx.Login(t, testutils.StaffUser, testutils.StaffPassword)
	adminToken := testCtx.Login(t, testutils.AdminUser, testutils.AdminPassword)

	// Register items totalling 1,000,000
	testCtx.Pricer.Prices["GG100"] = 400000
	testCtx.Pricer.Prices["GG200"] = 600000
	for _, item := range []models.RegisterProductRequest{
		{ProductNumber: "GG100", RFID: "TAG100"},
		{ProductNumber: "GG200", RFID: "TAG200"},
	} {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			"/api/products",
			item,
			testutils.AuthHeaders(staffToken),
		)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/reports/reconciliation",
		models.ReconciliationRequest{EDIAmount: 950000, POSAmount: 40000, DiscountRate: 10},
		testutils.AuthHeaders(adminToken),
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ReconciliationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1000000), resp.TotalPrice)
	assert.InDelta(t, 900000, resp.DiscountedTotal, 0.001)
	assert.InDelta(t, 10000, resp.Difference, 0.001)

	// Only 10, 15 and 19 percent are selectable
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/reports/reconciliation",
		models.ReconciliationRequest{EDIAmount: 1, POSAmount: 1, DiscountRate: 25},
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityLogViewer(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	staffToken := testCtx.Login(t, testutils.StaffUser, testutils.StaffPassword)
	adminToken := testCtx.Login(t, testutils.AdminUser, testutils.AdminPassword)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/products",
		models.RegisterProductRequest{ProductNumber: "ABC123", RFID: "TAG001"},
		testutils.AuthHeaders(staffToken),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/logs",
		nil,
		testutils.AuthHeaders(adminToken),
	)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LogsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, testutils.StaffUser, resp.Entries[0].Actor)
	assert.Equal(t, models.ActionRegister, resp.Entries[0].Action)
	assert.Equal(t, "ABC123", resp.Entries[0].ProductNumber)
}
