package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplepay/payroll-engine/api"
	"github.com/maplepay/payroll-engine/employees"
	"github.com/maplepay/payroll-engine/payrun"
	"github.com/maplepay/payroll-engine/store"
	"github.com/maplepay/payroll-engine/taxrules"
	"github.com/maplepay/payroll-engine/ytd"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rules, err := taxrules.DefaultStore()
	require.NoError(t, err)

	ledger := ytd.NewMemory()
	source := employees.SeedDirectory()
	engine := payrun.NewEngine(store.NewMemory(), rules, ledger, source)
	handler := api.NewHandler(engine, rules, ledger, source)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(api.NewRouter(handler, logger))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func createRun(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/runs",
		map[string]string{"pay_date": "2025-06-13"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// =============================================================================
// CALCULATION PREVIEW
// =============================================================================

func TestCalculateEndpoint_AllEligible(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/calculate",
		map[string]string{"pay_date": "2025-06-13"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	results, ok := body["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 4)
	totals := body["totals"].(map[string]any)
	assert.EqualValues(t, 4, totals["employees"])
}

func TestCalculateEndpoint_BadDate(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/calculate",
		map[string]string{"pay_date": "June 13"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCalculateEndpoint_UnknownEmployee(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/calculate",
		map[string]any{"pay_date": "2025-06-13", "employee_ids": []string{"ghost"}})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["code"])
}

// =============================================================================
// RUN LIFECYCLE OVER HTTP
// =============================================================================

func TestRunLifecycle_HappyPath(t *testing.T) {
	srv := newTestServer(t)
	id := createRun(t, srv)

	// Submit
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending_approval", body["status"])

	// Approve
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/approve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", body["status"])

	// Pay
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/pay", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "paid", body["status"])
}

func TestRunCreate_IdempotentByPayDate(t *testing.T) {
	srv := newTestServer(t)

	first := createRun(t, srv)
	second := createRun(t, srv)

	assert.Equal(t, first, second)
}

func TestRunTransition_IllegalReturns409(t *testing.T) {
	srv := newTestServer(t)
	id := createRun(t, srv)

	// Approving a draft skips pending_approval
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/approve", nil)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_state", body["code"])
}

func TestUpdateRecordEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createRun(t, srv)

	// Find a record id
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/runs/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := body["records"].([]any)
	recID := records[0].(map[string]any)["id"].(string)

	resp, body = doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/api/runs/%s/records/%s", srv.URL, id, recID),
		map[string]any{"other_earnings": "250.00"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := body["records"].([]any)[0].(map[string]any)
	assert.Equal(t, true, updated["is_modified"])
}

func TestRevertEndpoint_BlockedWithEdits(t *testing.T) {
	srv := newTestServer(t)
	id := createRun(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/runs/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recID := body["records"].([]any)[0].(map[string]any)["id"].(string)

	_, _ = doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/api/runs/%s/records/%s", srv.URL, id, recID),
		map[string]any{"other_earnings": "250.00"})
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Revert without discarding is blocked
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/revert",
		map[string]bool{"discard_edits": false})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "unsynced_edits", body["code"])

	// Discarding succeeds
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/revert",
		map[string]bool{"discard_edits": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "draft", body["status"])
}

func TestDeleteRunEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createRun(t, srv)

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/runs/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/runs/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// RULES AND YTD LOOKUPS
// =============================================================================

func TestRulesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet,
		srv.URL+"/api/rules/ON?pay_date=2025-08-01", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ON", body["jurisdiction"])
	assert.Equal(t, "jul", body["edition"])
	assert.Equal(t, "trailing_average", body["holiday_formula"])
}

func TestRulesEndpoint_UnknownJurisdiction(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/rules/TX", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "no_rules", body["code"])
}

func TestYtdEndpoint_AdvancesAfterApproval(t *testing.T) {
	srv := newTestServer(t)
	id := createRun(t, srv)

	resp, body := doJSON(t, http.MethodGet,
		srv.URL+"/api/employees/emp-on-001/ytd?year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", body["gross"])

	_, _ = doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/submit", nil)
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/runs/"+id+"/approve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet,
		srv.URL+"/api/employees/emp-on-001/ytd?year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, "0", body["gross"])
}
