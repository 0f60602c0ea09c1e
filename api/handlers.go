/*
handlers.go - HTTP handler implementations

PURPOSE:
  Translates HTTP requests into engine and calculator calls and domain
  errors into HTTP status codes. Handlers hold no business logic: state
  machine rules, statutory math, and ledger invariants all live below.

ERROR MAPPING:
  payrun.ErrRunNotFound / ErrRecordNotFound      -> 404
  payrun.ErrInvalidStateTransition               -> 409
  payrun.ErrConcurrentModification               -> 409 (retryable)
  payrun.ErrUnsyncedEdits                        -> 409
  ytd.ErrAlreadyCommitted                        -> 409
  taxrules.ErrRuleNotFound                       -> 422
  statutory validation errors                    -> 400
  anything else                                  -> 500

SEE ALSO:
  - server.go: Route wiring
  - payrun/engine.go: The operations behind these handlers
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maplepay/payroll-engine/employees"
	"github.com/maplepay/payroll-engine/payrun"
	"github.com/maplepay/payroll-engine/statutory"
	"github.com/maplepay/payroll-engine/taxrules"
	"github.com/maplepay/payroll-engine/ytd"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	engine *payrun.Engine
	rules  *taxrules.Store
	ledger ytd.Ledger
	source employees.Source
}

func NewHandler(engine *payrun.Engine, rules *taxrules.Store, ledger ytd.Ledger, source employees.Source) *Handler {
	return &Handler{engine: engine, rules: rules, ledger: ledger, source: source}
}

// =============================================================================
// CALCULATION PREVIEW
// =============================================================================

// Calculate runs the statutory calculators for a pay date without
// creating or modifying any run. POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payDate, err := parseDate(req.PayDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid pay_date, expected YYYY-MM-DD")
		return
	}

	ctx := r.Context()
	ids := req.EmployeeIDs
	if len(ids) == 0 {
		snaps, err := h.source.Eligible(ctx, payDate)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		for _, snap := range snaps {
			ids = append(ids, snap.EmployeeID)
		}
	}

	inputs := make([]statutory.BatchInput, 0, len(ids))
	for _, id := range ids {
		snap, err := h.source.Snapshot(ctx, id, payDate)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		state, err := h.ledger.Get(ctx, id, payDate.Year())
		if err != nil {
			respondDomainError(w, err)
			return
		}
		inputs = append(inputs, statutory.BatchInput{Snapshot: snap, Ytd: state})
	}

	results, summary, err := statutory.CalculateBatch(ctx, h.rules, payDate, inputs)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := CalculateResponse{
		PayDate: payDate.Format("2006-01-02"),
		Totals: TotalsDTO{
			Employees:    summary.Employees,
			Gross:        summary.Gross,
			Deductions:   summary.Deductions,
			Net:          summary.Net,
			EmployerCost: summary.EmployerCost,
		},
	}
	for _, res := range results {
		resp.Results = append(resp.Results, toResultDTO(res))
	}
	respondJSON(w, http.StatusOK, resp)
}

// =============================================================================
// RUN LIFECYCLE
// =============================================================================

// CreateRun is the idempotent create-or-get for a pay date.
// POST /api/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payDate, err := parseDate(req.PayDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid pay_date, expected YYYY-MM-DD")
		return
	}
	run, err := h.engine.CreateOrGet(r.Context(), payDate)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRunDTO(run))
}

// ListRuns returns run summaries ordered by pay date descending.
// GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.engine.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	out := make([]RunSummaryDTO, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunSummaryDTO(run))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetRun returns a run with its records. GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.engine.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRunDTO(run))
}

// Recalculate refreshes every record from current profile data while
// preserving manual inputs. POST /api/runs/{id}/recalculate
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	run, err := h.engine.Recalculate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRunDTO(run))
}

// UpdateRecord applies manual edits to one record and recomputes it.
// PUT /api/runs/{id}/records/{recordID}
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patch := payrun.RecordInput{
		RegularHours:       req.RegularHours,
		HolidayHoursWorked: req.HolidayHoursWorked,
		OtherEarnings:      req.OtherEarnings,
		PreTaxDeductions:   req.PreTaxDeductions,
		PayVacationLumpSum: req.PayVacationLumpSum,
	}
	run, err := h.engine.UpdateRecord(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "recordID"), patch)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRunDTO(run))
}

// Submit moves a draft run to pending approval. POST /api/runs/{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.Submit)
}

// Approve commits the run's YTD deltas and moves it to approved.
// POST /api/runs/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.Approve)
}

// Cancel abandons a run. POST /api/runs/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.Cancel)
}

// MarkPaid marks an approved run as disbursed. POST /api/runs/{id}/pay
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.MarkPaid)
}

// Revert moves a pending run back to draft. Blocked while manual edits
// exist, unless discard_edits is set. POST /api/runs/{id}/revert
func (h *Handler) Revert(w http.ResponseWriter, r *http.Request) {
	var req RevertRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	run, err := h.engine.RevertToDraft(r.Context(), chi.URLParam(r, "id"), req.DiscardEdits)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRunDTO(run))
}

// DeleteRun removes a draft run. DELETE /api/runs/{id}
func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, runID string) (*payrun.PayrollRun, error)) {
	run, err := op(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRunDTO(run))
}

// =============================================================================
// EMPLOYEES AND RULES
// =============================================================================

// ListEmployees returns employees eligible for a pay date (default today).
// GET /api/employees?pay_date=YYYY-MM-DD
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	payDate := time.Now().UTC()
	if v := r.URL.Query().Get("pay_date"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid pay_date, expected YYYY-MM-DD")
			return
		}
		payDate = d
	}
	snaps, err := h.source.Eligible(r.Context(), payDate)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	type employeeDTO struct {
		EmployeeID   string `json:"employee_id"`
		Name         string `json:"name"`
		Jurisdiction string `json:"jurisdiction"`
		Frequency    string `json:"frequency"`
		HireDate     string `json:"hire_date"`
	}
	out := make([]employeeDTO, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, employeeDTO{
			EmployeeID:   snap.EmployeeID,
			Name:         snap.Name,
			Jurisdiction: string(snap.Jurisdiction),
			Frequency:    string(snap.Frequency),
			HireDate:     snap.HireDate.Format("2006-01-02"),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// GetRules returns the rule set resolved for a jurisdiction and pay date.
// GET /api/rules/{jurisdiction}?pay_date=YYYY-MM-DD
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	j := taxrules.Jurisdiction(chi.URLParam(r, "jurisdiction"))
	payDate := time.Now().UTC()
	if v := r.URL.Query().Get("pay_date"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid pay_date, expected YYYY-MM-DD")
			return
		}
		payDate = d
	}
	rules, err := h.rules.Rules(j, payDate)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, RulesDTO{
		Jurisdiction:   string(j),
		Year:           rules.Year,
		Edition:        string(rules.Edition),
		FederalBPA:     rules.FederalBPA,
		ProvincialBPA:  rules.ProvincialBPA,
		CPPYMPE:        rules.CPP.YMPE,
		CPPYAMPE:       rules.CPP.YAMPE,
		EIMaxInsurable: rules.EI.MaxInsurableEarnings,
		HolidayFormula: string(rules.Holiday.Formula),
	})
}

// GetYtd returns an employee's committed year-to-date position.
// GET /api/employees/{id}/ytd?year=YYYY
func (h *Handler) GetYtd(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &year); err != nil {
			respondError(w, http.StatusBadRequest, "invalid year")
			return
		}
	}
	state, err := h.ledger.Get(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toYtdDTO(state))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}

// respondDomainError maps domain errors onto HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case payrun.IsNotFound(err) || errors.Is(err, employees.ErrEmployeeNotFound):
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, payrun.ErrInvalidStateTransition):
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "invalid_state"})
	case errors.Is(err, payrun.ErrConcurrentModification):
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict_retry"})
	case errors.Is(err, payrun.ErrUnsyncedEdits):
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "unsynced_edits"})
	case errors.Is(err, ytd.ErrAlreadyCommitted):
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "already_committed"})
	case errors.Is(err, taxrules.ErrRuleNotFound):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "no_rules"})
	case errors.Is(err, statutory.ErrInvalidSnapshot), errors.Is(err, statutory.ErrCapExceededInput):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_input"})
	default:
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
