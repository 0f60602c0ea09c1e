/*
engine.go - Payroll run lifecycle operations

PURPOSE:
  The Engine owns every mutating operation on payroll runs and enforces
  the invariants around them:

  - create-or-get is idempotent per pay date
  - recalculation replaces computed fields, preserves manual inputs
  - totals are re-summed from records after every mutation
  - approval commits the YTD ledger exactly once, atomically, and reports
    paystub generation as a non-blocking side effect
  - mutating operations on one run are serialized by a run-scoped lock,
    with the store's optimistic version check as the backstop against
    writers outside this process

SEQUENCING ON APPROVE:
  When the store supports it (SQLite), the status transition and the
  ledger commit happen inside one storage transaction. Otherwise the
  ledger commit runs first - it is atomic and commit-once on its own -
  and the status save follows under the run lock.

SEE ALSO:
  - types.go: State machine and error taxonomy
  - ytd/ledger.go: Commit-once ledger contract
*/
package payrun

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maplepay/payroll-engine/employees"
	"github.com/maplepay/payroll-engine/statutory"
	"github.com/maplepay/payroll-engine/taxrules"
	"github.com/maplepay/payroll-engine/ytd"
)

// StubGenerator produces paystub artifacts for approved records. Failures
// are reported on the run, never blocking approval.
type StubGenerator interface {
	Generate(ctx context.Context, run *PayrollRun, rec PayrollRecord) error
}

// Engine coordinates stores, the rule store, the YTD ledger, and the
// employee boundary into the run lifecycle.
type Engine struct {
	store  Store
	rules  *taxrules.Store
	ledger ytd.Ledger
	source employees.Source

	stubs      StubGenerator
	logger     *slog.Logger
	periodDays int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithStubGenerator wires the downstream paystub collaborator.
func WithStubGenerator(g StubGenerator) Option { return func(e *Engine) { e.stubs = g } }

// WithLogger sets the structured logger for anomaly and side-effect logs.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithPeriodDays overrides the default 14-day pay period span.
func WithPeriodDays(days int) Option { return func(e *Engine) { e.periodDays = days } }

func NewEngine(store Store, rules *taxrules.Store, ledger ytd.Ledger, source employees.Source, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		rules:      rules,
		ledger:     ledger,
		source:     source,
		logger:     slog.Default(),
		periodDays: 14,
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lock returns the mutex serializing mutations for a key (run id or pay
// date), creating it on first use.
func (e *Engine) lock(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	return l
}

// =============================================================================
// CREATE-OR-GET
// =============================================================================

// CreateOrGet returns the run for the pay date, creating a draft with one
// record per eligible employee when none exists. Idempotent: a second call
// with unchanged inputs returns the same run id and identical totals.
// Creation calculates against current YTD read-only; nothing is committed.
func (e *Engine) CreateOrGet(ctx context.Context, payDate time.Time) (*PayrollRun, error) {
	payDate = normalizeDate(payDate)
	l := e.lock("date:" + payDate.Format("2006-01-02"))
	l.Lock()
	defer l.Unlock()

	if run, err := e.store.GetRunByPayDate(ctx, payDate); err == nil {
		return run, nil
	} else if !IsNotFound(err) {
		return nil, err
	}

	snaps, err := e.source.Eligible(ctx, payDate)
	if err != nil {
		return nil, fmt.Errorf("loading eligible employees: %w", err)
	}

	inputs := make([]statutory.BatchInput, len(snaps))
	for i, snap := range snaps {
		state, err := e.ledger.Get(ctx, snap.EmployeeID, payDate.Year())
		if err != nil {
			return nil, fmt.Errorf("loading ytd for %s: %w", snap.EmployeeID, err)
		}
		inputs[i] = statutory.BatchInput{Snapshot: snap, Ytd: state}
	}

	results, _, err := statutory.CalculateBatch(ctx, e.rules, payDate, inputs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &PayrollRun{
		ID:          uuid.NewString(),
		PayDate:     payDate,
		PeriodStart: payDate.AddDate(0, 0, -(e.periodDays - 1)),
		PeriodEnd:   payDate,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, res := range results {
		e.logAnomalies(run.ID, res)
		run.Records = append(run.Records, PayrollRecord{
			ID:         uuid.NewString(),
			RunID:      run.ID,
			EmployeeID: inputs[i].Snapshot.EmployeeID,
			Result:     res,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	run.Resum()

	if err := e.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// =============================================================================
// RECALCULATION AND EDITS
// =============================================================================

// Recalculate re-runs the orchestrator for every record against fresh
// snapshots and current YTD. Computed fields are fully replaced; manual
// inputs are preserved and re-applied. Legal only while the run is
// mutable.
func (e *Engine) Recalculate(ctx context.Context, runID string) (*PayrollRun, error) {
	l := e.lock(runID)
	l.Lock()
	defer l.Unlock()

	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !run.Status.Mutable() {
		return nil, &InvalidStateTransitionError{RunID: runID, From: run.Status, To: run.Status, Op: "recalculate"}
	}

	for i := range run.Records {
		if err := e.recomputeRecord(ctx, run, &run.Records[i]); err != nil {
			return nil, err
		}
	}
	run.Resum()
	run.UpdatedAt = time.Now().UTC()

	if err := e.store.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// UpdateRecord applies manual hour/leave/adjustment edits to one record,
// marks it modified, recomputes only that record, and re-sums the run.
func (e *Engine) UpdateRecord(ctx context.Context, runID, recordID string, patch RecordInput) (*PayrollRun, error) {
	l := e.lock(runID)
	l.Lock()
	defer l.Unlock()

	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !run.Status.Mutable() {
		return nil, &InvalidStateTransitionError{RunID: runID, From: run.Status, To: run.Status, Op: "update record"}
	}
	rec := run.Record(recordID)
	if rec == nil {
		return nil, fmt.Errorf("run %s record %s: %w", runID, recordID, ErrRecordNotFound)
	}

	mergeInput(&rec.Input, patch)
	rec.IsModified = true
	if err := e.recomputeRecord(ctx, run, rec); err != nil {
		return nil, err
	}
	run.Resum()
	run.UpdatedAt = time.Now().UTC()

	if err := e.store.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func mergeInput(dst *RecordInput, patch RecordInput) {
	if patch.RegularHours != nil {
		dst.RegularHours = patch.RegularHours
	}
	if patch.HolidayHoursWorked != nil {
		dst.HolidayHoursWorked = patch.HolidayHoursWorked
	}
	if patch.OtherEarnings != nil {
		dst.OtherEarnings = patch.OtherEarnings
	}
	if patch.PreTaxDeductions != nil {
		dst.PreTaxDeductions = patch.PreTaxDeductions
	}
	if patch.PayVacationLumpSum != nil {
		dst.PayVacationLumpSum = patch.PayVacationLumpSum
	}
}

// recomputeRecord rebuilds one record's computed fields from a fresh
// snapshot with the record's manual inputs applied, against current YTD.
func (e *Engine) recomputeRecord(ctx context.Context, run *PayrollRun, rec *PayrollRecord) error {
	snap, err := e.source.Snapshot(ctx, rec.EmployeeID, run.PayDate)
	if err != nil {
		return fmt.Errorf("loading snapshot for %s: %w", rec.EmployeeID, err)
	}
	snap = rec.Input.Apply(snap)

	state, err := e.ledger.Get(ctx, rec.EmployeeID, run.PayDate.Year())
	if err != nil {
		return fmt.Errorf("loading ytd for %s: %w", rec.EmployeeID, err)
	}
	rules, err := e.rules.Rules(snap.Jurisdiction, run.PayDate)
	if err != nil {
		return err
	}
	result, err := statutory.Calculate(snap, state, rules)
	if err != nil {
		return err
	}
	e.logAnomalies(run.ID, result)
	rec.Result = result
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// Submit moves a draft run to pending_approval.
func (e *Engine) Submit(ctx context.Context, runID string) (*PayrollRun, error) {
	return e.transition(ctx, runID, StatusPendingApproval, "submit", nil)
}

// Cancel cancels a draft or pending run. The YTD ledger is untouched.
func (e *Engine) Cancel(ctx context.Context, runID string) (*PayrollRun, error) {
	return e.transition(ctx, runID, StatusCancelled, "cancel", nil)
}

// MarkPaid moves an approved run to paid.
func (e *Engine) MarkPaid(ctx context.Context, runID string) (*PayrollRun, error) {
	return e.transition(ctx, runID, StatusPaid, "mark paid", nil)
}

// RevertToDraft returns a pending run to draft. Blocked while any record
// carries unsynchronized manual edits unless discardEdits is set, in which
// case the edits are dropped and the affected records recomputed - never
// silently.
func (e *Engine) RevertToDraft(ctx context.Context, runID string, discardEdits bool) (*PayrollRun, error) {
	return e.transition(ctx, runID, StatusDraft, "revert to draft", func(run *PayrollRun) error {
		if !run.HasUnsyncedEdits() {
			return nil
		}
		if !discardEdits {
			return fmt.Errorf("run %s: %w", runID, ErrUnsyncedEdits)
		}
		for i := range run.Records {
			rec := &run.Records[i]
			if !rec.IsModified {
				continue
			}
			rec.Input = RecordInput{}
			rec.IsModified = false
			if err := e.recomputeRecord(ctx, run, rec); err != nil {
				return err
			}
		}
		run.Resum()
		return nil
	})
}

// transition applies a guarded status change with an optional pre-hook.
func (e *Engine) transition(ctx context.Context, runID string, target Status, op string, pre func(*PayrollRun) error) (*PayrollRun, error) {
	l := e.lock(runID)
	l.Lock()
	defer l.Unlock()

	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !run.Status.CanTransitionTo(target) {
		return nil, &InvalidStateTransitionError{RunID: runID, From: run.Status, To: target, Op: op}
	}
	if pre != nil {
		if err := pre(run); err != nil {
			return nil, err
		}
	}
	run.Status = target
	run.UpdatedAt = time.Now().UTC()
	if err := e.store.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// =============================================================================
// APPROVAL
// =============================================================================

// Approve transitions a pending run to approved and commits every record's
// YTD delta to the ledger as one unit. The ledger commit is all-or-nothing
// and commit-once: a failure leaves every employee's YTD untouched and the
// run in pending_approval. Paystub generation runs afterwards as a
// reported, non-blocking side effect.
func (e *Engine) Approve(ctx context.Context, runID string) (*PayrollRun, error) {
	l := e.lock(runID)
	l.Lock()
	defer l.Unlock()

	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !run.Status.CanTransitionTo(StatusApproved) {
		return nil, &InvalidStateTransitionError{RunID: runID, From: run.Status, To: StatusApproved, Op: "approve"}
	}

	deltas := make(map[string]statutory.YtdState, len(run.Records))
	for _, rec := range run.Records {
		deltas[rec.EmployeeID] = rec.Result.Delta
	}
	year := run.PayDate.Year()

	run.Status = StatusApproved
	run.UpdatedAt = time.Now().UTC()

	if atomic, ok := e.store.(AtomicApprover); ok {
		if err := atomic.ApproveAndCommit(ctx, run, year, deltas); err != nil {
			return nil, err
		}
	} else {
		// Ledger first: it is atomic and commit-once on its own, so a
		// failure here leaves the run pending and the ledger untouched.
		if err := e.ledger.CommitRun(ctx, run.ID, year, deltas); err != nil {
			return nil, err
		}
		if err := e.store.SaveRun(ctx, run); err != nil {
			return nil, err
		}
	}

	e.generateStubs(ctx, run)
	return run, nil
}

// generateStubs invokes the downstream paystub collaborator. Failures are
// logged and noted on the run, never failing the approval.
func (e *Engine) generateStubs(ctx context.Context, run *PayrollRun) {
	if e.stubs == nil {
		return
	}
	for _, rec := range run.Records {
		if err := e.stubs.Generate(ctx, run, rec); err != nil {
			e.logger.Warn("paystub generation failed",
				"run_id", run.ID, "employee_id", rec.EmployeeID, "error", err)
			run.PaystubNote = fmt.Sprintf("paystub generation failed for %s: %v", rec.EmployeeID, err)
		}
	}
	if run.PaystubNote != "" {
		if err := e.store.SaveRun(ctx, run); err != nil {
			e.logger.Warn("recording paystub note failed", "run_id", run.ID, "error", err)
		}
	}
}

// =============================================================================
// DELETE / READ
// =============================================================================

// Delete removes a run and all its records. Legal only while draft.
func (e *Engine) Delete(ctx context.Context, runID string) error {
	l := e.lock(runID)
	l.Lock()
	defer l.Unlock()

	run, err := e.store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run.Status != StatusDraft {
		return &InvalidStateTransitionError{RunID: runID, From: run.Status, To: run.Status, Op: "delete"}
	}
	return e.store.DeleteRun(ctx, runID)
}

// Get returns a run by id.
func (e *Engine) Get(ctx context.Context, runID string) (*PayrollRun, error) {
	return e.store.GetRun(ctx, runID)
}

// List returns all runs, newest pay date first.
func (e *Engine) List(ctx context.Context) ([]*PayrollRun, error) {
	return e.store.ListRuns(ctx)
}

func (e *Engine) logAnomalies(runID string, res statutory.Result) {
	for _, note := range res.Anomalies {
		e.logger.Warn("anomalous calculation input",
			"run_id", runID, "employee_id", res.EmployeeID, "note", note)
	}
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
