/*
Package payrun manages the lifecycle of payroll runs: batches of employee
calculations tied to a pay date.

PURPOSE:
  A PayrollRun aggregates one PayrollRecord per employee and walks a strict
  state machine:

    draft -> pending_approval -> approved -> paid
              |        ^
              v        | (revert, only without unsynced manual edits)
          cancelled  draft

  Run totals are always a pure re-sum of record amounts - never edited
  independently. The YTD ledger is committed exactly once, on the
  transition into approved.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status + transition table
  - PayrollRecord: one employee's result plus manual inputs
  - PayrollRun: the aggregate with derived totals and optimistic version
  - Error taxonomy for state and concurrency violations

SEE ALSO:
  - engine.go: The operations (create-or-get, recalculate, approve, ...)
  - store.go: Persistence contract
*/
package payrun

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/statutory"
)

// =============================================================================
// STATUS MACHINE
// =============================================================================

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusPaid            Status = "paid"
	StatusCancelled       Status = "cancelled"
)

// transitions is the complete legal state machine. Anything absent is an
// InvalidStateTransitionError.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusPendingApproval, StatusCancelled},
	StatusPendingApproval: {StatusApproved, StatusDraft, StatusCancelled},
	StatusApproved:        {StatusPaid},
	StatusPaid:            {},
	StatusCancelled:       {},
}

// CanTransitionTo reports whether s -> target is a legal transition.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Mutable reports whether records may still change (recalculate, edits).
func (s Status) Mutable() bool {
	return s == StatusDraft || s == StatusPendingApproval
}

// =============================================================================
// RECORDS
// =============================================================================

// RecordInput holds the manually entered fields for one record: hours,
// leave, and adjustments keyed in by the payroll operator. Recalculation
// preserves these and only replaces computed fields.
type RecordInput struct {
	RegularHours       *decimal.Decimal `json:"regular_hours,omitempty"`
	HolidayHoursWorked *decimal.Decimal `json:"holiday_hours_worked,omitempty"`
	OtherEarnings      *decimal.Decimal `json:"other_earnings,omitempty"`
	PreTaxDeductions   *decimal.Decimal `json:"pre_tax_deductions,omitempty"`
	PayVacationLumpSum *bool            `json:"pay_vacation_lump_sum,omitempty"`
}

// Empty reports whether no manual input is present.
func (in RecordInput) Empty() bool {
	return in.RegularHours == nil && in.HolidayHoursWorked == nil &&
		in.OtherEarnings == nil && in.PreTaxDeductions == nil &&
		in.PayVacationLumpSum == nil
}

// Apply overlays the manual inputs onto a fresh snapshot.
func (in RecordInput) Apply(snap statutory.EmployeeSnapshot) statutory.EmployeeSnapshot {
	if in.RegularHours != nil {
		snap.RegularHours = *in.RegularHours
	}
	if in.HolidayHoursWorked != nil {
		snap.HolidayHoursWorked = *in.HolidayHoursWorked
	}
	if in.OtherEarnings != nil {
		snap.OtherEarnings = *in.OtherEarnings
	}
	if in.PreTaxDeductions != nil {
		snap.PreTaxDeductions = *in.PreTaxDeductions
	}
	if in.PayVacationLumpSum != nil {
		snap.PayVacationLumpSum = *in.PayVacationLumpSum
	}
	return snap
}

// PayrollRecord is one employee's calculation inside a run. Owned
// exclusively by its run; destroyed only when a draft run is deleted.
type PayrollRecord struct {
	ID         string
	RunID      string
	EmployeeID string

	Input  RecordInput
	Result statutory.Result

	// IsModified marks unsynchronized manual edits. Revert-to-draft is
	// blocked while any record carries them, unless explicitly discarded.
	IsModified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// RUNS
// =============================================================================

// RunTotals is always derived by Resum - never edited independently.
type RunTotals struct {
	Employees    int
	Gross        decimal.Decimal
	Deductions   decimal.Decimal
	Net          decimal.Decimal
	EmployerCost decimal.Decimal
}

// PayrollRun is the aggregate of all records for one pay date.
type PayrollRun struct {
	ID          string
	PayDate     time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      Status

	Records []PayrollRecord
	Totals  RunTotals

	// Version supports optimistic concurrency in the store.
	Version int

	// PaystubNote records a non-blocking paystub generation failure
	// reported on approval.
	PaystubNote string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resum recomputes run totals as a pure sum of current record amounts.
func (r *PayrollRun) Resum() {
	totals := RunTotals{Employees: len(r.Records)}
	for _, rec := range r.Records {
		totals.Gross = totals.Gross.Add(rec.Result.Gross)
		totals.Deductions = totals.Deductions.Add(rec.Result.TotalDeductions)
		totals.Net = totals.Net.Add(rec.Result.NetPay)
		totals.EmployerCost = totals.EmployerCost.Add(rec.Result.EmployerCost)
	}
	r.Totals = totals
}

// Record returns a pointer to the record with the given id, or nil.
func (r *PayrollRun) Record(recordID string) *PayrollRecord {
	for i := range r.Records {
		if r.Records[i].ID == recordID {
			return &r.Records[i]
		}
	}
	return nil
}

// HasUnsyncedEdits reports whether any record carries manual edits.
func (r *PayrollRun) HasUnsyncedEdits() bool {
	for _, rec := range r.Records {
		if rec.IsModified {
			return true
		}
	}
	return false
}

// Clone deep-copies the run so stores can hand out isolated values.
func (r *PayrollRun) Clone() *PayrollRun {
	out := *r
	out.Records = make([]PayrollRecord, len(r.Records))
	copy(out.Records, r.Records)
	return &out
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidStateTransition is the sentinel behind
	// InvalidStateTransitionError.
	ErrInvalidStateTransition = errors.New("invalid payroll run state transition")

	// ErrConcurrentModification signals a lost update: the run changed
	// between read and write. Retry with fresh state.
	ErrConcurrentModification = errors.New("concurrent payroll run modification")

	// ErrRunNotFound is returned for unknown run ids or pay dates.
	ErrRunNotFound = errors.New("payroll run not found")

	// ErrRecordNotFound is returned for unknown record ids within a run.
	ErrRecordNotFound = errors.New("payroll record not found")

	// ErrUnsyncedEdits blocks revert-to-draft while manual edits exist,
	// unless the caller explicitly discards them.
	ErrUnsyncedEdits = errors.New("run has records with unsynchronized manual edits")
)

// InvalidStateTransitionError reports an operation illegal in the run's
// current state. The run is left unchanged.
type InvalidStateTransitionError struct {
	RunID string
	From  Status
	To    Status
	Op    string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("run %s: cannot %s from %s (target %s)", e.RunID, e.Op, e.From, e.To)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// IsRetryable reports whether the operation may succeed on retry with
// fresh state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsNotFound reports whether the error is a missing run or record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrRecordNotFound)
}
