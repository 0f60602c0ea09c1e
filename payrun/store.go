/*
store.go - Persistence contract for payroll runs

PURPOSE:
  Defines the interface between the run engine and the database. Stores
  hold runs with their records; totals travel with the run. Writes are
  guarded by optimistic versioning: SaveRun fails with
  ErrConcurrentModification when the stored version no longer matches the
  version the caller read.

IMPLEMENTATIONS:
  - store.Memory:        In-memory, for tests and the dev server
  - store/sqlite.Store:  Production SQLite, also implements ytd.Ledger and
                         the atomic approve-and-commit boundary
*/
package payrun

import (
	"context"
	"time"

	"github.com/maplepay/payroll-engine/statutory"
)

// Store persists payroll runs.
type Store interface {
	// CreateRun persists a new run (version 0). Fails if a run already
	// exists for the pay date.
	CreateRun(ctx context.Context, run *PayrollRun) error

	// GetRun returns a run by id, or ErrRunNotFound.
	GetRun(ctx context.Context, runID string) (*PayrollRun, error)

	// GetRunByPayDate returns the run for a pay date, or ErrRunNotFound.
	GetRunByPayDate(ctx context.Context, payDate time.Time) (*PayrollRun, error)

	// SaveRun replaces a run's stored state. The run's Version must match
	// the stored version or ErrConcurrentModification is returned; on
	// success the stored version is incremented.
	SaveRun(ctx context.Context, run *PayrollRun) error

	// DeleteRun removes a run and all its records.
	DeleteRun(ctx context.Context, runID string) error

	// ListRuns returns all runs ordered by pay date descending.
	ListRuns(ctx context.Context) ([]*PayrollRun, error)
}

// AtomicApprover is an optional store capability: transition a run to
// approved and commit its YTD deltas inside one storage transaction.
// The SQLite store implements it; the engine uses it when available so a
// crash can never separate the status change from the ledger commit.
type AtomicApprover interface {
	ApproveAndCommit(ctx context.Context, run *PayrollRun, year int, deltas map[string]statutory.YtdState) error
}
