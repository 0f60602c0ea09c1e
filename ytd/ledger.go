/*
Package ytd maintains each employee's cumulative year-to-date position.

PURPOSE:
  The ledger is the only place YTD state is ever advanced, and the only
  operation that advances it is committing an approved payroll run.
  Draft calculation and recalculation always work on projections - pure
  additions that are never persisted.

CRITICAL INVARIANTS:
  1. COMMIT-ONCE: a run's deltas are applied at most once. Re-approving
     an approved run is rejected, never silently double-applied.
  2. ALL-OR-NOTHING: a run commit applies every employee's full delta or
     none of it. A failure mid-commit leaves the ledger untouched.
  3. MONOTONIC: within a year every component only grows; negative deltas
     are rejected. State resets to zero at the year boundary (a new year
     is simply a new key).

SEE ALSO:
  - statutory/types.go: YtdState and projection arithmetic
  - payrun/engine.go: The approval boundary that calls Commit
  - store/sqlite: The SQL-transactional implementation
*/
package ytd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/maplepay/payroll-engine/statutory"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAlreadyCommitted is returned when a run's deltas were committed
	// before. The caller must treat this as a state error, not retry.
	ErrAlreadyCommitted = errors.New("payroll run already committed to ytd ledger")

	// ErrNegativeDelta is returned for deltas that would shrink a YTD
	// component, which violates the monotonic invariant.
	ErrNegativeDelta = errors.New("ytd delta has negative component")
)

// =============================================================================
// LEDGER CONTRACT
// =============================================================================

// Ledger is the YTD source of truth. Get is read-only; CommitRun is the
// single mutating operation and is called exactly once per run, from the
// run-approval boundary.
type Ledger interface {
	// Get returns the current state for an employee-year. A year with no
	// committed history is a zero state, never an error.
	Get(ctx context.Context, employeeID string, year int) (statutory.YtdState, error)

	// CommitRun applies every employee's delta for a run atomically.
	// Rejects with ErrAlreadyCommitted if the run was committed before.
	CommitRun(ctx context.Context, runID string, year int, deltas map[string]statutory.YtdState) error

	// Committed reports whether a run's deltas are in the ledger.
	Committed(ctx context.Context, runID string) (bool, error)
}

// Project returns the state that committing delta would produce. Pure -
// used during draft recalculation, never persisted.
func Project(state, delta statutory.YtdState) statutory.YtdState {
	return state.Add(delta)
}

// =============================================================================
// IN-MEMORY LEDGER
// =============================================================================

type stateKey struct {
	employeeID string
	year       int
}

// Memory is the in-memory Ledger used by tests and the dev server.
type Memory struct {
	mu        sync.RWMutex
	states    map[stateKey]statutory.YtdState
	committed map[string]bool // runID
}

func NewMemory() *Memory {
	return &Memory{
		states:    make(map[stateKey]statutory.YtdState),
		committed: make(map[string]bool),
	}
}

func (m *Memory) Get(_ context.Context, employeeID string, year int) (statutory.YtdState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[stateKey{employeeID, year}], nil
}

func (m *Memory) CommitRun(_ context.Context, runID string, year int, deltas map[string]statutory.YtdState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.committed[runID] {
		return fmt.Errorf("run %s: %w", runID, ErrAlreadyCommitted)
	}

	// Validate everything before touching state so a failure applies nothing.
	for employeeID, delta := range deltas {
		if delta.IsNegative() {
			return fmt.Errorf("employee %s in run %s: %w", employeeID, runID, ErrNegativeDelta)
		}
	}

	for employeeID, delta := range deltas {
		k := stateKey{employeeID, year}
		m.states[k] = m.states[k].Add(delta)
	}
	m.committed[runID] = true
	return nil
}

func (m *Memory) Committed(_ context.Context, runID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.committed[runID], nil
}

// Seed preloads a state, for tests and demo data.
func (m *Memory) Seed(employeeID string, year int, state statutory.YtdState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[stateKey{employeeID, year}] = state
}
