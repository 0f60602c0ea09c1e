// Package store provides payrun.Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/maplepay/payroll-engine/payrun"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds runs in maps guarded by a RWMutex. Every read and write
// deep-copies so callers never share record slices with the store.
type Memory struct {
	mu        sync.RWMutex
	runs      map[string]*payrun.PayrollRun // by run id
	byPayDate map[string]string             // pay date -> run id
}

func NewMemory() *Memory {
	return &Memory{
		runs:      make(map[string]*payrun.PayrollRun),
		byPayDate: make(map[string]string),
	}
}

func dateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

func (m *Memory) CreateRun(_ context.Context, run *payrun.PayrollRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := dateKey(run.PayDate)
	if _, exists := m.byPayDate[key]; exists {
		return fmt.Errorf("run for pay date %s exists: %w", key, payrun.ErrConcurrentModification)
	}
	stored := run.Clone()
	stored.Version = 0
	m.runs[run.ID] = stored
	m.byPayDate[key] = run.ID
	run.Version = 0
	return nil
}

func (m *Memory) GetRun(_ context.Context, runID string) (*payrun.PayrollRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, payrun.ErrRunNotFound)
	}
	return run.Clone(), nil
}

func (m *Memory) GetRunByPayDate(_ context.Context, payDate time.Time) (*payrun.PayrollRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPayDate[dateKey(payDate)]
	if !ok {
		return nil, fmt.Errorf("pay date %s: %w", dateKey(payDate), payrun.ErrRunNotFound)
	}
	return m.runs[id].Clone(), nil
}

func (m *Memory) SaveRun(_ context.Context, run *payrun.PayrollRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.runs[run.ID]
	if !ok {
		return fmt.Errorf("run %s: %w", run.ID, payrun.ErrRunNotFound)
	}
	if stored.Version != run.Version {
		return fmt.Errorf("run %s version %d (stored %d): %w",
			run.ID, run.Version, stored.Version, payrun.ErrConcurrentModification)
	}
	next := run.Clone()
	next.Version = stored.Version + 1
	m.runs[run.ID] = next
	run.Version = next.Version
	return nil
}

func (m *Memory) DeleteRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, payrun.ErrRunNotFound)
	}
	delete(m.byPayDate, dateKey(run.PayDate))
	delete(m.runs, runID)
	return nil
}

func (m *Memory) ListRuns(_ context.Context) ([]*payrun.PayrollRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*payrun.PayrollRun, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, run.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PayDate.After(out[j].PayDate) })
	return out, nil
}
