/*
Package employees is the input boundary to the employee profile service.

PURPOSE:
  The engine never owns employee profiles; it consumes read-only
  EmployeeSnapshots through the Source contract. The in-memory Directory
  implementation backs tests and the dev server, and stands in for the
  external profile service in production wiring.
*/
package employees

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/maplepay/payroll-engine/statutory"
)

// ErrEmployeeNotFound is returned for unknown employee ids.
var ErrEmployeeNotFound = errors.New("employee not found")

// Source supplies calculation inputs for pay dates. Implementations must
// treat snapshots as read-only: the engine never writes back.
type Source interface {
	// Eligible returns a snapshot for every employee payable on the date,
	// with PeriodEnd set to the pay date.
	Eligible(ctx context.Context, payDate time.Time) ([]statutory.EmployeeSnapshot, error)

	// Snapshot returns one employee's snapshot for the date.
	Snapshot(ctx context.Context, employeeID string, payDate time.Time) (statutory.EmployeeSnapshot, error)
}

// =============================================================================
// IN-MEMORY DIRECTORY
// =============================================================================

// Directory is an in-memory Source.
type Directory struct {
	mu   sync.RWMutex
	byID map[string]statutory.EmployeeSnapshot
}

func NewDirectory(snaps ...statutory.EmployeeSnapshot) *Directory {
	d := &Directory{byID: make(map[string]statutory.EmployeeSnapshot)}
	for _, s := range snaps {
		d.byID[s.EmployeeID] = s
	}
	return d
}

// Put adds or replaces an employee profile.
func (d *Directory) Put(snap statutory.EmployeeSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[snap.EmployeeID] = snap
}

func (d *Directory) Eligible(_ context.Context, payDate time.Time) ([]statutory.EmployeeSnapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []statutory.EmployeeSnapshot
	for _, snap := range d.byID {
		if snap.HireDate.After(payDate) {
			continue
		}
		snap.PeriodEnd = payDate
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (d *Directory) Snapshot(_ context.Context, employeeID string, payDate time.Time) (statutory.EmployeeSnapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap, ok := d.byID[employeeID]
	if !ok {
		return statutory.EmployeeSnapshot{}, fmt.Errorf("%s: %w", employeeID, ErrEmployeeNotFound)
	}
	snap.PeriodEnd = payDate
	return snap, nil
}
