/*
errors.go - Error taxonomy for the calculation core

PURPOSE:
  Centralizes the calculator-level error types. Rule-resolution failures
  come from the taxrules package and abort the whole employee calculation;
  cap-exceeded inputs are recoverable by clamping and surface as anomalies,
  not errors. State-machine errors live in payrun.

SEE ALSO:
  - taxrules/store.go: RuleNotFoundError
  - payrun/types.go: InvalidStateTransitionError, concurrency errors
*/
package statutory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrCapExceededInput marks caller-supplied YTD already above a
	// statutory maximum. The calculators recover by clamping the period
	// contribution to zero, but the condition is anomalous and must be
	// logged by the caller.
	ErrCapExceededInput = errors.New("ytd input exceeds statutory cap")

	// ErrInvalidSnapshot is returned for inputs no calculator can price
	// (unknown jurisdiction, missing compensation basis).
	ErrInvalidSnapshot = errors.New("invalid employee snapshot")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// CapExceededInputError details which cap the supplied YTD already breached.
type CapExceededInputError struct {
	EmployeeID string
	Cap        string // "cpp_base", "cpp2", "ei"
	Maximum    decimal.Decimal
	Supplied   decimal.Decimal
}

func (e *CapExceededInputError) Error() string {
	return fmt.Sprintf("employee %s: ytd %s %v exceeds statutory maximum %v",
		e.EmployeeID, e.Cap, e.Supplied, e.Maximum)
}

func (e *CapExceededInputError) Unwrap() error { return ErrCapExceededInput }

// CalculationError wraps a per-employee failure with enough context to be
// user-visible and auditable.
type CalculationError struct {
	EmployeeID   string
	Jurisdiction taxrules.Jurisdiction
	Err          error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculation failed for employee %s (%s): %v",
		e.EmployeeID, e.Jurisdiction, e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRuleNotFound reports whether err stems from a missing rule set.
func IsRuleNotFound(err error) bool {
	return errors.Is(err, taxrules.ErrRuleNotFound)
}
