/*
Package statutory contains the pure payroll calculators and the per-employee
orchestrator that composes them into one gross-to-net result.

PURPOSE:
  Every calculator is a pure function over three inputs: an immutable
  EmployeeSnapshot for the pay period, the employee's YtdState at the start
  of the period, and the TaxYearRules covering the pay date. No calculator
  touches storage or the clock; results are deterministic and safe to
  recompute any number of times.

KEY CONCEPTS IN THIS FILE (types.go):
  - EmployeeSnapshot: Everything known about the employee for one period
  - YtdState: Cumulative year-to-date totals (caps are enforced against it)
  - Result: The all-or-nothing gross-to-net output, with projected YTD
  - PayFrequency: Pay periods per year, used to annualize and prorate

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere; round to cents at boundaries
  2. Purity: snapshot in, amounts out - side effects belong to payrun
  3. All-or-nothing: a Result is never partially populated

SEE ALSO:
  - cpp.go, ei.go, tax.go, holiday.go, vacation.go, overtime.go
  - calculate.go: Orchestrator sequencing and batch calculation
*/
package statutory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// =============================================================================
// PAY FREQUENCY
// =============================================================================

type PayFrequency string

const (
	Weekly      PayFrequency = "weekly"
	Biweekly    PayFrequency = "biweekly"
	SemiMonthly PayFrequency = "semi_monthly"
	Monthly     PayFrequency = "monthly"
)

// PeriodsPerYear returns the number of pay periods in a year.
func (f PayFrequency) PeriodsPerYear() int {
	switch f {
	case Weekly:
		return 52
	case SemiMonthly:
		return 24
	case Monthly:
		return 12
	default:
		return 26
	}
}

// =============================================================================
// EMPLOYEE SNAPSHOT
// =============================================================================

type CompensationType string

const (
	Salaried CompensationType = "salary"
	Hourly   CompensationType = "hourly"
)

// VacationMode selects how vacation pay is handled for an employee.
type VacationMode string

const (
	// VacationAccrual: rate x gross accumulates in a balance; nothing is
	// paid this period and deductions are computed on gross only.
	VacationAccrual VacationMode = "accrual"

	// VacationPayAsYouGo: rate x gross is added to the current period's
	// taxable gross and paid out immediately.
	VacationPayAsYouGo VacationMode = "pay_as_you_go"

	// VacationLumpSum: the accrued balance is paid out on a designated
	// date; accrual continues in the meantime.
	VacationLumpSum VacationMode = "lump_sum"
)

// DayHours is one day's worked hours, used for the overtime split.
// Holiday days are excluded from the split and paid via holiday premium.
type DayHours struct {
	Date    time.Time
	Hours   decimal.Decimal
	Holiday bool
}

// EmployeeSnapshot is the immutable calculation input for one employee and
// one pay period. It is supplied by the employee profile boundary; the
// engine never mutates it.
type EmployeeSnapshot struct {
	EmployeeID   string
	Name         string
	Jurisdiction taxrules.Jurisdiction
	Frequency    PayFrequency
	Compensation CompensationType
	HireDate     time.Time

	// PeriodEnd anchors years-of-service and other date-relative rules.
	PeriodEnd time.Time

	// Compensation basis
	AnnualSalary decimal.Decimal // salaried
	HourlyRate   decimal.Decimal // hourly

	// Hours for the period. DailyHours drives the overtime split when
	// present; RegularHours is the flat fallback for hourly employees
	// without daily detail.
	DailyHours   []DayHours
	RegularHours decimal.Decimal

	// Other gross components for the period
	OtherEarnings    decimal.Decimal
	PreTaxDeductions decimal.Decimal

	// Statutory holiday in the period, if any
	HolidayDate        time.Time // zero when no holiday falls in the period
	HolidayHoursWorked decimal.Decimal

	// Inputs to the holiday-pay formulas
	TrailingFourWeekWages decimal.Decimal // incl. vacation pay paid in the window
	AverageDailyHours     decimal.Decimal
	WorkDaysPerPeriod     int

	// Vacation configuration
	VacationMode     VacationMode
	VacationBalance  decimal.Decimal // accrued balance carried in
	PayVacationLumpSum bool          // this period is the designated payout

	// Exemptions and claims
	CPPExempt  bool
	CPP2Exempt bool
	EIExempt   bool

	// Additional claim amounts beyond the basic personal amounts.
	FederalClaim    decimal.Decimal
	ProvincialClaim decimal.Decimal
}

// EffectiveHourlyRate returns the hourly rate for premium-pay purposes.
// Salaried employees derive it from salary, periods, and scheduled time.
func (s EmployeeSnapshot) EffectiveHourlyRate() decimal.Decimal {
	if s.Compensation == Hourly {
		return s.HourlyRate
	}
	days := s.WorkDaysPerPeriod
	if days == 0 {
		days = 10
	}
	hoursPerDay := s.AverageDailyHours
	if hoursPerDay.IsZero() {
		hoursPerDay = decimal.NewFromInt(8)
	}
	periods := decimal.NewFromInt(int64(s.Frequency.PeriodsPerYear()))
	scheduled := decimal.NewFromInt(int64(days)).Mul(hoursPerDay)
	if scheduled.IsZero() {
		return decimal.Zero
	}
	return s.AnnualSalary.Div(periods).Div(scheduled)
}

// YearsOfService returns whole completed years from hire date to the
// reference date. An anniversary not yet reached rounds down.
func (s EmployeeSnapshot) YearsOfService(ref time.Time) int {
	if ref.Before(s.HireDate) {
		return 0
	}
	years := ref.Year() - s.HireDate.Year()
	anniversary := s.HireDate.AddDate(years, 0, 0)
	if anniversary.After(ref) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// =============================================================================
// YTD STATE
// =============================================================================

// YtdState is the cumulative year-to-date position for one employee.
// Within a year each field is monotonically non-decreasing; the state
// resets to zero at the year boundary. Only a committed payroll run may
// advance it - draft recalculation always works on projections.
type YtdState struct {
	Gross               decimal.Decimal
	PensionableEarnings decimal.Decimal
	InsurableEarnings   decimal.Decimal
	CPPBase             decimal.Decimal
	CPP2                decimal.Decimal
	EI                  decimal.Decimal
	FederalTax          decimal.Decimal
	ProvincialTax       decimal.Decimal
}

// Add returns the state advanced by a period delta.
func (y YtdState) Add(delta YtdState) YtdState {
	return YtdState{
		Gross:               y.Gross.Add(delta.Gross),
		PensionableEarnings: y.PensionableEarnings.Add(delta.PensionableEarnings),
		InsurableEarnings:   y.InsurableEarnings.Add(delta.InsurableEarnings),
		CPPBase:             y.CPPBase.Add(delta.CPPBase),
		CPP2:                y.CPP2.Add(delta.CPP2),
		EI:                  y.EI.Add(delta.EI),
		FederalTax:          y.FederalTax.Add(delta.FederalTax),
		ProvincialTax:       y.ProvincialTax.Add(delta.ProvincialTax),
	}
}

// IsNegative reports whether any component of the state is negative.
// Deltas committed to the ledger must never be.
func (y YtdState) IsNegative() bool {
	return y.Gross.IsNegative() || y.PensionableEarnings.IsNegative() ||
		y.InsurableEarnings.IsNegative() || y.CPPBase.IsNegative() ||
		y.CPP2.IsNegative() || y.EI.IsNegative() ||
		y.FederalTax.IsNegative() || y.ProvincialTax.IsNegative()
}

// =============================================================================
// RESULT
// =============================================================================

// Result is one employee's complete gross-to-net breakdown for one period,
// plus the YTD delta and projected new YTD that approval would commit.
// A Result is all-or-nothing: calculators either fill every component or
// the calculation fails as a whole.
type Result struct {
	EmployeeID string

	// Gross components actually paid this period
	RegularEarnings  decimal.Decimal
	OvertimeEarnings decimal.Decimal
	HolidayPay       decimal.Decimal
	HolidayPremium   decimal.Decimal
	VacationPaid     decimal.Decimal
	OtherEarnings    decimal.Decimal
	Gross            decimal.Decimal

	// Vacation accrued to balance (not paid, not taxed this period)
	VacationAccrued decimal.Decimal

	// Deductions
	PreTaxDeductions decimal.Decimal
	CPPBase          decimal.Decimal
	CPP2             decimal.Decimal
	EI               decimal.Decimal
	FederalTax       decimal.Decimal
	ProvincialTax    decimal.Decimal
	TotalDeductions  decimal.Decimal

	NetPay decimal.Decimal

	// Employer-side costs
	EmployerCPP  decimal.Decimal
	EmployerEI   decimal.Decimal
	EmployerCost decimal.Decimal

	// YTD movement
	Delta  YtdState // this period's contribution to YTD
	NewYtd YtdState // projected state if this result is committed

	// Anomalies are recoverable oddities (e.g. caller-supplied YTD already
	// over a statutory cap). They never fail the calculation but must be
	// surfaced for audit.
	Anomalies []string
}

// round2 rounds a money amount to cents.
func round2(v decimal.Decimal) decimal.Decimal { return v.Round(2) }
