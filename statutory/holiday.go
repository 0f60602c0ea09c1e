/*
holiday.go - Statutory holiday pay

PURPOSE:
  Computes regular holiday pay and holiday premium pay for a period that
  contains a statutory holiday. Regular holiday pay dispatches on the
  jurisdiction's formula id through a strategy table; premium pay for
  hours actually worked on the holiday is computed independently of
  eligibility.

ELIGIBILITY:
  Minimum days employed before the holiday (30 in every embedded table).
  Ineligible employees receive premium pay only. The "worked last/first
  scheduled shift" adjacency checks are deliberately not modelled; the
  30-day rule is the whole test.

FORMULAS:
  trailing_average:   (trailing 4-week wages incl. vacation pay) / 20
  average_daily_wage: hourly -> average daily hours x rate
                      salary -> annual / periods / work days per period
  period_average:     period earnings / days worked in the period
  general_average:    period earnings / 20 (fallback)
*/
package statutory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// HolidayResult is the statutory-holiday slice of a calculation.
type HolidayResult struct {
	Eligible   bool
	RegularPay decimal.Decimal // zero when ineligible or no holiday in period
	PremiumPay decimal.Decimal // hours worked x rate x premium multiplier
}

// holidayFormulaFn computes regular holiday pay for an eligible employee.
// periodEarnings and daysWorked describe the period excluding holiday pay
// itself.
type holidayFormulaFn func(snap EmployeeSnapshot, periodEarnings decimal.Decimal, daysWorked int) decimal.Decimal

// holidayFormulas is the strategy table keyed by formula id. taxrules
// validates every jurisdiction against KnownFormulas at store construction,
// so dispatch cannot miss at calculation time.
var holidayFormulas = map[taxrules.HolidayFormula]holidayFormulaFn{
	taxrules.FormulaTrailingAverage:  trailingAverage,
	taxrules.FormulaAverageDailyWage: averageDailyWage,
	taxrules.FormulaPeriodAverage:    periodAverage,
	taxrules.FormulaGeneralAverage:   generalAverage,
}

// HolidayPay computes both holiday components for the period.
// Returns a zero result when no statutory holiday falls in the period.
func HolidayPay(snap EmployeeSnapshot, rules taxrules.TaxYearRules, periodEarnings decimal.Decimal, daysWorked int) (HolidayResult, error) {
	var out HolidayResult
	if snap.HolidayDate.IsZero() {
		return out, nil
	}

	// Premium pay is independent of eligibility.
	if snap.HolidayHoursWorked.Sign() > 0 {
		out.PremiumPay = round2(snap.HolidayHoursWorked.
			Mul(snap.EffectiveHourlyRate()).
			Mul(rules.Holiday.PremiumRate))
	}

	daysEmployed := int(snap.HolidayDate.Sub(snap.HireDate).Hours() / 24)
	out.Eligible = daysEmployed >= rules.Holiday.EligibilityDays
	if !out.Eligible {
		return out, nil
	}

	formula, ok := holidayFormulas[rules.Holiday.Formula]
	if !ok {
		return out, fmt.Errorf("holiday formula %q has no implementation", rules.Holiday.Formula)
	}
	out.RegularPay = round2(formula(snap, periodEarnings, daysWorked))
	return out, nil
}

func trailingAverage(snap EmployeeSnapshot, _ decimal.Decimal, _ int) decimal.Decimal {
	return snap.TrailingFourWeekWages.Div(decimal.NewFromInt(20))
}

func averageDailyWage(snap EmployeeSnapshot, _ decimal.Decimal, _ int) decimal.Decimal {
	if snap.Compensation == Hourly {
		hours := snap.AverageDailyHours
		if hours.IsZero() {
			hours = decimal.NewFromInt(8)
		}
		return hours.Mul(snap.HourlyRate)
	}
	days := snap.WorkDaysPerPeriod
	if days == 0 {
		days = 10
	}
	periods := decimal.NewFromInt(int64(snap.Frequency.PeriodsPerYear()))
	return snap.AnnualSalary.Div(periods).Div(decimal.NewFromInt(int64(days)))
}

func periodAverage(_ EmployeeSnapshot, periodEarnings decimal.Decimal, daysWorked int) decimal.Decimal {
	if daysWorked == 0 {
		return decimal.Zero
	}
	return periodEarnings.Div(decimal.NewFromInt(int64(daysWorked)))
}

func generalAverage(_ EmployeeSnapshot, periodEarnings decimal.Decimal, _ int) decimal.Decimal {
	return periodEarnings.Div(decimal.NewFromInt(20))
}
