/*
vacation.go - Tiered vacation pay

PURPOSE:
  Determines the vacation pay rate from the jurisdiction's years-of-service
  tiers and applies the employee's payment mode:

    accrual:       rate x vacationable gross goes to the balance; nothing
                   is paid or taxed this period
    pay_as_you_go: rate x vacationable gross is paid and taxed immediately
    lump_sum:      accrual continues; the carried balance is paid out in
                   the period flagged as the designated payout date

TIER SELECTION:
  Completed whole years from hire date to the period reference date;
  an anniversary not yet reached rounds down. The selected tier is the
  highest whose threshold is <= years of service, so an employee exactly
  on a boundary gets the higher rate.
*/
package statutory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// VacationResult is the vacation slice of a calculation.
type VacationResult struct {
	YearsOfService int
	Rate           decimal.Decimal
	Paid           decimal.Decimal // added to this period's taxable gross
	Accrued        decimal.Decimal // added to the balance, untaxed for now
}

// VacationPay applies the employee's vacation mode to the period's
// vacationable gross (wages before vacation pay itself).
func VacationPay(vacationable decimal.Decimal, snap EmployeeSnapshot, rules taxrules.TaxYearRules, ref time.Time) VacationResult {
	years := snap.YearsOfService(ref)
	out := VacationResult{
		YearsOfService: years,
		Rate:           rules.Vacation.RateFor(years),
	}
	earned := round2(vacationable.Mul(out.Rate))

	switch snap.VacationMode {
	case VacationPayAsYouGo:
		out.Paid = earned
	case VacationLumpSum:
		out.Accrued = earned
		if snap.PayVacationLumpSum {
			out.Paid = round2(snap.VacationBalance)
		}
	default: // accrual
		out.Accrued = earned
	}
	return out
}
