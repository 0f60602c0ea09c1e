/*
ei.go - Employment Insurance premiums

PURPOSE:
  Computes the employee EI premium for one pay period: a flat rate on
  insurable earnings up to the annual maximum, with the same cap-aware
  partial-contribution rule as CPP. The employer premium is a fixed
  multiple of the employee premium (historically 1.4x), carried in the
  rule tables rather than hard-coded.
*/
package statutory

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// EIResult is the employment-insurance slice of a calculation.
type EIResult struct {
	Premium          decimal.Decimal
	Employer         decimal.Decimal
	InsurableApplied decimal.Decimal
	Anomalies        []string
}

// EI computes the period's premiums on the given insurable earnings.
// Pure; cap-aware against ytd.
func EI(insurable decimal.Decimal, snap EmployeeSnapshot, ytd YtdState, rules taxrules.TaxYearRules) EIResult {
	var out EIResult
	if snap.EIExempt || insurable.Sign() <= 0 {
		return out
	}
	ei := rules.EI

	if ytd.EI.GreaterThan(ei.MaxAnnualPremium) {
		e := &CapExceededInputError{EmployeeID: snap.EmployeeID, Cap: "ei",
			Maximum: ei.MaxAnnualPremium, Supplied: ytd.EI}
		out.Anomalies = append(out.Anomalies, e.Error())
	}

	earningsRoom := ei.MaxInsurableEarnings.Sub(ytd.InsurableEarnings)
	if earningsRoom.IsNegative() {
		earningsRoom = decimal.Zero
	}
	out.InsurableApplied = decimal.Min(insurable, earningsRoom)

	premium := out.InsurableApplied.Mul(ei.Rate)
	premiumRoom := ei.MaxAnnualPremium.Sub(ytd.EI)
	if premiumRoom.IsNegative() {
		premiumRoom = decimal.Zero
	}
	out.Premium = round2(decimal.Min(premium, premiumRoom))
	out.Employer = round2(out.Premium.Mul(ei.EmployerRateMultiple))
	return out
}
