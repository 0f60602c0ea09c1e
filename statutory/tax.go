/*
tax.go - Federal and provincial income tax withholding

PURPOSE:
  Periodic withholding using the CRA-style annualization method:

    1. Annualize the period's taxable income (taxable x periods/year)
    2. Apply the progressive bracket table for the annual tax
    3. Subtract non-refundable credits: (BPA + additional claims) valued
       at the LOWEST bracket rate
    4. De-annualize by dividing by periods/year, round to cents

  Withholding can never be negative - credits clamp at zero, they do not
  refund. Federal and provincial use the same method over different
  bracket tables and personal amounts.
*/
package statutory

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// FederalTax returns the period's federal withholding on the period
// taxable income.
func FederalTax(periodTaxable decimal.Decimal, snap EmployeeSnapshot, rules taxrules.TaxYearRules) decimal.Decimal {
	return withhold(periodTaxable, snap.Frequency, rules.FederalBrackets,
		rules.FederalBPA.Add(snap.FederalClaim))
}

// ProvincialTax returns the period's provincial withholding on the period
// taxable income.
func ProvincialTax(periodTaxable decimal.Decimal, snap EmployeeSnapshot, rules taxrules.TaxYearRules) decimal.Decimal {
	return withhold(periodTaxable, snap.Frequency, rules.ProvincialBrackets,
		rules.ProvincialBPA.Add(snap.ProvincialClaim))
}

func withhold(periodTaxable decimal.Decimal, freq PayFrequency, brackets taxrules.BracketTable, claim decimal.Decimal) decimal.Decimal {
	if periodTaxable.Sign() <= 0 {
		return decimal.Zero
	}
	periods := decimal.NewFromInt(int64(freq.PeriodsPerYear()))

	annual := periodTaxable.Mul(periods)
	gross := brackets.TaxOn(annual)
	credits := claim.Mul(brackets.LowestRate())

	net := gross.Sub(credits)
	if net.IsNegative() {
		return decimal.Zero
	}
	return round2(net.Div(periods))
}
