/*
cpp.go - Canada Pension Plan base and second-tier contributions

PURPOSE:
  Computes the employee CPP and CPP2 contributions for one pay period
  against the year-to-date position, applying the prorated basic exemption
  and both annual caps. The employer matches both tiers dollar for dollar.

CAP MODEL:
  Base tier: pensionable earnings up to the YMPE, contribution capped at
  MaxBaseContribution. Second tier (CPP2): pensionable earnings between the
  YMPE and YAMPE, capped at MaxCPP2Contribution. The two caps are tracked
  independently; exhausting the base cap mid-period never eats into CPP2
  room and vice versa. A partial-period contribution never exceeds the
  remaining room under either cap.

EXEMPTIONS:
  CPPExempt zeroes both tiers regardless of earnings. CPP2Exempt zeroes
  only the second tier.
*/
package statutory

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// CPPResult is the pension slice of a calculation.
type CPPResult struct {
	Base               decimal.Decimal
	Additional         decimal.Decimal // CPP2
	Employer           decimal.Decimal // matches base + additional
	PensionableApplied decimal.Decimal
	Anomalies          []string
}

// CPP computes the period's pension contributions on the given pensionable
// earnings. Pure; cap-aware against ytd.
func CPP(pensionable decimal.Decimal, snap EmployeeSnapshot, ytd YtdState, rules taxrules.TaxYearRules) CPPResult {
	var out CPPResult
	if snap.CPPExempt || pensionable.Sign() <= 0 {
		return out
	}
	cpp := rules.CPP

	// Anomalous inputs: YTD already over a cap. Clamp to zero room and note it.
	if ytd.CPPBase.GreaterThan(cpp.MaxBaseContribution) {
		e := &CapExceededInputError{EmployeeID: snap.EmployeeID, Cap: "cpp_base",
			Maximum: cpp.MaxBaseContribution, Supplied: ytd.CPPBase}
		out.Anomalies = append(out.Anomalies, e.Error())
	}
	if ytd.CPP2.GreaterThan(cpp.MaxCPP2Contribution) {
		e := &CapExceededInputError{EmployeeID: snap.EmployeeID, Cap: "cpp2",
			Maximum: cpp.MaxCPP2Contribution, Supplied: ytd.CPP2}
		out.Anomalies = append(out.Anomalies, e.Error())
	}

	// Base tier: earnings room below the YMPE.
	baseRoom := cpp.YMPE.Sub(ytd.PensionableEarnings)
	if baseRoom.IsNegative() {
		baseRoom = decimal.Zero
	}
	basePensionable := decimal.Min(pensionable, baseRoom)

	periods := decimal.NewFromInt(int64(snap.Frequency.PeriodsPerYear()))
	exemption := cpp.BasicExemption.Div(periods)

	base := basePensionable.Sub(exemption).Mul(cpp.BaseRate)
	if base.IsNegative() {
		base = decimal.Zero
	}
	baseContribRoom := cpp.MaxBaseContribution.Sub(ytd.CPPBase)
	if baseContribRoom.IsNegative() {
		baseContribRoom = decimal.Zero
	}
	out.Base = round2(decimal.Min(base, baseContribRoom))

	// Second tier: earnings between the YMPE and YAMPE.
	if !snap.CPP2Exempt {
		after := ytd.PensionableEarnings.Add(pensionable)
		lower := decimal.Max(ytd.PensionableEarnings, cpp.YMPE)
		upper := decimal.Min(after, cpp.YAMPE)
		if upper.GreaterThan(lower) {
			cpp2 := upper.Sub(lower).Mul(cpp.CPP2Rate)
			cpp2Room := cpp.MaxCPP2Contribution.Sub(ytd.CPP2)
			if cpp2Room.IsNegative() {
				cpp2Room = decimal.Zero
			}
			out.Additional = round2(decimal.Min(cpp2, cpp2Room))
		}
	}

	// Pensionable earnings applied to YTD stop at the YAMPE.
	totalRoom := cpp.YAMPE.Sub(ytd.PensionableEarnings)
	if totalRoom.IsNegative() {
		totalRoom = decimal.Zero
	}
	out.PensionableApplied = decimal.Min(pensionable, totalRoom)

	out.Employer = out.Base.Add(out.Additional)
	return out
}
