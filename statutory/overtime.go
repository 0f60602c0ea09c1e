/*
overtime.go - Daily/weekly overtime split

PURPOSE:
  Splits a period's daily hour totals into regular, overtime, and
  double-time buckets per the jurisdiction's thresholds. Hours on days
  flagged as statutory holidays are excluded entirely - they are paid
  through the holiday premium path, not the overtime path.

RULES:
  - DailyThreshold > 0: hours above it on any single day are overtime;
    hours above DoubleTimeDaily (when set) are double-time.
  - WeeklyThreshold > 0: regular hours above it across the period's weeks
    spill into overtime. Jurisdictions with only a weekly threshold leave
    DailyThreshold zero and the daily rule is ignored entirely.
  - The same hour is never counted twice: daily-overtime hours do not
    count toward the weekly threshold.
*/
package statutory

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// OvertimeSplit is the bucketed hours for a period.
type OvertimeSplit struct {
	Regular    decimal.Decimal
	Overtime   decimal.Decimal
	DoubleTime decimal.Decimal
}

// SplitOvertime buckets the given daily hours under the jurisdiction's
// thresholds. Weeks are consecutive 7-day windows over the slice, which
// the snapshot supplies in date order.
func SplitOvertime(days []DayHours, rules taxrules.OvertimeRules) OvertimeSplit {
	var out OvertimeSplit

	daily := rules.DailyThreshold
	double := rules.DoubleTimeDaily

	// Daily pass. Track per-day regular hours for the weekly pass; rest
	// days and holidays stay in the slice as zero so the 7-day windows
	// keep their date alignment.
	regularByDay := make([]decimal.Decimal, 0, len(days))
	for _, day := range days {
		if day.Holiday || day.Hours.Sign() <= 0 {
			regularByDay = append(regularByDay, decimal.Zero)
			continue
		}
		h := day.Hours
		reg := h

		if double.Sign() > 0 && h.GreaterThan(double) {
			out.DoubleTime = out.DoubleTime.Add(h.Sub(double))
			h = double
			reg = double
		}
		if daily.Sign() > 0 && h.GreaterThan(daily) {
			out.Overtime = out.Overtime.Add(h.Sub(daily))
			reg = daily
		}
		regularByDay = append(regularByDay, reg)
	}

	// Weekly pass over consecutive 7-day windows of the period.
	weekly := rules.WeeklyThreshold
	for start := 0; start < len(regularByDay); start += 7 {
		end := start + 7
		if end > len(regularByDay) {
			end = len(regularByDay)
		}
		weekTotal := decimal.Zero
		for _, h := range regularByDay[start:end] {
			weekTotal = weekTotal.Add(h)
		}
		if weekly.Sign() > 0 && weekTotal.GreaterThan(weekly) {
			out.Overtime = out.Overtime.Add(weekTotal.Sub(weekly))
			weekTotal = weekly
		}
		out.Regular = out.Regular.Add(weekTotal)
	}
	return out
}

// WorkedDays counts days with non-holiday hours, used by the holiday-pay
// period_average formula.
func WorkedDays(days []DayHours) int {
	n := 0
	for _, day := range days {
		if !day.Holiday && day.Hours.Sign() > 0 {
			n++
		}
	}
	return n
}
