/*
calculate.go - Per-employee orchestration and batch calculation

PURPOSE:
  Composes the statutory calculators into one gross-to-net Result with a
  fixed sequence:

    1. Resolve gross components: hours -> overtime split -> earnings,
       then holiday pay and vacation pay per the employee's mode
       (pay-as-you-go vacation joins taxable gross BEFORE deductions)
    2. CPP/CPP2 and EI against the capped YTD position
    3. Federal and provincial tax on gross minus pre-tax deductions
    4. Net = gross - all deductions
    5. Projected new YTD

  Any rule-resolution failure aborts the whole employee calculation;
  partial results are never returned.

BATCH:
  CalculateBatch prices each employee independently (no cross-employee
  state) and fans out across a bounded worker pool, returning per-employee
  results in input order plus run-level sums. A single failing employee
  fails the batch with that employee's context attached.
*/
package statutory

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/taxrules"
)

// Pay multipliers for split hours. Premium holiday multipliers live in the
// rule tables; these two are uniform across jurisdictions.
var (
	overtimeMultiple   = decimal.NewFromFloat(1.5)
	doubleTimeMultiple = decimal.NewFromInt(2)
)

// Calculate produces the complete gross-to-net result for one employee and
// one pay period. Pure: same inputs, same output, no side effects.
func Calculate(snap EmployeeSnapshot, ytd YtdState, rules taxrules.TaxYearRules) (Result, error) {
	if err := validateSnapshot(snap); err != nil {
		return Result{}, &CalculationError{EmployeeID: snap.EmployeeID, Jurisdiction: snap.Jurisdiction, Err: err}
	}

	out := Result{EmployeeID: snap.EmployeeID}

	// 1a. Hours to earnings.
	var daysWorked int
	switch {
	case snap.Compensation == Hourly && len(snap.DailyHours) > 0:
		split := SplitOvertime(snap.DailyHours, rules.Overtime)
		out.RegularEarnings = round2(split.Regular.Mul(snap.HourlyRate))
		out.OvertimeEarnings = round2(
			split.Overtime.Mul(snap.HourlyRate).Mul(overtimeMultiple).
				Add(split.DoubleTime.Mul(snap.HourlyRate).Mul(doubleTimeMultiple)))
		daysWorked = WorkedDays(snap.DailyHours)
	case snap.Compensation == Hourly:
		out.RegularEarnings = round2(snap.RegularHours.Mul(snap.HourlyRate))
		daysWorked = defaultWorkDays(snap)
	default: // salaried
		periods := decimal.NewFromInt(int64(snap.Frequency.PeriodsPerYear()))
		out.RegularEarnings = round2(snap.AnnualSalary.Div(periods))
		daysWorked = defaultWorkDays(snap)
	}
	periodEarnings := out.RegularEarnings.Add(out.OvertimeEarnings)

	// 1b. Statutory holiday pay.
	holiday, err := HolidayPay(snap, rules, periodEarnings, daysWorked)
	if err != nil {
		return Result{}, &CalculationError{EmployeeID: snap.EmployeeID, Jurisdiction: snap.Jurisdiction, Err: err}
	}
	out.HolidayPay = holiday.RegularPay
	out.HolidayPremium = holiday.PremiumPay

	// 1c. Vacation pay. Pay-as-you-go joins taxable gross now; accrual
	// only moves the balance.
	out.OtherEarnings = round2(snap.OtherEarnings)
	vacationable := periodEarnings.
		Add(out.HolidayPay).
		Add(out.HolidayPremium).
		Add(out.OtherEarnings)
	vacation := VacationPay(vacationable, snap, rules, snap.PeriodEnd)
	out.VacationPaid = vacation.Paid
	out.VacationAccrued = vacation.Accrued

	out.Gross = vacationable.Add(out.VacationPaid)

	// 2. CPP/EI against capped YTD. Everything paid is pensionable and
	// insurable.
	cpp := CPP(out.Gross, snap, ytd, rules)
	out.CPPBase = cpp.Base
	out.CPP2 = cpp.Additional
	out.EmployerCPP = cpp.Employer
	out.Anomalies = append(out.Anomalies, cpp.Anomalies...)

	ei := EI(out.Gross, snap, ytd, rules)
	out.EI = ei.Premium
	out.EmployerEI = ei.Employer
	out.Anomalies = append(out.Anomalies, ei.Anomalies...)

	// 3. Income tax on gross minus pre-tax deductions.
	out.PreTaxDeductions = round2(snap.PreTaxDeductions)
	taxable := out.Gross.Sub(out.PreTaxDeductions)
	out.FederalTax = FederalTax(taxable, snap, rules)
	out.ProvincialTax = ProvincialTax(taxable, snap, rules)

	// 4. Net pay.
	out.TotalDeductions = out.PreTaxDeductions.
		Add(out.CPPBase).Add(out.CPP2).Add(out.EI).
		Add(out.FederalTax).Add(out.ProvincialTax)
	out.NetPay = out.Gross.Sub(out.TotalDeductions)
	out.EmployerCost = out.EmployerCPP.Add(out.EmployerEI)

	// 5. Projected YTD.
	out.Delta = YtdState{
		Gross:               out.Gross,
		PensionableEarnings: cpp.PensionableApplied,
		InsurableEarnings:   ei.InsurableApplied,
		CPPBase:             out.CPPBase,
		CPP2:                out.CPP2,
		EI:                  out.EI,
		FederalTax:          out.FederalTax,
		ProvincialTax:       out.ProvincialTax,
	}
	out.NewYtd = ytd.Add(out.Delta)

	return out, nil
}

func validateSnapshot(snap EmployeeSnapshot) error {
	if snap.EmployeeID == "" {
		return fmt.Errorf("%w: employee id required", ErrInvalidSnapshot)
	}
	if !snap.Jurisdiction.Valid() {
		return fmt.Errorf("%w: unsupported jurisdiction %q", ErrInvalidSnapshot, snap.Jurisdiction)
	}
	switch snap.Compensation {
	case Hourly:
		if snap.HourlyRate.Sign() <= 0 {
			return fmt.Errorf("%w: hourly employee without hourly rate", ErrInvalidSnapshot)
		}
	case Salaried:
		if snap.AnnualSalary.Sign() <= 0 {
			return fmt.Errorf("%w: salaried employee without annual salary", ErrInvalidSnapshot)
		}
	default:
		return fmt.Errorf("%w: unknown compensation type %q", ErrInvalidSnapshot, snap.Compensation)
	}
	return nil
}

func defaultWorkDays(snap EmployeeSnapshot) int {
	if snap.WorkDaysPerPeriod > 0 {
		return snap.WorkDaysPerPeriod
	}
	return 10
}

// =============================================================================
// BATCH
// =============================================================================

// BatchInput pairs one employee's snapshot with their YTD position.
type BatchInput struct {
	Snapshot EmployeeSnapshot
	Ytd      YtdState
}

// BatchSummary is the run-level rollup of a batch calculation.
type BatchSummary struct {
	Employees    int
	Gross        decimal.Decimal
	Deductions   decimal.Decimal
	Net          decimal.Decimal
	EmployerCost decimal.Decimal
}

// CalculateBatch prices every input independently against the rule store
// and returns results in input order plus the run-level summary. The batch
// fails as a whole if any employee fails; the error names the employee.
func CalculateBatch(ctx context.Context, store *taxrules.Store, payDate time.Time, inputs []BatchInput) ([]Result, BatchSummary, error) {
	results := make([]Result, len(inputs))
	errs := make([]error, len(inputs))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(inputs) {
		workers = len(inputs)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				in := inputs[i]
				rules, err := store.Rules(in.Snapshot.Jurisdiction, payDate)
				if err != nil {
					errs[i] = &CalculationError{EmployeeID: in.Snapshot.EmployeeID, Jurisdiction: in.Snapshot.Jurisdiction, Err: err}
					continue
				}
				results[i], errs[i] = Calculate(in.Snapshot, in.Ytd, rules)
			}
		}()
	}

	for i := range inputs {
		select {
		case <-ctx.Done():
			// Drain: let workers exit, report cancellation.
			close(jobs)
			wg.Wait()
			return nil, BatchSummary{}, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	summary := BatchSummary{Employees: len(inputs)}
	for i, err := range errs {
		if err != nil {
			return nil, BatchSummary{}, err
		}
		summary.Gross = summary.Gross.Add(results[i].Gross)
		summary.Deductions = summary.Deductions.Add(results[i].TotalDeductions)
		summary.Net = summary.Net.Add(results[i].NetPay)
		summary.EmployerCost = summary.EmployerCost.Add(results[i].EmployerCost)
	}
	return results, summary, nil
}
