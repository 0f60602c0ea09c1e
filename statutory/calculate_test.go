package statutory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplepay/payroll-engine/statutory"
	"github.com/maplepay/payroll-engine/taxrules"
)

func TestCalculate_GrossMinusDeductionsIsNet(t *testing.T) {
	// GIVEN: A plain hourly employee
	snap := hourlyON()
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	res, err := statutory.Calculate(snap, statutory.YtdState{}, rules)
	require.NoError(t, err)

	// THEN: The identity holds exactly, no rounding drift
	assert.True(t, res.Gross.Sub(res.TotalDeductions).Equal(res.NetPay))
	assert.True(t, res.Gross.Equal(dec("2000")), "80h x $25, got %s", res.Gross)
}

func TestCalculate_Deterministic(t *testing.T) {
	// GIVEN: The same snapshot, YTD, and rules
	snap := hourlyON()
	snap.VacationMode = statutory.VacationPayAsYouGo
	snap.OtherEarnings = dec("150")
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))
	ytd := statutory.YtdState{Gross: dec("25000"), PensionableEarnings: dec("25000"),
		InsurableEarnings: dec("25000"), CPPBase: dec("1400"), EI: dec("410")}

	// WHEN: Calculating twice
	a, err := statutory.Calculate(snap, ytd, rules)
	require.NoError(t, err)
	b, err := statutory.Calculate(snap, ytd, rules)
	require.NoError(t, err)

	// THEN: Identical results
	assert.True(t, a.NetPay.Equal(b.NetPay))
	assert.True(t, a.NewYtd.Gross.Equal(b.NewYtd.Gross))
	assert.Equal(t, a.Anomalies, b.Anomalies)
}

func TestCalculate_HourlyWithDailyHoursUsesOvertimeSplit(t *testing.T) {
	// GIVEN: Ontario hourly with five 10-hour days and five 8-hour days
	snap := hourlyON()
	snap.DailyHours = workWeek(10, 10, 10, 10, 10, 0, 0, 8, 8, 8, 8, 8)
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	res, err := statutory.Calculate(snap, statutory.YtdState{}, rules)
	require.NoError(t, err)

	// THEN: 50h week spills 6h past Ontario's 44h weekly threshold.
	// Regular: 84h x 25 = 2100; overtime: 6 x 25 x 1.5 = 225
	assert.True(t, res.RegularEarnings.Equal(dec("2100")), "got %s", res.RegularEarnings)
	assert.True(t, res.OvertimeEarnings.Equal(dec("225")), "got %s", res.OvertimeEarnings)
}

func TestCalculate_PayAsYouGoVacationIsTaxed(t *testing.T) {
	// GIVEN: Two otherwise identical employees, one accruing, one paygo
	accruing := hourlyON()
	paygo := hourlyON()
	paygo.VacationMode = statutory.VacationPayAsYouGo
	rules := rulesFor(t, accruing.Jurisdiction, date(2025, time.June, 13))

	a, err := statutory.Calculate(accruing, statutory.YtdState{}, rules)
	require.NoError(t, err)
	p, err := statutory.Calculate(paygo, statutory.YtdState{}, rules)
	require.NoError(t, err)

	// THEN: Paygo gross includes the 4% and carries higher deductions
	assert.True(t, p.Gross.Equal(dec("2080")), "got %s", p.Gross)
	assert.True(t, a.Gross.Equal(dec("2000")))
	assert.True(t, p.TotalDeductions.GreaterThan(a.TotalDeductions))
	assert.True(t, a.VacationAccrued.Equal(dec("80")))
}

func TestCalculate_DeltaUsesAppliedAmounts(t *testing.T) {
	// GIVEN: YTD insurable just below the EI ceiling
	snap := hourlyON()
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.November, 7))
	ytd := statutory.YtdState{
		Gross:               dec("65000"),
		PensionableEarnings: dec("65000"),
		InsurableEarnings:   dec("65000"),
		CPPBase:             dec("3659.30"),
		EI:                  dec("1066.00"),
	}

	res, err := statutory.Calculate(snap, ytd, rules)
	require.NoError(t, err)

	// THEN: The insurable delta stops at the remaining room (700), while
	// gross records the full amount paid
	assert.True(t, res.Delta.InsurableEarnings.Equal(dec("700")))
	assert.True(t, res.Delta.Gross.Equal(dec("2000")))
	assert.True(t, res.NewYtd.InsurableEarnings.Equal(dec("65700")))
}

func TestCalculate_InvalidSnapshot(t *testing.T) {
	snap := hourlyON()
	snap.HourlyRate = decimal.Zero
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	_, err := statutory.Calculate(snap, statutory.YtdState{}, rules)

	require.Error(t, err)
	assert.ErrorIs(t, err, statutory.ErrInvalidSnapshot)
	var calcErr *statutory.CalculationError
	assert.ErrorAs(t, err, &calcErr)
	assert.Equal(t, "emp-1", calcErr.EmployeeID)
}

// =============================================================================
// BATCH
// =============================================================================

func TestCalculateBatch_ResultsInInputOrder(t *testing.T) {
	// GIVEN: A mixed batch across jurisdictions
	store, err := taxrules.DefaultStore()
	require.NoError(t, err)

	first := hourlyON()
	second := salariedBC()
	inputs := []statutory.BatchInput{
		{Snapshot: first},
		{Snapshot: second},
	}

	// WHEN: Calculating the batch
	results, summary, err := statutory.CalculateBatch(
		context.Background(), store, date(2025, time.June, 13), inputs)
	require.NoError(t, err)

	// THEN: Order matches inputs and sums match the parts
	require.Len(t, results, 2)
	assert.Equal(t, first.EmployeeID, results[0].EmployeeID)
	assert.Equal(t, second.EmployeeID, results[1].EmployeeID)
	assert.Equal(t, 2, summary.Employees)
	assert.True(t, summary.Gross.Equal(results[0].Gross.Add(results[1].Gross)))
	assert.True(t, summary.Net.Equal(results[0].NetPay.Add(results[1].NetPay)))
}

func TestCalculateBatch_OneFailureFailsTheBatch(t *testing.T) {
	store, err := taxrules.DefaultStore()
	require.NoError(t, err)

	bad := hourlyON()
	bad.EmployeeID = "emp-bad"
	bad.HourlyRate = decimal.Zero
	inputs := []statutory.BatchInput{
		{Snapshot: hourlyON()},
		{Snapshot: bad},
	}

	_, _, err = statutory.CalculateBatch(
		context.Background(), store, date(2025, time.June, 13), inputs)

	require.Error(t, err)
	var calcErr *statutory.CalculationError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, "emp-bad", calcErr.EmployeeID)
}

func TestCalculateBatch_ContextCancellation(t *testing.T) {
	store, err := taxrules.DefaultStore()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := make([]statutory.BatchInput, 100)
	for i := range inputs {
		snap := hourlyON()
		inputs[i] = statutory.BatchInput{Snapshot: snap}
	}

	_, _, err = statutory.CalculateBatch(ctx, store, date(2025, time.June, 13), inputs)

	assert.ErrorIs(t, err, context.Canceled)
}
