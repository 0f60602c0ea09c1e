package payrun_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maplepay/payroll-engine/payrun"
	"github.com/maplepay/payroll-engine/statutory"
)

func TestStatus_TransitionTable(t *testing.T) {
	legal := []struct{ from, to payrun.Status }{
		{payrun.StatusDraft, payrun.StatusPendingApproval},
		{payrun.StatusDraft, payrun.StatusCancelled},
		{payrun.StatusPendingApproval, payrun.StatusApproved},
		{payrun.StatusPendingApproval, payrun.StatusDraft},
		{payrun.StatusPendingApproval, payrun.StatusCancelled},
		{payrun.StatusApproved, payrun.StatusPaid},
	}
	for _, tc := range legal {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct{ from, to payrun.Status }{
		{payrun.StatusDraft, payrun.StatusApproved},
		{payrun.StatusDraft, payrun.StatusPaid},
		{payrun.StatusApproved, payrun.StatusDraft},
		{payrun.StatusApproved, payrun.StatusCancelled},
		{payrun.StatusPaid, payrun.StatusDraft},
		{payrun.StatusCancelled, payrun.StatusDraft},
	}
	for _, tc := range illegal {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestStatus_Mutable(t *testing.T) {
	assert.True(t, payrun.StatusDraft.Mutable())
	assert.True(t, payrun.StatusPendingApproval.Mutable())
	assert.False(t, payrun.StatusApproved.Mutable())
	assert.False(t, payrun.StatusPaid.Mutable())
	assert.False(t, payrun.StatusCancelled.Mutable())
}

func TestRecordInput_Apply(t *testing.T) {
	// GIVEN: A snapshot and a patch touching two fields
	snap := statutory.EmployeeSnapshot{
		EmployeeID:   "emp-1",
		RegularHours: *decp("80"),
	}
	in := payrun.RecordInput{
		RegularHours:  decp("90"),
		OtherEarnings: decp("100"),
	}

	// WHEN: Applying
	got := in.Apply(snap)

	// THEN: Patched fields replaced, everything else untouched
	assert.True(t, got.RegularHours.Equal(*decp("90")))
	assert.True(t, got.OtherEarnings.Equal(*decp("100")))
	assert.Equal(t, "emp-1", got.EmployeeID)
	assert.False(t, in.Empty())
	assert.True(t, payrun.RecordInput{}.Empty())
}

func TestRun_Resum(t *testing.T) {
	run := &payrun.PayrollRun{
		Records: []payrun.PayrollRecord{
			{Result: statutory.Result{Gross: *decp("2000"), TotalDeductions: *decp("500"), NetPay: *decp("1500"), EmployerCost: *decp("100")}},
			{Result: statutory.Result{Gross: *decp("3000"), TotalDeductions: *decp("700"), NetPay: *decp("2300"), EmployerCost: *decp("150")}},
		},
	}

	run.Resum()

	assert.Equal(t, 2, run.Totals.Employees)
	assert.True(t, run.Totals.Gross.Equal(*decp("5000")))
	assert.True(t, run.Totals.Deductions.Equal(*decp("1200")))
	assert.True(t, run.Totals.Net.Equal(*decp("3800")))
	assert.True(t, run.Totals.EmployerCost.Equal(*decp("250")))
}
