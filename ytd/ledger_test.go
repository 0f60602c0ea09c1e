package ytd_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplepay/payroll-engine/statutory"
	"github.com/maplepay/payroll-engine/ytd"
)

func delta(gross, cpp string) statutory.YtdState {
	g, _ := decimal.NewFromString(gross)
	c, _ := decimal.NewFromString(cpp)
	return statutory.YtdState{
		Gross:               g,
		PensionableEarnings: g,
		InsurableEarnings:   g,
		CPPBase:             c,
	}
}

func TestCommitRun_AdvancesState(t *testing.T) {
	// GIVEN: An empty ledger
	ctx := context.Background()
	ledger := ytd.NewMemory()

	// WHEN: Committing a run for two employees
	err := ledger.CommitRun(ctx, "run-1", 2025, map[string]statutory.YtdState{
		"emp-1": delta("2000", "110.50"),
		"emp-2": delta("3000", "170.49"),
	})
	require.NoError(t, err)

	// THEN: Each employee's state moved by exactly their delta
	s1, err := ledger.Get(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, s1.Gross.Equal(decimal.NewFromInt(2000)))

	committed, err := ledger.Committed(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, committed)
}

func TestCommitRun_CommitOnce(t *testing.T) {
	// GIVEN: A run already committed
	ctx := context.Background()
	ledger := ytd.NewMemory()
	deltas := map[string]statutory.YtdState{"emp-1": delta("2000", "110.50")}
	require.NoError(t, ledger.CommitRun(ctx, "run-1", 2025, deltas))

	// WHEN: Committing the same run again
	err := ledger.CommitRun(ctx, "run-1", 2025, deltas)

	// THEN: Rejected, state unchanged - never silently doubled
	assert.ErrorIs(t, err, ytd.ErrAlreadyCommitted)
	s, _ := ledger.Get(ctx, "emp-1", 2025)
	assert.True(t, s.Gross.Equal(decimal.NewFromInt(2000)))
}

func TestCommitRun_AllOrNothing(t *testing.T) {
	// GIVEN: A batch where one employee's delta is negative
	ctx := context.Background()
	ledger := ytd.NewMemory()
	bad := delta("2000", "110.50")
	bad.EI = decimal.NewFromInt(-5)

	// WHEN: Committing
	err := ledger.CommitRun(ctx, "run-1", 2025, map[string]statutory.YtdState{
		"emp-1": delta("2000", "110.50"),
		"emp-2": bad,
	})

	// THEN: The whole commit fails and no employee's state moved
	assert.ErrorIs(t, err, ytd.ErrNegativeDelta)
	s1, _ := ledger.Get(ctx, "emp-1", 2025)
	assert.True(t, s1.Gross.IsZero())

	committed, _ := ledger.Committed(ctx, "run-1")
	assert.False(t, committed)
}

func TestGet_UnknownYearIsZeroState(t *testing.T) {
	// GIVEN: A ledger with 2025 history only
	ctx := context.Background()
	ledger := ytd.NewMemory()
	ledger.Seed("emp-1", 2025, delta("50000", "2800"))

	// WHEN: Reading the next year
	s, err := ledger.Get(ctx, "emp-1", 2026)
	require.NoError(t, err)

	// THEN: Zero state - the year boundary is just a new key
	assert.True(t, s.Gross.IsZero())
	assert.True(t, s.CPPBase.IsZero())
}

func TestProject_PureAddition(t *testing.T) {
	base := delta("1000", "50")
	d := delta("500", "25")

	projected := ytd.Project(base, d)

	// The inputs are untouched; projection never mutates
	assert.True(t, projected.Gross.Equal(decimal.NewFromInt(1500)))
	assert.True(t, base.Gross.Equal(decimal.NewFromInt(1000)))
}
