package statutory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/maplepay/payroll-engine/statutory"
	"github.com/maplepay/payroll-engine/taxrules"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// rulesFor resolves the published tables for a jurisdiction and pay date.
func rulesFor(t *testing.T, j taxrules.Jurisdiction, payDate time.Time) taxrules.TaxYearRules {
	t.Helper()
	store, err := taxrules.DefaultStore()
	require.NoError(t, err)
	rules, err := store.Rules(j, payDate)
	require.NoError(t, err)
	return rules
}

// hourlyON is a biweekly Ontario hourly employee with a few years of
// service, the base fixture most tests start from.
func hourlyON() statutory.EmployeeSnapshot {
	return statutory.EmployeeSnapshot{
		EmployeeID:        "emp-1",
		Name:              "Test Employee",
		Jurisdiction:      taxrules.Ontario,
		Frequency:         statutory.Biweekly,
		Compensation:      statutory.Hourly,
		HourlyRate:        dec("25"),
		RegularHours:      dec("80"),
		WorkDaysPerPeriod: 10,
		HireDate:          date(2021, time.March, 15),
		PeriodEnd:         date(2025, time.June, 13),
		VacationMode:      statutory.VacationAccrual,
	}
}

// salariedBC is a semi-monthly British Columbia salaried employee.
func salariedBC() statutory.EmployeeSnapshot {
	return statutory.EmployeeSnapshot{
		EmployeeID:        "emp-2",
		Name:              "Test Employee Two",
		Jurisdiction:      taxrules.BritishColumbia,
		Frequency:         statutory.SemiMonthly,
		Compensation:      statutory.Salaried,
		AnnualSalary:      dec("96000"),
		WorkDaysPerPeriod: 11,
		HireDate:          date(2018, time.September, 4),
		PeriodEnd:         date(2025, time.June, 15),
		VacationMode:      statutory.VacationAccrual,
	}
}
