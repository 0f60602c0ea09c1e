package employees

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/statutory"
	"github.com/maplepay/payroll-engine/taxrules"
)

// SeedDirectory returns a directory of demo employees spanning several
// jurisdictions, compensation types, and vacation modes. Used by the dev
// server so the API is explorable without an external profile service.
func SeedDirectory() *Directory {
	return NewDirectory(
		statutory.EmployeeSnapshot{
			EmployeeID:        "emp-on-001",
			Name:              "Priya Raman",
			Jurisdiction:      taxrules.Ontario,
			Frequency:         statutory.Biweekly,
			Compensation:      statutory.Hourly,
			HourlyRate:        decimal.NewFromInt(25),
			RegularHours:      decimal.NewFromInt(80),
			WorkDaysPerPeriod: 10,
			VacationMode:      statutory.VacationPayAsYouGo,
			HireDate:          time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC),
		},
		statutory.EmployeeSnapshot{
			EmployeeID:        "emp-bc-001",
			Name:              "Mei-Ling Chow",
			Jurisdiction:      taxrules.BritishColumbia,
			Frequency:         statutory.SemiMonthly,
			Compensation:      statutory.Salaried,
			AnnualSalary:      decimal.NewFromInt(96000),
			WorkDaysPerPeriod: 11,
			VacationMode:      statutory.VacationAccrual,
			HireDate:          time.Date(2018, time.September, 4, 0, 0, 0, 0, time.UTC),
		},
		statutory.EmployeeSnapshot{
			EmployeeID:        "emp-ab-001",
			Name:              "Daniel Okafor",
			Jurisdiction:      taxrules.Alberta,
			Frequency:         statutory.Biweekly,
			Compensation:      statutory.Salaried,
			AnnualSalary:      decimal.NewFromInt(145000),
			WorkDaysPerPeriod: 10,
			VacationMode:      statutory.VacationLumpSum,
			HireDate:          time.Date(2015, time.January, 12, 0, 0, 0, 0, time.UTC),
		},
		statutory.EmployeeSnapshot{
			EmployeeID:        "emp-sk-001",
			Name:              "Sofia Dube",
			Jurisdiction:      taxrules.Saskatchewan,
			Frequency:         statutory.Weekly,
			Compensation:      statutory.Hourly,
			HourlyRate:        decimal.NewFromFloat(31.50),
			RegularHours:      decimal.NewFromInt(40),
			WorkDaysPerPeriod: 5,
			VacationMode:      statutory.VacationPayAsYouGo,
			HireDate:          time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
		},
	)
}
