/*
Package taxrules is the versioned store of statutory payroll constants.

PURPOSE:
  Holds the year- and jurisdiction-keyed tables every calculator consults:
  basic personal amounts, CPP/EI rates and annual maximums, progressive tax
  brackets, statutory holiday formulas, vacation-pay tiers, and overtime
  thresholds. Pure data plus lookup - nothing in this package computes pay.

KEY CONCEPTS IN THIS FILE (types.go):
  - Jurisdiction: Province/territory code (Quebec is out of scope)
  - Edition: Which revision of a year's tables applies ("jan", "jul")
  - BracketTable: Ordered, non-overlapping progressive tax brackets
  - CPPRules / EIRules: Contribution rates and annual caps
  - HolidayRules: Formula id + eligibility threshold + premium multiplier
  - VacationTiers: Years-of-service tiers mapping to vacation-pay rates
  - OvertimeRules: Daily/weekly/double-time thresholds

DESIGN PRINCIPLES:
  1. Immutability: Rule sets are constructed once and never mutated
  2. Precision: All rates and amounts are decimal.Decimal, never float64
  3. Explicitness: A missing rule is an error, never a silent fallback
  4. Injection: The Store is passed to calculators; no package-level state

SEE ALSO:
  - store.go: Lookup contract, edition selection, validation, caching
  - tables.go: The embedded rule data for supported years
*/
package taxrules

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// JURISDICTIONS
// =============================================================================

// Jurisdiction is a two-letter province or territory code.
type Jurisdiction string

const (
	Alberta              Jurisdiction = "AB"
	BritishColumbia      Jurisdiction = "BC"
	Manitoba             Jurisdiction = "MB"
	NewBrunswick         Jurisdiction = "NB"
	NewfoundlandLabrador Jurisdiction = "NL"
	NovaScotia           Jurisdiction = "NS"
	NorthwestTerritories Jurisdiction = "NT"
	Nunavut              Jurisdiction = "NU"
	Ontario              Jurisdiction = "ON"
	PrinceEdwardIsland   Jurisdiction = "PE"
	Saskatchewan         Jurisdiction = "SK"
	Yukon                Jurisdiction = "YT"
)

// Supported returns every jurisdiction the engine handles.
// Quebec runs its own pension and tax regime and is deliberately absent.
func Supported() []Jurisdiction {
	return []Jurisdiction{
		Alberta, BritishColumbia, Manitoba, NewBrunswick,
		NewfoundlandLabrador, NovaScotia, NorthwestTerritories, Nunavut,
		Ontario, PrinceEdwardIsland, Saskatchewan, Yukon,
	}
}

// Valid reports whether j is a supported jurisdiction.
func (j Jurisdiction) Valid() bool {
	for _, s := range Supported() {
		if j == s {
			return true
		}
	}
	return false
}

// =============================================================================
// EDITIONS - Mid-year rule revisions
// =============================================================================

// Edition identifies which revision of a year's tables applies.
// Most years only have a January edition; a July edition exists when the
// CRA publishes mid-year changes (e.g. the 2025 lowest-rate reduction).
type Edition string

const (
	EditionJan Edition = "jan"
	EditionJul Edition = "jul"
)

// EffectiveFrom returns the first pay date the edition covers in a year.
func (e Edition) EffectiveFrom(year int) time.Time {
	switch e {
	case EditionJul:
		return time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// =============================================================================
// TAX BRACKETS
// =============================================================================

// Bracket is one band of a progressive tax table. UpTo is the annual income
// ceiling of the band; a zero UpTo means the band is unbounded.
type Bracket struct {
	UpTo decimal.Decimal
	Rate decimal.Decimal
}

// BracketTable is an ordered list of non-overlapping brackets, lowest first.
type BracketTable []Bracket

// TaxOn returns the annual tax on the given annual taxable income.
func (bt BracketTable) TaxOn(annual decimal.Decimal) decimal.Decimal {
	if annual.Sign() <= 0 {
		return decimal.Zero
	}
	tax := decimal.Zero
	floor := decimal.Zero
	for _, b := range bt {
		ceiling := b.UpTo
		if ceiling.IsZero() || annual.LessThan(ceiling) {
			ceiling = annual
		}
		if ceiling.GreaterThan(floor) {
			tax = tax.Add(ceiling.Sub(floor).Mul(b.Rate))
		}
		if b.UpTo.IsZero() || annual.LessThanOrEqual(b.UpTo) {
			break
		}
		floor = b.UpTo
	}
	return tax
}

// LowestRate returns the rate of the first bracket. Non-refundable credits
// are valued at this rate.
func (bt BracketTable) LowestRate() decimal.Decimal {
	if len(bt) == 0 {
		return decimal.Zero
	}
	return bt[0].Rate
}

// =============================================================================
// CPP / EI
// =============================================================================

// CPPRules holds Canada Pension Plan constants for one year.
// The base tier applies up to the YMPE; the second tier (CPP2) applies to
// pensionable earnings between the YMPE and the YAMPE. The two caps are
// tracked independently.
type CPPRules struct {
	BasicExemption      decimal.Decimal // annual, prorated per pay period
	BaseRate            decimal.Decimal
	YMPE                decimal.Decimal // year's maximum pensionable earnings
	MaxBaseContribution decimal.Decimal
	CPP2Rate            decimal.Decimal
	YAMPE               decimal.Decimal // second earnings ceiling
	MaxCPP2Contribution decimal.Decimal
}

// EIRules holds Employment Insurance constants for one year.
type EIRules struct {
	Rate                 decimal.Decimal
	MaxInsurableEarnings decimal.Decimal
	MaxAnnualPremium     decimal.Decimal
	EmployerRateMultiple decimal.Decimal // employer premium = employee x this
}

// =============================================================================
// HOLIDAY PAY
// =============================================================================

// HolidayFormula selects how regular statutory holiday pay is computed.
type HolidayFormula string

const (
	// FormulaTrailingAverage: trailing 4-week wages (incl. vacation pay
	// paid in the window) divided by 20. Ontario-style.
	FormulaTrailingAverage HolidayFormula = "trailing_average"

	// FormulaAverageDailyWage: average daily hours x hourly rate for hourly
	// employees; annual salary / periods / work days for salaried. BC-style.
	FormulaAverageDailyWage HolidayFormula = "average_daily_wage"

	// FormulaPeriodAverage: current period earnings divided by days worked
	// in the period. Alberta-style.
	FormulaPeriodAverage HolidayFormula = "period_average"

	// FormulaGeneralAverage: fallback for jurisdictions without a bespoke
	// rule - period earnings divided by 20.
	FormulaGeneralAverage HolidayFormula = "general_average"
)

// KnownFormulas lists every formula the statutory package can dispatch on.
// Store validation checks jurisdictions against this set at startup.
func KnownFormulas() []HolidayFormula {
	return []HolidayFormula{
		FormulaTrailingAverage, FormulaAverageDailyWage,
		FormulaPeriodAverage, FormulaGeneralAverage,
	}
}

// HolidayRules configures statutory holiday pay for a jurisdiction.
type HolidayRules struct {
	Formula HolidayFormula

	// EligibilityDays is the minimum days employed before the holiday for
	// regular holiday pay. Ineligible employees still earn premium pay for
	// hours actually worked. Shift-adjacency eligibility checks are
	// deliberately not modelled.
	EligibilityDays int

	// PremiumRate multiplies the hourly rate for hours worked on the
	// holiday, independent of eligibility. Typically 1.5.
	PremiumRate decimal.Decimal
}

// =============================================================================
// VACATION TIERS
// =============================================================================

// VacationTier maps a years-of-service threshold to a vacation pay rate.
type VacationTier struct {
	MinYearsService int
	Rate            decimal.Decimal
}

// VacationTiers is ordered ascending by MinYearsService, starting at 0.
type VacationTiers []VacationTier

// RateFor returns the rate of the highest tier whose threshold is at or
// below the completed years of service. An employee sitting exactly on a
// tier boundary gets the higher tier.
func (vt VacationTiers) RateFor(yearsOfService int) decimal.Decimal {
	rate := decimal.Zero
	for _, t := range vt {
		if yearsOfService >= t.MinYearsService {
			rate = t.Rate
		}
	}
	return rate
}

// =============================================================================
// OVERTIME
// =============================================================================

// OvertimeRules holds a jurisdiction's overtime thresholds in hours.
// A zero threshold means the rule does not apply there: provinces with only
// a weekly threshold leave DailyThreshold zero and the daily rule is
// ignored entirely. DoubleTimeDaily is optional and province-specific.
type OvertimeRules struct {
	DailyThreshold  decimal.Decimal
	WeeklyThreshold decimal.Decimal
	DoubleTimeDaily decimal.Decimal
}

// =============================================================================
// ASSEMBLED RULES
// =============================================================================

// FederalRules is the federal slice of a rule set, shared by jurisdictions.
type FederalRules struct {
	BasicPersonalAmount decimal.Decimal
	Brackets            BracketTable
	CPP                 CPPRules
	EI                  EIRules
}

// ProvinceRules is the per-jurisdiction slice of a rule set.
type ProvinceRules struct {
	BasicPersonalAmount decimal.Decimal
	Brackets            BracketTable
	Holiday             HolidayRules
	Vacation            VacationTiers
	Overtime            OvertimeRules
}

/// RuleSet is one published revision of the tables: everything needed to pay
// any supported employee for pay dates the (year, edition) pair covers.
type RuleSet struct {
	Year      int
	Edition   Edition
	Federal   FederalRules
	Provinces map[Jurisdiction]ProvinceRules
}

// TaxYearRules is the assembled view handed to calculators: the federal
// rules plus one jurisdiction's rules for a specific (year, edition).
type TaxYearRules struct {
	Year         int
	Edition      Edition
	Jurisdiction Jurisdiction

	FederalBPA         decimal.Decimal
	ProvincialBPA      decimal.Decimal
	FederalBrackets    BracketTable
	ProvincialBrackets BracketTable

	CPP      CPPRules
	EI       EIRules
	Holiday  HolidayRules
	Vacation VacationTiers
	Overtime OvertimeRules
}
