/*
tables.go - Embedded statutory tables for supported years

PURPOSE:
  The rule data itself: federal and provincial constants for 2024 and 2025,
  including the July 2025 federal edition that carries the mid-year
  lowest-rate reduction. In production these tables are populated from an
  externally maintained configuration source; the engine only ever consumes
  them through the Store contract and never parses raw files itself.

CONVENTIONS:
  - All amounts and rates are decimal strings, never float literals.
  - Bracket ceilings are annual taxable income; the last bracket is open.
  - Vacation tiers are ascending by completed years of service.
  - Overtime thresholds of zero mean the rule does not apply.

SEE ALSO:
  - store.go: Lookup and validation
*/
package taxrules

import "github.com/shopspring/decimal"

// d parses a decimal literal from the tables. Table constants are
// hand-maintained, so a parse failure is a programming error.
func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic("taxrules: bad table constant " + s)
	}
	return v
}

// DefaultStore returns a store loaded with every embedded rule set.
func DefaultStore() (*Store, error) {
	return NewStore(RuleSet2024Jan(), RuleSet2025Jan(), RuleSet2025Jul())
}

// =============================================================================
// 2025
// =============================================================================

// RuleSet2025Jan is the January 2025 edition.
func RuleSet2025Jan() RuleSet {
	return RuleSet{
		Year:    2025,
		Edition: EditionJan,
		Federal: FederalRules{
			BasicPersonalAmount: d("16129"),
			Brackets: BracketTable{
				{UpTo: d("57375"), Rate: d("0.15")},
				{UpTo: d("114750"), Rate: d("0.205")},
				{UpTo: d("177882"), Rate: d("0.26")},
				{UpTo: d("253414"), Rate: d("0.29")},
				{Rate: d("0.33")},
			},
			CPP: CPPRules{
				BasicExemption:      d("3500"),
				BaseRate:            d("0.0595"),
				YMPE:                d("71300"),
				MaxBaseContribution: d("4034.10"),
				CPP2Rate:            d("0.04"),
				YAMPE:               d("81200"),
				MaxCPP2Contribution: d("396.00"),
			},
			EI: EIRules{
				Rate:                 d("0.0164"),
				MaxInsurableEarnings: d("65700"),
				MaxAnnualPremium:     d("1077.48"),
				EmployerRateMultiple: d("1.4"),
			},
		},
		Provinces: provinces2025(),
	}
}

// RuleSet2025Jul is the July 2025 edition: identical to January except the
// federal lowest rate drops to 14.5% for withholding in the second half.
func RuleSet2025Jul() RuleSet {
	set := RuleSet2025Jan()
	set.Edition = EditionJul
	set.Federal.Brackets = BracketTable{
		{UpTo: d("57375"), Rate: d("0.145")},
		{UpTo: d("114750"), Rate: d("0.205")},
		{UpTo: d("177882"), Rate: d("0.26")},
		{UpTo: d("253414"), Rate: d("0.29")},
		{Rate: d("0.33")},
	}
	return set
}

func provinces2025() map[Jurisdiction]ProvinceRules {
	return map[Jurisdiction]ProvinceRules{
		Alberta: {
			BasicPersonalAmount: d("22323"),
			Brackets: BracketTable{
				{UpTo: d("60000"), Rate: d("0.08")},
				{UpTo: d("151234"), Rate: d("0.10")},
				{UpTo: d("181481"), Rate: d("0.12")},
				{UpTo: d("241974"), Rate: d("0.13")},
				{UpTo: d("362961"), Rate: d("0.14")},
				{Rate: d("0.15")},
			},
			Holiday:  HolidayRules{Formula: FormulaPeriodAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {5, d("0.06")}},
			Overtime: OvertimeRules{DailyThreshold: d("8"), WeeklyThreshold: d("44")},
		},
		BritishColumbia: {
			BasicPersonalAmount: d("12932"),
			Brackets: BracketTable{
				{UpTo: d("49279"), Rate: d("0.0506")},
				{UpTo: d("98560"), Rate: d("0.077")},
				{UpTo: d("113158"), Rate: d("0.105")},
				{UpTo: d("137407"), Rate: d("0.1229")},
				{UpTo: d("186306"), Rate: d("0.147")},
				{UpTo: d("259829"), Rate: d("0.168")},
				{Rate: d("0.205")},
			},
			Holiday:  HolidayRules{Formula: FormulaAverageDailyWage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {5, d("0.06")}},
			Overtime: OvertimeRules{DailyThreshold: d("8"), WeeklyThreshold: d("40"), DoubleTimeDaily: d("12")},
		},
		Manitoba: {
			BasicPersonalAmount: d("15780"),
			Brackets: BracketTable{
				{UpTo: d("47564"), Rate: d("0.108")},
				{UpTo: d("101200"), Rate: d("0.1275")},
				{Rate: d("0.174")},
			},
			Holiday:  HolidayRules{Formula: FormulaGeneralAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {5, d("0.06")}},
			Overtime: OvertimeRules{DailyThreshold: d("8"), WeeklyThreshold: d("40")},
		},
		NewBrunswick: {
			BasicPersonalAmount: d("13396"),
			Brackets: BracketTable{
				{UpTo: d("51306"), Rate: d("0.094")},
				{UpTo: d("102614"), Rate: d("0.14")},
				{UpTo: d("190060"), Rate: d("0.16")},
				{Rate: d("0.195")},
			},
			Holiday:  HolidayRules{Formula: FormulaTrailingAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {8, d("0.06")}},
			Overtime: OvertimeRules{WeeklyThreshold: d("44")},
		},
		NewfoundlandLabrador: {
			BasicPersonalAmount: d("10818"),
			Brackets: BracketTable{
				{UpTo: d("44192"), Rate: d("0.087")},
				{UpTo: d("88382"), Rate: d("0.145")},
				{UpTo: d("157792"), Rate: d("0.158")},
				{UpTo: d("220910"), Rate: d("0.178")},
				{Rate: d("0.198")},
			},
			Holiday:  HolidayRules{Formula: FormulaGeneralAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {15, d("0.06")}},
			Overtime: OvertimeRules{WeeklyThreshold: d("40")},
		},
		NovaScotia: {
			BasicPersonalAmount: d("11744"),
			Brackets: BracketTable{
				{UpTo: d("30507"), Rate: d("0.0879")},
				{UpTo: d("61015"), Rate: d("0.1495")},
				{UpTo: d("95883"), Rate: d("0.1667")},
				{UpTo: d("154650"), Rate: d("0.175")},
				{Rate: d("0.21")},
			},
			Holiday:  HolidayRules{Formula: FormulaGeneralAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {8, d("0.06")}},
			Overtime: OvertimeRules{WeeklyThreshold: d("48")},
		},
		NorthwestTerritories: {
			BasicPersonalAmount: d("17842"),
			Brackets: BracketTable{
				{UpTo: d("51964"), Rate: d("0.059")},
				{UpTo: d("103930"), Rate: d("0.086")},
				{UpTo: d("168967"), Rate: d("0.122")},
				{Rate: d("0.1405")},
			},
			Holiday:  HolidayRules{Formula: FormulaPeriodAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {6, d("0.06")}},
			Overtime: OvertimeRules{DailyThreshold: d("8"), WeeklyThreshold: d("40")},
		},
		Nunavut: {
			BasicPersonalAmount: d("19274"),
			Brackets: BracketTable{
				{UpTo: d("54707"), Rate: d("0.04")},
				{UpTo: d("109413"), Rate: d("0.07")},
				{UpTo: d("177881"), Rate: d("0.09")},
				{Rate: d("0.115")},
			},
			Holiday:  HolidayRules{Formula: FormulaPeriodAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {5, d("0.06")}},
			Overtime: OvertimeRules{DailyThreshold: d("8"), WeeklyThreshold: d("40")},
		},
		Ontario: {
			BasicPersonalAmount: d("12747"),
			Brackets: BracketTable{
				{UpTo: d("52886"), Rate: d("0.0505")},
				{UpTo: d("105775"), Rate: d("0.0915")},
				{UpTo: d("150000"), Rate: d("0.1116")},
				{UpTo: d("220000"), Rate: d("0.1216")},
				{Rate: d("0.1316")},
			},
			Holiday:  HolidayRules{Formula: FormulaTrailingAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {5, d("0.06")}},
			Overtime: OvertimeRules{WeeklyThreshold: d("44")},
		},
		PrinceEdwardIsland: {
			BasicPersonalAmount: d("14250"),
			Brackets: BracketTable{
				{UpTo: d("33328"), Rate: d("0.095")},
				{UpTo: d("64656"), Rate: d("0.1347")},
				{UpTo: d("105000"), Rate: d("0.166")},
				{UpTo: d("140000"), Rate: d("0.1762")},
				{Rate: d("0.19")},
			},
			Holiday:  HolidayRules{Formula: FormulaTrailingAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}, {8, d("0.06")}},
			Overtime: OvertimeRules{WeeklyThreshold: d("48")},
		},
		Saskatchewan: {
			BasicPersonalAmount: d("18991"),
			Brackets: BracketTable{
				{UpTo: d("53463"), Rate: d("0.105")},
				{UpTo: d("152750"), Rate: d("0.125")},
				{Rate: d("0.145")},
			},
			Holiday:  HolidayRules{Formula: FormulaPeriodAverage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.0577")}, {10, d("0.0769")}},
			Overtime: OvertimeRules{DailyThreshold: d("8"), WeeklyThreshold: d("40")},
		},
		Yukon: {
			BasicPersonalAmount: d("16129"),
			Brackets: BracketTable{
				{UpTo: d("57375"), Rate: d("0.064")},
				{UpTo: d("114750"), Rate: d("0.09")},
				{UpTo: d("177882"), Rate: d("0.109")},
				{UpTo: d("500000"), Rate: d("0.128")},
				{Rate: d("0.15")},
			},
			Holiday:  HolidayRules{Formula: FormulaAverageDailyWage, EligibilityDays: 30, PremiumRate: d("1.5")},
			Vacation: VacationTiers{{0, d("0.04")}},
			Overtime: OvertimeRules{DailyThreshold: d("8"), WeeklyThreshold: d("40")},
		},
	}
}

// =============================================================================
// 2024
// =============================================================================

// RuleSet2024Jan is the January 2024 edition. 2024 had no mid-year revision.
func RuleSet2024Jan() RuleSet {
	provinces := provinces2025()

	// Jurisdiction constants that moved between 2024 and 2025. Holiday,
	// vacation, and overtime rules were unchanged across the two years.
	ab := provinces[Alberta]
	ab.BasicPersonalAmount = d("21885")
	ab.Brackets = BracketTable{
		{UpTo: d("148269"), Rate: d("0.10")},
		{UpTo: d("177922"), Rate: d("0.12")},
		{UpTo: d("237230"), Rate: d("0.13")},
		{UpTo: d("355845"), Rate: d("0.14")},
		{Rate: d("0.15")},
	}
	provinces[Alberta] = ab

	bc := provinces[BritishColumbia]
	bc.BasicPersonalAmount = d("12580")
	bc.Brackets = BracketTable{
		{UpTo: d("47937"), Rate: d("0.0506")},
		{UpTo: d("95875"), Rate: d("0.077")},
		{UpTo: d("110076"), Rate: d("0.105")},
		{UpTo: d("133664"), Rate: d("0.1229")},
		{UpTo: d("181232"), Rate: d("0.147")},
		{UpTo: d("252752"), Rate: d("0.168")},
		{Rate: d("0.205")},
	}
	provinces[BritishColumbia] = bc

	on := provinces[Ontario]
	on.BasicPersonalAmount = d("12399")
	on.Brackets = BracketTable{
		{UpTo: d("51446"), Rate: d("0.0505")},
		{UpTo: d("102894"), Rate: d("0.0915")},
		{UpTo: d("150000"), Rate: d("0.1116")},
		{UpTo: d("220000"), Rate: d("0.1216")},
		{Rate: d("0.1316")},
	}
	provinces[Ontario] = on

	return RuleSet{
		Year:    2024,
		Edition: EditionJan,
		Federal: FederalRules{
			BasicPersonalAmount: d("15705"),
			Brackets: BracketTable{
				{UpTo: d("55867"), Rate: d("0.15")},
				{UpTo: d("111733"), Rate: d("0.205")},
				{UpTo: d("173205"), Rate: d("0.26")},
				{UpTo: d("246752"), Rate: d("0.29")},
				{Rate: d("0.33")},
			},
			CPP: CPPRules{
				BasicExemption:      d("3500"),
				BaseRate:            d("0.0595"),
				YMPE:                d("68500"),
				MaxBaseContribution: d("3867.50"),
				CPP2Rate:            d("0.04"),
				YAMPE:               d("73200"),
				MaxCPP2Contribution: d("188.00"),
			},
			EI: EIRules{
				Rate:                 d("0.0166"),
				MaxInsurableEarnings: d("63200"),
				MaxAnnualPremium:     d("1049.12"),
				EmployerRateMultiple: d("1.4"),
			},
		},
		Provinces: provinces,
	}
}
