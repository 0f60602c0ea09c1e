package statutory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maplepay/payroll-engine/statutory"
)

func TestFederalTax_AnnualizationVector(t *testing.T) {
	// GIVEN: Ontario biweekly, $3,000 period taxable, 2025 jan tables
	// Annualized 78,000 spans the 15% and 20.5% brackets; BPA credit at 15%
	snap := hourlyON()
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.March, 14))

	got := statutory.FederalTax(dec("3000"), snap, rules)

	// (8606.25 + 4228.125 - 16129 x 0.15) / 26 = 400.58
	assert.True(t, got.Equal(dec("400.58")), "got %s", got)
}

func TestProvincialTax_AnnualizationVector(t *testing.T) {
	snap := hourlyON()
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.March, 14))

	got := statutory.ProvincialTax(dec("3000"), snap, rules)

	// Ontario: (2670.743 + 2297.931 - 12747 x 0.0505) / 26 = 166.34
	assert.True(t, got.Equal(dec("166.34")), "got %s", got)
}

func TestFederalTax_JulEditionWithholdsLess(t *testing.T) {
	// GIVEN: The same income under the jan and jul 2025 editions
	snap := hourlyON()
	jan := rulesFor(t, snap.Jurisdiction, date(2025, time.March, 14))
	jul := rulesFor(t, snap.Jurisdiction, date(2025, time.August, 8))

	// THEN: The mid-year rate cut lowers the withholding
	janTax := statutory.FederalTax(dec("3000"), snap, jan)
	julTax := statutory.FederalTax(dec("3000"), snap, jul)
	assert.True(t, julTax.LessThan(janTax), "jul %s should be below jan %s", julTax, janTax)
}

func TestTax_CreditsClampAtZero(t *testing.T) {
	// GIVEN: Period income far below the basic personal amount
	snap := hourlyON()
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.March, 14))

	// WHEN: Annualized income is fully covered by credits
	got := statutory.FederalTax(dec("100"), snap, rules)

	// THEN: Withholding clamps at zero, never refunds
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestTax_AdditionalClaimReducesWithholding(t *testing.T) {
	// GIVEN: A $10,000 extra TD1 claim on top of the BPA
	base := hourlyON()
	claimed := hourlyON()
	claimed.FederalClaim = dec("10000")
	rules := rulesFor(t, base.Jurisdiction, date(2025, time.March, 14))

	baseTax := statutory.FederalTax(dec("3000"), base, rules)
	claimedTax := statutory.FederalTax(dec("3000"), claimed, rules)

	// THEN: 10000 x 15% / 26 = 57.69 less per period
	diff := baseTax.Sub(claimedTax)
	assert.True(t, diff.Equal(dec("57.69")), "got %s", diff)
}

func TestTax_ZeroTaxableIncome(t *testing.T) {
	snap := hourlyON()
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.March, 14))

	assert.True(t, statutory.FederalTax(dec("0"), snap, rules).IsZero())
	assert.True(t, statutory.ProvincialTax(dec("-50"), snap, rules).IsZero())
}
