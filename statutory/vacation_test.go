package statutory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maplepay/payroll-engine/statutory"
)

func TestVacationPay_PayAsYouGo(t *testing.T) {
	// GIVEN: Ontario at 4 completed years (4% tier), pay-as-you-go
	snap := hourlyON()
	snap.VacationMode = statutory.VacationPayAsYouGo
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	res := statutory.VacationPay(dec("2000"), snap, rules, snap.PeriodEnd)

	// THEN: 2000 x 4% = 80 paid this period, nothing accrued
	assert.Equal(t, 4, res.YearsOfService)
	assert.True(t, res.Rate.Equal(dec("0.04")))
	assert.True(t, res.Paid.Equal(dec("80")), "got %s", res.Paid)
	assert.True(t, res.Accrued.IsZero())
}

func TestVacationPay_AccrualMode(t *testing.T) {
	snap := hourlyON()
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	res := statutory.VacationPay(dec("2000"), snap, rules, snap.PeriodEnd)

	assert.True(t, res.Paid.IsZero())
	assert.True(t, res.Accrued.Equal(dec("80")), "got %s", res.Accrued)
}

func TestVacationPay_LumpSumPayoutPeriod(t *testing.T) {
	// GIVEN: Lump-sum mode with a carried balance, in the payout period
	snap := hourlyON()
	snap.VacationMode = statutory.VacationLumpSum
	snap.VacationBalance = dec("1250.50")
	snap.PayVacationLumpSum = true
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	res := statutory.VacationPay(dec("2000"), snap, rules, snap.PeriodEnd)

	// THEN: The balance pays out while this period's earning still accrues
	assert.True(t, res.Paid.Equal(dec("1250.50")))
	assert.True(t, res.Accrued.Equal(dec("80")))
}

func TestVacationPay_LumpSumOutsidePayoutPeriod(t *testing.T) {
	snap := hourlyON()
	snap.VacationMode = statutory.VacationLumpSum
	snap.VacationBalance = dec("1250.50")
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	res := statutory.VacationPay(dec("2000"), snap, rules, snap.PeriodEnd)

	assert.True(t, res.Paid.IsZero())
	assert.True(t, res.Accrued.Equal(dec("80")))
}

func TestVacationPay_ExactAnniversaryGetsHigherTier(t *testing.T) {
	// GIVEN: Hired exactly 5 years before the reference date in Ontario
	snap := hourlyON()
	snap.HireDate = date(2020, time.June, 13)
	snap.VacationMode = statutory.VacationPayAsYouGo
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	res := statutory.VacationPay(dec("2000"), snap, rules, date(2025, time.June, 13))

	// THEN: The boundary employee lands on the 6% tier
	assert.Equal(t, 5, res.YearsOfService)
	assert.True(t, res.Rate.Equal(dec("0.06")))
	assert.True(t, res.Paid.Equal(dec("120")), "got %s", res.Paid)
}

func TestVacationPay_DayBeforeAnniversaryStaysOnLowerTier(t *testing.T) {
	snap := hourlyON()
	snap.HireDate = date(2020, time.June, 14)
	snap.VacationMode = statutory.VacationPayAsYouGo
	rules := rulesFor(t, snap.Jurisdiction, date(2025, time.June, 13))

	res := statutory.VacationPay(dec("2000"), snap, rules, date(2025, time.June, 13))

	assert.Equal(t, 4, res.YearsOfService)
	assert.True(t, res.Rate.Equal(dec("0.04")))
}
