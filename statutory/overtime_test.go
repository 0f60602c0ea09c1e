package statutory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/maplepay/payroll-engine/statutory"
	"github.com/maplepay/payroll-engine/taxrules"
)

func workWeek(hours ...float64) []statutory.DayHours {
	days := make([]statutory.DayHours, len(hours))
	base := date(2025, time.June, 2)
	for i, h := range hours {
		days[i] = statutory.DayHours{
			Date:  base.AddDate(0, 0, i),
			Hours: decimal.NewFromFloat(h),
		}
	}
	return days
}

func TestSplitOvertime_WeeklyOnlyOntario(t *testing.T) {
	// GIVEN: Ontario has only a 44-hour weekly threshold
	rules := taxrules.OvertimeRules{WeeklyThreshold: dec("44")}

	// WHEN: A 5x10 week (50 hours), no single day over any daily limit
	split := statutory.SplitOvertime(workWeek(10, 10, 10, 10, 10), rules)

	// THEN: 44 regular, 6 weekly overtime, no double time
	assert.True(t, split.Regular.Equal(dec("44")), "got %s", split.Regular)
	assert.True(t, split.Overtime.Equal(dec("6")), "got %s", split.Overtime)
	assert.True(t, split.DoubleTime.IsZero())
}

func TestSplitOvertime_DailyThresholdAlberta(t *testing.T) {
	// GIVEN: Alberta: daily 8, weekly 44
	rules := taxrules.OvertimeRules{DailyThreshold: dec("8"), WeeklyThreshold: dec("44")}

	// WHEN: One 12-hour day in an otherwise 8-hour week
	split := statutory.SplitOvertime(workWeek(8, 12, 8, 8, 8), rules)

	// THEN: 4 daily overtime; the remaining 40 regular hours stay under
	// the weekly threshold, so no double counting
	assert.True(t, split.Regular.Equal(dec("40")), "got %s", split.Regular)
	assert.True(t, split.Overtime.Equal(dec("4")), "got %s", split.Overtime)
}

func TestSplitOvertime_DoubleTimeBC(t *testing.T) {
	// GIVEN: BC: daily 8, double time after 12, weekly 40
	rules := taxrules.OvertimeRules{
		DailyThreshold:  dec("8"),
		WeeklyThreshold: dec("40"),
		DoubleTimeDaily: dec("12"),
	}

	// WHEN: A 14-hour day
	split := statutory.SplitOvertime(workWeek(14, 8, 8, 8), rules)

	// THEN: 8 regular + 4 overtime (8..12) + 2 double time (12..14), and
	// 32 regular on the other days
	assert.True(t, split.Regular.Equal(dec("32")), "got %s", split.Regular)
	assert.True(t, split.Overtime.Equal(dec("4")), "got %s", split.Overtime)
	assert.True(t, split.DoubleTime.Equal(dec("2")), "got %s", split.DoubleTime)
}

func TestSplitOvertime_HolidayDaysExcluded(t *testing.T) {
	// GIVEN: A week containing a worked statutory holiday
	rules := taxrules.OvertimeRules{WeeklyThreshold: dec("40")}
	days := workWeek(10, 10, 10, 10, 10)
	days[2].Holiday = true

	// WHEN: Splitting
	split := statutory.SplitOvertime(days, rules)

	// THEN: The holiday's 10 hours never enter the overtime math
	assert.True(t, split.Regular.Equal(dec("40")), "got %s", split.Regular)
	assert.True(t, split.Overtime.IsZero())
}

func TestSplitOvertime_DailyHoursNotDoubleCountedWeekly(t *testing.T) {
	// GIVEN: Daily 8 and weekly 40 together
	rules := taxrules.OvertimeRules{DailyThreshold: dec("8"), WeeklyThreshold: dec("40")}

	// WHEN: Five 10-hour days: 10 hours of daily overtime
	split := statutory.SplitOvertime(workWeek(10, 10, 10, 10, 10), rules)

	// THEN: The 40 remaining regular hours sit exactly at the weekly
	// threshold; the 10 daily-overtime hours are not counted again
	assert.True(t, split.Regular.Equal(dec("40")), "got %s", split.Regular)
	assert.True(t, split.Overtime.Equal(dec("10")), "got %s", split.Overtime)
}

func TestWorkedDays_SkipsHolidaysAndZeroDays(t *testing.T) {
	days := workWeek(8, 0, 8, 8)
	days[3].Holiday = true

	assert.Equal(t, 2, statutory.WorkedDays(days))
}

func TestSplitOvertime_SecondWeekWindow(t *testing.T) {
	// GIVEN: A biweekly period of 10 worked days, 45 hours each week
	rules := taxrules.OvertimeRules{WeeklyThreshold: dec("44")}
	days := workWeek(9, 9, 9, 9, 9, 0, 0, 9, 9, 9, 9, 9)

	split := statutory.SplitOvertime(days, rules)

	// THEN: Each 7-worked-day window is assessed independently
	assert.True(t, split.Overtime.GreaterThan(decimal.Zero))
	total := split.Regular.Add(split.Overtime)
	assert.True(t, total.Equal(dec("90")), "got %s", total)
}
