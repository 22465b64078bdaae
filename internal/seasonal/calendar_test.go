package seasonal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOfYear_KnownDates(t *testing.T) {
	assert.Equal(t, 1, DayOfYear(1, 1))
	assert.Equal(t, 32, DayOfYear(2, 1))
	assert.Equal(t, 60, DayOfYear(3, 1))
	assert.Equal(t, 182, DayOfYear(7, 1))
	assert.Equal(t, 365, DayOfYear(12, 31))
}

func TestDayOfYear_LeapDaySharesSlot(t *testing.T) {
	// Feb 29 lands on the same key as Mar 1 so leap years stay comparable
	assert.Equal(t, DayOfYear(3, 1), DayOfYear(2, 29))
}

func TestDateFromDayOfYear_RoundTrip(t *testing.T) {
	for doy := 1; doy <= 365; doy++ {
		month, day := DateFromDayOfYear(doy)
		assert.Equal(t, doy, DayOfYear(month, day), "day-of-year %d", doy)
	}
}

func TestDateFromDayOfYear_Clamps(t *testing.T) {
	month, day := DateFromDayOfYear(0)
	assert.Equal(t, 1, month)
	assert.Equal(t, 1, day)

	month, day = DateFromDayOfYear(400)
	assert.Equal(t, 12, month)
	assert.Equal(t, 31, day)
}

func TestMonthDayLabel_NoZeroPadding(t *testing.T) {
	assert.Equal(t, "Mar-10", MonthDayLabel(3, 10))
	assert.Equal(t, "Jan-2", MonthDayLabel(1, 2))
	assert.Equal(t, "Dec-31", MonthDayLabel(12, 31))
}

func TestDayOfYearLabel(t *testing.T) {
	assert.Equal(t, "Jan-1", DayOfYearLabel(1))
	assert.Equal(t, "Mar-1", DayOfYearLabel(60))
	assert.Equal(t, "Dec-31", DayOfYearLabel(365))
}

func TestParseMonthDay_Valid(t *testing.T) {
	date, ok := ParseMonthDay("Mar-10", 2023)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC), date)
}

func TestParseMonthDay_ClampsToMonthLength(t *testing.T) {
	date, ok := ParseMonthDay("Feb-30", 2023)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), date)

	// Leap year keeps one extra day
	date, ok = ParseMonthDay("Feb-30", 2024)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), date)
}

func TestParseMonthDay_UnknownMonthReadsAsJanuary(t *testing.T) {
	date, ok := ParseMonthDay("Xxx-5", 2023)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC), date)
}

func TestParseMonthDay_Malformed(t *testing.T) {
	_, ok := ParseMonthDay("nolabel", 2023)
	assert.False(t, ok)

	_, ok = ParseMonthDay("Jan-x", 2023)
	assert.False(t, ok)
}

func TestFirstMonday(t *testing.T) {
	// 2024-01-01 is itself a Monday
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), FirstMonday(2024))
	// 2023-01-01 is a Sunday
	assert.Equal(t, time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC), FirstMonday(2023))
	// 2022-01-01 is a Saturday
	assert.Equal(t, time.Date(2022, time.January, 3, 0, 0, 0, 0, time.UTC), FirstMonday(2022))
}

func TestPeriodDays(t *testing.T) {
	assert.Equal(t, 7, PeriodDays(PeriodWeekly, "Week 12"))
	assert.Equal(t, 7, PeriodDays(PeriodWeekly, "Week 1+"))
	assert.Equal(t, 31, PeriodDays(PeriodMonthly, "Jan"))
	assert.Equal(t, 28, PeriodDays(PeriodMonthly, "Feb"))
	assert.Equal(t, 30, PeriodDays(PeriodMonthly, "Apr"))
	assert.Equal(t, 31, PeriodDays(PeriodMonthly, "Dec+"))
	assert.Equal(t, 30, PeriodDays(PeriodMonthly, "garbage"))
}

func TestPeriodDateLabel_Monthly(t *testing.T) {
	assert.Equal(t, "Jan-1", PeriodDateLabel(PeriodMonthly, "Jan", 0, true))
	assert.Equal(t, "Jan-31", PeriodDateLabel(PeriodMonthly, "Jan", 0, false))
	assert.Equal(t, "Feb-6", PeriodDateLabel(PeriodMonthly, "Feb", 5, true))
	// Feb 28 + 5 overflows into March
	assert.Equal(t, "Mar-5", PeriodDateLabel(PeriodMonthly, "Feb", 5, false))
	// December overflow wraps into January
	assert.Equal(t, "Jan-3", PeriodDateLabel(PeriodMonthly, "Dec", 3, false))
	// Rollover labels behave like their base month
	assert.Equal(t, "Jan-1", PeriodDateLabel(PeriodMonthly, "Jan+", 0, true))
}

func TestPeriodDateLabel_Weekly(t *testing.T) {
	assert.Equal(t, "Jan-1", PeriodDateLabel(PeriodWeekly, "Week 1", 0, true))
	assert.Equal(t, "Jan-7", PeriodDateLabel(PeriodWeekly, "Week 1", 0, false))
	assert.Equal(t, "Jan-8", PeriodDateLabel(PeriodWeekly, "Week 2", 0, true))
	assert.Equal(t, "Jan-4", PeriodDateLabel(PeriodWeekly, "Week 1", 3, true))
	assert.Equal(t, "Jan-1", PeriodDateLabel(PeriodWeekly, "Week 1+", 0, true))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("weekly")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	p, err = ParsePeriod("monthly")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonthly, p)

	_, err = ParsePeriod("daily")
	assert.Error(t, err)
}

func TestPeriod_OffsetLimit(t *testing.T) {
	assert.Equal(t, 6, PeriodWeekly.OffsetLimit())
	assert.Equal(t, 30, PeriodMonthly.OffsetLimit())
}

func TestAnalysisYears_ExcludesCurrentYear(t *testing.T) {
	bars := flatBars(2020, 2024, 100)

	years := AnalysisYears(bars, 15)
	require.Len(t, years, 14)
	assert.Equal(t, 2010, years[0])
	assert.Equal(t, 2023, years[len(years)-1])
	assert.NotContains(t, years, 2024)
}

func TestAnalysisYears_EmptySeries(t *testing.T) {
	assert.Nil(t, AnalysisYears(nil, 15))
}
