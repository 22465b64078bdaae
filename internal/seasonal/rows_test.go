package seasonal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marchRally keeps the price at 100 until Mar 1, rises one point per day
// through March, then holds 130 for the rest of the year, every year.
func marchRally(year, doy int) float64 {
	marchStart := DayOfYear(3, 1)
	marchEnd := DayOfYear(3, 31)
	switch {
	case doy <= marchStart:
		return 100
	case doy <= marchEnd:
		return 100 + float64(doy-marchStart)
	default:
		return 130
	}
}

func TestGenerateRows_MonthlyLayout(t *testing.T) {
	bars := barsWithClose(2015, 2024, marchRally)

	rows, err := GenerateRows(bars, PeriodMonthly, 0, 15)
	require.NoError(t, err)
	require.Len(t, rows, 24)

	assert.Equal(t, "Jan", rows[0].Label)
	assert.Equal(t, "Dec", rows[11].Label)
	assert.Equal(t, "Jan+", rows[12].Label)
	assert.Equal(t, "Dec+", rows[23].Label)
}

func TestGenerateRows_WeeklyLayout(t *testing.T) {
	bars := barsWithClose(2015, 2024, marchRally)

	rows, err := GenerateRows(bars, PeriodWeekly, 0, 15)
	require.NoError(t, err)
	require.Len(t, rows, 53)

	assert.Equal(t, "Week 1", rows[0].Label)
	assert.Equal(t, "Week 52", rows[51].Label)
	assert.Equal(t, "Week 1+", rows[52].Label)
}

func TestGenerateRows_MonthlyReturns(t *testing.T) {
	bars := barsWithClose(2015, 2024, marchRally)

	rows, err := GenerateRows(bars, PeriodMonthly, 0, 15)
	require.NoError(t, err)

	march := rowByLabel(t, rows, "Mar")
	ret := march.YearReturns[2020]
	require.NotNil(t, ret)
	assert.InDelta(t, 30.0, *ret, 1e-9)

	feb := rowByLabel(t, rows, "Feb")
	ret = feb.YearReturns[2020]
	require.NotNil(t, ret)
	assert.InDelta(t, 0.0, *ret, 1e-9)
}

func TestGenerateRows_OffsetShiftsBoundaries(t *testing.T) {
	bars := barsWithClose(2015, 2024, marchRally)

	rows, err := GenerateRows(bars, PeriodMonthly, 5, 15)
	require.NoError(t, err)

	// Mar 6 close is 105, Apr 5 close is 130
	march := rowByLabel(t, rows, "Mar")
	ret := march.YearReturns[2020]
	require.NotNil(t, ret)
	assert.InDelta(t, (130.0/105-1)*100, *ret, 1e-9)
}

func TestGenerateRows_RolloverReadsFollowingYear(t *testing.T) {
	closeAt := func(year, doy int) float64 {
		if year == 2023 && doy <= 31 {
			return 100 + float64(doy-1)
		}
		return 100
	}
	bars := barsWithClose(2015, 2024, closeAt)

	rows, err := GenerateRows(bars, PeriodMonthly, 0, 15)
	require.NoError(t, err)

	// January 2023 rallied 100 -> 130; the rollover row stores that rally
	// under 2022 while the plain row keeps it under 2023
	janPlus := rowByLabel(t, rows, "Jan+")
	ret := janPlus.YearReturns[2022]
	require.NotNil(t, ret)
	assert.InDelta(t, 30.0, *ret, 1e-9)

	jan := rowByLabel(t, rows, "Jan")
	ret = jan.YearReturns[2023]
	require.NotNil(t, ret)
	assert.InDelta(t, 30.0, *ret, 1e-9)

	ret = janPlus.YearReturns[2023]
	require.NotNil(t, ret)
	assert.InDelta(t, 0.0, *ret, 1e-9)
}

func TestGenerateRows_MissingPeriodStaysNil(t *testing.T) {
	bars := barsWithClose(2015, 2024, marchRally)
	bars = dropDays(bars, 2018, DayOfYear(10, 1), DayOfYear(10, 31))

	rows, err := GenerateRows(bars, PeriodMonthly, 0, 15)
	require.NoError(t, err)

	oct := rowByLabel(t, rows, "Oct")
	assert.Nil(t, oct.YearReturns[2018])
	assert.NotNil(t, oct.YearReturns[2019])
}

func TestGenerateRows_Validation(t *testing.T) {
	bars := barsWithClose(2020, 2024, marchRally)

	_, err := GenerateRows(bars, Period("daily"), 0, 15)
	assert.Error(t, err)

	_, err = GenerateRows(bars, PeriodMonthly, -1, 15)
	assert.Error(t, err)

	_, err = GenerateRows(bars, PeriodMonthly, 0, 0)
	assert.Error(t, err)
}

func TestGenerateRows_EmptySeries(t *testing.T) {
	rows, err := GenerateRows(nil, PeriodMonthly, 0, 15)
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func rowByLabel(t *testing.T, rows []SeasonalRow, label string) SeasonalRow {
	t.Helper()
	for _, row := range rows {
		if row.Label == label {
			return row
		}
	}
	t.Fatalf("no row labeled %q", label)
	return SeasonalRow{}
}
