package backtest

import (
	"testing"
	"time"

	"almanac/internal/seasonal"
	"almanac/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSpan_SameYear(t *testing.T) {
	span, ok := buildSpan("Mar-10", "Jun-5", 2023)
	require.True(t, ok)

	assert.Equal(t, time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC), span.Entry)
	assert.Equal(t, time.Date(2023, time.June, 5, 0, 0, 0, 0, time.UTC), span.Exit)
	assert.Equal(t, seasonal.DayOfYear(3, 10), span.EntryDOY)
	assert.Equal(t, seasonal.DayOfYear(6, 5), span.ExitDOY)
}

func TestBuildSpan_WrapsIntoFollowingYear(t *testing.T) {
	span, ok := buildSpan("Nov-1", "Feb-15", 2023)
	require.True(t, ok)

	assert.Equal(t, time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC), span.Entry)
	// The exit extends forward, never wraps back to the same January
	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), span.Exit)
	assert.Less(t, span.ExitDOY, span.EntryDOY)
}

func TestBuildSpan_MalformedLabel(t *testing.T) {
	_, ok := buildSpan("garbage", "Jun-5", 2023)
	assert.False(t, ok)
}

func TestRunSpans(t *testing.T) {
	rows := []seasonal.SeasonalRow{
		seasonalRow("Jan", 10),
		seasonalRow("Feb", 10),
		seasonalRow("Mar", -5),
	}
	runs := []seasonal.RunInfo{
		{StartIdx: 0, EndIdx: 1, IsBullish: true},
		{StartIdx: 2, EndIdx: 2, IsBullish: false},
	}

	spans := RunSpans(rows, runs, seasonal.PeriodMonthly, 0, 2023)

	require.Len(t, spans, 1)
	assert.Equal(t, "Jan-1", spans[0].EntryLabel)
	assert.Equal(t, "Feb-28", spans[0].ExitLabel)
	assert.Equal(t, 59, spans[0].Days)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), spans[0].Entry)
	assert.Equal(t, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), spans[0].Exit)
}

func TestWindowSpans(t *testing.T) {
	windows := []seasonal.SlidingWindow{{
		StartDay:  40,
		EndDay:    50,
		StartDate: seasonal.DayOfYearLabel(40),
		EndDate:   seasonal.DayOfYearLabel(50),
		Length:    11,
	}}

	spans := WindowSpans(windows, 2023)

	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2023, time.February, 9, 0, 0, 0, 0, time.UTC), spans[0].Entry)
	assert.Equal(t, time.Date(2023, time.February, 19, 0, 0, 0, 0, time.UTC), spans[0].Exit)
	assert.Equal(t, 40, spans[0].EntryDOY)
	assert.Equal(t, 50, spans[0].ExitDOY)
	assert.Equal(t, 11, spans[0].Days)
}

func TestInSpan(t *testing.T) {
	span, ok := buildSpan("Mar-10", "Jun-5", 2023)
	require.True(t, ok)
	spans := []Span{span}

	assert.True(t, inSpan(spans, time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, inSpan(spans, time.Date(2023, time.June, 5, 0, 0, 0, 0, time.UTC)))
	assert.False(t, inSpan(spans, time.Date(2023, time.March, 9, 0, 0, 0, 0, time.UTC)))
	assert.False(t, inSpan(spans, time.Date(2023, time.June, 6, 0, 0, 0, 0, time.UTC)))
}

func TestInSpanDOY_Wrapping(t *testing.T) {
	span, ok := buildSpan("Nov-1", "Feb-15", 2023)
	require.True(t, ok)
	spans := []Span{span}

	assert.True(t, inSpanDOY(spans, 310))
	assert.True(t, inSpanDOY(spans, 365))
	// The January overflow is not replayed in the synthetic year
	assert.False(t, inSpanDOY(spans, 20))
	assert.False(t, inSpanDOY(spans, 100))
}

func TestInSpanDOY_Contained(t *testing.T) {
	span, ok := buildSpan("Feb-9", "Feb-19", 2023)
	require.True(t, ok)
	spans := []Span{span}

	assert.True(t, inSpanDOY(spans, 45))
	assert.False(t, inSpanDOY(spans, 51))
}

func TestInfos(t *testing.T) {
	span, ok := buildSpan("Mar-10", "Jun-5", 2023)
	require.True(t, ok)
	span.Days = 88

	infos := Infos([]Span{span})
	require.Len(t, infos, 1)
	assert.Equal(t, SpanInfo{EntryDate: "Mar-10", ExitDate: "Jun-5", Days: 88}, infos[0])
}

// seasonalRow builds a single-year row observed in 2020.
func seasonalRow(label string, ret float64) seasonal.SeasonalRow {
	v := ret
	return seasonal.SeasonalRow{Label: label, YearReturns: map[int]*float64{2020: &v}}
}

// calendarBars generates one bar per calendar day for every year in
// [startYear, endYear], closing at closeAt(year, doy) on the fixed non-leap
// day-of-year scale.
func calendarBars(startYear, endYear int, closeAt func(year, doy int) float64) []types.Bar {
	var bars []types.Bar
	for year := startYear; year <= endYear; year++ {
		d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		for d.Year() == year {
			doy := seasonal.DayOfYear(int(d.Month()), d.Day())
			c := closeAt(year, doy)
			bars = append(bars, types.Bar{Date: d, Open: c, High: c, Low: c, Close: c, Volume: 1000})
			d = d.AddDate(0, 0, 1)
		}
	}
	return bars
}

// rampClose rises one point per day over the day-of-year range [fromDOY,
// toDOY] and stays flat on either side.
func rampClose(fromDOY, toDOY int) func(year, doy int) float64 {
	return func(year, doy int) float64 {
		switch {
		case doy <= fromDOY:
			return 100
		case doy >= toDOY:
			return 100 + float64(toDOY-fromDOY)
		default:
			return 100 + float64(doy-fromDOY)
		}
	}
}
