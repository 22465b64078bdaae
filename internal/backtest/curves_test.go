package backtest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearCurves_StartAtZero(t *testing.T) {
	bars := calendarBars(2021, 2021, rampClose(40, 50))

	result, err := YearCurves(bars, nil, 2021)
	require.NoError(t, err)

	require.NotEmpty(t, result.SeasonalCurve)
	assert.Equal(t, 0.0, result.SeasonalCurve[0])
	assert.Equal(t, 0.0, result.BHCurve[0])
	assert.Equal(t, "Jan-1", result.Dates[0])
	assert.Len(t, result.Dates, 365)
}

func TestYearCurves_BuyHoldTracksSeries(t *testing.T) {
	bars := calendarBars(2021, 2021, func(year, doy int) float64 { return 100 + float64(doy) })

	result, err := YearCurves(bars, nil, 2021)
	require.NoError(t, err)

	assert.InDelta(t, (465.0/101-1)*100, result.FinalBuyHold(), 1e-6)
	// With no spans the strategy never enters the market
	assert.Equal(t, 0.0, result.FinalReturn())
}

func TestYearCurves_StrategyCapturesSpannedRally(t *testing.T) {
	bars := calendarBars(2021, 2021, rampClose(40, 50))
	span, ok := buildSpan("Feb-9", "Feb-19", 2021)
	require.True(t, ok)

	result, err := YearCurves(bars, []Span{span}, 2021)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, result.FinalReturn(), 1e-6)
	assert.InDelta(t, result.FinalBuyHold(), result.FinalReturn(), 1e-6)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "Feb-9", result.Trades[0].EntryDate)
}

func TestYearCurves_StrategyFlatOutsideSpans(t *testing.T) {
	bars := calendarBars(2021, 2021, rampClose(40, 50))
	span, ok := buildSpan("Jul-19", "Aug-8", 2021)
	require.True(t, ok)

	result, err := YearCurves(bars, []Span{span}, 2021)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result.FinalReturn(), 1e-9)
	assert.InDelta(t, 10.0, result.FinalBuyHold(), 1e-6)
}

func TestYearCurves_WrappingSpanHoldsThroughDecember(t *testing.T) {
	bars := calendarBars(2021, 2021, rampClose(305, 325))
	span, ok := buildSpan("Nov-1", "Feb-15", 2021)
	require.True(t, ok)

	result, err := YearCurves(bars, []Span{span}, 2021)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, result.FinalReturn(), 1e-6)
}

func TestYearCurves_MissingYear(t *testing.T) {
	bars := calendarBars(2021, 2021, rampClose(40, 50))

	_, err := YearCurves(bars, nil, 1999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data for year 1999")
}

func TestYearCurves_SparseYearWarning(t *testing.T) {
	full := calendarBars(2021, 2021, rampClose(40, 50))
	sparse := full[:100]

	result, err := YearCurves(sparse, nil, 2021)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("Incomplete data: only %d trading days (expected ~245)", 100), result.Warning)

	fullResult, err := YearCurves(full, nil, 2021)
	require.NoError(t, err)
	assert.Empty(t, fullResult.Warning)
}

func TestBuildAverageYear_MeansDailyReturns(t *testing.T) {
	bars := calendarBars(2020, 2022, rampClose(40, 50))

	avg := BuildAverageYear(bars, []int{2021, 2022})

	require.Len(t, avg.Days, 365)
	assert.Equal(t, 1, avg.Days[0])
	// First trading day of each year contributes zero
	assert.Equal(t, 0.0, avg.Returns[0])
	// Day 45 moves 104 -> 105 in both years
	idx := avg.Days[44]
	require.Equal(t, 45, idx)
	assert.InDelta(t, 105.0/104-1, avg.Returns[44], 1e-9)
}

func TestAverageCurves_CapturesSpannedRally(t *testing.T) {
	bars := calendarBars(2021, 2022, rampClose(40, 50))
	span, ok := buildSpan("Feb-9", "Feb-19", 2021)
	require.True(t, ok)

	result, err := AverageCurves(bars, []Span{span}, []int{2021, 2022})
	require.NoError(t, err)

	require.Len(t, result.Dates, 365)
	assert.Equal(t, "Jan-1", result.Dates[0])
	assert.Equal(t, 0.0, result.SeasonalCurve[0])
	assert.InDelta(t, 10.0, result.FinalReturn(), 1e-6)
	assert.InDelta(t, 10.0, result.FinalBuyHold(), 1e-6)
}

func TestAverageCurves_WrappingSpanSkipsJanuaryReplay(t *testing.T) {
	closeAt := func(year, doy int) float64 {
		switch {
		case doy <= 5:
			return 100
		case doy <= 25:
			return 100 + 0.5*float64(doy-5) // January rally to 110
		case doy <= 305:
			return 110
		case doy <= 325:
			return 110 + 1.1*float64(doy-305) // November rally to 132
		default:
			return 132
		}
	}
	bars := calendarBars(2021, 2022, closeAt)
	span, ok := buildSpan("Nov-1", "Feb-15", 2021)
	require.True(t, ok)

	result, err := AverageCurves(bars, []Span{span}, []int{2021, 2022})
	require.NoError(t, err)

	// Only the November leg is held; the January rally stays outside
	assert.InDelta(t, 20.0, result.FinalReturn(), 1e-6)
}

func TestAverageCurves_NoData(t *testing.T) {
	bars := calendarBars(2021, 2021, rampClose(40, 50))

	_, err := AverageCurves(bars, nil, []int{1999})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data for average year")
}
