package backtest

import (
	"context"
	"testing"

	"almanac/internal/seasonal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjective(t *testing.T) {
	obj, err := ParseObjective("profit")
	require.NoError(t, err)
	assert.Equal(t, ObjectiveProfit, obj)

	obj, err = ParseObjective("yield")
	require.NoError(t, err)
	assert.Equal(t, ObjectiveYield, obj)

	_, err = ParseObjective("sharpe")
	assert.Error(t, err)
}

func TestOptimize_EmptyData(t *testing.T) {
	_, err := Optimize(context.Background(), nil, seasonal.PeriodMonthly, ObjectiveProfit, 15, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data available")
}

func TestOptimize_InvalidObjective(t *testing.T) {
	bars := calendarBars(2021, 2021, rampClose(40, 50))
	_, err := Optimize(context.Background(), bars, seasonal.PeriodMonthly, Objective("sharpe"), 15, 2)
	assert.Error(t, err)
}

func TestOptimize_InvalidLookback(t *testing.T) {
	bars := calendarBars(2021, 2021, rampClose(40, 50))
	_, err := Optimize(context.Background(), bars, seasonal.PeriodMonthly, ObjectiveProfit, 0, 2)
	assert.Error(t, err)
}

func TestOptimize_FlatSeriesKeepsDefaults(t *testing.T) {
	bars := calendarBars(2015, 2024, func(int, int) float64 { return 100 })

	result, err := Optimize(context.Background(), bars, seasonal.PeriodMonthly, ObjectiveProfit, 15, 4)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Offset)
	assert.Equal(t, 50, result.Threshold)
	assert.Equal(t, seasonal.PeriodMonthly, result.Period)
}

// jumpClose is flat within months and steps up 10% at Mar 1 and again at
// Apr 1. With offset 0 every month reads flat close-to-close; any offset
// from 1 on slides the sampling over both jumps.
func jumpClose(year, doy int) float64 {
	switch {
	case doy < 60:
		return 100
	case doy < 91:
		return 110
	default:
		return 121
	}
}

func TestOptimize_FindsRewardingOffset(t *testing.T) {
	bars := calendarBars(2015, 2024, jumpClose)

	result, err := Optimize(context.Background(), bars, seasonal.PeriodMonthly, ObjectiveProfit, 15, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Offset)
	assert.Equal(t, 50, result.Threshold)
	assert.Equal(t, seasonal.PeriodMonthly, result.Period)
}

func TestOptimize_YieldObjectiveAgrees(t *testing.T) {
	bars := calendarBars(2015, 2024, jumpClose)

	result, err := Optimize(context.Background(), bars, seasonal.PeriodMonthly, ObjectiveYield, 15, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Offset)
	assert.Equal(t, 50, result.Threshold)
}

func TestWorkerPool_EvaluatesEveryOffset(t *testing.T) {
	bars := calendarBars(2019, 2024, rampClose(40, 50))
	years := seasonal.AnalysisYears(bars, 15)

	pool := NewWorkerPool(context.Background(), 3, 7)
	pool.Start()
	defer pool.Stop()

	for offset := 0; offset <= 6; offset++ {
		job := SweepJob{
			Offset:        offset,
			Bars:          bars,
			Period:        seasonal.PeriodWeekly,
			Years:         years,
			LookbackYears: 15,
		}
		require.NoError(t, pool.Submit(job))
	}

	seen := make(map[int]bool)
	for i := 0; i < 7; i++ {
		res := <-pool.Results()
		require.NoError(t, res.Err)
		assert.Len(t, res.Combos, 11)
		assert.Equal(t, 50, res.Combos[0].Threshold)
		assert.Equal(t, 100, res.Combos[len(res.Combos)-1].Threshold)
		assert.True(t, res.Combos[0].HasData)
		seen[res.Offset] = true
	}
	assert.Len(t, seen, 7)
}
