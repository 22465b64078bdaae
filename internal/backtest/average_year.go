package backtest

import (
	"fmt"
	"sort"

	"almanac/internal/seasonal"
	"almanac/pkg/types"
)

// AverageYear is the synthetic year used by average-mode backtests: per
// day-of-year, the mean simple daily return across every year that traded
// that day. The first trading day of each year contributes 0.
type AverageYear struct {
	Days    []int
	Returns []float64
}

// BuildAverageYear condenses the lookback years into one day-of-year return
// sequence.
func BuildAverageYear(bars []types.Bar, years []int) AverageYear {
	sums := make(map[int]float64)
	counts := make(map[int]int)

	for _, year := range years {
		yearBars := sliceYear(bars, year)
		for i, bar := range yearBars {
			dailyRet := 0.0
			if i > 0 && yearBars[i-1].Close != 0 {
				dailyRet = bar.Close/yearBars[i-1].Close - 1
			}
			doy := seasonal.DayOfYear(int(bar.Date.Month()), bar.Date.Day())
			sums[doy] += dailyRet
			counts[doy]++
		}
	}

	avg := AverageYear{
		Days:    make([]int, 0, len(sums)),
		Returns: make([]float64, 0, len(sums)),
	}
	for doy := range sums {
		avg.Days = append(avg.Days, doy)
	}
	sort.Ints(avg.Days)
	for _, doy := range avg.Days {
		avg.Returns = append(avg.Returns, sums[doy]/float64(counts[doy]))
	}
	return avg
}

// AverageCurves runs the day-flagged compounding over the synthetic average
// year instead of a concrete one. Span membership works on day-of-year.
func AverageCurves(bars []types.Bar, spans []Span, years []int) (Result, error) {
	avg := BuildAverageYear(bars, years)
	if len(avg.Days) == 0 {
		return Result{}, fmt.Errorf("no data for average year")
	}

	result := Result{
		Dates:         make([]string, 0, len(avg.Days)),
		SeasonalCurve: make([]float64, 0, len(avg.Days)),
		BHCurve:       make([]float64, 0, len(avg.Days)),
		Trades:        Infos(spans),
	}

	bh, strat := 0.0, 0.0
	for i, doy := range avg.Days {
		result.Dates = append(result.Dates, seasonal.DayOfYearLabel(doy))

		bh = compound(bh, avg.Returns[i])
		result.BHCurve = append(result.BHCurve, bh)

		if inSpanDOY(spans, doy) {
			strat = compound(strat, avg.Returns[i])
		}
		result.SeasonalCurve = append(result.SeasonalCurve, strat)
	}
	return result, nil
}
