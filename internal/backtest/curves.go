package backtest

import (
	"fmt"
	"time"

	"almanac/internal/seasonal"
	"almanac/pkg/types"
)

// sparseYearBars flags a year too thin to trust; a full trading year runs
// around 245 sessions.
const sparseYearBars = 200

// Result carries the daily equity curves of one backtested year. Both curves
// start at 0% and hold cumulative P&L percentages, one point per trading
// day.
type Result struct {
	Dates         []string   `json:"dates"`
	SeasonalCurve []float64  `json:"seasonal_curve"`
	BHCurve       []float64  `json:"bh_curve"`
	Trades        []SpanInfo `json:"trades"`
	Warning       string     `json:"warning,omitempty"`
}

// YearCurves replays one calendar year day by day: buy-and-hold compounds
// every day's simple return, the strategy curve compounds only days inside
// one of the spans. Years missing from the series are an error; thin years
// only attach a warning.
func YearCurves(bars []types.Bar, spans []Span, year int) (Result, error) {
	yearBars := sliceYear(bars, year)
	if len(yearBars) == 0 {
		return Result{}, fmt.Errorf("no data for year %d", year)
	}

	result := Result{
		Dates:         make([]string, 0, len(yearBars)),
		SeasonalCurve: make([]float64, 0, len(yearBars)),
		BHCurve:       make([]float64, 0, len(yearBars)),
		Trades:        Infos(spans),
	}
	if len(yearBars) < sparseYearBars {
		result.Warning = fmt.Sprintf("Incomplete data: only %d trading days (expected ~245)", len(yearBars))
	}

	bh, strat := 0.0, 0.0
	for i, bar := range yearBars {
		result.Dates = append(result.Dates, seasonal.MonthDayLabel(int(bar.Date.Month()), bar.Date.Day()))

		dailyRet := 0.0
		if i > 0 && yearBars[i-1].Close != 0 {
			dailyRet = bar.Close/yearBars[i-1].Close - 1
		}

		bh = compound(bh, dailyRet)
		result.BHCurve = append(result.BHCurve, bh)

		if inSpan(spans, bar.Date) {
			strat = compound(strat, dailyRet)
		}
		result.SeasonalCurve = append(result.SeasonalCurve, strat)
	}
	return result, nil
}

// compound folds one day's simple return into a cumulative P&L percentage.
func compound(cumulativePct, dailyRet float64) float64 {
	return ((1+cumulativePct/100)*(1+dailyRet) - 1) * 100
}

func sliceYear(bars []types.Bar, year int) []types.Bar {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	var out []types.Bar
	for _, bar := range bars {
		if bar.Date.Before(start) || bar.Date.After(end) {
			continue
		}
		out = append(out, bar)
	}
	return out
}
