package backtest

import (
	"fmt"

	"almanac/internal/seasonal"
	"almanac/pkg/types"
)

// PlanSpan is one strategy's in-market stretch inside a combined plan.
type PlanSpan struct {
	EntryDate string `json:"entry_date"`
	ExitDate  string `json:"exit_date"`
	Symbol    string `json:"symbol"`
}

// PlanResult is the combined multi-strategy backtest of one year. The
// combined curve is in the market whenever any strategy is; buy-and-hold
// references the first strategy's series.
type PlanResult struct {
	CombinedCurve  []float64            `json:"combined_curve"`
	BHCurve        []float64            `json:"bh_curve"`
	StrategyCurves map[string][]float64 `json:"strategy_curves"`
	TradesCount    int                  `json:"trades_count"`
	TotalDays      int                  `json:"total_days"`
	Dates          []string             `json:"dates"`
	Trades         []PlanSpan           `json:"trades"`
}

// PlanCurves unions every strategy's spans over the reference series and
// replays the year with the merged in-market mask.
func PlanCurves(refBars []types.Bar, planSpans []PlanSpan, year int) (PlanResult, error) {
	if len(planSpans) == 0 {
		return PlanResult{}, fmt.Errorf("no trades found in any strategy")
	}
	yearBars := sliceYear(refBars, year)
	if len(yearBars) == 0 {
		return PlanResult{}, fmt.Errorf("no data for year %d", year)
	}

	var spans []Span
	for _, ps := range planSpans {
		if span, ok := buildSpan(ps.EntryDate, ps.ExitDate, year); ok {
			spans = append(spans, span)
		}
	}

	result := PlanResult{
		StrategyCurves: map[string][]float64{},
		TradesCount:    len(planSpans),
		Dates:          make([]string, 0, len(yearBars)),
		CombinedCurve:  make([]float64, 0, len(yearBars)),
		BHCurve:        make([]float64, 0, len(yearBars)),
		Trades:         planSpans,
	}

	bh, combined := 0.0, 0.0
	for i, bar := range yearBars {
		result.Dates = append(result.Dates, seasonal.MonthDayLabel(int(bar.Date.Month()), bar.Date.Day()))

		dailyRet := 0.0
		if i > 0 && yearBars[i-1].Close != 0 {
			dailyRet = bar.Close/yearBars[i-1].Close - 1
		}

		bh = compound(bh, dailyRet)
		result.BHCurve = append(result.BHCurve, bh)

		if inSpan(spans, bar.Date) {
			combined = compound(combined, dailyRet)
			result.TotalDays++
		}
		result.CombinedCurve = append(result.CombinedCurve, combined)
	}
	return result, nil
}
