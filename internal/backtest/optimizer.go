package backtest

import (
	"context"
	"fmt"
	"math"
	"sort"

	"almanac/internal/seasonal"
	"almanac/pkg/types"
)

// Objective selects which metric an offset/threshold sweep maximizes.
type Objective string

const (
	// ObjectiveProfit maximizes average yearly profit, breaking ties on yield.
	ObjectiveProfit Objective = "profit"
	// ObjectiveYield maximizes basis points per day in market, breaking ties on profit.
	ObjectiveYield Objective = "yield"
)

// ParseObjective validates an optimization objective string.
func ParseObjective(s string) (Objective, error) {
	switch Objective(s) {
	case ObjectiveProfit, ObjectiveYield:
		return Objective(s), nil
	default:
		return "", fmt.Errorf("invalid objective %q: must be %q or %q", s, ObjectiveProfit, ObjectiveYield)
	}
}

const (
	sweepThresholdMin  = 50
	sweepThresholdMax  = 100
	sweepThresholdStep = 5
	sweepMinRunLength  = 2
)

// OptimizeResult is the winning offset/threshold combination of a sweep.
type OptimizeResult struct {
	Offset    int             `json:"offset"`
	Threshold int             `json:"threshold"`
	Period    seasonal.Period `json:"period"`
}

// Optimize sweeps every calendar offset against thresholds 50..100 in steps
// of 5, simulating all bullish runs at each combination, and returns the
// combination that maximizes the objective. Ties on the primary metric fall
// to the secondary one; a combination must strictly beat the incumbent, so
// the earliest combination in scan order wins exact ties. When no
// combination produces data the defaults (offset 0, threshold 50) stand.
//
// Offsets are evaluated in parallel; the winner is folded in deterministic
// offset-then-threshold order regardless of worker scheduling.
func Optimize(ctx context.Context, bars []types.Bar, period seasonal.Period, objective Objective, lookbackYears, workers int) (OptimizeResult, error) {
	if _, err := ParseObjective(string(objective)); err != nil {
		return OptimizeResult{}, err
	}
	if lookbackYears <= 0 {
		return OptimizeResult{}, fmt.Errorf("invalid lookback years %d: must be positive", lookbackYears)
	}
	if len(bars) == 0 {
		return OptimizeResult{}, fmt.Errorf("no data available")
	}

	years := seasonal.AnalysisYears(bars, lookbackYears)
	offsetCount := period.OffsetLimit() + 1

	pool := NewWorkerPool(ctx, workers, offsetCount)
	pool.Start()
	defer pool.Stop()

	for offset := 0; offset < offsetCount; offset++ {
		job := SweepJob{
			Offset:        offset,
			Bars:          bars,
			Period:        period,
			Years:         years,
			LookbackYears: lookbackYears,
		}
		if err := pool.Submit(job); err != nil {
			return OptimizeResult{}, err
		}
	}

	evals := make([]SweepResult, 0, offsetCount)
	for i := 0; i < offsetCount; i++ {
		select {
		case res := <-pool.Results():
			evals = append(evals, res)
		case <-ctx.Done():
			return OptimizeResult{}, ctx.Err()
		}
	}

	sort.Slice(evals, func(i, j int) bool { return evals[i].Offset < evals[j].Offset })
	for _, ev := range evals {
		if ev.Err != nil {
			return OptimizeResult{}, ev.Err
		}
	}

	best := OptimizeResult{Offset: 0, Threshold: sweepThresholdMin, Period: period}
	bestPrimary := math.Inf(-1)
	bestSecondary := math.Inf(-1)

	for _, ev := range evals {
		for _, combo := range ev.Combos {
			if !combo.HasData {
				continue
			}
			primary, secondary := combo.AvgProfit, combo.YieldBps
			if objective == ObjectiveYield {
				primary, secondary = combo.YieldBps, combo.AvgProfit
			}
			if primary > bestPrimary || (primary == bestPrimary && secondary > bestSecondary) {
				bestPrimary, bestSecondary = primary, secondary
				best.Offset, best.Threshold = ev.Offset, combo.Threshold
			}
		}
	}

	return best, nil
}
