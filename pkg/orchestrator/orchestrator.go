// Package orchestrator wires the data loader, symbol directory, and the
// seasonal and backtest engines into the workflows the CLI and HTTP server
// expose. Handlers and commands stay thin; every multi-step analysis lives
// here.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"almanac/internal/backtest"
	"almanac/internal/seasonal"
	"almanac/internal/store"
	"almanac/pkg/reporting"
	"almanac/pkg/types"
)

const (
	// MaxBasketSymbols caps how many components one composite series may have.
	MaxBasketSymbols = 5

	// DefaultThreshold is the trend confidence cutoff used when a caller
	// leaves it unset.
	DefaultThreshold = 50

	// minRunLength is the shortest row streak that counts as a run.
	minRunLength = 2

	searchLimit = 10
)

// DefaultOrchestrator implements Orchestrator over a series loader and an
// optional symbol directory.
type DefaultOrchestrator struct {
	loader        SeriesLoader
	symbols       SymbolSearcher
	lookbackYears int
	workers       int
}

// NewOrchestrator creates an orchestrator. symbols may be nil, in which
// case Search always returns no matches.
func NewOrchestrator(loader SeriesLoader, symbols SymbolSearcher, lookbackYears, workers int) *DefaultOrchestrator {
	return &DefaultOrchestrator{
		loader:        loader,
		symbols:       symbols,
		lookbackYears: lookbackYears,
		workers:       workers,
	}
}

// Search looks a query up in the local symbol directory.
func (o *DefaultOrchestrator) Search(query string) ([]types.SymbolInfo, error) {
	if o.symbols == nil {
		return nil, nil
	}
	return o.symbols.Search(query, searchLimit)
}

// Stats builds the seasonal stats table for one symbol or basket.
func (o *DefaultOrchestrator) Stats(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (seasonal.StatsResult, error) {
	a, err := o.analyze(ctx, symbols, period, offsetDays, thresholdPct)
	if err != nil {
		return seasonal.StatsResult{}, err
	}
	return seasonal.BuildStats(a.rows, a.runs, a.years, float64(thresholdPct)), nil
}

// Trades builds the aggregated trades table for the bullish runs.
func (o *DefaultOrchestrator) Trades(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (seasonal.TradesResult, error) {
	a, err := o.analyze(ctx, symbols, period, offsetDays, thresholdPct)
	if err != nil {
		return seasonal.TradesResult{}, err
	}
	return seasonal.BuildTrades(a.rows, a.runs, a.years, period, offsetDays), nil
}

// Backtest replays the run strategy over the requested year. A year of zero
// or below selects average-year mode, which replays the spans over the mean
// daily-return profile of the lookback window instead of a single year.
func (o *DefaultOrchestrator) Backtest(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct, year int) (backtest.Result, error) {
	a, err := o.analyze(ctx, symbols, period, offsetDays, thresholdPct)
	if err != nil {
		return backtest.Result{}, err
	}

	if year <= 0 {
		refYear, err := latestYear(a.years)
		if err != nil {
			return backtest.Result{}, err
		}
		spans := backtest.RunSpans(a.rows, a.runs, period, offsetDays, refYear)
		return backtest.AverageCurves(a.bars, spans, a.years)
	}

	spans := backtest.RunSpans(a.rows, a.runs, period, offsetDays, year)
	return backtest.YearCurves(a.bars, spans, year)
}

// Optimize sweeps offset and threshold over the series and returns the
// best-scoring combination for the objective.
func (o *DefaultOrchestrator) Optimize(ctx context.Context, symbols []string, period seasonal.Period, objective backtest.Objective) (backtest.OptimizeResult, error) {
	bars, err := o.loadSeries(ctx, symbols)
	if err != nil {
		return backtest.OptimizeResult{}, err
	}

	label := reporting.SeriesLabel(symbols)
	log.Printf("🚀 Optimizing %s (%s, %s objective)", label, period, objective)

	result, err := backtest.Optimize(ctx, bars, period, objective, o.lookbackYears, o.workers)
	if err != nil {
		return backtest.OptimizeResult{}, err
	}

	log.Printf("✅ Optimization completed for %s: offset %d, threshold %d%%", label, result.Offset, result.Threshold)
	return result, nil
}

// Windows partitions the calendar year of one symbol into fixed-length
// high-scoring windows. thresholdPct is the win-rate cutoff in percent.
func (o *DefaultOrchestrator) Windows(ctx context.Context, symbol string, windowSize, thresholdPct int) ([]seasonal.SlidingWindow, error) {
	bars, err := o.loadSeries(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}
	return seasonal.DetectWindows(bars, windowSize, float64(thresholdPct)/100, o.lookbackYears)
}

// WindowBacktest replays the detected fixed windows over the requested
// year, or over the average year when year is zero or below.
func (o *DefaultOrchestrator) WindowBacktest(ctx context.Context, symbol string, windowSize, thresholdPct, year int) (backtest.Result, error) {
	bars, err := o.loadSeries(ctx, []string{symbol})
	if err != nil {
		return backtest.Result{}, err
	}
	windows, err := seasonal.DetectWindows(bars, windowSize, float64(thresholdPct)/100, o.lookbackYears)
	if err != nil {
		return backtest.Result{}, err
	}

	if year <= 0 {
		years := seasonal.AnalysisYears(bars, o.lookbackYears)
		refYear, err := latestYear(years)
		if err != nil {
			return backtest.Result{}, err
		}
		spans := backtest.WindowSpans(windows, refYear)
		return backtest.AverageCurves(bars, spans, years)
	}

	spans := backtest.WindowSpans(windows, year)
	return backtest.YearCurves(bars, spans, year)
}

// PlanBacktest replays a combined multi-strategy plan over one year. The
// first strategy's series is the buy-and-hold reference; later strategies
// that fail to load are skipped so one dead symbol cannot sink the plan.
func (o *DefaultOrchestrator) PlanBacktest(ctx context.Context, strategies []Strategy, year int) (backtest.PlanResult, error) {
	if len(strategies) == 0 {
		return backtest.PlanResult{}, fmt.Errorf("no strategies provided")
	}

	var refBars []types.Bar
	var planSpans []backtest.PlanSpan

	for i, raw := range strategies {
		strat := raw.withDefaults()
		trades, bars, err := o.strategyTrades(ctx, strat)
		if err != nil {
			if i == 0 {
				return backtest.PlanResult{}, fmt.Errorf("first strategy %s: %w", strat.Symbol, err)
			}
			log.Printf("⚠️ Skipping plan strategy %s: %v", strat.Symbol, err)
			continue
		}
		if i == 0 {
			refBars = bars
		}
		for _, trade := range trades.Trades {
			planSpans = append(planSpans, backtest.PlanSpan{
				EntryDate: trade.EntryDate,
				ExitDate:  trade.ExitDate,
				Symbol:    strat.Symbol,
			})
		}
	}

	return backtest.PlanCurves(refBars, planSpans, year)
}

// PlanStrategies resolves each plan leg into its trades table, keyed by the
// leg's raw symbol text. Legs whose series fails to load are skipped.
func (o *DefaultOrchestrator) PlanStrategies(ctx context.Context, strategies []Strategy) ([]reporting.PlanStrategy, error) {
	plans := make([]reporting.PlanStrategy, 0, len(strategies))
	for _, raw := range strategies {
		strat := raw.withDefaults()
		trades, _, err := o.strategyTrades(ctx, strat)
		if err != nil {
			log.Printf("⚠️ Skipping plan strategy %s: %v", strat.Symbol, err)
			continue
		}
		if len(trades.Trades) == 0 {
			continue
		}
		plans = append(plans, reporting.PlanStrategy{StockName: strat.Symbol, Trades: trades.Trades})
	}
	return plans, nil
}

// ExportStats renders the stats table as CSV text.
func (o *DefaultOrchestrator) ExportStats(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (string, error) {
	stats, err := o.Stats(ctx, symbols, period, offsetDays, thresholdPct)
	if err != nil {
		return "", err
	}
	return reporting.StatsCSV(stats), nil
}

// ExportTrades renders the trades table as CSV text.
func (o *DefaultOrchestrator) ExportTrades(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (string, error) {
	trades, err := o.Trades(ctx, symbols, period, offsetDays, thresholdPct)
	if err != nil {
		return "", err
	}
	return reporting.TradesCSV(trades), nil
}

// ExportStrategy renders the buy/sell calendar for one series as CSV text.
// stockName is the label written into every line.
func (o *DefaultOrchestrator) ExportStrategy(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int, stockName string) (string, error) {
	trades, err := o.Trades(ctx, symbols, period, offsetDays, thresholdPct)
	if err != nil {
		return "", err
	}
	return reporting.StrategyCSV(trades, stockName), nil
}

// ExportPlanCalendar renders the merged multi-strategy calendar as CSV text.
func (o *DefaultOrchestrator) ExportPlanCalendar(ctx context.Context, strategies []Strategy) (string, error) {
	plans, err := o.PlanStrategies(ctx, strategies)
	if err != nil {
		return "", err
	}
	return reporting.PlanCalendarCSV(plans), nil
}

// analysis bundles the intermediate products every table and backtest
// starts from.
type analysis struct {
	bars  []types.Bar
	rows  []seasonal.SeasonalRow
	runs  []seasonal.RunInfo
	years []int
}

func (o *DefaultOrchestrator) analyze(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (*analysis, error) {
	bars, err := o.loadSeries(ctx, symbols)
	if err != nil {
		return nil, err
	}
	rows, err := seasonal.GenerateRows(bars, period, offsetDays, o.lookbackYears)
	if err != nil {
		return nil, err
	}
	runs, err := seasonal.DetectRuns(rows, minRunLength, float64(thresholdPct))
	if err != nil {
		return nil, err
	}
	return &analysis{
		bars:  bars,
		rows:  rows,
		runs:  runs,
		years: seasonal.AnalysisYears(bars, o.lookbackYears),
	}, nil
}

// strategyTrades runs the full pipeline for one plan leg: parse its symbol
// list, load the series, and build its trades table.
func (o *DefaultOrchestrator) strategyTrades(ctx context.Context, strat Strategy) (seasonal.TradesResult, []types.Bar, error) {
	period, err := seasonal.ParsePeriod(strat.Period)
	if err != nil {
		return seasonal.TradesResult{}, nil, err
	}
	symbols, err := store.ParseSymbols(strat.Symbol, MaxBasketSymbols)
	if err != nil {
		return seasonal.TradesResult{}, nil, err
	}
	a, err := o.analyze(ctx, symbols, period, strat.Offset, strat.Threshold)
	if err != nil {
		return seasonal.TradesResult{}, nil, err
	}
	trades := seasonal.BuildTrades(a.rows, a.runs, a.years, period, strat.Offset)
	return trades, a.bars, nil
}

func (o *DefaultOrchestrator) loadSeries(ctx context.Context, symbols []string) ([]types.Bar, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}

	var bars []types.Bar
	var err error
	if len(symbols) == 1 {
		bars, err = o.loader.Load(ctx, symbols[0])
	} else {
		bars, err = o.loader.LoadBasket(ctx, symbols)
	}
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no data available for %s", strings.Join(symbols, "+"))
	}
	return bars, nil
}

func latestYear(years []int) (int, error) {
	if len(years) == 0 {
		return 0, fmt.Errorf("not enough history for an average-year backtest")
	}
	return years[len(years)-1], nil
}
