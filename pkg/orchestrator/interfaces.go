package orchestrator

import (
	"context"

	"almanac/internal/backtest"
	"almanac/internal/seasonal"
	"almanac/pkg/reporting"
	"almanac/pkg/types"
)

// Orchestrator coordinates series loading with the seasonal and backtest
// engines and exposes every analysis the CLI and HTTP server run.
type Orchestrator interface {
	// Search looks a query up in the local symbol directory.
	Search(query string) ([]types.SymbolInfo, error)

	// Stats builds the weekly or monthly seasonal stats table.
	Stats(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (seasonal.StatsResult, error)

	// Trades builds the aggregated trades table for the bullish runs.
	Trades(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (seasonal.TradesResult, error)

	// Backtest replays the run strategy over one year, or over the average
	// year when year is zero or negative.
	Backtest(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct, year int) (backtest.Result, error)

	// Optimize sweeps offset and threshold for the best-scoring combination.
	Optimize(ctx context.Context, symbols []string, period seasonal.Period, objective backtest.Objective) (backtest.OptimizeResult, error)

	// Windows partitions the calendar year into high-scoring fixed windows.
	Windows(ctx context.Context, symbol string, windowSize, thresholdPct int) ([]seasonal.SlidingWindow, error)

	// WindowBacktest replays the detected windows over one year, or over
	// the average year when year is zero or negative.
	WindowBacktest(ctx context.Context, symbol string, windowSize, thresholdPct, year int) (backtest.Result, error)

	// PlanBacktest replays a combined multi-strategy plan over one year.
	PlanBacktest(ctx context.Context, strategies []Strategy, year int) (backtest.PlanResult, error)

	// PlanStrategies resolves each plan leg into its trades table.
	PlanStrategies(ctx context.Context, strategies []Strategy) ([]reporting.PlanStrategy, error)

	// ExportStats renders the stats table as CSV text.
	ExportStats(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (string, error)

	// ExportTrades renders the trades table as CSV text.
	ExportTrades(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int) (string, error)

	// ExportStrategy renders the buy/sell calendar for one series as CSV text.
	ExportStrategy(ctx context.Context, symbols []string, period seasonal.Period, offsetDays, thresholdPct int, stockName string) (string, error)

	// ExportPlanCalendar renders the merged multi-strategy calendar as CSV text.
	ExportPlanCalendar(ctx context.Context, strategies []Strategy) (string, error)
}

// SeriesLoader supplies daily bar series, refreshing stale data as needed.
// *fetch.Loader is the production implementation.
type SeriesLoader interface {
	// Load returns the full series for one symbol.
	Load(ctx context.Context, symbol string) ([]types.Bar, error)

	// LoadBasket returns the equal-weight composite of several symbols.
	LoadBasket(ctx context.Context, symbols []string) ([]types.Bar, error)
}

// SymbolSearcher answers autocomplete queries against a symbol directory.
// *store.SymbolDirectory is the production implementation.
type SymbolSearcher interface {
	Search(query string, maxResults int) ([]types.SymbolInfo, error)
}

// Strategy is one leg of a combined trading plan as supplied by API
// clients: a symbol list plus the seasonal parameters to trade it with.
// Period defaults to monthly and Threshold to 50 when omitted.
type Strategy struct {
	Symbol    string `json:"symbol"`
	Period    string `json:"period"`
	Offset    int    `json:"offset"`
	Threshold int    `json:"threshold"`
}

func (s Strategy) withDefaults() Strategy {
	if s.Period == "" {
		s.Period = string(seasonal.PeriodMonthly)
	}
	if s.Threshold <= 0 {
		s.Threshold = DefaultThreshold
	}
	return s
}
