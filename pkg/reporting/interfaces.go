package reporting

import (
	"almanac/internal/backtest"
	"almanac/internal/seasonal"
)

// Package reporting renders analysis results to the console and exports
// them as CSV, JSON, and Excel files.

// Request identifies one analysis: which series and which knobs produced it.
type Request struct {
	Symbols   []string
	Period    seasonal.Period
	Offset    int
	Threshold int
}

// Label returns the display name of the request's series, suffixes
// stripped, basket components joined with "+".
func (r Request) Label() string {
	return SeriesLabel(r.Symbols)
}

// ConsoleReporter defines console table output.
type ConsoleReporter interface {
	RenderStats(req Request, stats seasonal.StatsResult)
	RenderTrades(req Request, trades seasonal.TradesResult)
	RenderWindows(symbol string, windows []seasonal.SlidingWindow)
	RenderBacktest(req Request, year int, result backtest.Result)
	RenderOptimal(req Request, result backtest.OptimizeResult)
}

// FileExporter defines file output.
type FileExporter interface {
	WriteStatsCSV(stats seasonal.StatsResult, path string) error
	WriteTradesCSV(trades seasonal.TradesResult, path string) error
	WriteStrategyCSV(trades seasonal.TradesResult, stockName, path string) error
	WriteBestParamsJSON(result backtest.OptimizeResult, path string) error
	WriteReportXLSX(req Request, stats seasonal.StatsResult, trades seasonal.TradesResult, path string) error
}

// PathManager defines output path management.
type PathManager interface {
	GetDefaultOutputDir(label string, period seasonal.Period) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces.
type Reporter interface {
	ConsoleReporter
	FileExporter
	PathManager
}

// ExcelStyles holds Excel formatting styles.
type ExcelStyles struct {
	HeaderStyle  int
	TextStyle    int
	NumberStyle  int
	BullStyle    int
	BearStyle    int
	SummaryStyle int
}

// ReportingConfig holds configuration for reporting.
type ReportingConfig struct {
	EnableConsole   bool
	EnableFiles     bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}
