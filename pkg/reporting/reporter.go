package reporting

import (
	"path/filepath"
	"time"

	"almanac/internal/backtest"
	"almanac/internal/seasonal"
)

// DefaultReporter implements the complete Reporter interface.
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a new default reporter with all functionality.
func NewDefaultReporter() *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) RenderStats(req Request, stats seasonal.StatsResult) {
	r.console.RenderStats(req, stats)
}

func (r *DefaultReporter) RenderTrades(req Request, trades seasonal.TradesResult) {
	r.console.RenderTrades(req, trades)
}

func (r *DefaultReporter) RenderWindows(symbol string, windows []seasonal.SlidingWindow) {
	r.console.RenderWindows(symbol, windows)
}

func (r *DefaultReporter) RenderBacktest(req Request, year int, result backtest.Result) {
	r.console.RenderBacktest(req, year, result)
}

func (r *DefaultReporter) RenderOptimal(req Request, result backtest.OptimizeResult) {
	r.console.RenderOptimal(req, result)
}

// File output methods
func (r *DefaultReporter) WriteStatsCSV(stats seasonal.StatsResult, path string) error {
	return r.csv.WriteStatsCSV(stats, path)
}

func (r *DefaultReporter) WriteTradesCSV(trades seasonal.TradesResult, path string) error {
	return r.csv.WriteTradesCSV(trades, path)
}

func (r *DefaultReporter) WriteStrategyCSV(trades seasonal.TradesResult, stockName, path string) error {
	return r.csv.WriteStrategyCSV(trades, stockName, path)
}

func (r *DefaultReporter) WriteBestParamsJSON(result backtest.OptimizeResult, path string) error {
	return WriteBestParamsJSON(result, path)
}

func (r *DefaultReporter) WriteReportXLSX(req Request, stats seasonal.StatsResult, trades seasonal.TradesResult, path string) error {
	return r.excel.WriteReportXLSX(req, stats, trades, path)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(label string, period seasonal.Period) string {
	return r.paths.GetDefaultOutputDir(label, period)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager provides a high-level interface for all reporting needs.
type ReportingManager struct {
	reporter *DefaultReporter
	config   ReportingConfig
	now      func() time.Time
}

// NewReportingManager creates a new reporting manager with configuration.
func NewReportingManager(config ReportingConfig) *ReportingManager {
	return &ReportingManager{
		reporter: NewDefaultReporter(),
		config:   config,
		now:      time.Now,
	}
}

// ReportAnalysis outputs a full stats + trades analysis according to
// configuration: console tables, then CSV/Excel files under the output
// directory.
func (m *ReportingManager) ReportAnalysis(req Request, stats seasonal.StatsResult, trades seasonal.TradesResult) error {
	if m.config.EnableConsole {
		m.reporter.RenderStats(req, stats)
		m.reporter.RenderTrades(req, trades)
	}

	if m.config.EnableFiles {
		outputDir := m.outputDir(req)

		if m.config.CSVEnabled {
			statsPath := filepath.Join(outputDir, ExportFilename(req, "stats"))
			if err := m.reporter.WriteStatsCSV(stats, statsPath); err != nil {
				return err
			}
			tradesPath := filepath.Join(outputDir, ExportFilename(req, "trades"))
			if err := m.reporter.WriteTradesCSV(trades, tradesPath); err != nil {
				return err
			}
			strategyPath := filepath.Join(outputDir, ExportFilename(req, "strategy"))
			if err := m.reporter.WriteStrategyCSV(trades, req.Label(), strategyPath); err != nil {
				return err
			}
		}

		if m.config.ExcelEnabled {
			xlsxPath := filepath.Join(outputDir, TimestampedFilename("report", "xlsx", m.now()))
			if err := m.reporter.WriteReportXLSX(req, stats, trades, xlsxPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// ReportBacktest renders one backtest summary to the console.
func (m *ReportingManager) ReportBacktest(req Request, year int, result backtest.Result) {
	if m.config.EnableConsole {
		m.reporter.RenderBacktest(req, year, result)
	}
}

// ReportWindows renders the detected windows to the console.
func (m *ReportingManager) ReportWindows(symbol string, windows []seasonal.SlidingWindow) {
	if m.config.EnableConsole {
		m.reporter.RenderWindows(symbol, windows)
	}
}

// ReportOptimal outputs the optimizer's winning parameters according to
// configuration.
func (m *ReportingManager) ReportOptimal(req Request, result backtest.OptimizeResult) error {
	if m.config.EnableConsole {
		m.reporter.RenderOptimal(req, result)
	}

	if m.config.EnableFiles && m.config.JSONEnabled {
		jsonPath := filepath.Join(m.outputDir(req), "best.json")
		if err := m.reporter.WriteBestParamsJSON(result, jsonPath); err != nil {
			return err
		}
	}

	return nil
}

func (m *ReportingManager) outputDir(req Request) string {
	if m.config.OutputDirectory != "" {
		return m.config.OutputDirectory
	}
	return m.reporter.GetDefaultOutputDir(req.Label(), req.Period)
}
