package server

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"almanac/internal/backtest"
	"almanac/internal/seasonal"
	"almanac/internal/store"
	"almanac/pkg/orchestrator"
	"almanac/pkg/reporting"
	"almanac/pkg/types"
)

// Parameter defaults shared with the web client.
const (
	defaultPeriod       = "monthly"
	defaultOffset       = 0
	defaultThreshold    = 50
	defaultBacktestYear = 2023
	defaultWindowSize   = 30
	defaultWindowsYear  = 2024
	defaultObjective    = "profit"
	defaultPlanYear     = 2023
)

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	results, err := s.orch.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []types.SymbolInfo{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p, ok := s.analysisParams(w, r)
	if !ok {
		return
	}
	stats, err := s.orch.Stats(r.Context(), p.symbols, p.period, p.offset, p.threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	p, ok := s.analysisParams(w, r)
	if !ok {
		return
	}
	trades, err := s.orch.Trades(r.Context(), p.symbols, p.period, p.offset, p.threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	p, ok := s.analysisParams(w, r)
	if !ok {
		return
	}
	year, err := yearParam(r.URL.Query(), defaultBacktestYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.orch.Backtest(r.Context(), p.symbols, p.period, p.offset, p.threshold, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbols, ok := s.symbolsParam(w, q)
	if !ok {
		return
	}
	period, err := seasonal.ParsePeriod(valueOr(q, "period", defaultPeriod))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	objective, err := backtest.ParseObjective(valueOr(q, "optimize_for", defaultObjective))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.orch.Optimize(r.Context(), symbols, period, objective)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbols, ok := s.symbolsParam(w, q)
	if !ok {
		return
	}
	windowSize, threshold, ok := s.windowParams(w, q)
	if !ok {
		return
	}

	symbol := symbols[0]
	windows, err := s.orch.Windows(r.Context(), symbol, windowSize, threshold)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No data found for %s", symbol))
		return
	}
	writeJSON(w, http.StatusOK, newWindowsView(symbol, windowSize, threshold, windows))
}

func (s *Server) handleWindowBacktest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbols, ok := s.symbolsParam(w, q)
	if !ok {
		return
	}
	windowSize, threshold, ok := s.windowParams(w, q)
	if !ok {
		return
	}
	year, err := yearParam(q, defaultWindowsYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.orch.WindowBacktest(r.Context(), symbols[0], windowSize, threshold, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlanBacktest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	strategies, ok := s.strategiesParam(w, q)
	if !ok {
		return
	}
	year, err := intParam(q, "year", defaultPlanYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.orch.PlanBacktest(r.Context(), strategies, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlanExport(w http.ResponseWriter, r *http.Request) {
	strategies, ok := s.strategiesParam(w, r.URL.Query())
	if !ok {
		return
	}
	content, err := s.orch.ExportPlanCalendar(r.Context(), strategies)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeCSV(w, content, "trading-plan.csv")
}

func (s *Server) handleExportStats(w http.ResponseWriter, r *http.Request) {
	p, ok := s.analysisParams(w, r)
	if !ok {
		return
	}
	content, err := s.orch.ExportStats(r.Context(), p.symbols, p.period, p.offset, p.threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeCSV(w, content, reporting.ExportFilename(p.request(), "stats"))
}

func (s *Server) handleExportTrades(w http.ResponseWriter, r *http.Request) {
	p, ok := s.analysisParams(w, r)
	if !ok {
		return
	}
	content, err := s.orch.ExportTrades(r.Context(), p.symbols, p.period, p.offset, p.threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeCSV(w, content, reporting.ExportFilename(p.request(), "trades"))
}

func (s *Server) handleExportStrategy(w http.ResponseWriter, r *http.Request) {
	p, ok := s.analysisParams(w, r)
	if !ok {
		return
	}
	stockName := reporting.SeriesLabel(p.symbols)
	content, err := s.orch.ExportStrategy(r.Context(), p.symbols, p.period, p.offset, p.threshold, stockName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeCSV(w, content, reporting.ExportFilename(p.request(), "strategy"))
}

// analysisParams is the query parameter set shared by the table, backtest,
// and export endpoints.
type analysisParams struct {
	symbols   []string
	period    seasonal.Period
	offset    int
	threshold int
}

func (p analysisParams) request() reporting.Request {
	return reporting.Request{
		Symbols:   p.symbols,
		Period:    p.period,
		Offset:    p.offset,
		Threshold: p.threshold,
	}
}

// analysisParams parses and validates the shared parameters, writing the
// 400 response itself when any of them is unusable.
func (s *Server) analysisParams(w http.ResponseWriter, r *http.Request) (analysisParams, bool) {
	var p analysisParams
	q := r.URL.Query()

	symbols, ok := s.symbolsParam(w, q)
	if !ok {
		return p, false
	}
	period, err := seasonal.ParsePeriod(valueOr(q, "period", defaultPeriod))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return p, false
	}
	offset, err := intParam(q, "offset", defaultOffset)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return p, false
	}
	if offset < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid offset %d: must be non-negative", offset))
		return p, false
	}
	threshold, err := intParam(q, "threshold", defaultThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return p, false
	}
	if threshold < 0 || threshold > 100 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid threshold %d: must be within [0, 100]", threshold))
		return p, false
	}

	return analysisParams{symbols: symbols, period: period, offset: offset, threshold: threshold}, true
}

func (s *Server) symbolsParam(w http.ResponseWriter, q url.Values) ([]string, bool) {
	symbols, err := store.ParseSymbols(q.Get("symbol"), orchestrator.MaxBasketSymbols)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "No symbol provided")
		return nil, false
	}
	return symbols, true
}

func (s *Server) windowParams(w http.ResponseWriter, q url.Values) (windowSize, threshold int, ok bool) {
	windowSize, err := intParam(q, "window_size", defaultWindowSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	if windowSize <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid window size %d: must be positive", windowSize))
		return 0, 0, false
	}
	threshold, err = intParam(q, "threshold", defaultThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	if threshold < 0 || threshold > 100 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid threshold %d: must be within [0, 100]", threshold))
		return 0, 0, false
	}
	return windowSize, threshold, true
}

func (s *Server) strategiesParam(w http.ResponseWriter, q url.Values) ([]orchestrator.Strategy, bool) {
	raw := valueOr(q, "strategies", "[]")
	var strategies []orchestrator.Strategy
	if err := json.Unmarshal([]byte(raw), &strategies); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid strategies JSON")
		return nil, false
	}
	if len(strategies) == 0 {
		writeError(w, http.StatusBadRequest, "No strategies provided")
		return nil, false
	}
	return strategies, true
}

func valueOr(q url.Values, name, fallback string) string {
	if v := q.Get(name); v != "" {
		return v
	}
	return fallback
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// yearParam reads a backtest year; "avg" (or 0) selects average-year mode.
func yearParam(q url.Values, fallback int) (int, error) {
	raw := q.Get("year")
	if raw == "" {
		return fallback, nil
	}
	if raw == "avg" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// windowView is the rounded display form of one detected window: returns
// at two decimals, win rate as a whole percentage, yield in basis points
// per day.
type windowView struct {
	StartDay    int              `json:"start_day"`
	EndDay      int              `json:"end_day"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Length      int              `json:"length"`
	AvgReturn   float64          `json:"avg_return"`
	WinRate     float64          `json:"win_rate"`
	Score       float64          `json:"score"`
	YieldPerDay float64          `json:"yield_per_day"`
	YearReturns map[int]*float64 `json:"year_returns"`
}

type windowsView struct {
	Symbol      string       `json:"symbol"`
	WindowSize  int          `json:"window_size"`
	Threshold   int          `json:"threshold"`
	Windows     []windowView `json:"windows"`
	TotalDays   int          `json:"total_days"`
	TotalReturn float64      `json:"total_return"`
}

func newWindowsView(symbol string, windowSize, threshold int, windows []seasonal.SlidingWindow) windowsView {
	view := windowsView{
		Symbol:     symbol,
		WindowSize: windowSize,
		Threshold:  threshold,
		Windows:    make([]windowView, 0, len(windows)),
	}

	var sumReturn float64
	for _, w := range windows {
		years := make(map[int]*float64, len(w.YearReturns))
		for year, ret := range w.YearReturns {
			if ret == nil {
				years[year] = nil
				continue
			}
			v := round2(*ret)
			years[year] = &v
		}
		view.Windows = append(view.Windows, windowView{
			StartDay:    w.StartDay,
			EndDay:      w.EndDay,
			StartDate:   w.StartDate,
			EndDate:     w.EndDate,
			Length:      w.Length,
			AvgReturn:   round2(w.AvgReturn),
			WinRate:     math.Round(w.WinRate * 100),
			Score:       round2(w.Score),
			YieldPerDay: round2(w.YieldPerDay * 100),
			YearReturns: years,
		})
		view.TotalDays += w.Length
		sumReturn += w.AvgReturn
	}
	view.TotalReturn = round2(sumReturn)
	return view
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeCSV(w http.ResponseWriter, content, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.Write([]byte(content))
}
