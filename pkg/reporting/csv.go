package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"almanac/internal/seasonal"
)

// DefaultCSVReporter implements CSV file output.
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter.
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// StatsCSV renders the seasonal stats table as CSV. Columns run Period,
// Trend %, Direction, EV, Avg, then one column per year newest first.
// An empty table renders as an empty string.
func StatsCSV(stats seasonal.StatsResult) string {
	if len(stats.Rows) == 0 {
		return ""
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"Period", "Trend %", "Direction", "EV", "Avg"}
	for i := len(stats.Years) - 1; i >= 0; i-- {
		header = append(header, strconv.Itoa(stats.Years[i]))
	}
	w.Write(header)

	for _, row := range stats.Rows {
		values := []string{row.Label}
		if row.TrendPct != nil {
			values = append(values, fmt.Sprintf("%.0f", *row.TrendPct))
		} else {
			values = append(values, "")
		}
		switch {
		case row.IsBullish == nil:
			values = append(values, "")
		case *row.IsBullish:
			values = append(values, "Bull")
		default:
			values = append(values, "Bear")
		}
		values = append(values, formatOptional(row.EV), formatOptional(row.Avg))
		for i := len(stats.Years) - 1; i >= 0; i-- {
			values = append(values, formatOptional(row.Years[stats.Years[i]]))
		}
		w.Write(values)
	}

	w.Flush()
	return sb.String()
}

// TradesCSV renders the trades table as CSV: one line per trade, then
// TOTAL, B&H, and EDGE summary lines. Year columns run newest first.
func TradesCSV(trades seasonal.TradesResult) string {
	if len(trades.Trades) == 0 {
		return ""
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	years := trades.Years

	header := []string{"Entry", "Exit", "Avg Profit %", "Days", "Annualized %"}
	for i := len(years) - 1; i >= 0; i-- {
		header = append(header, strconv.Itoa(years[i]))
	}
	w.Write(header)

	for _, trade := range trades.Trades {
		values := []string{
			trade.EntryDate,
			trade.ExitDate,
			fmt.Sprintf("%.2f", trade.AvgProfit),
			strconv.Itoa(trade.Days),
			fmt.Sprintf("%.2f", trade.Annualized),
		}
		for i := len(years) - 1; i >= 0; i-- {
			values = append(values, formatOptional(trade.Years[years[i]]))
		}
		w.Write(values)
	}

	summary := trades.Summary
	total := []string{
		"TOTAL", "",
		fmt.Sprintf("%.2f", summary.AvgProfit),
		strconv.Itoa(summary.AvgDays),
		fmt.Sprintf("%.2f", summary.Annualized),
	}
	for i := len(years) - 1; i >= 0; i-- {
		total = append(total, formatOptional(summary.YearTotals[years[i]]))
	}
	w.Write(total)

	bh := []string{
		"B&H", "",
		fmt.Sprintf("%.2f", summary.BHProfit),
		"365",
		fmt.Sprintf("%.2f", summary.BHProfit),
	}
	for i := len(years) - 1; i >= 0; i-- {
		bh = append(bh, formatOptional(summary.YearBH[years[i]]))
	}
	w.Write(bh)

	edge := []string{"EDGE", "vs B&H", "", "", fmt.Sprintf("%.2f", summary.Edge)}
	for range years {
		edge = append(edge, "")
	}
	w.Write(edge)

	w.Flush()
	return sb.String()
}

// StrategyCSV renders a headerless date,stockname,action calendar: a BUY
// line at each trade's entry and a SELL line at its exit, in trade order.
// Concatenating several strategies and sorting by date yields a full-year
// trading plan.
func StrategyCSV(trades seasonal.TradesResult, stockName string) string {
	if len(trades.Trades) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, trade := range trades.Trades {
		sb.WriteString(fmt.Sprintf("%s,%s,BUY\n", trade.EntryDate, stockName))
		sb.WriteString(fmt.Sprintf("%s,%s,SELL\n", trade.ExitDate, stockName))
	}
	return sb.String()
}

// PlanStrategy is one strategy's contribution to a combined trading plan.
type PlanStrategy struct {
	StockName string
	Trades    []seasonal.TradeRow
}

// planEntry is one BUY or SELL line with its sort position.
type planEntry struct {
	month  int
	day    int
	label  string
	stock  string
	action string
}

// PlanCalendarCSV merges several strategies into one headerless
// date,stockname,action calendar ordered by date. An exit month earlier
// than its entry month belongs to the following year and sorts after
// December.
func PlanCalendarCSV(plans []PlanStrategy) string {
	var entries []planEntry
	for _, plan := range plans {
		for _, trade := range plan.Trades {
			entryMonth, entryDay, ok := parseCalendarLabel(trade.EntryDate)
			if !ok {
				continue
			}
			exitMonth, exitDay, ok := parseCalendarLabel(trade.ExitDate)
			if !ok {
				continue
			}
			if exitMonth < entryMonth {
				exitMonth += 12
			}
			entries = append(entries,
				planEntry{entryMonth, entryDay, trade.EntryDate, plan.StockName, "BUY"},
				planEntry{exitMonth, exitDay, trade.ExitDate, plan.StockName, "SELL"},
			)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].month != entries[j].month {
			return entries[i].month < entries[j].month
		}
		return entries[i].day < entries[j].day
	})

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s,%s,%s\n", e.label, e.stock, e.action))
	}
	return sb.String()
}

var monthIndex = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

func parseCalendarLabel(label string) (month, day int, ok bool) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	month, found := monthIndex[parts[0]]
	if !found {
		return 0, 0, false
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return month, day, true
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// WriteStatsCSV writes the stats table to a CSV file.
func (r *DefaultCSVReporter) WriteStatsCSV(stats seasonal.StatsResult, path string) error {
	return writeFile(path, StatsCSV(stats))
}

// WriteTradesCSV writes the trades table to a CSV file.
func (r *DefaultCSVReporter) WriteTradesCSV(trades seasonal.TradesResult, path string) error {
	return writeFile(path, TradesCSV(trades))
}

// WriteStrategyCSV writes the strategy calendar to a CSV file.
func (r *DefaultCSVReporter) WriteStrategyCSV(trades seasonal.TradesResult, stockName, path string) error {
	return writeFile(path, StrategyCSV(trades, stockName))
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
