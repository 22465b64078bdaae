package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"almanac/internal/backtest"
	"almanac/internal/seasonal"
)

// DefaultConsoleReporter renders analysis tables to a writer, stdout by
// default.
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout.
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo creates a console reporter writing to w.
func NewConsoleReporterTo(w io.Writer) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: w}
}

// RenderStats prints the seasonal stats table. Year columns run newest
// first; rows inside a detected run carry a direction marker.
func (r *DefaultConsoleReporter) RenderStats(req Request, stats seasonal.StatsResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("SEASONAL STATS  %s", requestTag(req))
	t.SetStyle(table.StyleRounded)

	header := table.Row{"Period", "Run", "Trend %", "Dir", "EV", "Run EV", "Avg"}
	for i := len(stats.Years) - 1; i >= 0; i-- {
		header = append(header, stats.Years[i])
	}
	t.AppendHeader(header)

	for _, row := range stats.Rows {
		marker := ""
		if row.InRun {
			marker = "🔴"
			if row.IsBullishRun != nil && *row.IsBullishRun {
				marker = "🟢"
			}
		}
		direction := ""
		if row.IsBullish != nil {
			if *row.IsBullish {
				direction = "Bull"
			} else {
				direction = "Bear"
			}
		}
		trend := ""
		if row.TrendPct != nil {
			trend = fmt.Sprintf("%.0f", *row.TrendPct)
		}
		line := table.Row{row.Label, marker, trend, direction,
			formatOptional(row.EV), formatOptional(row.RunEV), formatOptional(row.Avg)}
		for i := len(stats.Years) - 1; i >= 0; i-- {
			line = append(line, formatOptional(row.Years[stats.Years[i]]))
		}
		t.AppendRow(line)
	}

	t.SetColumnConfigs(numericColumns(3, 7+len(stats.Years)))
	t.Render()
	fmt.Fprintln(r.out)
}

// RenderTrades prints the trades table with TOTAL, B&H, and EDGE summary
// rows below a separator.
func (r *DefaultConsoleReporter) RenderTrades(req Request, trades seasonal.TradesResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("SEASONAL TRADES  %s", requestTag(req))
	t.SetStyle(table.StyleRounded)

	years := trades.Years
	header := table.Row{"Entry", "Exit", "Avg Profit %", "Days", "Annualized %"}
	for i := len(years) - 1; i >= 0; i-- {
		header = append(header, years[i])
	}
	t.AppendHeader(header)

	for _, trade := range trades.Trades {
		line := table.Row{
			trade.EntryDate,
			trade.ExitDate,
			fmt.Sprintf("%.2f", trade.AvgProfit),
			trade.Days,
			fmt.Sprintf("%.2f", trade.Annualized),
		}
		for i := len(years) - 1; i >= 0; i-- {
			line = append(line, formatOptional(trade.Years[years[i]]))
		}
		t.AppendRow(line)
	}

	t.AppendSeparator()
	summary := trades.Summary

	total := table.Row{"TOTAL", "", fmt.Sprintf("%.2f", summary.AvgProfit),
		summary.AvgDays, fmt.Sprintf("%.2f", summary.Annualized)}
	bh := table.Row{"B&H", "", fmt.Sprintf("%.2f", summary.BHProfit),
		365, fmt.Sprintf("%.2f", summary.BHProfit)}
	for i := len(years) - 1; i >= 0; i-- {
		total = append(total, formatOptional(summary.YearTotals[years[i]]))
		bh = append(bh, formatOptional(summary.YearBH[years[i]]))
	}
	edge := table.Row{"EDGE", "vs B&H", "", "", fmt.Sprintf("%.2f", summary.Edge)}
	for range years {
		edge = append(edge, "")
	}
	t.AppendRows([]table.Row{total, bh, edge})

	t.SetColumnConfigs(numericColumns(3, 5+len(years)))
	t.Render()
	fmt.Fprintln(r.out)
}

// RenderWindows prints detected day-of-year windows with summed totals.
func (r *DefaultConsoleReporter) RenderWindows(symbol string, windows []seasonal.SlidingWindow) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("SEASONAL WINDOWS  %s", symbol)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Start", "End", "Days", "Avg Return %", "Win %", "Score", "Yield bps/day"})

	var totalDays int
	var totalReturn float64
	for _, w := range windows {
		totalDays += w.Length
		totalReturn += w.AvgReturn
		t.AppendRow(table.Row{
			w.StartDate,
			w.EndDate,
			w.Length,
			fmt.Sprintf("%.2f", w.AvgReturn),
			fmt.Sprintf("%.0f", w.WinRate*100),
			fmt.Sprintf("%.2f", w.Score),
			fmt.Sprintf("%.2f", w.YieldPerDay*100),
		})
	}

	t.AppendFooter(table.Row{"TOTAL", "", totalDays, fmt.Sprintf("%.2f", totalReturn), "", "", ""})
	t.SetColumnConfigs(numericColumns(3, 7))
	t.Render()
	fmt.Fprintln(r.out)
}

// RenderBacktest prints one backtested year as a summary card.
func (r *DefaultConsoleReporter) RenderBacktest(req Request, year int, result backtest.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	if year > 0 {
		t.SetTitle("BACKTEST %d  %s", year, requestTag(req))
	} else {
		t.SetTitle("BACKTEST AVG YEAR  %s", requestTag(req))
	}
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📈 Strategy Return", fmt.Sprintf("%.2f%%", result.FinalReturn())},
		{"📊 Buy & Hold", fmt.Sprintf("%.2f%%", result.FinalBuyHold())},
		{"📉 Max Drawdown", fmt.Sprintf("%.2f%%", result.MaxDrawdown())},
		{"⏱ Time In Market", fmt.Sprintf("%.1f%%", result.TimeInMarket()*100)},
		{"🔄 Trades", len(result.Trades)},
		{"📅 Trading Days", len(result.Dates)},
	})
	if result.Warning != "" {
		t.AppendSeparator()
		t.AppendRow(table.Row{"⚠️ Warning", result.Warning})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 45, Align: text.AlignLeft},
	})
	t.Render()
	fmt.Fprintln(r.out)
}

// RenderOptimal prints the winning sweep combination.
func (r *DefaultConsoleReporter) RenderOptimal(req Request, result backtest.OptimizeResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("OPTIMAL PARAMETERS  %s", req.Label())
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Period", string(result.Period)},
		{"🎯 Offset", result.Offset},
		{"🎯 Threshold", fmt.Sprintf("%d%%", result.Threshold)},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// requestTag renders a request the way export filenames do, e.g.
// "TCS-M+3@60".
func requestTag(req Request) string {
	return fmt.Sprintf("%s-%s+%d@%d", req.Label(), PeriodAbbr(req.Period), req.Offset, req.Threshold)
}

// numericColumns right-aligns columns from first to last inclusive,
// 1-based.
func numericColumns(first, last int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, last-first+1)
	for n := first; n <= last; n++ {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	return configs
}

// PeriodAbbr is the single-letter period tag used in filenames and table
// titles.
func PeriodAbbr(period seasonal.Period) string {
	if period == seasonal.PeriodWeekly {
		return "W"
	}
	return "M"
}
