package reporting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/internal/seasonal"
)

func TestStatsCSV(t *testing.T) {
	stats := sampleStats()

	got := StatsCSV(stats)

	want := "Period,Trend %,Direction,EV,Avg,2024,2023\n" +
		"Jan,75,Bull,1.50,2.50,2.00,3.00\n" +
		"Feb,60,Bear,-0.90,-1.50,-2.00,-1.00\n" +
		"Mar,,,,,,\n"
	assert.Equal(t, want, got)
}

func TestStatsCSV_EmptyTable(t *testing.T) {
	assert.Equal(t, "", StatsCSV(seasonal.StatsResult{Years: []int{2023}}))
}

func TestTradesCSV(t *testing.T) {
	trades := sampleTrades()

	got := TradesCSV(trades)

	want := "Entry,Exit,Avg Profit %,Days,Annualized %,2024,2023\n" +
		"Jan-1,Feb-28,5.25,59,32.48,6.00,4.50\n" +
		"TOTAL,,5.25,59,32.48,6.00,4.50\n" +
		"B&H,,12.00,365,12.00,14.00,10.00\n" +
		"EDGE,vs B&H,,,20.48,,\n"
	assert.Equal(t, want, got)
}

func TestTradesCSV_NoTrades(t *testing.T) {
	assert.Equal(t, "", TradesCSV(seasonal.TradesResult{Years: []int{2023}}))
}

func TestStrategyCSV(t *testing.T) {
	got := StrategyCSV(sampleTrades(), "TCS")

	want := "Jan-1,TCS,BUY\nFeb-28,TCS,SELL\n"
	assert.Equal(t, want, got)
}

func TestStrategyCSV_NoTrades(t *testing.T) {
	assert.Equal(t, "", StrategyCSV(seasonal.TradesResult{}, "TCS"))
}

func TestPlanCalendarCSV_SortsByDate(t *testing.T) {
	plans := []PlanStrategy{
		{StockName: "INFY", Trades: []seasonal.TradeRow{
			{EntryDate: "Mar-10", ExitDate: "May-20"},
		}},
		{StockName: "TCS", Trades: []seasonal.TradeRow{
			{EntryDate: "Jan-5", ExitDate: "Feb-28"},
		}},
	}

	got := PlanCalendarCSV(plans)

	want := "Jan-5,TCS,BUY\n" +
		"Feb-28,TCS,SELL\n" +
		"Mar-10,INFY,BUY\n" +
		"May-20,INFY,SELL\n"
	assert.Equal(t, want, got)
}

func TestPlanCalendarCSV_WraparoundExitSortsAfterDecember(t *testing.T) {
	plans := []PlanStrategy{
		{StockName: "GOLD", Trades: []seasonal.TradeRow{
			{EntryDate: "Nov-1", ExitDate: "Feb-15"},
		}},
		{StockName: "TCS", Trades: []seasonal.TradeRow{
			{EntryDate: "Dec-10", ExitDate: "Dec-31"},
		}},
	}

	got := PlanCalendarCSV(plans)

	// GOLD's February exit belongs to the following year, so it lands last.
	want := "Nov-1,GOLD,BUY\n" +
		"Dec-10,TCS,BUY\n" +
		"Dec-31,TCS,SELL\n" +
		"Feb-15,GOLD,SELL\n"
	assert.Equal(t, want, got)
}

func TestPlanCalendarCSV_SkipsUnparseableLabels(t *testing.T) {
	plans := []PlanStrategy{
		{StockName: "BAD", Trades: []seasonal.TradeRow{
			{EntryDate: "???", ExitDate: "Feb-15"},
		}},
		{StockName: "TCS", Trades: []seasonal.TradeRow{
			{EntryDate: "Jan-5", ExitDate: "Feb-28"},
		}},
	}

	got := PlanCalendarCSV(plans)

	want := "Jan-5,TCS,BUY\nFeb-28,TCS,SELL\n"
	assert.Equal(t, want, got)
}

func TestWriteStatsCSV_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "stats.csv")

	reporter := NewDefaultCSVReporter()
	require.NoError(t, reporter.WriteStatsCSV(sampleStats(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, StatsCSV(sampleStats()), string(data))
}

func sampleStats() seasonal.StatsResult {
	bull, bear := true, false
	return seasonal.StatsResult{
		Years: []int{2023, 2024},
		Rows: []seasonal.StatsRow{
			{
				Label:     "Jan",
				TrendPct:  pf(75),
				IsBullish: &bull,
				EV:        pf(1.5),
				Avg:       pf(2.5),
				Years:     map[int]*float64{2023: pf(3.0), 2024: pf(2.0)},
			},
			{
				Label:     "Feb",
				TrendPct:  pf(60),
				IsBullish: &bear,
				EV:        pf(-0.9),
				Avg:       pf(-1.5),
				Years:     map[int]*float64{2023: pf(-1.0), 2024: pf(-2.0)},
			},
			{
				Label: "Mar",
				Years: map[int]*float64{2023: nil, 2024: nil},
			},
		},
	}
}

func sampleTrades() seasonal.TradesResult {
	return seasonal.TradesResult{
		Years: []int{2023, 2024},
		Trades: []seasonal.TradeRow{
			{
				EntryDate:  "Jan-1",
				ExitDate:   "Feb-28",
				AvgProfit:  5.25,
				Days:       59,
				Annualized: 32.48,
				Years:      map[int]*float64{2023: pf(4.5), 2024: pf(6.0)},
			},
		},
		Summary: seasonal.TradesSummary{
			AvgProfit:  5.25,
			AvgDays:    59,
			Annualized: 32.48,
			BHProfit:   12.0,
			Edge:       20.48,
			YearTotals: map[int]*float64{2023: pf(4.5), 2024: pf(6.0)},
			YearBH:     map[int]*float64{2023: pf(10.0), 2024: pf(14.0)},
		},
	}
}

func pf(v float64) *float64 {
	return &v
}
