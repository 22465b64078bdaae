package seasonal

// StatsRow is one seasonal table row prepared for rendering or JSON.
type StatsRow struct {
	Label        string           `json:"label"`
	TrendPct     *float64         `json:"trend_pct"`
	IsBullish    *bool            `json:"is_bullish"`
	IsNeutral    bool             `json:"is_neutral"`
	EV           *float64         `json:"ev"`
	RunEV        *float64         `json:"run_ev"`
	InRun        bool             `json:"in_run"`
	IsBullishRun *bool            `json:"is_bullish_run"`
	Avg          *float64         `json:"avg"`
	Years        map[int]*float64 `json:"years"`
}

// StatsResult is the full seasonal stats table.
type StatsResult struct {
	Rows  []StatsRow `json:"rows"`
	Years []int      `json:"years"`
	Runs  []RunInfo  `json:"runs"`
}

// TradeRow is one aggregated trade line: a bullish run averaged over years.
type TradeRow struct {
	EntryDate  string           `json:"entry_date"`
	ExitDate   string           `json:"exit_date"`
	AvgProfit  float64          `json:"avg_profit"`
	Days       int              `json:"days"`
	Annualized float64          `json:"annualized"`
	Years      map[int]*float64 `json:"years"`
}

// TradesSummary aggregates the whole strategy across years.
type TradesSummary struct {
	AvgProfit  float64          `json:"avg_profit"`
	AvgDays    int              `json:"avg_days"`
	Annualized float64          `json:"annualized"`
	BHProfit   float64          `json:"bh_profit"`
	Edge       float64          `json:"edge"`
	YearTotals map[int]*float64 `json:"year_totals"`
	YearBH     map[int]*float64 `json:"year_bh"`
}

// TradesResult is the full trades table with its summary block.
type TradesResult struct {
	Trades  []TradeRow    `json:"trades"`
	Summary TradesSummary `json:"summary"`
	Years   []int         `json:"years"`
}

// BuildStats assembles the stats table from generated rows and detected
// runs. A row reads as neutral only when it has data whose confidence sits
// below the threshold; rows without data keep the neutral flag off and
// simply render empty.
func BuildStats(rows []SeasonalRow, runs []RunInfo, years []int, thresholdPct float64) StatsResult {
	evAtEnd, membership := BuildRunMap(runs)

	out := StatsResult{
		Rows:  make([]StatsRow, 0, len(rows)),
		Years: years,
		Runs:  runs,
	}
	for idx, row := range rows {
		trend := row.Trend()
		statsRow := StatsRow{
			Label: row.Label,
			EV:    row.ExpectedValue(),
			Avg:   row.Average(),
			Years: make(map[int]*float64, len(years)),
		}
		if trend != nil {
			pct, bullish := trend.Pct, trend.Bullish
			statsRow.TrendPct = &pct
			statsRow.IsBullish = &bullish
			statsRow.IsNeutral = pct < thresholdPct
		}
		if ev, ok := evAtEnd[idx]; ok {
			v := ev
			statsRow.RunEV = &v
		}
		if bullish, ok := membership[idx]; ok {
			statsRow.InRun = true
			b := bullish
			statsRow.IsBullishRun = &b
		}
		for _, year := range years {
			statsRow.Years[year] = row.YearReturns[year]
		}
		out.Rows = append(out.Rows, statsRow)
	}
	return out
}

// GreenRuns filters runs down to the bullish ones that get traded. Monthly
// sequences carry a rollover copy of each month, so only runs starting
// inside the first twelve rows count; anything later is a duplicate of a
// run already reported.
func GreenRuns(runs []RunInfo, period Period) []RunInfo {
	var green []RunInfo
	for _, run := range runs {
		if !run.IsBullish {
			continue
		}
		if period == PeriodMonthly && run.StartIdx >= 12 {
			continue
		}
		green = append(green, run)
	}
	return green
}

// BuildTrades assembles the trades table: one line per tradable bullish run
// with per-year profits, then a summary comparing the compounded strategy
// against buy-and-hold.
func BuildTrades(rows []SeasonalRow, runs []RunInfo, years []int, period Period, offsetDays int) TradesResult {
	green := GreenRuns(runs, period)
	yearly := SimulateAllYears(rows, green, years, period)

	out := TradesResult{Years: years}
	for runIdx, run := range green {
		days := RunDays(rows, run.StartIdx, run.EndIdx, period)
		tradeRow := TradeRow{
			EntryDate: PeriodDateLabel(period, rows[run.StartIdx].Label, offsetDays, true),
			ExitDate:  PeriodDateLabel(period, rows[run.EndIdx].Label, offsetDays, false),
			Days:      days,
			Years:     make(map[int]*float64, len(years)),
		}

		var totalProfit float64
		var profitCount int
		for _, year := range years {
			result := yearly[year]
			var profit *float64
			for _, trade := range result.Trades {
				if trade.RunIdx == runIdx {
					p := trade.ProfitPct
					profit = &p
					break
				}
			}
			tradeRow.Years[year] = profit
			if profit != nil {
				totalProfit += *profit
				profitCount++
			}
		}
		if profitCount > 0 {
			tradeRow.AvgProfit = totalProfit / float64(profitCount)
		}
		if days > 0 {
			tradeRow.Annualized = tradeRow.AvgProfit * 365 / float64(days)
		}
		out.Trades = append(out.Trades, tradeRow)
	}

	summary := TradesSummary{
		YearTotals: make(map[int]*float64, len(years)),
		YearBH:     make(map[int]*float64, len(years)),
	}
	var totalProfits, bhProfits []float64
	var totalDays []int
	for _, year := range years {
		result := yearly[year]
		totalProfits = append(totalProfits, result.TotalProfitPct)
		totalDays = append(totalDays, result.TotalDaysHeld)
		bhProfits = append(bhProfits, result.BuyHoldProfitPct)

		total, bh := result.TotalProfitPct, result.BuyHoldProfitPct
		summary.YearTotals[year] = &total
		summary.YearBH[year] = &bh
	}
	if len(totalProfits) > 0 {
		var profitSum, bhSum float64
		daySum := 0
		for i := range totalProfits {
			profitSum += totalProfits[i]
			bhSum += bhProfits[i]
			daySum += totalDays[i]
		}
		summary.AvgProfit = profitSum / float64(len(totalProfits))
		summary.AvgDays = daySum / len(totalDays)
		summary.BHProfit = bhSum / float64(len(bhProfits))
	}
	if summary.AvgDays > 0 {
		summary.Annualized = summary.AvgProfit * 365 / float64(summary.AvgDays)
	}
	summary.Edge = summary.Annualized - summary.BHProfit
	out.Summary = summary
	return out
}
