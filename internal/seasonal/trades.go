package seasonal

// RunDays sums the approximate calendar days of one run's member rows.
func RunDays(rows []SeasonalRow, startIdx, endIdx int, period Period) int {
	total := 0
	for i := startIdx; i <= endIdx; i++ {
		total += PeriodDays(period, rows[i].Label)
	}
	return total
}

// SimulateYear replays one year: buy at the start of every bullish run, sell
// at its end, compound across runs. Member rows without data for the year
// are skipped rather than zero-filled; a run with no data at all produces no
// trade. The buy-and-hold baseline compounds every row with data and is
// therefore identical no matter which runs were detected.
func SimulateYear(rows []SeasonalRow, runs []RunInfo, year int, period Period) YearlyTradeResult {
	var trades []Trade
	compounded := 1.0
	totalDays := 0

	for runIdx, run := range runs {
		if !run.IsBullish {
			continue
		}
		runReturn := 1.0
		periodsWithData := 0
		for i := run.StartIdx; i <= run.EndIdx; i++ {
			if ret := rows[i].YearReturns[year]; ret != nil {
				runReturn *= 1 + *ret/100
				periodsWithData++
			}
		}
		if periodsWithData == 0 {
			continue
		}

		days := RunDays(rows, run.StartIdx, run.EndIdx, period)
		trades = append(trades, Trade{
			RunIdx:      runIdx,
			EntryPeriod: rows[run.StartIdx].Label,
			ExitPeriod:  rows[run.EndIdx].Label,
			PeriodsHeld: run.EndIdx - run.StartIdx + 1,
			DaysHeld:    days,
			ProfitPct:   (runReturn - 1) * 100,
		})
		compounded *= runReturn
		totalDays += days
	}

	buyHold := 1.0
	for _, row := range rows {
		if ret := row.YearReturns[year]; ret != nil {
			buyHold *= 1 + *ret/100
		}
	}

	return YearlyTradeResult{
		Year:             year,
		Trades:           trades,
		TotalProfitPct:   (compounded - 1) * 100,
		TotalDaysHeld:    totalDays,
		BuyHoldProfitPct: (buyHold - 1) * 100,
	}
}

// SimulateAllYears runs SimulateYear over every analysis year.
func SimulateAllYears(rows []SeasonalRow, runs []RunInfo, years []int, period Period) map[int]YearlyTradeResult {
	results := make(map[int]YearlyTradeResult, len(years))
	for _, year := range years {
		results[year] = SimulateYear(rows, runs, year, period)
	}
	return results
}
