package seasonal

import (
	"fmt"
	"time"

	"almanac/pkg/types"
)

// GenerateRows builds the ordered seasonal row sequence for one series:
// weekly produces "Week 1".."Week 52" plus the wraparound "Week 1+", monthly
// produces "Jan".."Dec" plus the rollover "Jan+".."Dec+". Wraparound rows
// read the following year's data so runs can span year-end. Per year, a
// row's boundaries shift by offsetDays, snap inward to real trading days,
// and yield the close-to-close net return; rows with no tradable span stay
// nil for that year.
func GenerateRows(bars []types.Bar, period Period, offsetDays, lookbackYears int) ([]SeasonalRow, error) {
	if _, err := ParsePeriod(string(period)); err != nil {
		return nil, err
	}
	if offsetDays < 0 {
		return nil, fmt.Errorf("invalid offset %d: must be non-negative", offsetDays)
	}
	if lookbackYears <= 0 {
		return nil, fmt.Errorf("invalid lookback years %d: must be positive", lookbackYears)
	}
	if len(bars) == 0 {
		return nil, nil
	}

	years := rowYears(bars, lookbackYears)
	if period == PeriodWeekly {
		return weeklyRows(bars, years, offsetDays), nil
	}
	return monthlyRows(bars, years, offsetDays), nil
}

func weeklyRows(bars []types.Bar, years []int, offsetDays int) []SeasonalRow {
	rows := make([]SeasonalRow, 0, 53)
	for weekNum := 1; weekNum <= 53; weekNum++ {
		wraparound := weekNum == 53
		label := fmt.Sprintf("Week %d", weekNum)
		if wraparound {
			label = "Week 1+"
		}
		row := SeasonalRow{Label: label, YearReturns: make(map[int]*float64, len(years))}

		for _, year := range years {
			dataYear, actualWeek := year, weekNum
			if wraparound {
				dataYear, actualWeek = year+1, 1
			}
			weekStart := FirstMonday(dataYear).AddDate(0, 0, 7*(actualWeek-1))
			weekEnd := weekStart.AddDate(0, 0, 6)
			row.YearReturns[year] = spanReturn(bars, weekStart, weekEnd, offsetDays)
		}
		rows = append(rows, row)
	}
	return rows
}

func monthlyRows(bars []types.Bar, years []int, offsetDays int) []SeasonalRow {
	rows := make([]SeasonalRow, 0, 24)
	for monthNum := 1; monthNum <= 24; monthNum++ {
		rollover := monthNum > 12
		actualMonth := monthNum
		if rollover {
			actualMonth = monthNum - 12
		}
		label := monthAbbrs[actualMonth-1]
		if rollover {
			label += "+"
		}
		row := SeasonalRow{Label: label, YearReturns: make(map[int]*float64, len(years))}

		for _, year := range years {
			dataYear := year
			if rollover {
				dataYear = year + 1
			}
			monthStart := time.Date(dataYear, time.Month(actualMonth), 1, 0, 0, 0, 0, time.UTC)
			monthEnd := monthStart.AddDate(0, 1, -1)
			row.YearReturns[year] = spanReturn(bars, monthStart, monthEnd, offsetDays)
		}
		rows = append(rows, row)
	}
	return rows
}

// spanReturn shifts a period's calendar bounds by the offset, snaps them
// inward to trading days, and returns the close-to-close net percentage.
func spanReturn(bars []types.Bar, periodStart, periodEnd time.Time, offsetDays int) *float64 {
	adjStart := periodStart.AddDate(0, 0, offsetDays)
	adjEnd := periodEnd.AddDate(0, 0, offsetDays)
	startIdx := nextBarIndex(bars, adjStart)
	endIdx := prevBarIndex(bars, adjEnd)
	if startIdx < 0 || endIdx < 0 || startIdx > endIdx {
		return nil
	}
	startClose := bars[startIdx].Close
	if startClose == 0 {
		return nil
	}
	ret := (bars[endIdx].Close/startClose - 1) * 100
	return &ret
}
