// Package seasonal finds calendar-anchored return patterns in daily price
// history: fixed-length day-of-year windows located by a recursive scan, and
// weekly/monthly aggregate runs detected by a threshold state machine.
package seasonal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"almanac/pkg/types"
)

// Period selects the aggregate granularity for seasonal rows.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// OffsetLimit is the largest useful boundary offset per period; sweeping
// further just revisits the same alignments.
func (p Period) OffsetLimit() int {
	if p == PeriodWeekly {
		return 6
	}
	return 30
}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeekly, PeriodMonthly:
		return Period(s), nil
	default:
		return "", fmt.Errorf("invalid period %q: must be weekly or monthly", s)
	}
}

var monthAbbrs = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Non-leap month lengths. Day-of-year math is leap-agnostic on purpose so the
// same calendar day lands on the same key in every year.
var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

var monthNumbers = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// DayOfYear maps a month/day pair onto the fixed 1..365 non-leap scale.
// Feb 29 shares day 60 with Mar 1.
func DayOfYear(month, day int) int {
	doy := day
	for m := 0; m < month-1 && m < 12; m++ {
		doy += monthLengths[m]
	}
	return doy
}

// DateFromDayOfYear is the inverse of DayOfYear on the same non-leap scale.
// Out-of-range inputs clamp to Jan 1 / Dec 31.
func DateFromDayOfYear(doy int) (month, day int) {
	if doy < 1 {
		doy = 1
	}
	if doy > 365 {
		doy = 365
	}
	for m := 0; m < 12; m++ {
		if doy <= monthLengths[m] {
			return m + 1, doy
		}
		doy -= monthLengths[m]
	}
	return 12, 31
}

// MonthDayLabel renders a month/day pair as "Mar-10".
func MonthDayLabel(month, day int) string {
	return fmt.Sprintf("%s-%d", monthAbbrs[month-1], day)
}

// DayOfYearLabel renders a day-of-year as its "Mar-10" calendar label.
func DayOfYearLabel(doy int) string {
	m, d := DateFromDayOfYear(doy)
	return MonthDayLabel(m, d)
}

// ParseMonthDay parses a "Mar-10" label into a date of refYear, clamping the
// day to the month's real length. Unknown month abbreviations read as January.
func ParseMonthDay(label string, refYear int) (time.Time, bool) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	month, ok := monthNumbers[parts[0]]
	if !ok {
		month = 1
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	if max := daysInMonth(refYear, time.Month(month)); day > max {
		day = max
	}
	return time.Date(refYear, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstMonday returns the first Monday of the year.
func FirstMonday(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (8 - int(jan1.Weekday())) % 7
	return jan1.AddDate(0, 0, offset)
}

// PeriodDays approximates the calendar days covered by one row label.
// Wraparound labels ("Jan+", "Week 1+") count the same as their base period.
func PeriodDays(period Period, label string) int {
	if period == PeriodWeekly {
		return 7
	}
	if n, ok := monthNumbers[strings.TrimSuffix(label, "+")]; ok {
		return monthLengths[n-1]
	}
	return 30
}

// PeriodDateLabel converts a row label plus boundary offset into the concrete
// "Mar-10" calendar label of its entry (period start + offset) or exit
// (period end + offset). Day overflow carries into following months.
func PeriodDateLabel(period Period, label string, offsetDays int, isEntry bool) string {
	if period == PeriodMonthly {
		month, ok := monthNumbers[strings.TrimSuffix(label, "+")]
		if !ok {
			month = 1
		}
		day := 1 + offsetDays
		if !isEntry {
			day = monthLengths[month-1] + offsetDays
		}
		for day > monthLengths[month-1] {
			day -= monthLengths[month-1]
			month = month%12 + 1
		}
		return MonthDayLabel(month, day)
	}

	weekStr := strings.TrimSuffix(strings.TrimPrefix(label, "Week "), "+")
	weekNum, err := strconv.Atoi(weekStr)
	if err != nil {
		weekNum = 1
	}
	// 2024 starts on a Monday, which keeps week labels stable across years.
	weekStart := FirstMonday(2024).AddDate(0, 0, 7*(weekNum-1))
	target := weekStart.AddDate(0, 0, offsetDays)
	if !isEntry {
		target = weekStart.AddDate(0, 0, 6+offsetDays)
	}
	return MonthDayLabel(int(target.Month()), target.Day())
}

// nextBarIndex returns the first bar on or after date, or -1.
func nextBarIndex(bars []types.Bar, date time.Time) int {
	i := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(date) })
	if i >= len(bars) {
		return -1
	}
	return i
}

// prevBarIndex returns the last bar on or before date, or -1.
func prevBarIndex(bars []types.Bar, date time.Time) int {
	i := sort.Search(len(bars), func(i int) bool { return bars[i].Date.After(date) })
	return i - 1
}

// AnalysisYears lists the lookback window of full calendar years ending at
// the series' last bar, excluding the final (incomplete) year.
func AnalysisYears(bars []types.Bar, lookbackYears int) []int {
	if len(bars) == 0 {
		return nil
	}
	current := bars[len(bars)-1].Date.Year()
	years := make([]int, 0, lookbackYears)
	for y := current - lookbackYears + 1; y < current; y++ {
		years = append(years, y)
	}
	return years
}

// rowYears is AnalysisYears plus the final year; seasonal rows carry it so
// wraparound periods can read into the most recent data.
func rowYears(bars []types.Bar, lookbackYears int) []int {
	if len(bars) == 0 {
		return nil
	}
	current := bars[len(bars)-1].Date.Year()
	years := make([]int, 0, lookbackYears)
	for y := current - lookbackYears + 1; y <= current; y++ {
		years = append(years, y)
	}
	return years
}
