// Package backtest turns detected seasonal patterns into daily equity
// curves, for one concrete year or for a synthetic average year, and sweeps
// the run-detection parameter grid for the best-performing combination.
package backtest

import (
	"time"

	"almanac/internal/seasonal"
)

// nonLeapRefYear anchors label-to-day-of-year conversion; any non-leap year
// keeps Feb 29 out of the mapping.
const nonLeapRefYear = 2023

// Span is one in-market stretch of a target year. Exit falls before entry on
// the calendar when the span wraps year-end; the concrete Exit date is then
// pushed into the following year, never wrapped back to January of the same
// year.
type Span struct {
	EntryLabel string
	ExitLabel  string
	Days       int
	Entry      time.Time
	Exit       time.Time
	EntryDOY   int
	ExitDOY    int
}

// SpanInfo is the JSON/rendering view of a span.
type SpanInfo struct {
	EntryDate string `json:"entry_date"`
	ExitDate  string `json:"exit_date"`
	Days      int    `json:"days"`
}

// Infos projects spans into their rendering view.
func Infos(spans []Span) []SpanInfo {
	infos := make([]SpanInfo, 0, len(spans))
	for _, s := range spans {
		infos = append(infos, SpanInfo{EntryDate: s.EntryLabel, ExitDate: s.ExitLabel, Days: s.Days})
	}
	return infos
}

// RunSpans maps the tradable bullish runs onto concrete entry/exit dates of
// the target year.
func RunSpans(rows []seasonal.SeasonalRow, runs []seasonal.RunInfo, period seasonal.Period, offsetDays, year int) []Span {
	var spans []Span
	for _, run := range seasonal.GreenRuns(runs, period) {
		entryLabel := seasonal.PeriodDateLabel(period, rows[run.StartIdx].Label, offsetDays, true)
		exitLabel := seasonal.PeriodDateLabel(period, rows[run.EndIdx].Label, offsetDays, false)
		span, ok := buildSpan(entryLabel, exitLabel, year)
		if !ok {
			continue
		}
		span.Days = seasonal.RunDays(rows, run.StartIdx, run.EndIdx, period)
		spans = append(spans, span)
	}
	return spans
}

// WindowSpans maps detected sliding windows onto the target year. Windows
// live inside a single calendar year, so they never wrap.
func WindowSpans(windows []seasonal.SlidingWindow, year int) []Span {
	spans := make([]Span, 0, len(windows))
	for _, w := range windows {
		sm, sd := seasonal.DateFromDayOfYear(w.StartDay)
		em, ed := seasonal.DateFromDayOfYear(w.EndDay)
		spans = append(spans, Span{
			EntryLabel: w.StartDate,
			ExitLabel:  w.EndDate,
			Days:       w.Length,
			Entry:      time.Date(year, time.Month(sm), sd, 0, 0, 0, 0, time.UTC),
			Exit:       time.Date(year, time.Month(em), ed, 0, 0, 0, 0, time.UTC),
			EntryDOY:   w.StartDay,
			ExitDOY:    w.EndDay,
		})
	}
	return spans
}

func buildSpan(entryLabel, exitLabel string, year int) (Span, bool) {
	entry, ok := seasonal.ParseMonthDay(entryLabel, year)
	if !ok {
		return Span{}, false
	}
	exit, ok := seasonal.ParseMonthDay(exitLabel, year)
	if !ok {
		return Span{}, false
	}
	if exit.Before(entry) {
		exit, ok = seasonal.ParseMonthDay(exitLabel, year+1)
		if !ok {
			return Span{}, false
		}
	}

	entryRef, _ := seasonal.ParseMonthDay(entryLabel, nonLeapRefYear)
	exitRef, _ := seasonal.ParseMonthDay(exitLabel, nonLeapRefYear)
	return Span{
		EntryLabel: entryLabel,
		ExitLabel:  exitLabel,
		Entry:      entry,
		Exit:       exit,
		EntryDOY:   seasonal.DayOfYear(int(entryRef.Month()), entryRef.Day()),
		ExitDOY:    seasonal.DayOfYear(int(exitRef.Month()), exitRef.Day()),
	}, true
}

func inSpan(spans []Span, day time.Time) bool {
	for _, s := range spans {
		if !day.Before(s.Entry) && !day.After(s.Exit) {
			return true
		}
	}
	return false
}

// inSpanDOY is the average-year membership test. Wrapping spans hold from
// entry through the end of the synthetic year; the overflow into January is
// not replayed at the start.
func inSpanDOY(spans []Span, doy int) bool {
	for _, s := range spans {
		if s.ExitDOY < s.EntryDOY {
			if doy >= s.EntryDOY {
				return true
			}
			continue
		}
		if doy >= s.EntryDOY && doy <= s.ExitDOY {
			return true
		}
	}
	return false
}
