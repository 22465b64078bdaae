package seasonal

import (
	"fmt"
	"sort"

	"almanac/pkg/types"
)

// minScoreYears is the fewest yearly observations a window needs before its
// score means anything.
const minScoreYears = 5

// SlidingWindow is one detected day-of-year range. Produced fresh on every
// search call and never mutated afterwards.
type SlidingWindow struct {
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

// WindowScore holds the scoring outcome for one candidate range.
type WindowScore struct {
	AvgReturn   float64
	WinRate     float64
	Score       float64
	YearReturns map[int]*float64
}

// ScoreWindow evaluates one candidate day-of-year range across every cached
// year. Fewer than minYears observations returns nil: too little history to
// call it a pattern.
func ScoreWindow(cache *ReturnsCache, startDay, endDay, minYears int) *WindowScore {
	yearReturns := make(map[int]*float64, len(cache.years))
	var sum float64
	var wins, count int
	for _, year := range cache.years {
		ret, ok := cache.GetReturn(year, startDay, endDay)
		if !ok {
			yearReturns[year] = nil
			continue
		}
		v := ret
		yearReturns[year] = &v
		sum += ret
		count++
		if ret >= 0 {
			wins++
		}
	}
	if count < minYears {
		return nil
	}
	avg := sum / float64(count)
	winRate := float64(wins) / float64(count)
	return &WindowScore{
		AvgReturn:   avg,
		WinRate:     winRate,
		Score:       avg * winRate,
		YearReturns: yearReturns,
	}
}

func newWindow(startDay, endDay int, score *WindowScore) SlidingWindow {
	length := endDay - startDay + 1
	return SlidingWindow{
		StartDay:    startDay,
		EndDay:      endDay,
		StartDate:   DayOfYearLabel(startDay),
		EndDate:     DayOfYearLabel(endDay),
		Length:      length,
		AvgReturn:   score.AvgReturn,
		WinRate:     score.WinRate,
		Score:       score.Score,
		YieldPerDay: score.AvgReturn / float64(length),
		YearReturns: score.YearReturns,
	}
}

// FindBestFixedWindow scans every start day that fits a windowSize-day range
// into [rangeStart, rangeEnd] and keeps the highest-scoring candidate whose
// win rate clears threshold (0-1) and whose average return is positive. The
// search is long-only; ties keep the earliest start. Returns nil when nothing
// qualifies or the range cannot fit the window.
func FindBestFixedWindow(cache *ReturnsCache, windowSize, rangeStart, rangeEnd int, threshold float64) *SlidingWindow {
	if rangeEnd-rangeStart+1 < windowSize {
		return nil
	}
	var best *SlidingWindow
	for start := rangeStart; start+windowSize-1 <= rangeEnd; start++ {
		end := start + windowSize - 1
		score := ScoreWindow(cache, start, end, minScoreYears)
		if score == nil || score.WinRate < threshold || score.AvgReturn <= 0 {
			continue
		}
		if best == nil || score.Score > best.Score {
			w := newWindow(start, end, score)
			best = &w
		}
	}
	return best
}

// DetectWindows partitions the calendar year into non-overlapping
// windowSize-day windows by recursive range splitting: find the best window
// in a range, emit it, recurse on both remainders. A sub-range whose best
// candidate fails the filters is discarded whole, without further
// subdivision. Needs at least five years of usable history, otherwise the
// result is empty.
func DetectWindows(bars []types.Bar, windowSize int, threshold float64, lookbackYears int) ([]SlidingWindow, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("invalid window size %d: must be positive", windowSize)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("invalid threshold %v: must be within [0, 1]", threshold)
	}
	if lookbackYears <= 0 {
		return nil, fmt.Errorf("invalid lookback years %d: must be positive", lookbackYears)
	}

	cache := BuildReturnsCache(bars, AnalysisYears(bars, lookbackYears))
	if len(cache.years) < minScoreYears {
		return nil, nil
	}

	var windows []SlidingWindow
	var split func(lo, hi int)
	split = func(lo, hi int) {
		if hi-lo+1 < windowSize {
			return
		}
		best := FindBestFixedWindow(cache, windowSize, lo, hi, threshold)
		if best == nil {
			return
		}
		windows = append(windows, *best)
		split(lo, best.StartDay-1)
		split(best.EndDay+1, hi)
	}
	split(1, 365)

	sort.Slice(windows, func(i, j int) bool { return windows[i].StartDay < windows[j].StartDay })
	return windows, nil
}

// NarrowWindowEdges trims single days off a window's start and end while the
// trimmed window keeps length >= minLength, win rate >= threshold, a positive
// average return, and a score no worse than before. The input is returned
// unchanged when no trim qualifies; the result is always a sub-range of the
// input with a score at least as high.
func NarrowWindowEdges(cache *ReturnsCache, window SlidingWindow, threshold float64, minLength int) SlidingWindow {
	current := window
	for {
		trimmed := false
		if current.Length-1 >= minLength {
			if score := ScoreWindow(cache, current.StartDay+1, current.EndDay, minScoreYears); acceptTrim(score, threshold, current.Score) {
				current = newWindow(current.StartDay+1, current.EndDay, score)
				trimmed = true
			}
		}
		if current.Length-1 >= minLength {
			if score := ScoreWindow(cache, current.StartDay, current.EndDay-1, minScoreYears); acceptTrim(score, threshold, current.Score) {
				current = newWindow(current.StartDay, current.EndDay-1, score)
				trimmed = true
			}
		}
		if !trimmed {
			return current
		}
	}
}

func acceptTrim(score *WindowScore, threshold, currentScore float64) bool {
	return score != nil && score.WinRate >= threshold && score.AvgReturn > 0 && score.Score >= currentScore
}
