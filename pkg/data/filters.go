package data

import (
	"fmt"
	"sort"
	"time"

	"almanac/pkg/types"
)

// DefaultBarFilter implements BarFilter for common series operations
type DefaultBarFilter struct{}

// NewDefaultBarFilter creates a new default bar filter
func NewDefaultBarFilter() *DefaultBarFilter {
	return &DefaultBarFilter{}
}

// ByDateRange filters a series to a specific date range (inclusive)
func (f *DefaultBarFilter) ByDateRange(bars []types.Bar, start, end time.Time) []types.Bar {
	if len(bars) == 0 {
		return bars
	}

	var filtered []types.Bar

	for _, bar := range bars {
		if (bar.Date.After(start) || bar.Date.Equal(start)) &&
			(bar.Date.Before(end) || bar.Date.Equal(end)) {
			filtered = append(filtered, bar)
		}
	}

	return filtered
}

// SortByDate returns a copy of the series in ascending date order
func (f *DefaultBarFilter) SortByDate(bars []types.Bar) []types.Bar {
	if len(bars) <= 1 {
		return bars
	}

	// Create a copy to avoid modifying the original
	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	return sorted
}

// RemoveDuplicates drops repeated dates, keeping the latest occurrence.
// Refetched bars land after their stale copies, so the fresh values win.
func (f *DefaultBarFilter) RemoveDuplicates(bars []types.Bar) []types.Bar {
	if len(bars) <= 1 {
		return bars
	}

	lastIdx := make(map[int64]int)
	for i, bar := range bars {
		lastIdx[bar.Date.Unix()] = i
	}

	var filtered []types.Bar
	for i, bar := range bars {
		if lastIdx[bar.Date.Unix()] == i {
			filtered = append(filtered, bar)
		}
	}

	return filtered
}

// ValidateSequence ensures a series is in ascending date order without repeats
func (f *DefaultBarFilter) ValidateSequence(bars []types.Bar) error {
	if len(bars) <= 1 {
		return nil // Single bar or empty is always valid
	}

	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Before(bars[i-1].Date) {
			return fmt.Errorf("series not in chronological order at index %d: %s comes after %s",
				i, bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}

		// Check for duplicate dates
		if bars[i].Date.Equal(bars[i-1].Date) {
			return fmt.Errorf("duplicate date at index %d: %s",
				i, bars[i].Date.Format("2006-01-02"))
		}
	}

	return nil
}

// Repair sorts a series and drops duplicate dates in one pass over a copy.
// Convenience for loaders merging cached and freshly fetched bars.
func (f *DefaultBarFilter) Repair(bars []types.Bar) []types.Bar {
	return f.RemoveDuplicates(f.SortByDate(bars))
}
