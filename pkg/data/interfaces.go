package data

import (
	"time"

	"almanac/pkg/types"
)

// BarProvider interface for loading daily bar series from various sources
type BarProvider interface {
	// LoadBars loads a daily bar series from the specified source
	LoadBars(source string) ([]types.Bar, error)

	// ValidateBars validates the integrity of a loaded series
	ValidateBars(bars []types.Bar) error

	// GetName returns the name of the provider
	GetName() string
}

// BarCache interface for caching loaded series
type BarCache interface {
	// Get retrieves a series from cache if available
	Get(key string) ([]types.Bar, bool)

	// Set stores a series in cache
	Set(key string, bars []types.Bar)

	// Delete removes a single cached series
	Delete(key string)

	// Clear removes all cached series
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// BarFilter interface for filtering and repairing bar series
type BarFilter interface {
	// ByDateRange filters a series to a specific date range (inclusive)
	ByDateRange(bars []types.Bar, start, end time.Time) []types.Bar

	// SortByDate returns a copy of the series in ascending date order
	SortByDate(bars []types.Bar) []types.Bar

	// RemoveDuplicates drops repeated dates, keeping the latest occurrence
	RemoveDuplicates(bars []types.Bar) []types.Bar

	// ValidateSequence ensures a series is in ascending date order without repeats
	ValidateSequence(bars []types.Bar) error
}

// ColumnMapping defines the column positions for different CSV layouts
type ColumnMapping struct {
	DateCol    int
	OpenCol    int
	HighCol    int
	LowCol     int
	CloseCol   int
	VolumeCol  int
	MinColumns int
	DateFormat string
}

// Predefined CSV layouts
var (
	// DefaultCSVFormat matches the files this tool writes: Date,Open,High,Low,Close,Volume.
	// The volume column is optional so basket files without it still load.
	DefaultCSVFormat = ColumnMapping{
		DateCol:    0,
		OpenCol:    1,
		HighCol:    2,
		LowCol:     3,
		CloseCol:   4,
		VolumeCol:  5,
		MinColumns: 5,
		DateFormat: "2006-01-02",
	}

	// YahooCSVFormat matches Yahoo Finance exports, which carry an Adj Close
	// column between Close and Volume.
	YahooCSVFormat = ColumnMapping{
		DateCol:    0,
		OpenCol:    1,
		HighCol:    2,
		LowCol:     3,
		CloseCol:   4,
		VolumeCol:  6,
		MinColumns: 5,
		DateFormat: "2006-01-02",
	}
)
