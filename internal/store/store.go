// Package store persists daily bar series and the tradable-symbol
// directory between runs. Two backends exist: one CSV file per symbol,
// and a single SQLite database.
package store

import (
	"time"

	"almanac/pkg/types"
)

// BarStore persists daily bar series between runs.
type BarStore interface {
	// Load returns the stored series for a symbol in ascending date order.
	// A symbol that was never stored yields an empty series, not an error.
	Load(symbol string) ([]types.Bar, error)

	// Save replaces the stored series for a symbol.
	Save(symbol string, bars []types.Bar) error

	// LastDate returns the most recent stored date for a symbol.
	// The bool reports whether any bars are stored at all.
	LastDate(symbol string) (time.Time, bool, error)

	// Close releases any resources held by the backend.
	Close() error
}
