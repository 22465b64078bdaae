// Package fetch downloads daily price history and keeps the local
// store current. Yahoo Finance is the primary source; Bybit covers
// crypto pairs. All download paths share one retry policy and one
// rate limiter.
package fetch

import (
	"context"
	"time"

	"almanac/pkg/types"
)

// HistoryFetcher downloads daily bar history for a symbol.
type HistoryFetcher interface {
	// FetchDaily returns daily bars from start (inclusive) onward in
	// ascending date order. A zero start requests the full history.
	FetchDaily(ctx context.Context, symbol string, start time.Time) ([]types.Bar, error)

	// Name identifies the source in logs.
	Name() string
}
