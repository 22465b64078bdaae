package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"almanac/internal/store"
	"almanac/pkg/data"
	"almanac/pkg/types"
)

// Loader keeps stored series current, downloading only the missing tail.
// All downloads go through one rate limiter and retry policy so bulk
// refreshes stay polite to the upstream API.
type Loader struct {
	store   store.BarStore
	fetcher HistoryFetcher
	filter  *data.DefaultBarFilter
	limiter *rate.Limiter
	retry   RetryConfig
	now     func() time.Time
}

// NewLoader creates a loader over a store and a download backend.
func NewLoader(s store.BarStore, f HistoryFetcher) *Loader {
	return &Loader{
		store:   s,
		fetcher: f,
		filter:  data.NewDefaultBarFilter(),
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		retry:   DefaultRetryConfig(),
		now:     time.Now,
	}
}

// SetRateLimit replaces the shared download pacing, in requests per second.
func (l *Loader) SetRateLimit(rps float64) {
	if rps > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// Load returns the full series for a symbol, downloading whatever the
// store is missing. A series whose last bar is older than yesterday is
// topped up from the day after it; refresh failures fall back to the
// stored series so analyses keep working offline.
func (l *Loader) Load(ctx context.Context, symbol string) ([]types.Bar, error) {
	cached, err := l.store.Load(symbol)
	if err != nil {
		return nil, err
	}

	if len(cached) == 0 {
		fresh, err := l.fetch(ctx, symbol, time.Time{})
		if err != nil {
			return nil, err
		}
		if len(fresh) > 0 {
			if err := l.store.Save(symbol, fresh); err != nil {
				return nil, err
			}
		}
		return fresh, nil
	}

	yesterday := types.Day(l.now().UTC()).AddDate(0, 0, -1)
	last := cached[len(cached)-1].Date
	if !last.Before(yesterday) {
		return cached, nil
	}

	incremental, err := l.fetch(ctx, symbol, last.AddDate(0, 0, 1))
	if err != nil {
		log.Printf("⚠️ Refresh failed for %s, serving stored series: %v", symbol, err)
		return cached, nil
	}
	if len(incremental) == 0 {
		return cached, nil
	}

	merged := l.filter.Repair(append(cached, incremental...))
	if err := l.store.Save(symbol, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadBasket refreshes every component and synthesizes the equal-weight
// basket series from their overlap.
func (l *Loader) LoadBasket(ctx context.Context, symbols []string) ([]types.Bar, error) {
	series := make([][]types.Bar, 0, len(symbols))
	for _, symbol := range symbols {
		bars, err := l.Load(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("basket component %s: %w", symbol, err)
		}
		series = append(series, bars)
	}
	return data.SynthesizeBasket(series), nil
}

// RefreshAll tops up every symbol sequentially under the shared rate
// limit. Failures are collected per symbol and do not stop the run.
func (l *Loader) RefreshAll(ctx context.Context, symbols []string) map[string]error {
	results := make(map[string]error, len(symbols))
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			results[symbol] = ctx.Err()
			continue
		}
		_, err := l.Load(ctx, symbol)
		results[symbol] = err
	}
	return results
}

func (l *Loader) fetch(ctx context.Context, symbol string, start time.Time) ([]types.Bar, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var bars []types.Bar
	err := RetryWithConfig(ctx, func() error {
		var ferr error
		bars, ferr = l.fetcher.FetchDaily(ctx, symbol, start)
		return ferr
	}, l.retry)
	return bars, err
}
