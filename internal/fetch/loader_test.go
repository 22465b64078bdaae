package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/internal/store"
	"almanac/pkg/types"
)

func TestLoader_InitialDownloadSavesFullHistory(t *testing.T) {
	s := newTestStore(t)
	fetcher := &fakeFetcher{bars: fetchBars("2024-01-02", 100, 101, 102)}
	l := newTestLoader(s, fetcher, "2024-01-05")

	bars, err := l.Load(context.Background(), "TCS.NS")
	require.NoError(t, err)
	require.Len(t, bars, 3)

	require.Len(t, fetcher.starts, 1)
	assert.True(t, fetcher.starts[0].IsZero())

	stored, err := s.Load("TCS.NS")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestLoader_CurrentSeriesSkipsDownload(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("TCS.NS", fetchBars("2024-01-02", 100, 101, 102)))

	fetcher := &fakeFetcher{}
	// Last stored bar is Jan 4, "today" is Jan 5, so nothing is missing
	l := newTestLoader(s, fetcher, "2024-01-05")

	bars, err := l.Load(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Len(t, bars, 3)
	assert.Equal(t, 0, fetcher.calls)
}

func TestLoader_StaleSeriesToppedUp(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("TCS.NS", fetchBars("2024-01-02", 100, 101)))

	fetcher := &fakeFetcher{bars: fetchBars("2024-01-02", 100, 101, 102, 103)}
	l := newTestLoader(s, fetcher, "2024-01-06")

	bars, err := l.Load(context.Background(), "TCS.NS")
	require.NoError(t, err)

	// Download starts the day after the last stored bar
	require.Len(t, fetcher.starts, 1)
	assert.True(t, fetcher.starts[0].Equal(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)))

	require.Len(t, bars, 4)
	assert.Equal(t, 103.0, bars[3].Close)

	stored, err := s.Load("TCS.NS")
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestLoader_RefreshFailureServesStored(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("TCS.NS", fetchBars("2024-01-02", 100, 101)))

	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	l := newTestLoader(s, fetcher, "2024-01-10")

	bars, err := l.Load(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.Equal(t, 101.0, bars[1].Close)
}

func TestLoader_InitialDownloadFailureIsFatal(t *testing.T) {
	s := newTestStore(t)
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	l := newTestLoader(s, fetcher, "2024-01-10")

	_, err := l.Load(context.Background(), "TCS.NS")
	require.Error(t, err)
}

func TestLoader_LoadBasket(t *testing.T) {
	s := newTestStore(t)
	fetcher := &fakeFetcher{bars: fetchBars("2024-01-02", 100, 110, 121)}
	l := newTestLoader(s, fetcher, "2024-01-05")

	basket, err := l.LoadBasket(context.Background(), []string{"TCS.NS", "INFY.NS"})
	require.NoError(t, err)

	// Identical components compound to the shared return path
	require.Len(t, basket, 2)
	assert.InDelta(t, 110.0, basket[0].Close, 1e-9)
	assert.InDelta(t, 121.0, basket[1].Close, 1e-9)
}

func TestLoader_RefreshAll(t *testing.T) {
	s := newTestStore(t)
	fetcher := &fakeFetcher{bars: fetchBars("2024-01-02", 100, 101)}
	l := newTestLoader(s, fetcher, "2024-01-05")

	results := l.RefreshAll(context.Background(), []string{"TCS.NS", "INFY.NS"})
	require.Len(t, results, 2)
	assert.NoError(t, results["TCS.NS"])
	assert.NoError(t, results["INFY.NS"])
	assert.Equal(t, 2, fetcher.calls)
}

func newTestStore(t *testing.T) *store.CSVStore {
	t.Helper()
	s, err := store.NewCSVStore(t.TempDir())
	require.NoError(t, err)
	return s
}

// newTestLoader pins "now" so yesterday checks are deterministic and
// shrinks the retry budget so failure tests stay fast.
func newTestLoader(s store.BarStore, f HistoryFetcher, today string) *Loader {
	day, err := time.Parse("2006-01-02", today)
	if err != nil {
		panic(err)
	}

	l := NewLoader(s, f)
	l.now = func() time.Time { return day }
	l.retry = RetryConfig{MaxRetries: 0, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1.0}
	return l
}

// fakeFetcher serves a fixed series, windowed by the requested start.
type fakeFetcher struct {
	bars   []types.Bar
	err    error
	calls  int
	starts []time.Time
}

func (f *fakeFetcher) FetchDaily(ctx context.Context, symbol string, start time.Time) ([]types.Bar, error) {
	f.calls++
	f.starts = append(f.starts, start)
	if f.err != nil {
		return nil, f.err
	}

	var out []types.Bar
	for _, bar := range f.bars {
		if start.IsZero() || !bar.Date.Before(start) {
			out = append(out, bar)
		}
	}
	return out, nil
}

func (f *fakeFetcher) Name() string { return "fake" }

// fetchBars builds one bar per consecutive calendar day.
func fetchBars(start string, closes ...float64) []types.Bar {
	day, err := time.Parse("2006-01-02", start)
	if err != nil {
		panic(err)
	}

	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 100,
		}
	}
	return bars
}
