package store

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"almanac/pkg/data"
	"almanac/pkg/types"
)

// CSVStore keeps one CSV file per symbol under a data directory.
// Loads go through an in-memory cache so repeated requests for the
// same symbol do not re-read the file.
type CSVStore struct {
	dir      string
	provider *data.CachedProvider
	filter   *data.DefaultBarFilter
}

// NewCSVStore creates the data directory if needed and returns a store over it.
func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &CSVStore{
		dir:      dir,
		provider: data.NewCachedProvider(data.NewCSVProvider()),
		filter:   data.NewDefaultBarFilter(),
	}, nil
}

// Path returns the CSV file backing a symbol.
func (s *CSVStore) Path(symbol string) string {
	return filepath.Join(s.dir, SanitizeSymbol(symbol)+".csv")
}

// Load returns the stored series for a symbol in ascending date order.
func (s *CSVStore) Load(symbol string) ([]types.Bar, error) {
	path := s.Path(symbol)
	bars, err := s.provider.LoadBars(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	// Files written by other tools may be unsorted or carry repeats
	if err := s.filter.ValidateSequence(bars); err != nil {
		log.Printf("⚠️ Repairing stored series for %s: %v", symbol, err)
		bars = s.filter.Repair(bars)
	}

	return bars, nil
}

// Save replaces the stored series for a symbol.
func (s *CSVStore) Save(symbol string, bars []types.Bar) error {
	path := s.Path(symbol)
	if err := data.WriteBars(path, bars); err != nil {
		return err
	}

	// Drop any stale cached copy so the next load sees the new file
	s.provider.Invalidate(path)
	return nil
}

// LastDate returns the most recent stored date for a symbol.
func (s *CSVStore) LastDate(symbol string) (time.Time, bool, error) {
	bars, err := s.Load(symbol)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(bars) == 0 {
		return time.Time{}, false, nil
	}
	return bars[len(bars)-1].Date, true, nil
}

// Close is a no-op for the CSV backend.
func (s *CSVStore) Close() error {
	return nil
}
