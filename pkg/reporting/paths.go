package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"almanac/internal/seasonal"
)

// DefaultPathManager implements output path management.
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager.
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns the default output directory for a series
// label and period, e.g. "results/TCS_monthly".
func (p *DefaultPathManager) GetDefaultOutputDir(label string, period seasonal.Period) string {
	l := strings.ToUpper(strings.TrimSpace(label))
	if l == "" {
		l = "UNKNOWN"
	}
	return filepath.Join("results", fmt.Sprintf("%s_%s", l, period))
}

// EnsureDirectoryExists creates the parent directory of path if needed.
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

// SeriesLabel builds the display name for one or more symbols: exchange
// suffixes stripped, basket components joined with "+".
func SeriesLabel(symbols []string) string {
	parts := make([]string, 0, len(symbols))
	for _, s := range symbols {
		parts = append(parts, strings.TrimSuffix(s, ".NS"))
	}
	return strings.Join(parts, "+")
}

// ExportFilename names a CSV export after its parameters, e.g.
// "TCS-M+3@60.stats.csv".
func ExportFilename(req Request, kind string) string {
	return fmt.Sprintf("%s-%s+%d@%d.%s.csv", req.Label(), PeriodAbbr(req.Period), req.Offset, req.Threshold, kind)
}

// TimestampedFilename names a one-off report artifact, e.g.
// "report-20240131-093015.xlsx".
func TimestampedFilename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("20060102-150405"), ext)
}
