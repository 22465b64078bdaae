package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"almanac/internal/backtest"
)

// DefaultJSONFormatter implements JSON output.
type DefaultJSONFormatter struct{}

// NewDefaultJSONFormatter creates a new JSON formatter.
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// FormatBestParams formats an optimizer result as indented JSON.
func (f *DefaultJSONFormatter) FormatBestParams(result backtest.OptimizeResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// PrintBestParams prints an optimizer result as JSON to the console.
func (f *DefaultJSONFormatter) PrintBestParams(result backtest.OptimizeResult) {
	data, _ := f.FormatBestParams(result)
	fmt.Println(string(data))
}

// WriteBestParamsJSON writes an optimizer result to a JSON file.
func WriteBestParamsJSON(result backtest.OptimizeResult, path string) error {
	formatter := NewDefaultJSONFormatter()

	data, err := formatter.FormatBestParams(result)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}
