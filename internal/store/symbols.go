package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"almanac/pkg/types"
)

// SymbolDirectory is the locally cached list of tradable symbols used
// for autocomplete. The backing CSV has a symbol,name header row.
type SymbolDirectory struct {
	path string
}

// NewSymbolDirectory returns a directory over the given CSV file.
func NewSymbolDirectory(path string) *SymbolDirectory {
	return &SymbolDirectory{path: path}
}

// Load reads the directory. A missing file yields an empty list.
func (d *SymbolDirectory) Load() ([]types.SymbolInfo, error) {
	file, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var symbols []types.SymbolInfo
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if len(record) < 2 {
			continue
		}
		symbol := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if symbol == "" || name == "" {
			continue
		}
		symbols = append(symbols, types.SymbolInfo{Symbol: symbol, Name: name})
	}
	return symbols, nil
}

// Save writes the directory, replacing any existing file.
func (d *SymbolDirectory) Save(symbols []types.SymbolInfo) error {
	tmp := d.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"symbol", "name"}); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	for _, s := range symbols {
		if err := writer.Write([]string{s.Symbol, s.Name}); err != nil {
			file.Close()
			os.Remove(tmp)
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, d.path)
}

// Search returns up to maxResults symbols whose ticker or name contains
// the query, case-insensitively. An empty query matches nothing.
func (d *SymbolDirectory) Search(query string, maxResults int) ([]types.SymbolInfo, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	symbols, err := d.Load()
	if err != nil {
		return nil, err
	}

	var matches []types.SymbolInfo
	for _, s := range symbols {
		if strings.Contains(strings.ToLower(s.Symbol), needle) ||
			strings.Contains(strings.ToLower(s.Name), needle) {
			matches = append(matches, s)
			if len(matches) >= maxResults {
				break
			}
		}
	}
	return matches, nil
}

var symbolSanitizer = strings.NewReplacer("/", "-", " ", "", ":", "-")

// SanitizeSymbol maps a ticker to a string safe for file names and keys.
func SanitizeSymbol(symbol string) string {
	return symbolSanitizer.Replace(symbol)
}

// ParseSymbols splits a comma-separated symbol list, upper-cases each
// entry and appends the .NS exchange suffix where missing. Index symbols
// starting with ^ are left untouched.
func ParseSymbols(text string, maxSymbols int) ([]string, error) {
	var symbols []string
	for _, item := range strings.Split(text, ",") {
		item = strings.ToUpper(strings.TrimSpace(item))
		if item != "" {
			symbols = append(symbols, item)
		}
	}
	if len(symbols) > maxSymbols {
		return nil, fmt.Errorf("maximum %d symbols allowed, got %d", maxSymbols, len(symbols))
	}

	normalized := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		switch {
		case strings.HasPrefix(sym, "^"):
			normalized = append(normalized, sym)
		case !strings.HasSuffix(sym, ".NS"):
			normalized = append(normalized, sym+".NS")
		default:
			normalized = append(normalized, sym)
		}
	}
	return normalized, nil
}
