package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"almanac/pkg/types"
)

// CSVProvider implements BarProvider for CSV files
type CSVProvider struct {
	format ColumnMapping
}

// NewCSVProvider creates a new CSV provider with the default layout
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{
		format: DefaultCSVFormat,
	}
}

// NewCSVProviderWithFormat creates a new CSV provider with a custom layout
func NewCSVProviderWithFormat(format ColumnMapping) *CSVProvider {
	return &CSVProvider{
		format: format,
	}
}

// GetName returns the name of the provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadBars loads a daily bar series from a CSV file
func (p *CSVProvider) LoadBars(source string) ([]types.Bar, error) {
	return p.loadBarsWithFormat(source, p.format)
}

// loadBarsWithFormat loads a series with a specific CSV layout
func (p *CSVProvider) loadBarsWithFormat(filename string, format ColumnMapping) ([]types.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
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

	var bars []types.Bar

	lineNum := 1 // Start from 1 since we already read the header
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %v", lineNum, err)
		}
		lineNum++

		// Check minimum columns based on layout
		if len(record) < format.MinColumns {
			log.Printf("⚠️ Insufficient columns at line %d (expected %d, got %d), skipping", lineNum, format.MinColumns, len(record))
			continue
		}

		// Parse the date with the configurable format
		date, err := time.Parse(format.DateFormat, record[format.DateCol])
		if err != nil {
			log.Printf("⚠️ Invalid date '%s' at line %d, skipping: %v", record[format.DateCol], lineNum, err)
			continue
		}

		// Parse price data using configurable columns
		open, err := strconv.ParseFloat(record[format.OpenCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid open price '%s' at line %d, skipping: %v", record[format.OpenCol], lineNum, err)
			continue
		}

		high, err := strconv.ParseFloat(record[format.HighCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid high price '%s' at line %d, skipping: %v", record[format.HighCol], lineNum, err)
			continue
		}

		low, err := strconv.ParseFloat(record[format.LowCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid low price '%s' at line %d, skipping: %v", record[format.LowCol], lineNum, err)
			continue
		}

		closePrice, err := strconv.ParseFloat(record[format.CloseCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid close price '%s' at line %d, skipping: %v", record[format.CloseCol], lineNum, err)
			continue
		}

		// The volume column is optional; series synthesized from baskets omit it
		volume := 0.0
		if format.VolumeCol < len(record) {
			volume, err = strconv.ParseFloat(record[format.VolumeCol], 64)
			if err != nil {
				log.Printf("⚠️ Invalid volume '%s' at line %d, skipping: %v", record[format.VolumeCol], lineNum, err)
				continue
			}
		}

		// Basic data validation
		if open <= 0 || high <= 0 || low <= 0 || closePrice <= 0 {
			log.Printf("⚠️ Invalid price data (negative or zero) at line %d, skipping", lineNum)
			continue
		}

		if high < open || high < closePrice || high < low {
			log.Printf("⚠️ High price is lower than other prices at line %d, skipping", lineNum)
			continue
		}

		if low > open || low > closePrice || low > high {
			log.Printf("⚠️ Low price is higher than other prices at line %d, skipping", lineNum)
			continue
		}

		bars = append(bars, types.Bar{
			Date:   types.Day(date),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return bars, nil
}

// WriteBars writes a daily bar series to a CSV file in the default layout.
// The file is replaced atomically via a temporary sibling.
func WriteBars(filename string, bars []types.Bar) error {
	tmp := filename + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}

	for _, bar := range bars {
		record := []string{
			bar.Date.Format("2006-01-02"),
			strconv.FormatFloat(bar.Open, 'f', -1, 64),
			strconv.FormatFloat(bar.High, 'f', -1, 64),
			strconv.FormatFloat(bar.Low, 'f', -1, 64),
			strconv.FormatFloat(bar.Close, 'f', -1, 64),
			strconv.FormatFloat(bar.Volume, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
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

	return os.Rename(tmp, filename)
}

// ValidateBars validates the integrity of a loaded series
func (p *CSVProvider) ValidateBars(bars []types.Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("no data provided")
	}

	for i, bar := range bars {
		// Validate price data
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return fmt.Errorf("invalid price data at index %d: prices must be positive", i)
		}

		if bar.High < bar.Low {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)",
				i, bar.High, bar.Low)
		}

		if bar.High < bar.Open || bar.High < bar.Close {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) must be >= open (%.4f) and close (%.4f)",
				i, bar.High, bar.Open, bar.Close)
		}

		if bar.Low > bar.Open || bar.Low > bar.Close {
			return fmt.Errorf("invalid price data at index %d: low (%.4f) must be <= open (%.4f) and close (%.4f)",
				i, bar.Low, bar.Open, bar.Close)
		}

		// Dates must be in chronological order
		if i > 0 && bar.Date.Before(bars[i-1].Date) {
			return fmt.Errorf("invalid date sequence at index %d: dates must be in chronological order", i)
		}
	}

	return nil
}
