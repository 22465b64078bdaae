package main

import (
	"flag"
	"fmt"
)

// Flags holds the scanner's command line flags.
type Flags struct {
	// Analysis selection
	Symbol    *string
	Period    *string
	Offset    *int
	Threshold *int

	// Workflows beyond the stats + trades tables
	Backtest    *string
	Optimize    *bool
	OptimizeFor *string
	Windows     *bool
	WindowSize  *int

	// Output
	OutputDir   *string
	ConsoleOnly *bool
	NoExcel     *bool

	// Environment
	ConfigFile *string
	EnvFile    *string

	ShowVersion *bool
}

// NewFlags registers every flag with the default flag set.
func NewFlags() *Flags {
	return &Flags{
		Symbol:    flag.String("symbol", "", "Symbols to analyze, comma separated (a list forms an equal-weight basket)"),
		Period:    flag.String("period", "monthly", "Aggregation period: monthly or weekly"),
		Offset:    flag.Int("offset", 0, "Calendar shift in days"),
		Threshold: flag.Int("threshold", 50, "Run confidence threshold in percent (0-100)"),

		Backtest:    flag.String("backtest", "", "Backtest a calendar year (e.g. 2023) or \"avg\" for the average year"),
		Optimize:    flag.Bool("optimize", false, "Sweep offsets and thresholds for the best parameters"),
		OptimizeFor: flag.String("optimize-for", "profit", "Optimization objective: profit or yield"),
		Windows:     flag.Bool("windows", false, "Detect the best fixed-length windows of the year"),
		WindowSize:  flag.Int("window-size", 30, "Window length in days for -windows"),

		OutputDir:   flag.String("output", "", "Output directory (default results/<LABEL>_<period>)"),
		ConsoleOnly: flag.Bool("console-only", false, "Console tables only, no file exports"),
		NoExcel:     flag.Bool("no-excel", false, "Skip the Excel workbook export"),

		ConfigFile: flag.String("config", "almanac.yaml", "Configuration file path"),
		EnvFile:    flag.String("env", ".env", "Environment file path"),

		ShowVersion: flag.Bool("version", false, "Show version and exit"),
	}
}

// ValidateFlags rejects unusable flag values before any work starts.
func ValidateFlags(f *Flags) error {
	if *f.Symbol == "" {
		return fmt.Errorf("-symbol is required (e.g. -symbol TCS or -symbol TCS,INFY)")
	}
	if *f.Offset < 0 {
		return fmt.Errorf("-offset must be non-negative, got %d", *f.Offset)
	}
	if *f.Threshold < 0 || *f.Threshold > 100 {
		return fmt.Errorf("-threshold must be within [0, 100], got %d", *f.Threshold)
	}
	if *f.WindowSize <= 0 {
		return fmt.Errorf("-window-size must be positive, got %d", *f.WindowSize)
	}
	if *f.Optimize && *f.Backtest != "" {
		return fmt.Errorf("-optimize and -backtest are mutually exclusive")
	}
	return nil
}
