// Package config loads application configuration from an optional YAML
// file, applies ALMANAC_* environment overrides, and fills defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Data struct {
		Dir         string `yaml:"dir"`
		Store       string `yaml:"store"` // "csv" or "sqlite"
		SQLitePath  string `yaml:"sqlite_path"`
		SymbolsFile string `yaml:"symbols_file"`
	} `yaml:"data"`
	Source struct {
		Provider       string  `yaml:"provider"` // "yahoo" or "bybit"
		Proxy          string  `yaml:"proxy"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
		TimeoutSec     int     `yaml:"timeout_sec"`
	} `yaml:"source"`
	Seasonal struct {
		LookbackYears int `yaml:"lookback_years"`
	} `yaml:"seasonal"`
	Refresh struct {
		Cron    string   `yaml:"cron"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"refresh"`
	Optimizer struct {
		Workers int `yaml:"workers"`
	} `yaml:"optimizer"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; defaults cover every field.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ALMANAC_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ALMANAC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ALMANAC_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("ALMANAC_STORE"); v != "" {
		cfg.Data.Store = v
	}
	if v := os.Getenv("ALMANAC_SQLITE_PATH"); v != "" {
		cfg.Data.SQLitePath = v
	}
	if v := os.Getenv("ALMANAC_SYMBOLS_FILE"); v != "" {
		cfg.Data.SymbolsFile = v
	}
	if v := os.Getenv("ALMANAC_SOURCE"); v != "" {
		cfg.Source.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Source.Proxy = v
	}
	if v := os.Getenv("ALMANAC_REFRESH_CRON"); v != "" {
		cfg.Refresh.Cron = v
	}
	if v := os.Getenv("ALMANAC_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Optimizer.Workers = workers
		}
	}

	// Defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.Data.Store == "" {
		cfg.Data.Store = "csv"
	}
	if cfg.Data.SQLitePath == "" {
		cfg.Data.SQLitePath = "data/almanac.db"
	}
	if cfg.Data.SymbolsFile == "" {
		cfg.Data.SymbolsFile = "data/stocks/nse_stocks.csv"
	}
	if cfg.Source.Provider == "" {
		cfg.Source.Provider = "yahoo"
	}
	if cfg.Source.RequestsPerSec == 0 {
		cfg.Source.RequestsPerSec = 2
	}
	if cfg.Source.TimeoutSec == 0 {
		cfg.Source.TimeoutSec = 30
	}
	if cfg.Seasonal.LookbackYears == 0 {
		cfg.Seasonal.LookbackYears = 15
	}
	if cfg.Refresh.Cron == "" {
		cfg.Refresh.Cron = "0 30 18 * * 1-5"
	}
	if cfg.Optimizer.Workers == 0 {
		cfg.Optimizer.Workers = 4
	}

	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Data.Store != "csv" && c.Data.Store != "sqlite" {
		return fmt.Errorf("data.store must be \"csv\" or \"sqlite\", got %q", c.Data.Store)
	}
	if c.Data.Store == "sqlite" && c.Data.SQLitePath == "" {
		return fmt.Errorf("data.sqlite_path is required when data.store is \"sqlite\"")
	}
	if c.Source.Provider != "yahoo" && c.Source.Provider != "bybit" {
		return fmt.Errorf("source.provider must be \"yahoo\" or \"bybit\", got %q", c.Source.Provider)
	}
	if c.Source.RequestsPerSec <= 0 {
		return fmt.Errorf("source.requests_per_sec must be positive")
	}
	if c.Source.TimeoutSec <= 0 {
		return fmt.Errorf("source.timeout_sec must be positive")
	}
	if c.Seasonal.LookbackYears < 2 {
		return fmt.Errorf("seasonal.lookback_years must be at least 2")
	}
	if c.Optimizer.Workers <= 0 {
		return fmt.Errorf("optimizer.workers must be positive")
	}
	return nil
}
