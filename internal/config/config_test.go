package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "csv", cfg.Data.Store)
	assert.Equal(t, "data/stocks/nse_stocks.csv", cfg.Data.SymbolsFile)
	assert.Equal(t, "yahoo", cfg.Source.Provider)
	assert.Equal(t, 2.0, cfg.Source.RequestsPerSec)
	assert.Equal(t, 30, cfg.Source.TimeoutSec)
	assert.Equal(t, 15, cfg.Seasonal.LookbackYears)
	assert.Equal(t, 4, cfg.Optimizer.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  host: 0.0.0.0
  port: 9000
data:
  dir: /var/lib/almanac
  store: sqlite
  sqlite_path: /var/lib/almanac/bars.db
source:
  provider: bybit
  requests_per_sec: 5
seasonal:
  lookback_years: 20
refresh:
  cron: "0 0 6 * * *"
  symbols: [RELIANCE.NS, TCS.NS]
optimizer:
  workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/var/lib/almanac", cfg.Data.Dir)
	assert.Equal(t, "sqlite", cfg.Data.Store)
	assert.Equal(t, "/var/lib/almanac/bars.db", cfg.Data.SQLitePath)
	assert.Equal(t, "bybit", cfg.Source.Provider)
	assert.Equal(t, 5.0, cfg.Source.RequestsPerSec)
	assert.Equal(t, 20, cfg.Seasonal.LookbackYears)
	assert.Equal(t, "0 0 6 * * *", cfg.Refresh.Cron)
	assert.Equal(t, []string{"RELIANCE.NS", "TCS.NS"}, cfg.Refresh.Symbols)
	assert.Equal(t, 8, cfg.Optimizer.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))

	t.Setenv("ALMANAC_PORT", "7777")
	t.Setenv("ALMANAC_DATA_DIR", "/tmp/bars")
	t.Setenv("ALMANAC_SOURCE", "bybit")
	t.Setenv("ALMANAC_WORKERS", "16")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "/tmp/bars", cfg.Data.Dir)
	assert.Equal(t, "bybit", cfg.Source.Provider)
	assert.Equal(t, 16, cfg.Optimizer.Workers)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: a: map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }, "server.port"},
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }, "data.dir"},
		{"unknown store", func(c *Config) { c.Data.Store = "postgres" }, "data.store"},
		{"sqlite without path", func(c *Config) { c.Data.Store = "sqlite"; c.Data.SQLitePath = "" }, "sqlite_path"},
		{"unknown provider", func(c *Config) { c.Source.Provider = "binance" }, "source.provider"},
		{"zero rate limit", func(c *Config) { c.Source.RequestsPerSec = 0 }, "requests_per_sec"},
		{"short lookback", func(c *Config) { c.Seasonal.LookbackYears = 1 }, "lookback_years"},
		{"zero workers", func(c *Config) { c.Optimizer.Workers = 0 }, "optimizer.workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
