package common

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"almanac/internal/config"
	"almanac/internal/fetch"
	"almanac/internal/store"
)

// LoadEnvironment loads a dotenv file when present. A missing file is
// fine; deployments may configure through the environment alone.
func LoadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️ Could not load %s (%v)", envFile, err)
	}
}

// Components is the wired data layer every binary starts from.
type Components struct {
	Store     store.BarStore
	Loader    *fetch.Loader
	Directory *store.SymbolDirectory
}

// Build opens the configured bar store and assembles the loader and
// symbol directory over it.
func Build(cfg *config.Config) (*Components, error) {
	barStore, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	fetcher, err := NewFetcher(cfg)
	if err != nil {
		barStore.Close()
		return nil, err
	}

	loader := fetch.NewLoader(barStore, fetcher)
	loader.SetRateLimit(cfg.Source.RequestsPerSec)

	return &Components{
		Store:     barStore,
		Loader:    loader,
		Directory: store.NewSymbolDirectory(cfg.Data.SymbolsFile),
	}, nil
}

// Close releases the data layer.
func (c *Components) Close() {
	if err := c.Store.Close(); err != nil {
		log.Printf("⚠️ Closing store: %v", err)
	}
}

// OpenStore opens the bar store backend named by the configuration.
func OpenStore(cfg *config.Config) (store.BarStore, error) {
	if cfg.Data.Store == "sqlite" {
		return store.NewSQLiteStore(cfg.Data.SQLitePath)
	}
	return store.NewCSVStore(cfg.Data.Dir)
}

// NewFetcher picks the download backend named by the configuration.
func NewFetcher(cfg *config.Config) (fetch.HistoryFetcher, error) {
	switch cfg.Source.Provider {
	case "bybit":
		return fetch.NewBybitFetcher(), nil
	case "yahoo":
		f := fetch.NewYahooFetcher(cfg.Source.Proxy)
		f.Client.Timeout = time.Duration(cfg.Source.TimeoutSec) * time.Second
		return f, nil
	default:
		return nil, fmt.Errorf("unknown source provider %q", cfg.Source.Provider)
	}
}
