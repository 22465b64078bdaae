package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"almanac/cmd/common"
	"almanac/internal/config"
	"almanac/internal/fetch"
	"almanac/internal/store"
)

const (
	appName = "Almanac Fetch"

	// A directory-wide download can cover the whole exchange.
	maxBulkSymbols = 5000
)

func main() {
	configFile := flag.String("config", "almanac.yaml", "Configuration file path")
	envFile := flag.String("env", ".env", "Environment file path")
	directory := flag.Bool("directory", false, "Rebuild the symbol directory from the NSE equity, index, and ETF lists")
	symbolsArg := flag.String("symbols", "", "Symbols to download, comma separated")
	all := flag.Bool("all", false, "Download every symbol in the directory")
	limit := flag.Int("limit", 0, "Stop after this many symbols (0 = no limit)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		common.PrintVersion(appName)
		return
	}
	if !*directory && *symbolsArg == "" && !*all {
		log.Fatalf("❌ Nothing to do: pass -directory, -symbols, or -all")
	}

	common.LoadEnvironment(*envFile)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	components, err := common.Build(cfg)
	if err != nil {
		log.Fatalf("❌ Startup error: %v", err)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *directory {
		if err := rebuildDirectory(ctx, components.Directory); err != nil {
			log.Fatalf("❌ Directory rebuild failed: %v", err)
		}
	}

	symbols, err := collectSymbols(components.Directory, *symbolsArg, *all, *limit)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if len(symbols) == 0 {
		return
	}

	log.Printf("🚀 Downloading %d symbols via %s", len(symbols), cfg.Source.Provider)
	failed := download(ctx, components.Loader, symbols)
	log.Printf("✅ Downloaded %d/%d symbols", len(symbols)-failed, len(symbols))
	if failed > 0 {
		os.Exit(1)
	}
}

func rebuildDirectory(ctx context.Context, directory *store.SymbolDirectory) error {
	log.Println("🔄 Rebuilding symbol directory from NSE lists...")
	symbols, err := fetch.NewDirectoryBuilder().Build(ctx)
	if err != nil {
		return err
	}
	if err := directory.Save(symbols); err != nil {
		return fmt.Errorf("save directory: %w", err)
	}
	log.Printf("✅ Symbol directory rebuilt: %d symbols", len(symbols))
	return nil
}

// collectSymbols resolves the download set: an explicit list, or the
// whole directory with -all.
func collectSymbols(directory *store.SymbolDirectory, symbolsArg string, all bool, limit int) ([]string, error) {
	var symbols []string
	if all {
		entries, err := directory.Load()
		if err != nil {
			return nil, fmt.Errorf("load directory: %w", err)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("symbol directory is empty, run -directory first")
		}
		for _, e := range entries {
			symbols = append(symbols, e.Symbol)
		}
	} else if symbolsArg != "" {
		parsed, err := store.ParseSymbols(symbolsArg, maxBulkSymbols)
		if err != nil {
			return nil, err
		}
		symbols = parsed
	}

	if limit > 0 && len(symbols) > limit {
		symbols = symbols[:limit]
	}
	return symbols, nil
}

func download(ctx context.Context, loader *fetch.Loader, symbols []string) int {
	failed := 0
	for i, symbol := range symbols {
		if ctx.Err() != nil {
			log.Printf("⚠️ Interrupted after %d/%d symbols", i, len(symbols))
			return failed + len(symbols) - i
		}
		bars, err := loader.Load(ctx, symbol)
		if err != nil {
			failed++
			log.Printf("⚠️ [%d/%d] %s: %v", i+1, len(symbols), symbol, err)
			continue
		}
		log.Printf("📊 [%d/%d] %s: %d bars", i+1, len(symbols), symbol, len(bars))
	}
	return failed
}
