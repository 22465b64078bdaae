package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"almanac/cmd/common"
	"almanac/internal/backtest"
	"almanac/internal/config"
	"almanac/internal/seasonal"
	"almanac/internal/store"
	"almanac/pkg/orchestrator"
	"almanac/pkg/reporting"
)

const appName = "Almanac Scanner"

func main() {
	flags := NewFlags()
	flag.Parse()

	if *flags.ShowVersion {
		common.PrintVersion(appName)
		return
	}

	if err := ValidateFlags(flags); err != nil {
		log.Fatalf("❌ Flag validation error: %v", err)
	}

	printHeader()
	common.LoadEnvironment(*flags.EnvFile)

	cfg, err := config.Load(*flags.ConfigFile)
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

	orch := orchestrator.NewOrchestrator(
		components.Loader, components.Directory,
		cfg.Seasonal.LookbackYears, cfg.Optimizer.Workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, orch, flags); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func printHeader() {
	fmt.Printf("🎯 %s v%s\n", strings.ToUpper(appName), common.ProjectVersion)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}

func run(ctx context.Context, orch orchestrator.Orchestrator, flags *Flags) error {
	symbols, err := store.ParseSymbols(*flags.Symbol, orchestrator.MaxBasketSymbols)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols provided")
	}
	period, err := seasonal.ParsePeriod(*flags.Period)
	if err != nil {
		return err
	}

	req := reporting.Request{
		Symbols:   symbols,
		Period:    period,
		Offset:    *flags.Offset,
		Threshold: *flags.Threshold,
	}
	manager := reporting.NewReportingManager(reporting.ReportingConfig{
		EnableConsole:   true,
		EnableFiles:     !*flags.ConsoleOnly,
		OutputDirectory: *flags.OutputDir,
		CSVEnabled:      true,
		ExcelEnabled:    !*flags.NoExcel,
		JSONEnabled:     true,
	})

	switch {
	case *flags.Optimize:
		return runOptimize(ctx, orch, manager, req, *flags.OptimizeFor)
	case *flags.Windows:
		return runWindows(ctx, orch, manager, symbols[0], *flags.WindowSize, *flags.Threshold)
	case *flags.Backtest != "":
		return runBacktest(ctx, orch, manager, req, *flags.Backtest)
	default:
		return runAnalysis(ctx, orch, manager, req)
	}
}

func runAnalysis(ctx context.Context, orch orchestrator.Orchestrator, manager *reporting.ReportingManager, req reporting.Request) error {
	stats, err := orch.Stats(ctx, req.Symbols, req.Period, req.Offset, req.Threshold)
	if err != nil {
		return err
	}
	trades, err := orch.Trades(ctx, req.Symbols, req.Period, req.Offset, req.Threshold)
	if err != nil {
		return err
	}
	return manager.ReportAnalysis(req, stats, trades)
}

func runBacktest(ctx context.Context, orch orchestrator.Orchestrator, manager *reporting.ReportingManager, req reporting.Request, yearArg string) error {
	year, err := parseYear(yearArg)
	if err != nil {
		return err
	}
	result, err := orch.Backtest(ctx, req.Symbols, req.Period, req.Offset, req.Threshold, year)
	if err != nil {
		return err
	}
	manager.ReportBacktest(req, year, result)
	return nil
}

func runOptimize(ctx context.Context, orch orchestrator.Orchestrator, manager *reporting.ReportingManager, req reporting.Request, objectiveArg string) error {
	objective, err := backtest.ParseObjective(objectiveArg)
	if err != nil {
		return err
	}
	result, err := orch.Optimize(ctx, req.Symbols, req.Period, objective)
	if err != nil {
		return err
	}
	return manager.ReportOptimal(req, result)
}

func runWindows(ctx context.Context, orch orchestrator.Orchestrator, manager *reporting.ReportingManager, symbol string, windowSize, threshold int) error {
	windows, err := orch.Windows(ctx, symbol, windowSize, threshold)
	if err != nil {
		return err
	}
	manager.ReportWindows(symbol, windows)
	return nil
}

func parseYear(s string) (int, error) {
	if s == "avg" {
		return 0, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: use a calendar year or \"avg\"", s)
	}
	return year, nil
}
