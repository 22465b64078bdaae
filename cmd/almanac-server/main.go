package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"almanac/cmd/common"
	"almanac/internal/config"
	"almanac/internal/server"
	"almanac/pkg/orchestrator"
)

const appName = "Almanac Server"

func main() {
	configFile := flag.String("config", "almanac.yaml", "Configuration file path")
	envFile := flag.String("env", ".env", "Environment file path")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		common.PrintVersion(appName)
		return
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

	orch := orchestrator.NewOrchestrator(
		components.Loader, components.Directory,
		cfg.Seasonal.LookbackYears, cfg.Optimizer.Workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, orch, components.Loader).Run(ctx); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}
