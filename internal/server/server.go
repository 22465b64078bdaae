// Package server exposes the seasonal analysis workflows over HTTP: JSON
// endpoints for the pattern tables, backtests, window detection and the
// optimizer, CSV export downloads, Prometheus metrics, and an optional
// cron-driven cache refresher.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"almanac/internal/config"
	"almanac/pkg/orchestrator"
)

const shutdownTimeout = 30 * time.Second

// Refresher re-downloads cached price history. *fetch.Loader is the
// production implementation.
type Refresher interface {
	RefreshAll(ctx context.Context, symbols []string) map[string]error
}

// Server routes HTTP requests to the orchestrator and manages the
// process lifecycle around them.
type Server struct {
	cfg        *config.Config
	orch       orchestrator.Orchestrator
	refresher  Refresher
	health     *healthHandler
	mux        *http.ServeMux
	httpServer *http.Server
	cron       *cron.Cron
}

// New builds a Server over the given orchestrator. refresher may be nil
// when the deployment has no cache to warm.
func New(cfg *config.Config, orch orchestrator.Orchestrator, refresher Refresher) *Server {
	s := &Server{
		cfg:       cfg,
		orch:      orch,
		refresher: refresher,
		health:    newHealthHandler(),
		mux:       http.NewServeMux(),
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           instrument(s.mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/symbols", s.handleSymbols)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/trades", s.handleTrades)
	s.mux.HandleFunc("/api/backtest", s.handleBacktest)
	s.mux.HandleFunc("/api/optimize", s.handleOptimize)
	s.mux.HandleFunc("/api/windows", s.handleWindows)
	s.mux.HandleFunc("/api/windows/backtest", s.handleWindowBacktest)
	s.mux.HandleFunc("/api/plan/backtest", s.handlePlanBacktest)
	s.mux.HandleFunc("/api/plan/export", s.handlePlanExport)
	s.mux.HandleFunc("/api/export/stats", s.handleExportStats)
	s.mux.HandleFunc("/api/export/trades", s.handleExportTrades)
	s.mux.HandleFunc("/api/export/strategy", s.handleExportStrategy)
	s.mux.Handle("/metrics", metricsHandler())
	s.mux.Handle("/healthz", s.health)
}

// Handler returns the instrumented root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if err := s.startRefresher(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Serving at http://%s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if s.cron != nil {
			s.cron.Stop()
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Println("📊 Shutting down server...")
	if s.cron != nil {
		s.cron.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("✅ Server stopped")
	return nil
}

// startRefresher schedules the daily cache refresh when a refresher and
// refresh symbols are configured.
func (s *Server) startRefresher(ctx context.Context) error {
	symbols := s.cfg.Refresh.Symbols
	if s.refresher == nil || s.cfg.Refresh.Cron == "" || len(symbols) == 0 {
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())
	_, err := s.cron.AddFunc(s.cfg.Refresh.Cron, func() {
		log.Printf("🔄 Refreshing price cache for %d symbols", len(symbols))
		failed := 0
		for symbol, err := range s.refresher.RefreshAll(ctx, symbols) {
			if err != nil {
				failed++
				log.Printf("⚠️ Refresh %s: %v", symbol, err)
			}
		}
		recordRefresh(len(symbols)-failed, failed)
		log.Printf("✅ Refresh completed: %d ok, %d failed", len(symbols)-failed, failed)
	})
	if err != nil {
		return fmt.Errorf("schedule refresh %q: %w", s.cfg.Refresh.Cron, err)
	}
	s.cron.Start()
	log.Printf("⏰ Cache refresh scheduled: %s", s.cfg.Refresh.Cron)
	return nil
}
