package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "almanac_http_requests_total",
			Help: "HTTP requests served, by path and status code",
		},
		[]string{"path", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "almanac_http_request_duration_seconds",
			Help:    "HTTP request latency, by path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	refreshSymbolsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "almanac_refresh_symbols_total",
			Help: "Symbols processed by the scheduled cache refresh, by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, refreshSymbolsTotal)
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

func recordRefresh(ok, failed int) {
	refreshSymbolsTotal.WithLabelValues("ok").Add(float64(ok))
	refreshSymbolsTotal.WithLabelValues("failed").Add(float64(failed))
}

var routePaths = map[string]bool{
	"/api/symbols":          true,
	"/api/stats":            true,
	"/api/trades":           true,
	"/api/backtest":         true,
	"/api/optimize":         true,
	"/api/windows":          true,
	"/api/windows/backtest": true,
	"/api/plan/backtest":    true,
	"/api/plan/export":      true,
	"/api/export/stats":     true,
	"/api/export/trades":    true,
	"/api/export/strategy":  true,
	"/metrics":              true,
	"/healthz":              true,
}

// pathLabel keeps the metric label set bounded: unregistered paths all
// collapse into one bucket.
func pathLabel(path string) string {
	if routePaths[path] {
		return path
	}
	return "other"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts and times every request.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := pathLabel(r.URL.Path)
		requestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}
