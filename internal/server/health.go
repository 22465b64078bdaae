package server

import (
	"net/http"
	"time"
)

type healthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// healthHandler reports process liveness and uptime.
type healthHandler struct {
	started time.Time
}

func newHealthHandler() *healthHandler {
	return &healthHandler{started: time.Now()}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	})
}
