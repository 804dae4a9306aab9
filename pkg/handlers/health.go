package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"
)

// Version is reported by the root and health endpoints.
const Version = "1.0.0"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB     Pinger
	Logger *slog.Logger

	started time.Time
	now     func() time.Time
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{DB: db, Logger: logger, started: time.Now(), now: time.Now}
}

type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

type memoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	HeapInuse  uint64 `json:"heapInuse"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

type databaseStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type detailedHealthResponse struct {
	healthResponse
	Memory   memoryStats    `json:"memory"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

func (h *HealthHandler) basic() healthResponse {
	now := h.now()
	return healthResponse{
		Status:    "ok",
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Uptime:    now.Sub(h.started).Seconds(),
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Logger, http.StatusOK, h.basic())
}

// Detailed adds runtime stats and a database ping. An unreachable database
// turns the status into "degraded" with 503.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := detailedHealthResponse{
		healthResponse: h.basic(),
		Memory: memoryStats{
			Alloc:      m.Alloc,
			TotalAlloc: m.TotalAlloc,
			Sys:        m.Sys,
			HeapInuse:  m.HeapInuse,
			NumGC:      m.NumGC,
			Goroutines: runtime.NumGoroutine(),
		},
		Version:  runtime.Version(),
		Database: databaseStatus{Status: "connected"},
	}

	status := http.StatusOK
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			h.Logger.Warn("database ping failed", "error", err)
			resp.Status = "degraded"
			resp.Database = databaseStatus{Status: "disconnected", Error: err.Error()}
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, h.Logger, status, resp)
}
