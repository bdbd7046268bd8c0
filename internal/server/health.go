package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"telegram_booking_assistant/internal/storage"
)

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]string      `json:"checks"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthChecker reports on the state of the system
type HealthChecker struct {
	store     storage.ScheduleStore
	sessions  interface{ ActiveCount() int }
	startTime time.Time
	version   string
}

// NewHealthChecker creates a health checker
func NewHealthChecker(store storage.ScheduleStore, sessions interface{ ActiveCount() int }, version string) *HealthChecker {
	return &HealthChecker{
		store:     store,
		sessions:  sessions,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthHandler serves health check requests
func (h *HealthChecker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.checkStore(ctx); err != nil {
		checks["schedule_store"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["schedule_store"] = "healthy"
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Checks:    checks,
		Metrics: map[string]interface{}{
			"active_sessions": h.activeSessions(),
			"goroutines":      runtime.NumGoroutine(),
			"alloc_bytes":     m.Alloc,
			"uptime_seconds":  time.Since(h.startTime).Seconds(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkStore verifies that the schedule document is readable
func (h *HealthChecker) checkStore(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	_, err := h.store.Read(ctx)
	return err
}

func (h *HealthChecker) activeSessions() int {
	if h.sessions == nil {
		return 0
	}
	return h.sessions.ActiveCount()
}
