package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the scheduling assistant bot
var (
	// Conversation metrics
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_bot_turns_total",
			Help: "Total number of processed conversation turns",
		},
		[]string{"status"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_bot_turn_duration_seconds",
			Help:    "Turn processing time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_bot_active_sessions",
			Help: "Number of sessions with live conversation history",
		},
	)

	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_bot_sessions_ended_total",
			Help: "Total number of ended sessions",
		},
		[]string{"reason"}, // farewell, expired
	)

	// Booking metrics. The transport hides why a booking failed; these
	// counters are where the distinct outcomes remain visible.
	BookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_bot_booking_attempts_total",
			Help: "Booking commit attempts by outcome",
		},
		[]string{"result"}, // booked, slot_occupied, slot_not_found, insufficient, storage_unavailable
	)

	// LLM collaborator metrics
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_bot_llm_requests_total",
			Help: "LLM completion requests by profile and status",
		},
		[]string{"profile", "status"}, // persona/extraction/time, ok/error
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_bot_llm_request_duration_seconds",
			Help:    "LLM completion latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"profile"},
	)

	// Storage metrics
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_bot_storage_operations_total",
			Help: "Schedule store operations by status",
		},
		[]string{"operation", "status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_bot_errors_total",
			Help: "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	// HTTP server metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_bot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_bot_http_request_duration_seconds",
			Help:    "HTTP request processing time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordTurn records a processed conversation turn
func RecordTurn(status string) {
	TurnsTotal.WithLabelValues(status).Inc()
}

// RecordBookingAttempt records a booking commit outcome
func RecordBookingAttempt(result string) {
	BookingAttempts.WithLabelValues(result).Inc()
}

// RecordLLMRequest records an LLM completion request
func RecordLLMRequest(profile, status string) {
	LLMRequests.WithLabelValues(profile, status).Inc()
}

// RecordStorageOperation records a schedule store operation
func RecordStorageOperation(operation, status string) {
	StorageOperations.WithLabelValues(operation, status).Inc()
}

// RecordError records an error metric
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordHTTPRequest records an HTTP request metric
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}

// RecordSessionEnd records an ended session
func RecordSessionEnd(reason string) {
	SessionsEnded.WithLabelValues(reason).Inc()
}

// SetActiveSessions sets the active sessions gauge
func SetActiveSessions(count float64) {
	ActiveSessions.Set(count)
}
