package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "kadabite"
)

var (
	// SignInsTotal counts sign-in attempts
	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_ins_total",
			Help:      "Total number of sign-in attempts",
		},
		[]string{"provider", "status"}, // status: success/failure
	)

	// BackendRequestsTotal counts outbound backend calls
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of requests sent to the backends",
		},
		[]string{"operation", "status"},
	)

	// BackendRequestDuration measures outbound call latency, retries included
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Backend call latency in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// DegradedSessionsTotal counts sessions issued without a session token
	DegradedSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_sessions_total",
			Help:      "Sessions issued without a refreshed token",
		},
		[]string{"reason"}, // encode/mirror
	)

	// BackendSwitchesTotal counts backend target changes
	BackendSwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_switches_total",
			Help:      "Total number of backend target changes",
		},
		[]string{"backend"},
	)

	// ActiveStreams tracks open screen event streams
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "screen_streams_active",
			Help:      "Open flash/redirect screen streams",
		},
		[]string{"screen"},
	)
)

// RecordSignIn records a sign-in attempt.
func RecordSignIn(provider string, success bool) {
	SignInsTotal.WithLabelValues(provider, status(success)).Inc()
}

// RecordBackendCall records a backend call and its latency.
func RecordBackendCall(operation string, duration time.Duration, success bool) {
	BackendRequestsTotal.WithLabelValues(operation, status(success)).Inc()
	BackendRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDegradedSession records a session issued without a token.
func RecordDegradedSession(reason string) {
	DegradedSessionsTotal.WithLabelValues(reason).Inc()
}

// RecordBackendSwitch records a backend target change.
func RecordBackendSwitch(backend string) {
	if backend == "" {
		backend = "default"
	}
	BackendSwitchesTotal.WithLabelValues(backend).Inc()
}

// StreamOpened / StreamClosed track screen streams.
func StreamOpened(screen string) { ActiveStreams.WithLabelValues(screen).Inc() }
func StreamClosed(screen string) { ActiveStreams.WithLabelValues(screen).Dec() }

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
