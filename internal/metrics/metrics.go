// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smart_attendance"

var (
	// Captures counts capture sequences by outcome (captured, camera_error, capture_error).
	Captures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "captures_total",
		Help:      "Capture sequences by outcome.",
	}, []string{"outcome"})

	// OracleComparisons counts face comparisons by provider and result (match, no_match, error, rejected).
	OracleComparisons = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oracle_comparisons_total",
		Help:      "Face comparisons sent to the oracle by provider and result.",
	}, []string{"provider", "result"})

	// OracleDuration observes the latency of a single comparison call.
	OracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "oracle_duration_seconds",
		Help:      "Latency of face comparison calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"provider"})

	// BreakerState reports circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "oracle_breaker_state",
		Help:      "Oracle circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	// Resolutions counts identity resolution outcomes (matched, no_match, oracle_error).
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Identity resolution outcomes.",
	}, []string{"outcome"})

	// Transitions counts attendance transitions by action and outcome.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Attendance transitions by action and outcome.",
	}, []string{"action", "outcome"})

	// Registrations counts registration attempts by outcome.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Registration attempts by outcome.",
	}, []string{"outcome"})

	// StorageParseErrors counts blobs that failed to parse and were reset to empty.
	StorageParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_parse_errors_total",
		Help:      "Persisted blobs that failed to parse and were treated as empty.",
	}, []string{"key"})

	// RosterSize is the number of registered users after the last roster change.
	RosterSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roster_size",
		Help:      "Registered users.",
	})

	// OpenSessions is the number of users currently checked in.
	OpenSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_sessions",
		Help:      "Users currently checked in.",
	})
)
