package events

import (
	"time"

	"github.com/kozaktomas/smart-attendance/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// NewCircuitBreaker creates the breaker guarding the broker. It opens after three
// consecutive publish failures.
func NewCircuitBreaker(name string, log zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Publisher circuit breaker changed state")
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
}
