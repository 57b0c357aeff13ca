package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrBreakerOpen is returned without calling the provider while the circuit is open.
var ErrBreakerOpen = errors.New("face comparison circuit breaker is open")

// BreakerComparer guards a FaceComparer with a circuit breaker and records call metrics.
// Negative answers are successes; only errors count toward tripping, and a missing
// credential never trips it.
type BreakerComparer struct {
	next FaceComparer
	cb   *gobreaker.CircuitBreaker
	log  zerolog.Logger
}

// NewBreakerComparer wraps next. The breaker opens after consecutive failures and lets a
// probe through after openTimeout.
func NewBreakerComparer(next FaceComparer, openTimeout time.Duration, log zerolog.Logger) *BreakerComparer {
	if openTimeout <= 0 {
		openTimeout = constants.BreakerOpenTimeout
	}
	b := &BreakerComparer{next: next, log: log}
	name := "oracle-" + next.Name()
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= constants.BreakerConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotConfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Oracle circuit breaker changed state")
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return b
}

func (b *BreakerComparer) Name() string {
	return b.next.Name()
}

func (b *BreakerComparer) CompareFaces(ctx context.Context, reference, candidate []byte) (bool, error) {
	start := time.Now()
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.CompareFaces(ctx, reference, candidate)
	})

	provider := b.next.Name()
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.OracleComparisons.WithLabelValues(provider, "rejected").Inc()
		return false, fmt.Errorf("%w: %w", ErrBreakerOpen, err)
	}
	metrics.OracleDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OracleComparisons.WithLabelValues(provider, "error").Inc()
		return false, err
	}

	match, _ := out.(bool)
	result := "no_match"
	if match {
		result = "match"
	}
	metrics.OracleComparisons.WithLabelValues(provider, result).Inc()
	return match, nil
}

// State returns the breaker state ("closed", "half-open" or "open").
func (b *BreakerComparer) State() string {
	return b.cb.State().String()
}

func (b *BreakerComparer) GetUsage() Usage {
	return b.next.GetUsage()
}

func (b *BreakerComparer) ResetUsage() {
	b.next.ResetUsage()
}
