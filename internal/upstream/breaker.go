package upstream

import (
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/metrics"
)

// Breaker guards calls to one external service. Only ErrUnavailable results count
// as failures; a missing dish or a rejected request says nothing about service health.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// BreakerSettings tunes a Breaker. Zero values take the defaults below.
type BreakerSettings struct {
	// MinRequests before the failure ratio is considered. Default 5.
	MinRequests uint32
	// FailureRatio that opens the circuit. Default 0.6.
	FailureRatio float64
	// Interval after which closed-state counts reset. Default 1 minute.
	Interval time.Duration
	// Timeout before an open circuit moves to half-open. Default 30 seconds.
	Timeout time.Duration
}

// NewBreaker creates a breaker named after the service it guards.
func NewBreaker(name string, s BreakerSettings) *Breaker {
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				logging.Warn().Str("service", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio).Msg("opening circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("service", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Breaker{cb: cb, name: name}
}

// Name returns the guarded service name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Do runs fn through b. A rejected call returns ErrUnavailable without running fn.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	start := time.Now()

	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return zero, fmt.Errorf("%s: %v: %w", b.name, err, ErrUnavailable)
		}
		result := "success"
		if errors.Is(err, ErrUnavailable) {
			result = "failure"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, result).Inc()
		metrics.ObserveCall(b.name, start, err)
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.ObserveCall(b.name, start, nil)

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", b.name, result)
	}
	return typed, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
