// Package metrics declares the Prometheus collectors used by both rasoi programs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecipeLookups counts recipe searches by outcome status and source.
	RecipeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rasoi_recipe_lookups_total",
			Help: "Recipe searches by outcome and source",
		},
		[]string{"status", "source"},
	)

	// ExternalCallDuration observes outbound calls per service.
	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rasoi_external_call_duration_seconds",
			Help:    "Duration of calls to external services",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "result"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rasoi_circuit_breaker_state",
			Help: "Circuit breaker state per external service (0 closed, 1 half-open, 2 open)",
		},
		[]string{"service"},
	)

	// CircuitBreakerRequests counts breaker outcomes: success, failure or rejected.
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rasoi_circuit_breaker_requests_total",
			Help: "Requests passed through circuit breakers by result",
		},
		[]string{"service", "result"},
	)

	// CacheRequests counts cache hits and misses per kind.
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rasoi_cache_requests_total",
			Help: "Lookup cache requests by kind and result",
		},
		[]string{"kind", "result"},
	)

	// GesturesFired counts input actions triggered by gestures.
	GesturesFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rasoi_gestures_fired_total",
			Help: "Input actions issued per gesture",
		},
		[]string{"gesture"},
	)

	// GesturesThrottled counts actions dropped by the rate limiter.
	GesturesThrottled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rasoi_gestures_throttled_total",
			Help: "Input actions dropped by rate limiting",
		},
		[]string{"gesture"},
	)

	// FrameDuration observes per-frame processing time of the gesture pipeline.
	FrameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rasoi_frame_processing_seconds",
			Help:    "Time to detect, classify and act on one camera frame",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// ObserveCall records the duration of an external call that started at start.
func ObserveCall(service string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ExternalCallDuration.WithLabelValues(service, result).Observe(time.Since(start).Seconds())
}
