package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbiter_provider_requests_total",
			Help: "Outbound provider calls by provider, operation and outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orbiter_provider_request_duration_seconds",
			Help:    "Outbound provider call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orbiter_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	DomainTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbiter_custom_domain_transitions_total",
			Help: "Custom domain state machine transitions",
		},
		[]string{"from", "to"},
	)

	CleanupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbiter_cleanup_step_failures_total",
			Help: "Teardown steps recorded for reconciliation",
		},
		[]string{"step"},
	)

	ContentScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbiter_content_scans_total",
			Help: "Site content screening results",
		},
		[]string{"result"},
	)
)

// ObserveProvider records one provider round trip.
func ObserveProvider(provider, operation string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderRequests.WithLabelValues(provider, operation, outcome).Inc()
	ProviderLatency.WithLabelValues(provider, operation).Observe(time.Since(started).Seconds())
}

func Transition(from, to string) {
	if from == to {
		return
	}
	DomainTransitions.WithLabelValues(from, to).Inc()
}
