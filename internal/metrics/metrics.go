// Package metrics exposes Prometheus collectors for the dispatch pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "site_context"

// Dispatch outcomes.
const (
	OutcomeAnswered    = "answered"
	OutcomeContextOnly = "context_only"
	OutcomeCached      = "cached"
	OutcomeEmptyOutput = "empty_output"
	OutcomeError       = "error"
)

var (
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Dispatches by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Envelope cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	ProviderRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider call latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"provider", "model"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider calls that failed, by provider and error code.",
		},
		[]string{"provider", "code"},
	)

	ModelSelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_selections_total",
			Help:      "Final model selections by provider, tier and complexity.",
		},
		[]string{"provider", "tier", "complexity"},
	)

	IntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Classified prompt intents.",
		},
		[]string{"kind"},
	)

	ThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttled_total",
			Help:      "Requests rejected by the throttle check.",
		},
	)
)
