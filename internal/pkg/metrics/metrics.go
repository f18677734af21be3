package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "token_portfolio"

var (
	// UpstreamRequests counts outbound API calls by api, action and outcome.
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Outbound API requests by api, action and outcome.",
	}, []string{"api", "action", "outcome"})

	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of outbound API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"api", "action"})

	PortfolioCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "portfolio_cache_lookups_total",
		Help:      "Memoized portfolio lookups by result (hit, miss).",
	}, []string{"result"})

	PriceLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_lookups_total",
		Help:      "Token price lookups by result (found, missing, error, cached).",
	}, []string{"result"})

	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "portfolio_pipeline_duration_seconds",
		Help:      "Duration of uncached portfolio aggregations.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers every collector with the default registry.
// Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			UpstreamRequests,
			UpstreamDuration,
			PortfolioCacheLookups,
			PriceLookups,
			PipelineDuration,
		)
	})
}
