// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts calls to the CRM API by resource and outcome.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadboard_upstream_requests_total",
		Help: "CRM API requests by resource and HTTP status.",
	}, []string{"resource", "status"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leadboard_upstream_request_seconds",
		Help:    "CRM API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadboard_cache_hits_total",
		Help: "Dashboard cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadboard_cache_misses_total",
		Help: "Dashboard cache misses, including expired entries.",
	})

	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadboard_cache_evictions_total",
		Help: "Entries removed from the dashboard cache.",
	})

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "leadboard_circuit_breaker_state",
		Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open).",
	}, []string{"name"})

	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leadboard_aggregation_seconds",
		Help:    "Time spent in one full fetch-and-aggregate pass.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadboard_http_requests_total",
		Help: "Dashboard HTTP requests by path and status.",
	}, []string{"path", "status"})
)
