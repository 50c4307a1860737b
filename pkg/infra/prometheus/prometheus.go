package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var (
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptgate_requests_total",
			Help: "Total number of completion requests by outcome",
		},
		[]string{"status"},
	)

	RequestLatency = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptgate_latency_ms",
			Help:    "End-to-end request latency in milliseconds",
			Buckets: latencyBuckets,
		},
	)

	UpstreamLatency = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptgate_upstream_latency_ms",
			Help:    "Upstream completion latency in milliseconds",
			Buckets: latencyBuckets,
		},
	)

	RateLimitedTotal = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "promptgate_rate_limited_total",
			Help: "Requests denied by admission control",
		},
	)

	TokensUsedTotal = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "promptgate_tokens_used_total",
			Help: "Total upstream tokens consumed",
		},
	)
)

func Registry() *prometheus.Registry {
	return registry
}
