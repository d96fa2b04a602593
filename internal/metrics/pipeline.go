package metrics

import "github.com/prometheus/client_golang/prometheus"

// Completion pipeline Prometheus metrics.
var (
	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sherlock",
			Name:      "completion_requests_total",
			Help:      "Total number of completion passes by outcome status",
		},
		[]string{"model", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sherlock",
			Name:      "completion_request_duration_seconds",
			Help:      "Completion provider call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"model"},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sherlock",
			Name:      "response_cache_total",
			Help:      "Response cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sherlock",
			Name:      "retrieval_duration_seconds",
			Help:      "Hybrid retrieval duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RetrievalDegradationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sherlock",
			Name:      "retrieval_degradations_total",
			Help:      "Retrieval passes that lost one search side",
		},
		[]string{"side"}, // "vector" / "keyword"
	)

	StalenessDropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sherlock",
			Name:      "staleness_drops_total",
			Help:      "Messages abandoned because a newer message superseded them",
		},
		[]string{"stage"}, // "debounce" / "delivery"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(CompletionRequestsTotal)
	prometheus.MustRegister(CompletionRequestDuration)
	prometheus.MustRegister(ResponseCacheTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalDegradationsTotal)
	prometheus.MustRegister(StalenessDropsTotal)
	pipelineMetricsRegistered = true
}
