package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Remote persistence call latency in milliseconds.
	RemoteCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_call_latency_ms",
			Help:    "Remote persistence call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"operation", "status"},
	)

	// Mutation outcomes, by kind and result.
	MutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mutation_count",
			Help: "Total number of optimistic mutations applied",
		},
		[]string{"kind", "outcome"}, // outcome: confirmed, rolled_back
	)

	// Stale category references observed on apply.
	StaleReferenceCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_reference_count",
			Help: "Total number of mutations flagged with a stale list reference",
		},
	)

	// Timeline page fetches.
	TimelinePageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_page_count",
			Help: "Total number of timeline page fetches",
		},
		[]string{"status"}, // status: success, failed, discarded
	)

	// Duplicate timeline entries dropped during merge.
	TimelineDuplicateCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timeline_duplicate_count",
			Help: "Total number of duplicate timeline entries dropped on merge",
		},
	)

	// Toast notifications raised.
	ToastCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toast_count",
			Help: "Total number of toast notifications shown",
		},
		[]string{"kind"},
	)

	// Local HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordRemoteCallLatency records one remote persistence call.
func RecordRemoteCallLatency(operation, status string, duration time.Duration) {
	RemoteCallLatency.WithLabelValues(operation, status).Observe(float64(duration.Milliseconds()))
}

// RecordHTTPRequestDuration records one local HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementMutation counts a mutation outcome.
func IncrementMutation(kind, outcome string) {
	MutationCount.WithLabelValues(kind, outcome).Inc()
}

// IncrementTimelinePage counts a timeline page fetch outcome.
func IncrementTimelinePage(status string) {
	TimelinePageCount.WithLabelValues(status).Inc()
}

// IncrementToast counts a shown toast.
func IncrementToast(kind string) {
	ToastCount.WithLabelValues(kind).Inc()
}
