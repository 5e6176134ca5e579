package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UpstreamRequestsTotal counts requests issued to the vault API, labeled
	// by operation and outcome (success, api_error, network_error).
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_dashboard_upstream_requests_total",
			Help: "Number of requests issued to the upstream vault API.",
		},
		[]string{"operation", "outcome"},
	)

	// HTTPRequestDuration observes inbound dashboard API request latency.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vault_dashboard_http_request_duration_seconds",
			Help:    "Latency of dashboard API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// StaleHistoryResponsesTotal counts history refresh responses dropped
	// because a newer request had already been issued.
	StaleHistoryResponsesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_dashboard_stale_history_responses_total",
			Help: "History responses discarded by monotonic request sequencing.",
		},
	)
)

// MustRegisterMetrics registers all dashboard collectors with the default
// prometheus registry. Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		HTTPRequestDuration,
		StaleHistoryResponsesTotal,
	)
}

// ObserveUpstreamRequest records one upstream request outcome.
func ObserveUpstreamRequest(operation, outcome string) {
	UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveHTTPRequest records one inbound request with its latency.
func ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}
