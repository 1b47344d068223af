// Package metrics provides Prometheus metrics for the registry search server.
// It tracks tool calls, upstream registry calls, and the stages of the search pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "brreg_search"
)

// Enrichment outcomes
const (
	EnrichResolved = "resolved" // manager name found
	EnrichAbsent   = "absent"   // roles fetched, no usable manager
	EnrichFailed   = "failed"   // roles lookup failed
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// RegistryAPILatency measures registry API call latency by action
	RegistryAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "registry_api_latency_seconds",
		Help:      "Registry API call latency by action",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})

	// RegistryAPIRequestsTotal counts registry API requests
	RegistryAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "registry_api_requests_total",
		Help:      "Total registry API requests by action and status",
	}, []string{"action", "status"})

	// RegistryAPIErrors counts registry API errors by HTTP status
	RegistryAPIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "registry_api_errors_total",
		Help:      "Registry API errors by action and error code",
	}, []string{"action", "error_code"})

	// SearchesTotal counts composed searches by outcome
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "searches_total",
		Help:      "Total searches by status",
	}, []string{"status"})

	// AggregatedPages measures how many upstream pages a search walked
	AggregatedPages = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "aggregated_pages",
		Help:      "Upstream listing pages fetched per search",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
	})

	// AggregationCapped counts searches that stopped at the page cap
	AggregationCapped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "aggregation_capped_total",
		Help:      "Searches whose aggregation stopped at the upstream page cap",
	})

	// FilteredRecords measures candidate and surviving record counts per search
	FilteredRecords = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "filtered_records",
		Help:      "Record counts per search before and after local filtering",
		Buckets:   []float64{0, 10, 100, 500, 1000, 2500, 5000, 10000},
	}, []string{"stage"})

	// EnrichmentLookups counts role lookups by outcome
	EnrichmentLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "enrichment_lookups_total",
		Help:      "Manager role lookups by outcome",
	}, []string{"outcome"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// HTTPRequestsTotal counts HTTP API requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by route and status",
	}, []string{"route", "status"})

	// HTTPRequestDuration measures HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency distribution",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"route"})
)

// RecordRequest records a completed tool request with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records a registry API call
func RecordAPICall(action string, duration float64, success bool, errorCode string) {
	RegistryAPIRequestsTotal.WithLabelValues(action, status(success)).Inc()
	RegistryAPILatency.WithLabelValues(action).Observe(duration)
	if errorCode != "" {
		RegistryAPIErrors.WithLabelValues(action, errorCode).Inc()
	}
}

// RecordAggregation records the outcome of walking the upstream listing
func RecordAggregation(pages int, capped bool) {
	AggregatedPages.Observe(float64(pages))
	if capped {
		AggregationCapped.Inc()
	}
}

// RecordFiltering records candidate and filtered record counts
func RecordFiltering(candidates, filtered int) {
	FilteredRecords.WithLabelValues("candidates").Observe(float64(candidates))
	FilteredRecords.WithLabelValues("filtered").Observe(float64(filtered))
}

// RecordEnrichment records a single manager lookup outcome
func RecordEnrichment(outcome string) {
	EnrichmentLookups.WithLabelValues(outcome).Inc()
}

// RecordSearch records a composed search outcome
func RecordSearch(success bool) {
	SearchesTotal.WithLabelValues(status(success)).Inc()
}

// RecordHTTPRequest records an HTTP API request
func RecordHTTPRequest(route string, statusCode int, duration float64) {
	HTTPRequestsTotal.WithLabelValues(route, statusClass(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration)
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
