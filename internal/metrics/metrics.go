package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// DispatchTicksTotal counts scanner passes over active schedules.
	DispatchTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_ticks_total",
			Help: "Total number of dispatch scanner ticks",
		},
	)

	// DispatchSendTotal counts dispatch outcomes by status (sent, failed, skipped).
	DispatchSendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_send_total",
			Help: "Total number of dispatched schedule occurrences by status",
		},
		[]string{"status"},
	)

	// EnrichmentTotal counts report enrichment attempts by outcome (succeeded, failed).
	EnrichmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_total",
			Help: "Total number of report enrichment attempts by outcome",
		},
		[]string{"outcome"},
	)

	// WebhookCommandsTotal counts inbound webhook messages by interpreted command.
	WebhookCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_commands_total",
			Help: "Total number of inbound webhook messages by command",
		},
		[]string{"command"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal,
			DispatchTicksTotal, DispatchSendTotal, EnrichmentTotal, WebhookCommandsTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /v1/farms/123 -> /v1/farms/{id}, /v1/schedules/45 -> /v1/schedules/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncDispatchTick increments the scanner tick counter (call once per pass).
func IncDispatchTick() {
	DispatchTicksTotal.Inc()
}

// IncDispatchSend increments the dispatch outcome counter for the given status (sent, failed, skipped).
func IncDispatchSend(status string) {
	DispatchSendTotal.WithLabelValues(status).Inc()
}

// IncEnrichment increments the enrichment counter for the given outcome (succeeded, failed).
func IncEnrichment(outcome string) {
	EnrichmentTotal.WithLabelValues(outcome).Inc()
}

// IncWebhookCommand increments the webhook command counter.
func IncWebhookCommand(command string) {
	WebhookCommandsTotal.WithLabelValues(command).Inc()
}
