package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grantdesk"

var (
	// HTTP request metrics
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Rate limiter decisions, by rule and outcome (allow, deny, error)
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_decisions_total",
			Help:      "Total number of rate limit decisions",
		},
		[]string{"rule", "outcome"},
	)

	RateLimitSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_swept_entries_total",
			Help:      "Total number of expired rate limit entries removed",
		},
	)

	// Authentication failures, by reason (no_session, provider_error)
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of rejected authentications",
		},
		[]string{"reason"},
	)

	// Activity rows written, by entity type
	AuditRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_records_total",
			Help:      "Total number of activity records written",
		},
		[]string{"entity_type"},
	)

	// Genie calls, by assistant, mode (complete, stream) and outcome
	GenieRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genie_requests_total",
			Help:      "Total number of LLM assistant requests",
		},
		[]string{"assistant", "mode", "outcome"},
	)
)

var registerOnce sync.Once

// Register adds every collector to reg. Calling it more than once is a no-op.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			HttpRequestsTotal,
			HttpRequestDuration,
			DbOperationDuration,
			RateLimitDecisions,
			RateLimitSwept,
			AuthFailures,
			AuditRecords,
			GenieRequests,
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordRateLimit counts a limiter decision.
func RecordRateLimit(rule, outcome string) {
	RateLimitDecisions.WithLabelValues(rule, outcome).Inc()
}

// RecordAuthFailure counts a rejected authentication.
func RecordAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// RecordAudit counts a written activity row.
func RecordAudit(entityType string) {
	AuditRecords.WithLabelValues(entityType).Inc()
}

// RecordGenie counts an assistant call.
func RecordGenie(assistant, mode, outcome string) {
	GenieRequests.WithLabelValues(assistant, mode, outcome).Inc()
}
