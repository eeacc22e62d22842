package metrics

import (
	"regexp"
	"strconv"

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

	// PostsPending is the current size of the moderation queue. Refreshed by
	// the reminder job and after each create/approve/delete.
	PostsPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "posts_pending",
			Help: "Number of posts awaiting approval",
		},
	)

	// PostApprovalsTotal counts approvals performed by admins.
	PostApprovalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "post_approvals_total",
			Help: "Total number of post approvals",
		},
	)
)

var numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

func init() {
	prometheus.MustRegister(RequestDuration, RequestTotal, PostsPending, PostApprovalsTotal)
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/posts/123 -> /api/posts/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from
// middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// SetPostsPending sets the moderation queue gauge.
func SetPostsPending(n int) {
	PostsPending.Set(float64(n))
}

// IncPostApprovals increments the approvals counter.
func IncPostApprovals() {
	PostApprovalsTotal.Inc()
}
