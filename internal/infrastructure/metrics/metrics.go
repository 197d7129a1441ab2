package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks HTTP requests served by the management API
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profiled_http_requests_total",
		Help: "Total number of HTTP requests processed",
	}, []string{"method", "path", "status"})

	// RequestDuration tracks request processing time
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "profiled_http_request_duration_seconds",
		Help:    "Histogram of HTTP request processing duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// VersionConflicts counts optimistic-lock failures on profile updates
	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profiled_version_conflicts_total",
		Help: "Total number of profile updates rejected on a stale version",
	})

	// TemplateCacheOperations tracks template catalog cache hits and misses
	TemplateCacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profiled_template_cache_operations_total",
		Help: "Total number of template cache hits and misses",
	}, []string{"result"})

	// DBConnectionsActive tracks open database connections
	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "profiled_db_connections_active",
		Help: "Number of active database connections",
	})
)
