// Package disirmetrics exposes disir-server's Prometheus instrumentation:
// registry connection pool gauges, resolver cache hit/miss counters,
// validation latency/outcome histograms, and HTTP request metrics.
//
// Mirrors the teacher's pkg/metrics bundling pattern — a DefaultRegistry
// grouping related metric families behind small typed structs, each
// built with promauto so registration happens exactly once.
package disirmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DatabaseMetrics instruments a registry.Store's connection pool.
type DatabaseMetrics struct {
	ActiveConnections prometheus.Gauge
	IdleConnections   prometheus.Gauge
	TotalConnections  prometheus.Gauge
	QueryDuration     prometheus.Histogram
	QueryErrors       prometheus.Counter
	ConnectionErrors  prometheus.Counter
	HealthStatus      prometheus.Gauge
}

func newDatabaseMetrics(reg prometheus.Registerer) *DatabaseMetrics {
	f := promauto.With(reg)
	return &DatabaseMetrics{
		ActiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "disir", Subsystem: "db", Name: "active_connections",
			Help: "Connections currently checked out of the registry pool.",
		}),
		IdleConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "disir", Subsystem: "db", Name: "idle_connections",
			Help: "Connections idle in the registry pool.",
		}),
		TotalConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "disir", Subsystem: "db", Name: "total_connections",
			Help: "Total connections opened by the registry pool.",
		}),
		QueryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disir", Subsystem: "db", Name: "query_duration_seconds",
			Help:    "Registry query execution latency.",
			Buckets: prometheus.DefBuckets,
		}),
		QueryErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "db", Name: "query_errors_total",
			Help: "Registry queries that returned an error.",
		}),
		ConnectionErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "db", Name: "connection_errors_total",
			Help: "Failed attempts to acquire or open a registry connection.",
		}),
		HealthStatus: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "disir", Subsystem: "db", Name: "healthy",
			Help: "1 if the last registry health check succeeded, else 0.",
		}),
	}
}

// CacheMetrics instruments resolvercache's two-tier LRU+Redis lookups.
type CacheMetrics struct {
	LocalHits    prometheus.Counter
	LocalMisses  prometheus.Counter
	RemoteHits   prometheus.Counter
	RemoteMisses prometheus.Counter
	Errors       prometheus.Counter
	LookupLatency prometheus.Histogram
}

func newCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	f := promauto.With(reg)
	return &CacheMetrics{
		LocalHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "resolvercache", Name: "local_hits_total",
			Help: "Lookups served from the in-process LRU tier.",
		}),
		LocalMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "resolvercache", Name: "local_misses_total",
			Help: "Lookups that missed the in-process LRU tier.",
		}),
		RemoteHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "resolvercache", Name: "remote_hits_total",
			Help: "Lookups served from Redis after an LRU miss.",
		}),
		RemoteMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "resolvercache", Name: "remote_misses_total",
			Help: "Lookups that missed both the LRU tier and Redis.",
		}),
		Errors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "resolvercache", Name: "errors_total",
			Help: "Redis errors encountered while serving a lookup.",
		}),
		LookupLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disir", Subsystem: "resolvercache", Name: "lookup_duration_seconds",
			Help:    "End-to-end cache lookup latency, including any Redis round trip.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ValidationMetrics instruments pkg/disir.Validate calls made through
// the HTTP API and disirctl.
type ValidationMetrics struct {
	Requests prometheus.CounterVec
	Duration prometheus.Histogram
}

func newValidationMetrics(reg prometheus.Registerer) *ValidationMetrics {
	f := promauto.With(reg)
	return &ValidationMetrics{
		Requests: *f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "validation", Name: "requests_total",
			Help: "Config validations grouped by resulting status.",
		}, []string{"status"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disir", Subsystem: "validation", Name: "duration_seconds",
			Help:    "Time spent walking a Config tree during Validate.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordValidation records one Validate() call's outcome and latency.
func (m *ValidationMetrics) RecordValidation(status string, duration time.Duration) {
	m.Requests.WithLabelValues(status).Inc()
	m.Duration.Observe(duration.Seconds())
}

// HTTPMetrics instruments the api package's request handling.
type HTTPMetrics struct {
	RequestDuration prometheus.HistogramVec
	RequestsTotal   prometheus.CounterVec
	InFlight        prometheus.Gauge
}

func newHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		RequestDuration: *f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "disir", Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		RequestsTotal: *f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disir", Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route and status class.",
		}, []string{"route", "method", "status"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "disir", Subsystem: "http", Name: "requests_in_flight",
			Help: "HTTP requests currently being handled.",
		}),
	}
}

// Registry bundles every disir-server metric family behind one
// Prometheus registerer, mirroring the teacher's DefaultRegistry.
type Registry struct {
	reg        *prometheus.Registry
	DB         *DatabaseMetrics
	Cache      *CacheMetrics
	Validation *ValidationMetrics
	HTTP       *HTTPMetrics
}

// NewRegistry builds a fresh, isolated Registry — use one per process
// (or per test) rather than sharing prometheus.DefaultRegisterer, so
// repeated test runs don't panic on duplicate registration.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return &Registry{
		reg:        reg,
		DB:         newDatabaseMetrics(reg),
		Cache:      newCacheMetrics(reg),
		Validation: newValidationMetrics(reg),
		HTTP:       newHTTPMetrics(reg),
	}
}

// Gatherer exposes the underlying registry for /metrics exposition.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide metrics registry used by
// cmd/disirctl when no explicit Registry is wired in.
func DefaultRegistry() *Registry { return defaultRegistry }
