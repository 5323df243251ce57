package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace string = "employees"

// Metrics holds the collectors of the employees service: request counts
// and durations per route, database query durations and cache lookups.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	DBQueryDuration *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of handled HTTP requests.",
		}, []string{"route", "method", "code"}),
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of database queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}), // query: 'employee_read', 'employees_search', ...
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of cache lookups by kind and result.",
		}, []string{"kind", "result"}),
	}

	for _, kind := range []string{"employee", "search"} {
		metrics.CacheLookups.WithLabelValues(kind, "hit")
		metrics.CacheLookups.WithLabelValues(kind, "miss")
	}

	return metrics
}

// ObserveQuery records the duration of a database query started at start;
// it is safe to call on a nil *Metrics.
func (m *Metrics) ObserveQuery(query string, start time.Time) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// CacheHit and CacheMiss count a cache lookup of kind; they are safe to
// call on a nil *Metrics.
func (m *Metrics) CacheHit(kind string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) CacheMiss(kind string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(kind, "miss").Inc()
}
