package metrics_test

import (
	"testing"
	"time"

	"github.com/tqt95/app-react-jpa/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	require.NotNil(t, m)

	// cache lookups are pre-initialised for both kinds and results
	assert.Equal(t, 4, testutil.CollectAndCount(m.CacheLookups))
	assert.InDelta(t, 0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("employee", "hit")), 0)

	m.CacheHit("employee")
	m.CacheHit("employee")
	m.CacheMiss("search")
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheLookups.WithLabelValues("employee", "hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("search", "miss")), 0)

	m.ObserveQuery("employee_read", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(m.DBQueryDuration))

	m.RequestsTotal.WithLabelValues("/api/employees", "GET", "200").Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/employees", "GET", "200")), 0)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.CacheHit("employee")
		m.CacheMiss("employee")
		m.ObserveQuery("employee_read", time.Now())
	})
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = metrics.NewMetrics(reg)
	assert.Panics(t, func() {
		_ = metrics.NewMetrics(reg)
	})
}
