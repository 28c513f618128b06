// Package metrics maintains the prometheus collectors published by the
// askchain services.
package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "askchain"

// Metrics holds the collectors updated by the middleware and the cores.
type Metrics struct {
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	Errors           *prometheus.CounterVec
	Panics           prometheus.Counter
	ContentCalls     *prometheus.CounterVec
	DBConnPool       *prometheus.GaugeVec
}

// New registers the collectors with the provided registerer. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the default registry.
func New(reg prometheus.Registerer, service string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "errors_total",
				Help:      "Total number of requests that ended in an error",
			},
			[]string{"status"},
		),
		Panics: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "panics_total",
				Help:      "Total number of recovered panics",
			},
		),
		ContentCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "content_calls_total",
				Help:      "Calls made to the content store by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		DBConnPool: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: service,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"stat"},
		),
	}
}

// ContentCall records the outcome of a content store call. A nil receiver is
// allowed so cores can run without metrics.
func (m *Metrics) ContentCall(op string, outcome string) {
	if m == nil {
		return
	}
	m.ContentCalls.WithLabelValues(op, outcome).Inc()
}

// RecordDBStats copies the pool statistics into the gauges.
func (m *Metrics) RecordDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBConnPool.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.DBConnPool.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.DBConnPool.WithLabelValues("idle").Set(float64(stats.Idle))
	m.DBConnPool.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
}
