package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	journeyEvents prometheus.Counter
}

// NewMetrics creates and registers the engine metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skillmap",
			Subsystem: "engine",
			Name:      "queries_total",
			Help:      "Engine queries by operation and status.",
		}, []string{"operation", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skillmap",
			Subsystem: "engine",
			Name:      "query_duration_seconds",
			Help:      "Engine query latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		journeyEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skillmap",
			Subsystem: "engine",
			Name:      "journey_events_total",
			Help:      "Learner journey events recorded.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.queriesTotal, m.queryDuration, m.journeyEvents)
	}

	return m
}

// ObserveQuery records one engine query execution.
func (m *Metrics) ObserveQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.queriesTotal.WithLabelValues(operation, status).Inc()
	m.queryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordJourneyEvent counts one recorded journey event.
func (m *Metrics) RecordJourneyEvent() {
	m.journeyEvents.Inc()
}
