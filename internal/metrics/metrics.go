package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rentops"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// AvailabilityChecks counts checks by result (available, unavailable, error).
	AvailabilityChecks *prometheus.CounterVec

	// Conflicts counts rejected commitments by stage: advisory (check found conflicts)
	// or write (the store's re-check lost a race).
	Conflicts *prometheus.CounterVec

	// Commitments counts reserve outcomes (created, unavailable, conflict, error).
	Commitments *prometheus.CounterVec

	AggregationRuns     *prometheus.CounterVec
	AggregationDuration *prometheus.HistogramVec

	// ReportCache counts report cache lookups by result (hit, miss, error).
	ReportCache *prometheus.CounterVec

	EventsPublished *prometheus.CounterVec
}

// New creates the collectors and registers them on a dedicated registry, together with
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		AvailabilityChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "availability_checks_total",
				Help:      "Availability checks by result.",
			},
			[]string{"result"},
		),
		Conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_conflicts_total",
				Help:      "Booking conflicts by detection stage.",
			},
			[]string{"stage"},
		),
		Commitments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commitments_total",
				Help:      "Reserve attempts by outcome.",
			},
			[]string{"outcome"},
		),
		AggregationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregation_runs_total",
				Help:      "Revenue aggregations by granularity and result.",
			},
			[]string{"granularity", "result"},
		),
		AggregationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregation_duration_seconds",
				Help:      "Time to aggregate one reporting window.",
				Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"granularity"},
		),
		ReportCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_requests_total",
				Help:      "Report cache lookups by result.",
			},
			[]string{"result"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events published by type and result.",
			},
			[]string{"type", "result"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AvailabilityChecks,
		m.Conflicts,
		m.Commitments,
		m.AggregationRuns,
		m.AggregationDuration,
		m.ReportCache,
		m.EventsPublished,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncAvailabilityCheck(result string) {
	if m == nil {
		return
	}
	m.AvailabilityChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) IncConflict(stage string) {
	if m == nil {
		return
	}
	m.Conflicts.WithLabelValues(stage).Inc()
}

func (m *Metrics) IncCommitment(outcome string) {
	if m == nil {
		return
	}
	m.Commitments.WithLabelValues(outcome).Inc()
}

// ObserveAggregation records one aggregation run.
func (m *Metrics) ObserveAggregation(granularity string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.AggregationRuns.WithLabelValues(granularity, result).Inc()
	m.AggregationDuration.WithLabelValues(granularity).Observe(elapsed.Seconds())
}

func (m *Metrics) IncReportCache(result string) {
	if m == nil {
		return
	}
	m.ReportCache.WithLabelValues(result).Inc()
}

func (m *Metrics) IncEventPublished(eventType, result string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}
