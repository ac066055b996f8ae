// Package metrics exposes analysis counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/clauserisk/internal/model"
)

const namespace = "clauserisk"

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	documents  *prometheus.CounterVec
	failures   prometheus.Counter
	clauses    *prometheus.CounterVec
	categories *prometheus.CounterVec
	duration   prometheus.Histogram
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_analyzed_total",
			Help:      "Documents analyzed, by overall risk.",
		}, []string{"overall"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_failed_total",
			Help:      "Documents that could not be loaded or analyzed.",
		}),
		clauses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clauses_total",
			Help:      "Clauses analyzed, by risk level.",
		}, []string{"level"}),
		categories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_findings_total",
			Help:      "Risk findings, by category.",
		}, []string{"category"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent analyzing one document.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	m.registry.MustRegister(
		m.documents,
		m.failures,
		m.clauses,
		m.categories,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records a finished report. Safe to call on a nil *Metrics.
func (m *Metrics) Observe(report *model.Report, elapsed time.Duration) {
	if m == nil || report == nil {
		return
	}

	m.documents.WithLabelValues(string(report.Score.Overall)).Inc()
	m.duration.Observe(elapsed.Seconds())

	for _, c := range report.Clauses {
		m.clauses.WithLabelValues(string(c.Level)).Inc()
		for _, r := range c.Risks {
			m.categories.WithLabelValues(string(r.Category)).Inc()
		}
	}
}

// ObserveFailure counts a document that produced no report
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
