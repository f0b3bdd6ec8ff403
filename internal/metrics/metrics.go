// Package metrics exports recompute activity as Prometheus metrics. The
// Observer is attached to a document and records executions, failures and
// pass durations into its own registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/recompute"
)

const namespace = "featuregraph"

// Observer implements document.Observer and updates Prometheus collectors.
type Observer struct {
	document.BaseObserver

	registry *prometheus.Registry

	executions   *prometheus.CounterVec
	failures     *prometheus.CounterVec
	passes       *prometheus.CounterVec
	passDuration prometheus.Histogram
	objects      prometheus.Gauge
	touched      prometheus.Gauge
}

var _ document.Observer = (*Observer)(nil)

// New creates an observer with a fresh registry.
func New() *Observer {
	m := &Observer{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "object_executions_total",
			Help:      "Successful object executions by object type.",
		}, []string{"type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "object_failures_total",
			Help:      "Failed or skipped objects by object type and failure kind.",
		}, []string{"type", "kind"}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recompute_passes_total",
			Help:      "Recompute passes by outcome.",
		}, []string{"outcome"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Duration of recompute passes.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_objects",
			Help:      "Objects in the document.",
		}),
		touched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_touched_objects",
			Help:      "Objects still touched after the last recompute.",
		}),
	}
	m.registry.MustRegister(m.executions, m.failures, m.passes, m.passDuration, m.objects, m.touched)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Observer) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnObjectCreated implements document.Observer.
func (m *Observer) OnObjectCreated(*object.Object) { m.objects.Inc() }

// OnObjectDeleted implements document.Observer.
func (m *Observer) OnObjectDeleted(*object.Object) { m.objects.Dec() }

// OnObjectRecomputed implements document.Observer.
func (m *Observer) OnObjectRecomputed(o *object.Object) {
	m.executions.WithLabelValues(o.Type()).Inc()
}

// OnObjectError implements document.Observer.
func (m *Observer) OnObjectError(o *object.Object, err error) {
	m.failures.WithLabelValues(o.Type(), recompute.KindOf(err)).Inc()
}

// OnDocumentRecomputed implements document.Observer.
func (m *Observer) OnDocumentRecomputed(d *document.Document, res document.RecomputeResult) {
	outcome := "success"
	switch {
	case res.Aborted:
		outcome = "aborted"
	case len(res.Failed) > 0 || len(res.Skipped) > 0:
		outcome = "failed"
	}
	m.passes.WithLabelValues(outcome).Inc()
	m.passDuration.Observe(res.Duration.Seconds())
	m.objects.Set(float64(d.Len()))
	m.touched.Set(float64(len(d.TouchedObjects())))
}
