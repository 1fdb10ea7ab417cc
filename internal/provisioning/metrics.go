package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics collects per-run counters. They are written to a node-exporter
// textfile when the operator asks for it; nothing is served.
type Metrics struct {
	registry *prometheus.Registry

	reconcileTotal *prometheus.CounterVec
	generatorTotal *prometheus.CounterVec
	phaseDuration  *prometheus.HistogramVec
}

// NewMetrics creates a fresh registry with all collectors registered.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reconcileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "talhybrid",
				Subsystem: "reconciler",
				Name:      "resources_total",
				Help:      "Reconciled cloud resources by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		generatorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "talhybrid",
				Subsystem: "generator",
				Name:      "invocations_total",
				Help:      "talosctl gen config invocations by target and result",
			},
			[]string{"target", "result"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "talhybrid",
				Subsystem: "pipeline",
				Name:      "phase_duration_seconds",
				Help:      "Duration of provisioning phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7min
			},
			[]string{"phase"},
		),
	}
	m.registry.MustRegister(m.reconcileTotal, m.generatorTotal, m.phaseDuration)
	return m
}

// Reconcile outcomes.
const (
	OutcomeFound   = "found"
	OutcomeCreated = "created"
	OutcomeFailed  = "failed"
)

// RecordReconcile counts a reconcile outcome for kind.
func (m *Metrics) RecordReconcile(kind, outcome string) {
	m.reconcileTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordGenerator counts a generator invocation.
func (m *Metrics) RecordGenerator(target string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.generatorTotal.WithLabelValues(target, result).Inc()
}

// ObservePhase records the duration of a completed phase.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

var _ prometheus.Gatherer = (*Metrics)(nil)

// Gather implements prometheus.Gatherer over the run's collectors.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m)
}
