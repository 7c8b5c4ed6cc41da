package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Run     = "run"
	Skipped = "skipped"
	Failed  = "failed"
)

// Observer is the process wide metrics collector.
var Observer = NewMetrics()

type Metrics struct {
	registry   *prometheus.Registry
	prometheus Prometheus
}

// NewMetrics creates collectors registered on their own registry.
func NewMetrics() *Metrics {
	p := NewPrometheusMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(p.Experiments, p.Fit, p.Predict)
	return &Metrics{
		registry:   registry,
		prometheus: p,
	}
}

// Increment counts one experiment with the given kind, estimator and status.
func (m *Metrics) Increment(labels ...string) {
	m.prometheus.Experiments.WithLabelValues(labels...).Inc()
}

// Timing records fit and predict durations.
func (m *Metrics) Timing(kind, estimator string, fit, predict time.Duration) {
	m.prometheus.Fit.WithLabelValues(kind, estimator).Observe(fit.Seconds())
	m.prometheus.Predict.WithLabelValues(kind, estimator).Observe(predict.Seconds())
}

// Registry exposes the underlying registry, e.g. for promhttp.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the current values in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("could not write metrics to '%s': %w", path, err)
	}
	return nil
}
