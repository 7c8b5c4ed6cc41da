package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "tsml"

// Prometheus holds the experiment collectors.
type Prometheus struct {
	Experiments *prometheus.CounterVec
	Fit         *prometheus.HistogramVec
	Predict     *prometheus.HistogramVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Experiments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "experiments_total",
				Help:      "experiments by kind, estimator and outcome",
			}, []string{"kind", "estimator", "status"}),
		Fit: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fit_seconds",
				Help:      "time spent fitting estimators",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
			}, []string{"kind", "estimator"}),
		Predict: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "predict_seconds",
				Help:      "time spent predicting with fitted estimators",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
			}, []string{"kind", "estimator"}),
	}
}
