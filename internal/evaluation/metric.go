package evaluation

import (
	"fmt"
	"strings"

	"github.com/drakos74/tsml-experiments/internal/results"
)

// Metric is a score computed from the predictions of a results file.
type Metric string

const (
	ACC    Metric = "ACC"
	BALACC Metric = "BALACC"
	MSEM   Metric = "MSE"
	RMSEM  Metric = "RMSE"
	MAEM   Metric = "MAE"
	RI     Metric = "RI"
	CLACC  Metric = "CLACC"
)

// Metrics lists all known metrics.
var Metrics = []Metric{ACC, BALACC, MSEM, RMSEM, MAEM, RI, CLACC}

// ParseMetric resolves the metric from its name.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric '%s': %w", s, ErrInput)
}

// HigherIsBetter reports if larger values of the metric mean better predictions.
func (m Metric) HigherIsBetter() bool {
	switch m {
	case MSEM, RMSEM, MAEM:
		return false
	}
	return true
}

// Score computes the metric for the predictions in the given file.
func (m Metric) Score(f results.File) (float64, error) {
	switch m {
	case MSEM, RMSEM, MAEM:
		yTrue, yPred, err := f.Values()
		if err != nil {
			return 0, err
		}
		switch m {
		case MSEM:
			return MSE(yTrue, yPred)
		case RMSEM:
			return RMSE(yTrue, yPred)
		}
		return MAE(yTrue, yPred)
	}
	yTrue, yPred := f.Labels()
	switch m {
	case ACC:
		return Accuracy(yTrue, yPred)
	case BALACC:
		return BalancedAccuracy(yTrue, yPred)
	case RI:
		return RandIndex(yTrue, yPred)
	case CLACC:
		return ClusteringAccuracy(yTrue, yPred)
	}
	return 0, fmt.Errorf("unknown metric '%s': %w", m, ErrInput)
}
