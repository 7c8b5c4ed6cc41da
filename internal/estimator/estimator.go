package estimator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknown = errors.New("unknown estimator")
	ErrNotFit  = errors.New("estimator not fit")
	ErrInput   = errors.New("invalid input")
	ErrBackend = errors.New("estimator backend error")
)

// Estimator exposes the parameters it was configured with.
type Estimator interface {
	Params() map[string]interface{}
}

// Classifier predicts class labels.
type Classifier interface {
	Estimator
	Fit(x [][]float64, y []string) error
	Predict(x [][]float64) ([]string, error)
	// PredictProba returns the class probabilities for each case in the order of Classes.
	PredictProba(x [][]float64) ([][]float64, error)
	Classes() []string
}

// Regressor predicts continuous targets.
type Regressor interface {
	Estimator
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) ([]float64, error)
}

// Clusterer groups cases.
type Clusterer interface {
	Estimator
	Fit(x [][]float64) error
	// Labels returns the cluster of each training case.
	Labels() []int
	Predict(x [][]float64) ([]int, error)
}

// FormatParams renders the parameters on a single line with sorted keys,
// in the dictionary style the legacy results files carry.
func FormatParams(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("'%s': %s", k, formatValue(params[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatValue(v interface{}) string {
	switch vv := v.(type) {
	case string:
		return fmt.Sprintf("'%s'", vv)
	case bool:
		if vv {
			return "True"
		}
		return "False"
	case nil:
		return "None"
	case map[string]interface{}:
		return FormatParams(vv)
	}
	return fmt.Sprintf("%v", v)
}

func checkFit(x [][]float64, n int) error {
	if len(x) == 0 {
		return fmt.Errorf("no training cases: %w", ErrInput)
	}
	if len(x) != n {
		return fmt.Errorf("%d cases vs %d labels: %w", len(x), n, ErrInput)
	}
	return checkWidth(x, len(x[0]))
}

func checkWidth(x [][]float64, width int) error {
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("case %d has %d values instead of %d: %w", i, len(row), width, ErrInput)
		}
	}
	return nil
}

// classIndex maps each class to its position in the sorted classes.
func classIndex(classes []string) map[string]int {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return index
}

// oneHot turns predicted labels into degenerate probability distributions.
func oneHot(classes []string, labels []string) [][]float64 {
	index := classIndex(classes)
	probs := make([][]float64, len(labels))
	for i, l := range labels {
		p := make([]float64, len(classes))
		if j, ok := index[l]; ok {
			p[j] = 1
		}
		probs[i] = p
	}
	return probs
}
