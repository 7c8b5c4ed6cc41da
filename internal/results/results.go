package results

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// Milliseconds is the timing type all runners report in.
	Milliseconds = "MILLISECONDS"
	// PredictionsDir is the folder under each estimator holding the result files.
	PredictionsDir = "Predictions"
	// WorkspaceDir is the folder under each estimator holding run records.
	WorkspaceDir = "Workspace"
	// missing marks a field not measured by the runner.
	missing = -1
)

var (
	ErrExists    = errors.New("results already present")
	ErrMalformed = errors.New("malformed results file")
)

// Split is the data split predictions were made on.
type Split string

const (
	Train Split = "TRAIN"
	Test  Split = "TEST"
)

// ParseSplit parses the split as written in the first line of a results file.
func ParseSplit(s string) (Split, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Train):
		return Train, nil
	case string(Test):
		return Test, nil
	}
	return "", fmt.Errorf("unknown split '%s': %w", s, ErrMalformed)
}

// FileName is the name of the results file for the split and resample e.g. testResample3.csv.
func FileName(split Split, resample int) string {
	return fmt.Sprintf("%sResample%d.csv", strings.ToLower(string(split)), resample)
}

// Path returns <results>/<estimator>/Predictions/<dataset>/<split>Resample<resample>.csv.
func Path(resultsDir, estimator, dataset string, split Split, resample int) string {
	return filepath.Join(resultsDir, estimator, PredictionsDir, dataset, FileName(split, resample))
}

// Summary is the third line of a results file.
// Classes is only written when HasClasses is set, which is the case for classification and clustering.
type Summary struct {
	Score               float64
	FitTime             int64
	PredictTime         int64
	BenchmarkTime       int64
	Memory              int64
	HasClasses          bool
	Classes             int
	TrainEstimateMethod string
	TrainEstimateTime   int64
	FitAndEstimateTime  int64
}

// NewSummary creates a summary with the unmeasured fields marked as missing.
func NewSummary(score float64, fitTime, predictTime int64) Summary {
	return Summary{
		Score:              score,
		FitTime:            fitTime,
		PredictTime:        predictTime,
		BenchmarkTime:      missing,
		Memory:             missing,
		TrainEstimateTime:  missing,
		FitAndEstimateTime: missing,
	}
}

// WithClasses adds the number of classes or clusters to the summary.
func (s Summary) WithClasses(n int) Summary {
	s.HasClasses = true
	s.Classes = n
	return s
}

// WithTrainEstimate adds the train estimate method and its timing.
func (s Summary) WithTrainEstimate(method string, estimateTime int64) Summary {
	s.TrainEstimateMethod = method
	s.TrainEstimateTime = estimateTime
	s.FitAndEstimateTime = s.FitTime + estimateTime
	return s
}

func (s Summary) String() string {
	fields := []string{
		formatFloat(s.Score),
		strconv.FormatInt(s.FitTime, 10),
		strconv.FormatInt(s.PredictTime, 10),
		strconv.FormatInt(s.BenchmarkTime, 10),
		strconv.FormatInt(s.Memory, 10),
	}
	if s.HasClasses {
		fields = append(fields, strconv.Itoa(s.Classes))
	}
	fields = append(fields,
		s.TrainEstimateMethod,
		strconv.FormatInt(s.TrainEstimateTime, 10),
		strconv.FormatInt(s.FitAndEstimateTime, 10),
	)
	return strings.Join(fields, ",")
}

// Row is the prediction for a single case.
type Row struct {
	True          string
	Predicted     string
	Probabilities []float64
}

func (r Row) String() string {
	b := new(strings.Builder)
	b.WriteString(r.True)
	b.WriteString(",")
	b.WriteString(r.Predicted)
	if len(r.Probabilities) > 0 {
		b.WriteString(",")
		for _, p := range r.Probabilities {
			b.WriteString(",")
			b.WriteString(formatFloat(p))
		}
	}
	return b.String()
}

// File is the content of a results file.
type File struct {
	Dataset    string
	Estimator  string
	Split      Split
	Resample   int
	TimingType string
	Comment    string
	Parameters string
	Summary    Summary
	Rows       []Row
}

// Labels returns the true and predicted values of all rows.
func (f File) Labels() ([]string, []string) {
	yTrue := make([]string, len(f.Rows))
	yPred := make([]string, len(f.Rows))
	for i, r := range f.Rows {
		yTrue[i] = r.True
		yPred[i] = r.Predicted
	}
	return yTrue, yPred
}

// Values returns the true and predicted values of all rows as numbers.
func (f File) Values() ([]float64, []float64, error) {
	yTrue := make([]float64, len(f.Rows))
	yPred := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		t, err := strconv.ParseFloat(r.True, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: invalid true value '%s': %w", i, r.True, ErrMalformed)
		}
		p, err := strconv.ParseFloat(r.Predicted, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: invalid predicted value '%s': %w", i, r.Predicted, ErrMalformed)
		}
		yTrue[i] = t
		yPred[i] = p
	}
	return yTrue, yPred, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
