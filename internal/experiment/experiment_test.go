package experiment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/drakos74/tsml-experiments/internal/metrics"
	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/drakos74/tsml-experiments/internal/storage"
	"github.com/drakos74/tsml-experiments/internal/storage/file/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2022, 3, 14, 9, 26, 53, 0, time.UTC)

// series creates n cases per class, the cases of each class oscillate around a different level.
func series(n int, labelled bool, classes ...string) string {
	b := new(strings.Builder)
	b.WriteString("@problemName Synthetic\n@univariate true\n@equalLength true\n@seriesLength 4\n")
	if labelled {
		fmt.Fprintf(b, "@classLabel true %s\n", strings.Join(classes, " "))
	} else {
		b.WriteString("@targetLabel true\n")
	}
	b.WriteString("@data\n")
	for i := 0; i < n; i++ {
		for c, class := range classes {
			level := float64(10 * c)
			d := float64(i%4) * 0.1
			target := class
			if !labelled {
				target = fmt.Sprintf("%g", level+d)
			}
			fmt.Fprintf(b, "%g,%g,%g,%g:%s\n", level+d, level+1-d, level+d, level, target)
		}
	}
	return b.String()
}

func problem(t *testing.T, dataset string, labelled bool) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, dataset)
	require.NoError(t, os.MkdirAll(dir, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, dataset+"_TRAIN.ts"), []byte(series(10, labelled, "a", "b")), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, dataset+"_TEST.ts"), []byte(series(5, labelled, "a", "b")), 0644))
	return root
}

func newRunner(store storage.Persistence) *Runner {
	return NewRunner().
		WithStorage(store).
		WithMetrics(metrics.NewMetrics()).
		WithClock(func() time.Time {
			return now
		})
}

func TestLoadAndRunClassification(t *testing.T) {
	store := json.NewLocalStorage()
	runner := newRunner(store)
	e := Experiment{
		ProblemPath: problem(t, "Synthetic", true),
		ResultsDir:  t.TempDir(),
		Estimator:   "1nn",
		Dataset:     "Synthetic",
		Resample:    0,
	}

	record, err := runner.LoadAndRunClassification(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, 1.0, record.Score)
	assert.Equal(t, 20, record.TrainCases)
	assert.Equal(t, 10, record.TestCases)
	assert.Equal(t, 2, record.Classes)
	assert.NotEmpty(t, record.ID)
	require.Len(t, record.Files, 1)

	f, err := results.Read(record.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "Synthetic", f.Dataset)
	assert.Equal(t, "1nn", f.Estimator)
	assert.Equal(t, results.Test, f.Split)
	assert.Equal(t, "Generated by tsml-experiments on 03/14/2022, 09:26:53", f.Comment)
	assert.Equal(t, 2, f.Summary.Classes)
	assert.Len(t, f.Rows, 10)
	for _, row := range f.Rows {
		assert.Equal(t, row.True, row.Predicted)
		assert.Len(t, row.Probabilities, 2)
	}

	var stored Record
	require.NoError(t, store.Load(e.Key(), &stored))
	assert.Equal(t, record.ID, stored.ID)
	assert.Equal(t, model.Classification, stored.Key.Kind)
}

func TestLoadAndRunClassification_Skip(t *testing.T) {
	runner := newRunner(storage.NewVoidStorage())
	e := Experiment{
		ProblemPath: problem(t, "Synthetic", true),
		ResultsDir:  t.TempDir(),
		Estimator:   "1nn",
		Dataset:     "Synthetic",
		Resample:    3,
	}

	first, err := runner.LoadAndRunClassification(context.Background(), e)
	require.NoError(t, err)
	b, err := os.ReadFile(first.Files[0])
	require.NoError(t, err)

	_, err = runner.LoadAndRunClassification(context.Background(), e)
	assert.ErrorIs(t, err, Skipped)
	assert.ErrorIs(t, err, results.ErrExists)

	// the existing file is left untouched
	after, err := os.ReadFile(first.Files[0])
	require.NoError(t, err)
	assert.Equal(t, b, after)

	e.Overwrite = true
	_, err = runner.LoadAndRunClassification(context.Background(), e)
	require.NoError(t, err)
}

func TestLoadAndRunClassification_TrainFold(t *testing.T) {
	runner := newRunner(storage.NewVoidStorage())
	e := Experiment{
		ProblemPath: problem(t, "Synthetic", true),
		ResultsDir:  t.TempDir(),
		Estimator:   "1nn",
		Dataset:     "Synthetic",
		Resample:    1,
	}

	// a present test file is not enough when the train file is required
	_, err := runner.LoadAndRunClassification(context.Background(), e)
	require.NoError(t, err)
	e.TrainFold = true
	record, err := runner.LoadAndRunClassification(context.Background(), e)
	require.NoError(t, err)
	require.Len(t, record.Files, 1)
	assert.Equal(t, results.Path(e.ResultsDir, "1nn", "Synthetic", results.Train, 1), record.Files[0])

	_, err = runner.LoadAndRunClassification(context.Background(), e)
	assert.ErrorIs(t, err, Skipped)

	e.Overwrite = true
	record, err = runner.LoadAndRunClassification(context.Background(), e)
	require.NoError(t, err)
	require.Len(t, record.Files, 2)

	train, err := results.ReadExperiment(e.ResultsDir, "1nn", "Synthetic", results.Train, 1)
	require.NoError(t, err)
	assert.Equal(t, results.Train, train.Split)
	assert.Len(t, train.Rows, 20)
	assert.Equal(t, CrossValidation, train.Summary.TrainEstimateMethod)
	assert.Equal(t, 1.0, train.Summary.Score)
	assert.True(t, e.Present())
}

func TestLoadAndRunRegression(t *testing.T) {
	runner := newRunner(storage.NewVoidStorage())
	e := Experiment{
		ProblemPath: problem(t, "Covid", false),
		ResultsDir:  t.TempDir(),
		Estimator:   "1nn-reg",
		Dataset:     "Covid",
		Resample:    2,
		TrainFold:   true,
	}

	record, err := runner.LoadAndRunRegression(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, string(model.Regression), string(record.Key.Kind))
	assert.Equal(t, "MSE", record.Metric)
	assert.Less(t, record.Score, 1.0)

	f, err := results.ReadExperiment(e.ResultsDir, "1nn-reg", "Covid", results.Test, 2)
	require.NoError(t, err)
	assert.False(t, f.Summary.HasClasses)
	assert.Len(t, f.Rows, 10)
	for _, row := range f.Rows {
		assert.Empty(t, row.Probabilities)
	}
	yTrue, yPred, err := f.Values()
	require.NoError(t, err)
	assert.Len(t, yPred, len(yTrue))

	train, err := results.ReadExperiment(e.ResultsDir, "1nn-reg", "Covid", results.Train, 2)
	require.NoError(t, err)
	assert.Len(t, train.Rows, 20)

	_, err = runner.LoadAndRunRegression(context.Background(), e)
	assert.ErrorIs(t, err, Skipped)
}

func TestLoadAndRunClustering(t *testing.T) {
	runner := newRunner(storage.NewVoidStorage())
	e := Experiment{
		ProblemPath: problem(t, "Synthetic", true),
		ResultsDir:  t.TempDir(),
		Estimator:   "kmeans",
		Dataset:     "Synthetic",
		TrainFold:   true,
	}

	record, err := runner.LoadAndRunClustering(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, 2, record.Classes)
	require.Len(t, record.Files, 2)

	test, err := results.Read(record.Files[0])
	require.NoError(t, err)
	assert.Equal(t, 2, test.Summary.Classes)
	assert.Len(t, test.Rows, 10)
	for _, row := range test.Rows {
		assert.Contains(t, []string{"0", "1"}, row.Predicted)
		assert.Len(t, row.Probabilities, 2)
	}

	train, err := results.Read(record.Files[1])
	require.NoError(t, err)
	assert.Equal(t, FitLabels, train.Summary.TrainEstimateMethod)
	assert.Len(t, train.Rows, 20)
}

func TestLoadAndRun_Errors(t *testing.T) {
	runner := newRunner(storage.NewVoidStorage())
	e := Experiment{
		Kind:        model.Classification,
		ProblemPath: problem(t, "Synthetic", true),
		ResultsDir:  t.TempDir(),
		Estimator:   "unknown",
		Dataset:     "Synthetic",
	}
	_, err := runner.LoadAndRun(context.Background(), e)
	assert.Error(t, err)
	assert.False(t, results.Present(e.ResultsDir, e.Estimator, e.Dataset, 0))

	e.Estimator = "1nn"
	e.Dataset = "Missing"
	_, err = runner.LoadAndRun(context.Background(), e)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.Dataset = "Synthetic"
	_, err = runner.LoadAndRun(ctx, e)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFolds(t *testing.T) {
	labels := []string{"a", "a", "a", "a", "b", "b", "b", "b", "b", "b"}
	ff, err := folds(len(labels), labels, 2, 7)
	require.NoError(t, err)
	require.Len(t, ff, 2)

	seen := make(map[int]bool)
	for _, f := range ff {
		count := map[string]int{}
		for _, i := range f {
			assert.False(t, seen[i])
			seen[i] = true
			count[labels[i]]++
		}
		assert.Equal(t, 2, count["a"])
		assert.Equal(t, 3, count["b"])
	}
	assert.Len(t, seen, len(labels))

	again, err := folds(len(labels), labels, 2, 7)
	require.NoError(t, err)
	assert.Equal(t, ff, again)

	ff, err = folds(3, nil, 10, 1)
	require.NoError(t, err)
	assert.Len(t, ff, 3)

	_, err = folds(1, nil, 10, 1)
	assert.Error(t, err)

	assert.Equal(t, []int{0, 2, 4}, complement(5, []int{1, 3}))
}

func TestRunClassification_UnseenTestClass(t *testing.T) {
	runner := newRunner(storage.NewVoidStorage())
	split := model.Split{
		Train: model.Dataset{
			Name:       "Synthetic",
			X:          [][]float64{{0, 1}, {0.1, 1}, {10, 11}, {10.1, 11}},
			Y:          []string{"a", "a", "b", "b"},
			Dimensions: 1,
			Length:     2,
		},
		Test: model.Dataset{
			Name:       "Synthetic",
			X:          [][]float64{{0, 1.1}, {10, 11.1}, {20, 21}},
			Y:          []string{"a", "b", "c"},
			Dimensions: 1,
			Length:     2,
		},
	}
	e := Experiment{
		ResultsDir: t.TempDir(),
		Estimator:  "1nn",
		Dataset:    "Synthetic",
	}

	record, err := runner.RunClassification(context.Background(), e, split)
	require.NoError(t, err)
	assert.Equal(t, 3, record.Classes)

	f, err := results.Read(record.Files[0])
	require.NoError(t, err)
	assert.Equal(t, 3, f.Summary.Classes)
	for _, row := range f.Rows {
		assert.Len(t, row.Probabilities, f.Summary.Classes)
	}
	// columns follow the sorted classes, c is never predicted
	assert.Equal(t, []float64{1, 0, 0}, f.Rows[0].Probabilities)
	assert.Equal(t, 0.0, f.Rows[2].Probabilities[2])
}

func TestPad(t *testing.T) {
	padded := pad([][]float64{{0.25, 0.75}}, []string{"b", "d"}, []string{"a", "b", "c", "d"})
	assert.Equal(t, [][]float64{{0, 0.25, 0, 0.75}}, padded)
}
