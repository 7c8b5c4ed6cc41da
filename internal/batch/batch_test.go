package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drakos74/tsml-experiments/internal/experiment"
	"github.com/drakos74/tsml-experiments/internal/metrics"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func problem(t *testing.T, dataset string) string {
	t.Helper()
	ts := func(n int) string {
		b := new(strings.Builder)
		b.WriteString("@problemName " + dataset + "\n@univariate true\n@classLabel true a b\n@data\n")
		for i := 0; i < n; i++ {
			d := float64(i%3) * 0.1
			fmt.Fprintf(b, "%g,%g,%g:a\n", d, 1+d, d)
			fmt.Fprintf(b, "%g,%g,%g:b\n", 10+d, 11-d, 10.0)
		}
		return b.String()
	}
	root := t.TempDir()
	dir := filepath.Join(root, dataset)
	require.NoError(t, os.MkdirAll(dir, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, dataset+"_TRAIN.ts"), []byte(ts(6)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, dataset+"_TEST.ts"), []byte(ts(3)), 0644))
	return root
}

func TestLoadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
data: /data
results: /results
kind: classification
estimators: [1nn, rf]
datasets: [Chinatown]
resamples: 3
start: 1
train_fold: true
workers: 4
`), 0644))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"1nn", "rf"}, cfg.Estimators)
	assert.True(t, cfg.TrainFold)
	assert.Equal(t, 4, cfg.Workers)

	ee, err := cfg.Experiments()
	require.NoError(t, err)
	require.Len(t, ee, 6)
	assert.Equal(t, "1nn", ee[0].Estimator)
	assert.Equal(t, 1, ee[0].Resample)
	assert.Equal(t, 3, ee[2].Resample)
	assert.Equal(t, "rf", ee[3].Estimator)
	assert.True(t, ee[5].TrainFold)
}

func TestConfig_Experiments_Errors(t *testing.T) {
	_, err := Config{Kind: "forecasting", Estimators: []string{"1nn"}, Datasets: []string{"x"}}.Experiments()
	assert.Error(t, err)
	_, err = Config{Kind: "classification"}.Experiments()
	assert.Error(t, err)
	_, err = Config{Kind: "classification", Estimators: []string{"1nn"}, Datasets: []string{"x"}, Start: -1}.Experiments()
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	cfg := Config{
		Data:       problem(t, "Synthetic"),
		Results:    t.TempDir(),
		Kind:       "classify",
		Estimators: []string{"1nn", "knn"},
		Datasets:   []string{"Synthetic"},
		Resamples:  3,
		Workers:    3,
	}
	runner := experiment.NewRunner().WithMetrics(metrics.NewMetrics())

	report, err := Run(context.Background(), runner, cfg)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Run)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, report.Outcomes, 6)
	for _, o := range report.Outcomes {
		assert.True(t, results.Present(cfg.Results, o.Experiment.Estimator, "Synthetic", o.Experiment.Resample))
	}

	// a second run skips everything
	report, err = Run(context.Background(), runner, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Run)
	assert.Equal(t, 6, report.Skipped)
}

func TestRun_Failure(t *testing.T) {
	cfg := Config{
		Data:       problem(t, "Synthetic"),
		Results:    t.TempDir(),
		Kind:       "classification",
		Estimators: []string{"1nn", "unknown"},
		Datasets:   []string{"Synthetic"},
		Workers:    2,
	}
	runner := experiment.NewRunner().WithMetrics(metrics.NewMetrics())

	report, err := Run(context.Background(), runner, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
	assert.Equal(t, 1, report.Run)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, results.Present(cfg.Results, "1nn", "Synthetic", 0))
}
