package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/tsml-experiments/internal/array"
	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chinatown = `@problemName Chinatown
@univariate true
@classLabel true 1 2
@data
0.1,1.0,0.1:1
0.2,1.1,0.0:1
0.0,0.9,0.2:1
0.1,1.2,0.1:1
10.1,11.0,10.1:2
10.2,11.1,10.0:2
10.0,10.9,10.2:2
10.1,11.2,10.1:2
`

func problem(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "Chinatown")
	require.NoError(t, os.MkdirAll(dir, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Chinatown_TRAIN.ts"), []byte(chinatown), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Chinatown_TEST.ts"), []byte(chinatown), 0644))
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func noTask() (int, error) {
	return 0, array.ErrNoTask
}

func TestParseExperiment(t *testing.T) {
	e, err := parseExperiment(model.Classification, []string{"data", "out", "rf", "Chinatown", "3", "TRUE", "false"}, noTask)
	require.NoError(t, err)
	assert.Equal(t, "data", e.ProblemPath)
	assert.Equal(t, "out", e.ResultsDir)
	assert.Equal(t, "rf", e.Estimator)
	assert.Equal(t, "Chinatown", e.Dataset)
	assert.Equal(t, 2, e.Resample)
	assert.True(t, e.TrainFold)
	assert.False(t, e.Predefined)

	e, err = parseExperiment(model.Regression, []string{"data", "out", "ridge", "Covid3Month"}, func() (int, error) {
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, e.Resample)

	_, err = parseExperiment(model.Regression, []string{"data", "out", "ridge", "Covid3Month"}, noTask)
	assert.True(t, errors.Is(err, array.ErrNoTask))

	_, err = parseExperiment(model.Regression, []string{"data", "out", "ridge", "Covid3Month", "0"}, noTask)
	assert.Error(t, err)

	_, err = parseExperiment(model.Regression, []string{"data", "out", "ridge", "Covid3Month", "x"}, noTask)
	assert.Error(t, err)
}

func TestClassifyCmd(t *testing.T) {
	data := problem(t)
	out := t.TempDir()
	metricsFile := filepath.Join(t.TempDir(), "tsml.prom")

	_, err := execute(t, "classify", data, out, "1nn", "Chinatown", "1", "--metrics-file", metricsFile)
	require.NoError(t, err)
	assert.True(t, results.Present(out, "1nn", "Chinatown", 0))
	assert.FileExists(t, filepath.Join(out, "1nn", results.WorkspaceDir, "Chinatown", "resample0.json"))
	assert.FileExists(t, metricsFile)

	stdout, err := execute(t, "classify", data, out, "1nn", "Chinatown", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, ignoring)

	stdout, err = execute(t, "classify", data, out, "1nn", "Chinatown", "1", "--overwrite")
	require.NoError(t, err)
	assert.NotContains(t, stdout, ignoring)

	_, err = execute(t, "classify", data, out, "1nn")
	assert.Error(t, err)
	_, err = execute(t, "classify", data, out, "1nn", "Chinatown", "1", "--log-level", "loud")
	assert.Error(t, err)
}

func TestBatchCmd(t *testing.T) {
	data := problem(t)
	out := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
data: `+data+`
results: `+out+`
kind: classification
estimators: [1nn]
datasets: [Chinatown]
resamples: 2
`), 0644))

	stdout, err := execute(t, "batch", "--config", cfg, "--workers", "2", "--records=memory")
	require.NoError(t, err)
	assert.Contains(t, stdout, "run: 2, skipped: 0, failed: 0")

	stdout, err = execute(t, "summarise", out, "-e", "1nn", "-d", "Chinatown", "-r", "2", "--csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1nn")
	assert.Contains(t, stdout, "Chinatown")
}

func TestResampleCmd(t *testing.T) {
	data := problem(t)
	out := t.TempDir()

	stdout, err := execute(t, "resample", data, "Chinatown", "3", out)
	require.NoError(t, err)
	train := filepath.Join(out, "Chinatown", "Chinatown3_TRAIN.npy")
	assert.Contains(t, stdout, train)
	assert.FileExists(t, train)

	// the export can be used as a predefined resample
	resultsDir := t.TempDir()
	_, err = execute(t, "classify", out, resultsDir, "1nn", "Chinatown", "4", "false", "true")
	require.NoError(t, err)
	assert.True(t, results.Present(resultsDir, "1nn", "Chinatown", 3))
}

func TestEstimatorsCmd(t *testing.T) {
	stdout, err := execute(t, "estimators")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1nn")
	assert.Contains(t, stdout, "kmeans")
	assert.Contains(t, stdout, "ridge")
}

func TestShard(t *testing.T) {
	for _, records := range []string{jsonRecords, memoryRecords, noRecords} {
		s, err := shard(records)
		require.NoError(t, err)
		store, err := s(t.TempDir())
		require.NoError(t, err)
		assert.NotNil(t, store)
	}
	_, err := shard("sqlite")
	assert.Error(t, err)

	_, err = execute(t, "classify", problem(t), t.TempDir(), "1nn", "Chinatown", "1", "--records", "sqlite")
	assert.Error(t, err)
}

func TestVoteCmd(t *testing.T) {
	data := problem(t)
	out := t.TempDir()
	for _, clusterer := range []string{"kmeans", "kmeans-znorm"} {
		_, err := execute(t, "cluster", data, out, clusterer, "Chinatown", "1", "true", "--records", "none")
		require.NoError(t, err)
	}

	stdout, err := execute(t, "vote", out, "Chinatown", "--clusterers", "kmeans,kmeans-znorm", "--method", "iterative", "--clusters", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "testResample0.csv")
	assert.True(t, results.Present(out, "IVC", "Chinatown", 0))

	_, err = execute(t, "vote", out, "Chinatown", "--clusterers", "kmeans,kmeans-znorm")
	require.NoError(t, err)
	assert.True(t, results.Present(out, "SimpleVote", "Chinatown", 0))

	stdout, err = execute(t, "vote", out, "Chinatown", "--clusterers", "kmeans,kmeans-znorm")
	require.NoError(t, err)
	assert.Contains(t, stdout, ignoring)

	_, err = execute(t, "vote", out, "Chinatown", "--clusterers", "kmeans", "--method", "majority")
	assert.Error(t, err)
}
