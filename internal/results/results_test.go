package results

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classificationFile() File {
	return File{
		Dataset:    "ArrowHead",
		Estimator:  "1nn",
		Split:      Test,
		Resample:   3,
		Comment:    Comment("tsml", time.Date(2022, 4, 5, 13, 4, 5, 0, time.UTC)),
		Parameters: "{'k': 1,\n'distance': 'euclidean'}",
		Summary:    NewSummary(0.5, 12, 3).WithClasses(2),
		Rows: []Row{
			{True: "1", Predicted: "1", Probabilities: []float64{0, 1}},
			{True: "0", Predicted: "1", Probabilities: []float64{0.25, 0.75}},
		},
	}
}

func TestPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("results", "1nn", "Predictions", "ArrowHead", "testResample3.csv"),
		Path("results", "1nn", "ArrowHead", Test, 3))
	assert.Equal(t, "trainResample0.csv", FileName(Train, 0))
}

func TestEncode(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bufio.NewWriter(buf)
	require.NoError(t, Encode(w, classificationFile()))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "ArrowHead,1nn,TEST,3,MILLISECONDS,Generated by tsml on 04/05/2022, 13:04:05", lines[0])
	assert.Equal(t, "{'k': 1, 'distance': 'euclidean'}", lines[1])
	assert.Equal(t, "0.5,12,3,-1,-1,2,,-1,-1", lines[2])
	assert.Equal(t, "1,1,,0,1", lines[3])
	assert.Equal(t, "0,1,,0.25,0.75", lines[4])
}

func TestEncode_Regression(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bufio.NewWriter(buf)
	f := File{
		Dataset:   "Covid3Month",
		Estimator: "ridge",
		Split:     Test,
		Summary:   NewSummary(0.125, 100, 7),
		Rows:      []Row{{True: "0.5", Predicted: "0.25"}},
	}
	require.NoError(t, Encode(w, f))
	require.NoError(t, w.Flush())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "0.125,100,7,-1,-1,,-1,-1", lines[2])
	assert.Equal(t, "0.5,0.25", lines[3])
}

func TestWrite_Read(t *testing.T) {
	dir := t.TempDir()
	f := classificationFile()

	assert.False(t, Present(dir, "1nn", "ArrowHead", 3))
	p, err := Write(dir, f, false)
	require.NoError(t, err)
	assert.Equal(t, Path(dir, "1nn", "ArrowHead", Test, 3), p)
	assert.True(t, Present(dir, "1nn", "ArrowHead", 3))
	assert.False(t, PresentAll(dir, "1nn", "ArrowHead", 3, true))
	assert.True(t, PresentAll(dir, "1nn", "ArrowHead", 3, false))

	read, err := ReadExperiment(dir, "1nn", "ArrowHead", Test, 3)
	require.NoError(t, err)
	assert.Equal(t, f.Dataset, read.Dataset)
	assert.Equal(t, f.Estimator, read.Estimator)
	assert.Equal(t, f.Comment, read.Comment)
	assert.Equal(t, Milliseconds, read.TimingType)
	assert.Equal(t, f.Summary, read.Summary)
	assert.Equal(t, f.Rows, read.Rows)

	yTrue, yPred := read.Labels()
	assert.Equal(t, []string{"1", "0"}, yTrue)
	assert.Equal(t, []string{"1", "1"}, yPred)

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWrite_NoOverwrite(t *testing.T) {
	dir := t.TempDir()
	f := classificationFile()
	_, err := Write(dir, f, false)
	require.NoError(t, err)

	f.Summary.Score = 1
	_, err = Write(dir, f, false)
	assert.ErrorIs(t, err, ErrExists)
	read, err := ReadExperiment(dir, "1nn", "ArrowHead", Test, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.5, read.Summary.Score)

	_, err = Write(dir, f, true)
	require.NoError(t, err)
	read, err = ReadExperiment(dir, "1nn", "ArrowHead", Test, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, read.Summary.Score)
}

func TestWrite_ConcurrentNoOverwrite(t *testing.T) {
	dir := t.TempDir()
	const tasks = 8

	var wg sync.WaitGroup
	errs := make([]error, tasks)
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f := classificationFile()
			f.Summary.Score = float64(i)
			_, errs[i] = Write(dir, f, false)
		}(i)
	}
	wg.Wait()

	written := -1
	for i, err := range errs {
		if err == nil {
			assert.Equal(t, -1, written, "only one task may write the file")
			written = i
			continue
		}
		assert.ErrorIs(t, err, ErrExists)
	}
	require.NotEqual(t, -1, written)

	read, err := ReadExperiment(dir, "1nn", "ArrowHead", Test, 3)
	require.NoError(t, err)
	assert.Equal(t, float64(written), read.Summary.Score)

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Join(dir, "1nn", PredictionsDir, "ArrowHead"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDecode_Legacy(t *testing.T) {
	legacy := `Covid3Month,TimeSeriesForestRegressor,TEST,0,MILLISECONDS,Generated by regression_experiments.py on 07/12/2022, 10:01:02
{'n_estimators': 200}
0.0015,2101,33,-1,-1,,-1,-1
0.012,0.015
0.2,0.1
`
	f, err := Decode(strings.NewReader(legacy))
	require.NoError(t, err)
	assert.Equal(t, "Generated by regression_experiments.py on 07/12/2022, 10:01:02", f.Comment)
	assert.False(t, f.Summary.HasClasses)
	assert.Equal(t, int64(2101), f.Summary.FitTime)
	yTrue, yPred, err := f.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.012, 0.2}, yTrue)
	assert.Equal(t, []float64{0.015, 0.1}, yPred)
}

func TestDecode_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"short":       "a,b,TEST,0,MILLISECONDS\nparams\n",
		"split":       "a,b,VALID,0,MILLISECONDS\nparams\n0,1,1,-1,-1,,-1,-1\n",
		"resample":    "a,b,TEST,x,MILLISECONDS\nparams\n0,1,1,-1,-1,,-1,-1\n",
		"summary":     "a,b,TEST,0,MILLISECONDS\nparams\n0,1,1\n",
		"score":       "a,b,TEST,0,MILLISECONDS\nparams\nx,1,1,-1,-1,,-1,-1\n",
		"row":         "a,b,TEST,0,MILLISECONDS\nparams\n0,1,1,-1,-1,,-1,-1\n1\n",
		"probability": "a,b,TEST,0,MILLISECONDS\nparams\n0,1,1,-1,-1,2,,-1,-1\n1,1,,x\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
