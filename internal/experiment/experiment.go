package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drakos74/tsml-experiments/internal/data"
	"github.com/drakos74/tsml-experiments/internal/estimator"
	"github.com/drakos74/tsml-experiments/internal/metrics"
	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/drakos74/tsml-experiments/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// Generator is stamped in the comment of every results file.
	Generator = "tsml-experiments"
	// Folds is the number of cross validation folds used for train estimates.
	Folds = 10
	// CrossValidation is the train estimate method of classifiers and regressors.
	CrossValidation = "10FoldCV"
	// FitLabels is the train estimate method of clusterers.
	FitLabels = "FitLabels"
)

// Skipped is returned when the results of an experiment already exist.
var Skipped = fmt.Errorf("ignoring: %w", results.ErrExists)

// Experiment describes a single run of one estimator on one resample of one dataset.
type Experiment struct {
	Kind        model.Kind
	ProblemPath string
	ResultsDir  string
	Estimator   string
	Dataset     string
	// Resample is the 0-based resample id, 0 is the default split from file.
	Resample   int
	TrainFold  bool
	Predefined bool
	Overwrite  bool
}

// Key returns the key identifying the experiment.
func (e Experiment) Key() model.Key {
	return model.NewKey(e.Kind, e.Estimator, e.Dataset, e.Resample)
}

// Present checks if the results the experiment produces are already there.
func (e Experiment) Present() bool {
	return results.PresentAll(e.ResultsDir, e.Estimator, e.Dataset, e.Resample, e.TrainFold)
}

// Record is the run summary kept in the workspace next to the predictions.
type Record struct {
	ID          string    `json:"id"`
	Key         model.Key `json:"key"`
	Params      string    `json:"params"`
	TrainCases  int       `json:"train_cases"`
	TestCases   int       `json:"test_cases"`
	Classes     int       `json:"classes,omitempty"`
	FitTime     int64     `json:"fit_ms"`
	PredictTime int64     `json:"predict_ms"`
	Metric      string    `json:"metric"`
	Score       float64   `json:"score"`
	Files       []string  `json:"files"`
	Time        time.Time `json:"time"`
}

// Runner runs experiments and keeps track of them.
type Runner struct {
	store   storage.Persistence
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRunner creates a runner that keeps no run records.
func NewRunner() *Runner {
	return &Runner{
		store:   storage.NewVoidStorage(),
		metrics: metrics.Observer,
		now:     time.Now,
	}
}

// WithStorage keeps the run records in the given storage.
func (r *Runner) WithStorage(store storage.Persistence) *Runner {
	r.store = store
	return r
}

// WithMetrics reports to the given metrics instead of the global observer.
func (r *Runner) WithMetrics(m *metrics.Metrics) *Runner {
	r.metrics = m
	return r
}

// WithClock overrides the clock used for the comments and records.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// LoadAndRun dispatches to the runner of the experiment kind.
func (r *Runner) LoadAndRun(ctx context.Context, e Experiment) (Record, error) {
	switch e.Kind {
	case model.Classification:
		return r.LoadAndRunClassification(ctx, e)
	case model.Regression:
		return r.LoadAndRunRegression(ctx, e)
	case model.Clustering:
		return r.LoadAndRunClustering(ctx, e)
	}
	return Record{}, fmt.Errorf("unknown experiment kind '%s'", e.Kind)
}

// load checks for existing results, loads the split and resamples it if needed.
func (r *Runner) load(e Experiment, resample func(train, test model.Dataset, seed int64) (model.Split, error)) (model.Split, error) {
	if !e.Overwrite && e.Present() {
		r.metrics.Increment(string(e.Kind), e.Estimator, metrics.Skipped)
		log.Info().
			Str("key", e.Key().ToString()).
			Msg("results already present")
		return model.Split{}, Skipped
	}
	split, err := data.LoadSplit(e.ProblemPath, e.Dataset, e.Resample, e.Predefined)
	if err != nil {
		return model.Split{}, err
	}
	if e.Resample != 0 && !e.Predefined {
		split, err = resample(split.Train, split.Test, int64(e.Resample))
		if err != nil {
			return model.Split{}, fmt.Errorf("could not resample: %w", err)
		}
	}
	return split, nil
}

// header fills in the common fields of a results file.
func (r *Runner) header(e Experiment, split results.Split, params map[string]interface{}) results.File {
	return results.File{
		Dataset:    e.Dataset,
		Estimator:  e.Estimator,
		Split:      split,
		Resample:   e.Resample,
		TimingType: results.Milliseconds,
		Comment:    results.Comment(Generator, r.now()),
		Parameters: estimator.FormatParams(params),
	}
}

// write writes the results files and the run record.
func (r *Runner) write(e Experiment, record Record, files ...results.File) (Record, error) {
	for _, f := range files {
		p, err := results.Write(e.ResultsDir, f, e.Overwrite)
		if errors.Is(err, results.ErrExists) {
			// only the missing files of a partially present experiment are written
			log.Debug().Str("path", p).Msg("keeping existing results")
			continue
		}
		if err != nil {
			return record, err
		}
		record.Files = append(record.Files, p)
	}
	if err := r.store.Store(record.Key, record); err != nil {
		log.Warn().Err(err).Str("key", record.Key.ToString()).Msg("could not store run record")
	}
	return record, nil
}

func (r *Runner) record(e Experiment, split model.Split, params map[string]interface{}) Record {
	return Record{
		ID:         uuid.New().String(),
		Key:        e.Key(),
		Params:     estimator.FormatParams(params),
		TrainCases: split.Train.Size(),
		TestCases:  split.Test.Size(),
		Time:       r.now(),
	}
}

// done reports the outcome of an experiment.
func (r *Runner) done(e Experiment, record Record, err error) (Record, error) {
	switch {
	case err == nil:
		r.metrics.Increment(string(e.Kind), e.Estimator, metrics.Run)
		r.metrics.Timing(string(e.Kind), e.Estimator,
			time.Duration(record.FitTime)*time.Millisecond,
			time.Duration(record.PredictTime)*time.Millisecond)
		log.Info().
			Str("key", record.Key.ToString()).
			Str("id", record.ID).
			Str("metric", record.Metric).
			Float64("score", record.Score).
			Int64("fit-ms", record.FitTime).
			Int64("predict-ms", record.PredictTime).
			Msg("experiment done")
	case errors.Is(err, results.ErrExists):
	default:
		r.metrics.Increment(string(e.Kind), e.Estimator, metrics.Failed)
		log.Error().Err(err).Str("key", e.Key().ToString()).Msg("experiment failed")
	}
	return record, err
}

func millis(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
