package experiment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/drakos74/tsml-experiments/internal/data"
	"github.com/drakos74/tsml-experiments/internal/estimator"
	"github.com/drakos74/tsml-experiments/internal/evaluation"
	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/results"
)

// LoadAndRunRegression loads the dataset and runs a regression experiment,
// unless its results are already present.
func (r *Runner) LoadAndRunRegression(ctx context.Context, e Experiment) (Record, error) {
	e.Kind = model.Regression
	split, err := r.load(e, data.Resample)
	if err != nil {
		return r.done(e, Record{}, err)
	}
	return r.RunRegression(ctx, e, split)
}

// RunRegression fits the regressor on the train split and writes its predictions on the test split.
func (r *Runner) RunRegression(ctx context.Context, e Experiment, split model.Split) (Record, error) {
	e.Kind = model.Regression
	record, err := r.runRegression(ctx, e, split)
	return r.done(e, record, err)
}

func (r *Runner) runRegression(ctx context.Context, e Experiment, split model.Split) (Record, error) {
	yTrain, err := split.Train.Targets()
	if err != nil {
		return Record{}, fmt.Errorf("invalid train targets: %w", err)
	}
	yTest, err := split.Test.Targets()
	if err != nil {
		return Record{}, fmt.Errorf("invalid test targets: %w", err)
	}
	opts := estimator.Options{
		Seed:       int64(e.Resample),
		Dimensions: split.Train.Dimensions,
	}
	reg, err := estimator.SetRegressor(e.Estimator, opts)
	if err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	start := time.Now()
	if err := reg.Fit(split.Train.X, yTrain); err != nil {
		return Record{}, fmt.Errorf("could not fit '%s': %w", e.Estimator, err)
	}
	fitTime := millis(start)

	start = time.Now()
	pred, err := reg.Predict(split.Test.X)
	if err != nil {
		return Record{}, fmt.Errorf("could not predict with '%s': %w", e.Estimator, err)
	}
	predictTime := millis(start)

	score, err := evaluation.MSE(yTest, pred)
	if err != nil {
		return Record{}, err
	}
	params := reg.Params()

	test := r.header(e, results.Test, params)
	test.Summary = results.NewSummary(score, fitTime, predictTime)
	test.Rows = values(yTest, pred)
	files := []results.File{test}

	if e.TrainFold {
		train, err := r.regressionTrainFile(ctx, e, split.Train, yTrain, opts)
		if err != nil {
			return Record{}, err
		}
		train.Parameters = test.Parameters
		train.Summary.FitTime = fitTime
		train.Summary = train.Summary.WithTrainEstimate(CrossValidation, train.Summary.TrainEstimateTime)
		files = append(files, train)
	}

	record := r.record(e, split, params)
	record.FitTime = fitTime
	record.PredictTime = predictTime
	record.Metric = string(evaluation.MSEM)
	record.Score = score
	return r.write(e, record, files...)
}

// regressionTrainFile estimates the train performance with cross validation.
func (r *Runner) regressionTrainFile(ctx context.Context, e Experiment, train model.Dataset, y []float64, opts estimator.Options) (results.File, error) {
	n := train.Size()
	ff, err := folds(n, nil, Folds, opts.Seed)
	if err != nil {
		return results.File{}, err
	}
	pred := make([]float64, n)
	start := time.Now()
	for _, fold := range ff {
		if err := ctx.Err(); err != nil {
			return results.File{}, err
		}
		reg, err := estimator.SetRegressor(e.Estimator, opts)
		if err != nil {
			return results.File{}, err
		}
		in := complement(n, fold)
		yy := make([]float64, len(in))
		for i, j := range in {
			yy[i] = y[j]
		}
		if err := reg.Fit(train.Subset(in).X, yy); err != nil {
			return results.File{}, fmt.Errorf("could not fit fold: %w", err)
		}
		pp, err := reg.Predict(train.Subset(fold).X)
		if err != nil {
			return results.File{}, fmt.Errorf("could not predict fold: %w", err)
		}
		for i, j := range fold {
			pred[j] = pp[i]
		}
	}
	estimateTime := millis(start)

	score, err := evaluation.MSE(y, pred)
	if err != nil {
		return results.File{}, err
	}
	f := r.header(e, results.Train, nil)
	f.Summary = results.NewSummary(score, 0, -1)
	f.Summary.TrainEstimateTime = estimateTime
	f.Rows = values(y, pred)
	return f, nil
}

func values(yTrue, yPred []float64) []results.Row {
	rr := make([]results.Row, len(yTrue))
	for i := range yTrue {
		rr[i] = results.Row{
			True:      strconv.FormatFloat(yTrue[i], 'g', -1, 64),
			Predicted: strconv.FormatFloat(yPred[i], 'g', -1, 64),
		}
	}
	return rr
}
