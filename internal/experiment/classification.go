package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/drakos74/tsml-experiments/internal/data"
	"github.com/drakos74/tsml-experiments/internal/estimator"
	"github.com/drakos74/tsml-experiments/internal/evaluation"
	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/results"
)

// LoadAndRunClassification loads the dataset and runs a classification experiment,
// unless its results are already present.
func (r *Runner) LoadAndRunClassification(ctx context.Context, e Experiment) (Record, error) {
	e.Kind = model.Classification
	split, err := r.load(e, data.StratifiedResample)
	if err != nil {
		return r.done(e, Record{}, err)
	}
	return r.RunClassification(ctx, e, split)
}

// RunClassification fits the classifier on the train split and writes its predictions on the test split.
func (r *Runner) RunClassification(ctx context.Context, e Experiment, split model.Split) (Record, error) {
	e.Kind = model.Classification
	record, err := r.runClassification(ctx, e, split)
	return r.done(e, record, err)
}

func (r *Runner) runClassification(ctx context.Context, e Experiment, split model.Split) (Record, error) {
	opts := estimator.Options{
		Seed:       int64(e.Resample),
		Dimensions: split.Train.Dimensions,
	}
	clf, err := estimator.SetClassifier(e.Estimator, opts)
	if err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	start := time.Now()
	if err := clf.Fit(split.Train.X, split.Train.Y); err != nil {
		return Record{}, fmt.Errorf("could not fit '%s': %w", e.Estimator, err)
	}
	fitTime := millis(start)

	start = time.Now()
	probs, err := clf.PredictProba(split.Test.X)
	if err != nil {
		return Record{}, fmt.Errorf("could not predict with '%s': %w", e.Estimator, err)
	}
	predictTime := millis(start)
	pred, err := clf.Predict(split.Test.X)
	if err != nil {
		return Record{}, fmt.Errorf("could not predict with '%s': %w", e.Estimator, err)
	}

	score, err := evaluation.Accuracy(split.Test.Y, pred)
	if err != nil {
		return Record{}, err
	}
	all := split.Classes()
	classes := len(all)
	params := clf.Params()

	test := r.header(e, results.Test, params)
	test.Summary = results.NewSummary(score, fitTime, predictTime).WithClasses(classes)
	test.Rows = rows(split.Test.Y, pred, pad(probs, clf.Classes(), all))
	files := []results.File{test}

	if e.TrainFold {
		train, err := r.classificationTrainFile(ctx, e, split, opts)
		if err != nil {
			return Record{}, err
		}
		train.Parameters = test.Parameters
		train.Summary.FitTime = fitTime
		train.Summary = train.Summary.WithTrainEstimate(CrossValidation, train.Summary.TrainEstimateTime)
		files = append(files, train)
	}

	record := r.record(e, split, params)
	record.Classes = classes
	record.FitTime = fitTime
	record.PredictTime = predictTime
	record.Metric = string(evaluation.ACC)
	record.Score = score
	return r.write(e, record, files...)
}

// classificationTrainFile estimates the train performance with stratified cross validation.
func (r *Runner) classificationTrainFile(ctx context.Context, e Experiment, split model.Split, opts estimator.Options) (results.File, error) {
	n := split.Train.Size()
	ff, err := folds(n, split.Train.Y, Folds, opts.Seed)
	if err != nil {
		return results.File{}, err
	}
	classes := split.Classes()

	pred := make([]string, n)
	probs := make([][]float64, n)
	start := time.Now()
	for _, fold := range ff {
		if err := ctx.Err(); err != nil {
			return results.File{}, err
		}
		clf, err := estimator.SetClassifier(e.Estimator, opts)
		if err != nil {
			return results.File{}, err
		}
		train := split.Train.Subset(complement(n, fold))
		test := split.Train.Subset(fold)
		if err := clf.Fit(train.X, train.Y); err != nil {
			return results.File{}, fmt.Errorf("could not fit fold: %w", err)
		}
		pp, err := clf.PredictProba(test.X)
		if err != nil {
			return results.File{}, fmt.Errorf("could not predict fold: %w", err)
		}
		yy, err := clf.Predict(test.X)
		if err != nil {
			return results.File{}, fmt.Errorf("could not predict fold: %w", err)
		}
		pp = pad(pp, clf.Classes(), classes)
		for i, j := range fold {
			pred[j] = yy[i]
			probs[j] = pp[i]
		}
	}
	estimateTime := millis(start)

	score, err := evaluation.Accuracy(split.Train.Y, pred)
	if err != nil {
		return results.File{}, err
	}
	f := r.header(e, results.Train, nil)
	f.Summary = results.NewSummary(score, 0, -1).WithClasses(len(split.Classes()))
	f.Summary.TrainEstimateTime = estimateTime
	f.Rows = rows(split.Train.Y, pred, probs)
	return f, nil
}

func rows(yTrue, yPred []string, probs [][]float64) []results.Row {
	rr := make([]results.Row, len(yTrue))
	for i := range yTrue {
		rr[i] = results.Row{
			True:      yTrue[i],
			Predicted: yPred[i],
		}
		if probs != nil {
			rr[i].Probabilities = probs[i]
		}
	}
	return rr
}

// pad spreads the probabilities over the given classes in the order of all,
// classes the classifier never saw get zero probability.
func pad(probs [][]float64, classes, all []string) [][]float64 {
	index := make(map[string]int, len(all))
	for i, c := range all {
		index[c] = i
	}
	padded := make([][]float64, len(probs))
	for i, p := range probs {
		row := make([]float64, len(all))
		for c, v := range p {
			if k, ok := index[classes[c]]; ok {
				row[k] = v
			}
		}
		padded[i] = row
	}
	return padded
}
