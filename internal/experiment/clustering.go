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

// LoadAndRunClustering loads the dataset and runs a clustering experiment,
// unless its results are already present.
func (r *Runner) LoadAndRunClustering(ctx context.Context, e Experiment) (Record, error) {
	e.Kind = model.Clustering
	split, err := r.load(e, data.StratifiedResample)
	if err != nil {
		return r.done(e, Record{}, err)
	}
	return r.RunClustering(ctx, e, split)
}

// RunClustering fits the clusterer on the train split, the number of clusters being the number of train classes.
// The test file holds the cluster of each test case, the train file the fitted train labels.
func (r *Runner) RunClustering(ctx context.Context, e Experiment, split model.Split) (Record, error) {
	e.Kind = model.Clustering
	record, err := r.runClustering(ctx, e, split)
	return r.done(e, record, err)
}

func (r *Runner) runClustering(ctx context.Context, e Experiment, split model.Split) (Record, error) {
	k := len(split.Train.Classes())
	opts := estimator.Options{
		Seed:       int64(e.Resample),
		Dimensions: split.Train.Dimensions,
		Clusters:   k,
	}
	clu, err := estimator.SetClusterer(e.Estimator, opts)
	if err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	start := time.Now()
	if err := clu.Fit(split.Train.X); err != nil {
		return Record{}, fmt.Errorf("could not fit '%s': %w", e.Estimator, err)
	}
	fitTime := millis(start)

	start = time.Now()
	pred, err := clu.Predict(split.Test.X)
	if err != nil {
		return Record{}, fmt.Errorf("could not predict with '%s': %w", e.Estimator, err)
	}
	predictTime := millis(start)

	clusters := labels(pred)
	score, err := evaluation.ClusteringAccuracy(split.Test.Y, clusters)
	if err != nil {
		return Record{}, err
	}
	params := clu.Params()

	test := r.header(e, results.Test, params)
	test.Summary = results.NewSummary(score, fitTime, predictTime).WithClasses(k)
	test.Rows = rows(split.Test.Y, clusters, memberships(pred, k))
	files := []results.File{test}

	if e.TrainFold {
		fitted := clu.Labels()
		trainClusters := labels(fitted)
		trainScore, err := evaluation.ClusteringAccuracy(split.Train.Y, trainClusters)
		if err != nil {
			return Record{}, err
		}
		train := r.header(e, results.Train, params)
		train.Summary = results.NewSummary(trainScore, fitTime, -1).
			WithClasses(k).
			WithTrainEstimate(FitLabels, 0)
		train.Rows = rows(split.Train.Y, trainClusters, memberships(fitted, k))
		files = append(files, train)
	}

	record := r.record(e, split, params)
	record.Classes = k
	record.FitTime = fitTime
	record.PredictTime = predictTime
	record.Metric = string(evaluation.CLACC)
	record.Score = score
	return r.write(e, record, files...)
}

func labels(clusters []int) []string {
	ll := make([]string, len(clusters))
	for i, c := range clusters {
		ll[i] = strconv.Itoa(c)
	}
	return ll
}

// memberships are the hard assignments as probabilities over k clusters.
func memberships(clusters []int, k int) [][]float64 {
	mm := make([][]float64, len(clusters))
	for i, c := range clusters {
		m := make([]float64, k)
		if c >= 0 && c < k {
			m[c] = 1
		}
		mm[i] = m
	}
	return mm
}
