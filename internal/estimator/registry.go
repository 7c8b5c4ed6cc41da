package estimator

import (
	"fmt"
	"sort"
	"strings"
)

const (
	defaultTrees      = 200
	defaultIterations = 300
	spectralTrees     = 500
)

// Options carries the run specific settings an estimator is configured with.
type Options struct {
	// Seed is the random state, experiments use the resample id.
	Seed int64
	// Dimensions is the number of channels of the series.
	Dimensions int
	// Clusters is the number of clusters, experiments use the number of train classes.
	Clusters int
}

type (
	ClassifierConstructor func(opts Options) Classifier
	RegressorConstructor  func(opts Options) Regressor
	ClustererConstructor  func(opts Options) Clusterer
)

var classifiers = map[string]ClassifierConstructor{
	"1nn": func(opts Options) Classifier {
		return NewKNN(1, "euclidean")
	},
	"knn": func(opts Options) Classifier {
		return NewKNN(5, "euclidean")
	},
	"1nn-znorm": func(opts Options) Classifier {
		return NewClassifierPipeline(NewKNN(1, "euclidean"), ZNormalise{})
	},
	"golearn-rf": func(opts Options) Classifier {
		return NewGolearnForest(defaultTrees, opts.Seed)
	},
	"rf": func(opts Options) Classifier {
		return NewForest(defaultTrees, opts.Seed)
	},
	"randf": func(opts Options) Classifier {
		return NewForest(defaultTrees, opts.Seed)
	},
	"spectral-rf": func(opts Options) Classifier {
		return NewClassifierPipeline(NewForest(spectralTrees, opts.Seed), ZNormalise{}, Spectral{Dimensions: opts.Dimensions})
	},
}

var regressors = map[string]RegressorConstructor{
	"ridge": func(opts Options) Regressor {
		return NewRidge(1)
	},
	"knn-reg": func(opts Options) Regressor {
		return NewKNNRegressor(5)
	},
	"1nn-reg": func(opts Options) Regressor {
		return NewKNNRegressor(1)
	},
	"dummy": func(opts Options) Regressor {
		return NewDummy()
	},
	"spectral-ridge": func(opts Options) Regressor {
		return NewRegressorPipeline(NewRidge(1), Spectral{Dimensions: opts.Dimensions})
	},
}

var clusterers = map[string]ClustererConstructor{
	"kmeans": func(opts Options) Clusterer {
		return NewKMeans(clusters(opts), defaultIterations, opts.Seed)
	},
	"kmeans-znorm": func(opts Options) Clusterer {
		return NewClustererPipeline(NewKMeans(clusters(opts), defaultIterations, opts.Seed), ZNormalise{})
	},
}

func clusters(opts Options) int {
	if opts.Clusters < 1 {
		return 2
	}
	return opts.Clusters
}

func lookup(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SetClassifier creates the classifier registered under the given name.
func SetClassifier(name string, opts Options) (Classifier, error) {
	c, ok := classifiers[lookup(name)]
	if !ok {
		return nil, fmt.Errorf("classifier '%s': %w", name, ErrUnknown)
	}
	return c(opts), nil
}

// SetRegressor creates the regressor registered under the given name.
func SetRegressor(name string, opts Options) (Regressor, error) {
	c, ok := regressors[lookup(name)]
	if !ok {
		return nil, fmt.Errorf("regressor '%s': %w", name, ErrUnknown)
	}
	return c(opts), nil
}

// SetClusterer creates the clusterer registered under the given name.
func SetClusterer(name string, opts Options) (Clusterer, error) {
	c, ok := clusterers[lookup(name)]
	if !ok {
		return nil, fmt.Errorf("clusterer '%s': %w", name, ErrUnknown)
	}
	return c(opts), nil
}

// Classifiers lists the registered classifier names.
func Classifiers() []string {
	return names(classifiers)
}

// Regressors lists the registered regressor names.
func Regressors() []string {
	return names(regressors)
}

// Clusterers lists the registered clusterer names.
func Clusterers() []string {
	return names(clusterers)
}

func names[T any](m map[string]T) []string {
	nn := make([]string, 0, len(m))
	for n := range m {
		nn = append(nn, n)
	}
	sort.Strings(nn)
	return nn
}
