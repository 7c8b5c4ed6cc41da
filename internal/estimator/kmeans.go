package estimator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cdipaolo/goml/cluster"
	"github.com/rs/zerolog/log"
)

// KMeans is a k-means clusterer backed by goml.
type KMeans struct {
	k          int
	iterations int
	seed       int64
	width      int
	model      *cluster.KMeans
}

// NewKMeans creates a k-means clusterer for k clusters.
func NewKMeans(k int, iterations int, seed int64) *KMeans {
	return &KMeans{
		k:          k,
		iterations: iterations,
		seed:       seed,
	}
}

func (k *KMeans) Params() map[string]interface{} {
	return map[string]interface{}{
		"n_clusters":   k.k,
		"max_iter":     k.iterations,
		"random_state": k.seed,
	}
}

func (k *KMeans) Fit(x [][]float64) error {
	if err := checkFit(x, len(x)); err != nil {
		return err
	}
	if len(x) < k.k {
		return fmt.Errorf("%d cases for %d clusters: %w", len(x), k.k, ErrInput)
	}
	data := make([][]float64, len(x))
	for i, row := range x {
		data[i] = append([]float64{}, row...)
	}
	// centroids are initialised from the global source
	rand.Seed(k.seed)
	k.model = cluster.NewKMeans(k.k, k.iterations, data)
	if err := k.model.Learn(); err != nil {
		log.Error().
			Err(err).
			Int("k", k.k).
			Msg("error during training on k-means")
		return fmt.Errorf("could not train: %v: %w", err, ErrBackend)
	}
	k.width = len(x[0])
	return nil
}

func (k *KMeans) Labels() []int {
	if k.model == nil {
		return nil
	}
	return k.model.Guesses()
}

func (k *KMeans) Predict(x [][]float64) ([]int, error) {
	if k.model == nil {
		return nil, ErrNotFit
	}
	if err := checkWidth(x, k.width); err != nil {
		return nil, err
	}
	pred := make([]int, len(x))
	for i, row := range x {
		guess, err := k.model.Predict(row)
		if err != nil {
			log.Error().
				Err(err).
				Int("case", i).
				Msg("could not predict for k-means")
			return nil, fmt.Errorf("could not predict: %v: %w", err, ErrBackend)
		}
		pred[i] = int(math.Round(guess[0]))
	}
	return pred, nil
}
