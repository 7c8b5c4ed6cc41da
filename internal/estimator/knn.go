package estimator

import (
	"fmt"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/knn"
)

// KNN is a k nearest neighbour classifier backed by golearn.
type KNN struct {
	k        int
	distance string
	schema   *schema
	cls      *knn.KNNClassifier
}

// NewKNN creates a new knn classifier with the given neighbours and distance,
// e.g. "euclidean", "manhattan" or "cosine".
func NewKNN(k int, distance string) *KNN {
	return &KNN{
		k:        k,
		distance: distance,
	}
}

func (c *KNN) Params() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": c.k,
		"distance":    c.distance,
		"algorithm":   "linear",
	}
}

func (c *KNN) Fit(x [][]float64, y []string) error {
	if err := checkFit(x, len(y)); err != nil {
		return err
	}
	c.schema = newSchema(len(x[0]), model.Classes(y))
	train, err := c.schema.instances(x, y)
	if err != nil {
		return err
	}
	c.cls = knn.NewKnnClassifier(c.distance, "linear", c.k)
	if err := c.cls.Fit(train); err != nil {
		log.Error().Err(err).Msg("could not train knn model")
		return fmt.Errorf("%v: %w", err, ErrBackend)
	}
	return nil
}

func (c *KNN) Predict(x [][]float64) ([]string, error) {
	if c.cls == nil {
		return nil, ErrNotFit
	}
	test, err := c.schema.instances(x, nil)
	if err != nil {
		return nil, err
	}
	var predictions base.FixedDataGrid
	predictions, err = c.cls.Predict(test)
	if err != nil {
		log.Error().Err(err).Msg("could not predict on knn model")
		return nil, fmt.Errorf("%v: %w", err, ErrBackend)
	}
	return labels(predictions), nil
}

func (c *KNN) PredictProba(x [][]float64) ([][]float64, error) {
	pred, err := c.Predict(x)
	if err != nil {
		return nil, err
	}
	return oneHot(c.Classes(), pred), nil
}

func (c *KNN) Classes() []string {
	if c.schema == nil {
		return nil
	}
	return c.schema.classes
}
