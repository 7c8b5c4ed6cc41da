package estimator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/filters"
)

// chiMergeSignificance is the significance level used to discretise attributes before growing the trees.
const chiMergeSignificance = 0.999

// GolearnForest is the golearn random forest, trained on ChiMerge discretised attributes.
type GolearnForest struct {
	trees  int
	seed   int64
	schema *schema
	filter *filters.ChiMergeFilter
	forest *ensemble.RandomForest
}

// NewGolearnForest creates a golearn random forest with the given number of trees.
func NewGolearnForest(trees int, seed int64) *GolearnForest {
	return &GolearnForest{
		trees: trees,
		seed:  seed,
	}
}

func (f *GolearnForest) Params() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":     f.trees,
		"random_state":     f.seed,
		"chi_significance": chiMergeSignificance,
	}
}

// preProcess discretises the float attributes of the given instances with Chi-Merge.
func preProcess(inst *base.DenseInstances) (*filters.ChiMergeFilter, error) {
	filt := filters.NewChiMergeFilter(inst, chiMergeSignificance)
	for _, a := range base.NonClassFloatAttributes(inst) {
		filt.AddAttribute(a)
	}
	err := filt.Train()
	if err != nil {
		return nil, err
	}
	return filt, nil
}

func (f *GolearnForest) Fit(x [][]float64, y []string) error {
	if err := checkFit(x, len(y)); err != nil {
		return err
	}
	rand.Seed(f.seed)
	f.schema = newSchema(len(x[0]), model.Classes(y))
	train, err := f.schema.instances(x, y)
	if err != nil {
		return err
	}
	filt, err := preProcess(train)
	if err != nil {
		log.Error().Err(err).Msg("could not discretise attributes")
		return fmt.Errorf("%v: %w", err, ErrBackend)
	}
	f.filter = filt
	features := int(math.Max(1, math.Sqrt(float64(len(x[0])))))
	forest := ensemble.NewRandomForest(f.trees, features)
	if err := forest.Fit(base.NewLazilyFilteredInstances(train, filt)); err != nil {
		log.Error().Err(err).Msg("could not train with random forest")
		return fmt.Errorf("%v: %w", err, ErrBackend)
	}
	f.forest = forest
	return nil
}

func (f *GolearnForest) Predict(x [][]float64) ([]string, error) {
	if f.forest == nil {
		return nil, ErrNotFit
	}
	test, err := f.schema.instances(x, nil)
	if err != nil {
		return nil, err
	}
	predictions, err := f.forest.Predict(base.NewLazilyFilteredInstances(test, f.filter))
	if err != nil {
		log.Error().Err(err).Msg("could not predict with random forest")
		return nil, fmt.Errorf("%v: %w", err, ErrBackend)
	}
	return labels(predictions), nil
}

func (f *GolearnForest) PredictProba(x [][]float64) ([][]float64, error) {
	pred, err := f.Predict(x)
	if err != nil {
		return nil, err
	}
	return oneHot(f.Classes(), pred), nil
}

func (f *GolearnForest) Classes() []string {
	if f.schema == nil {
		return nil
	}
	return f.schema.classes
}
