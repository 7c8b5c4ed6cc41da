package estimator

import (
	"fmt"
	"math/rand"

	"github.com/drakos74/tsml-experiments/internal/model"
	randomforest "github.com/malaschitz/randomForest"
)

// RandomForest is a random forest classifier backed by malaschitz/randomForest.
type RandomForest struct {
	trees   int
	seed    int64
	classes []string
	forest  *randomforest.Forest
}

// NewForest creates a random forest with n trees.
func NewForest(n int, seed int64) *RandomForest {
	return &RandomForest{
		trees: n,
		seed:  seed,
	}
}

func (rf *RandomForest) Params() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators": rf.trees,
		"random_state": rf.seed,
	}
}

func (rf *RandomForest) Fit(x [][]float64, y []string) error {
	if err := checkFit(x, len(y)); err != nil {
		return err
	}
	rf.classes = model.Classes(y)
	index := classIndex(rf.classes)
	yData := make([]int, len(y))
	for i, l := range y {
		yData[i] = index[l]
	}
	xData := make([][]float64, len(x))
	for i, row := range x {
		xData[i] = append([]float64{}, row...)
	}
	// the forest draws from the global source
	rand.Seed(rf.seed)
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: xData, Class: yData}
	forest.Train(rf.trees)
	rf.forest = forest
	return nil
}

// FeatureImportance returns the importance of each attribute of the last fit.
func (rf *RandomForest) FeatureImportance() []float64 {
	if rf.forest == nil {
		return nil
	}
	return rf.forest.FeatureImportance
}

func (rf *RandomForest) PredictProba(x [][]float64) ([][]float64, error) {
	if rf.forest == nil {
		return nil, ErrNotFit
	}
	if len(x) > 0 {
		if err := checkWidth(x, len(rf.forest.Data.X[0])); err != nil {
			return nil, err
		}
	}
	probs := make([][]float64, len(x))
	for i, row := range x {
		votes := rf.forest.Vote(row)
		p := make([]float64, len(rf.classes))
		total := 0.0
		for j := 0; j < len(p) && j < len(votes); j++ {
			p[j] = votes[j]
			total += votes[j]
		}
		if total <= 0 {
			return nil, fmt.Errorf("no votes for case %d: %w", i, ErrBackend)
		}
		for j := range p {
			p[j] /= total
		}
		probs[i] = p
	}
	return probs, nil
}

func (rf *RandomForest) Predict(x [][]float64) ([]string, error) {
	probs, err := rf.PredictProba(x)
	if err != nil {
		return nil, err
	}
	return argmax(rf.classes, probs), nil
}

func (rf *RandomForest) Classes() []string {
	return rf.classes
}

// argmax picks the most probable class, the first one on ties.
func argmax(classes []string, probs [][]float64) []string {
	pred := make([]string, len(probs))
	for i, p := range probs {
		best := 0
		for j := range p {
			if p[j] > p[best] {
				best = j
			}
		}
		pred[i] = classes[best]
	}
	return pred
}
