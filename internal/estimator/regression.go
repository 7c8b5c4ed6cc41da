package estimator

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Ridge is an l2 regularised least squares regressor solved with gonum.
type Ridge struct {
	alpha     float64
	coef      *mat.VecDense
	means     []float64
	intercept float64
}

// NewRidge creates a ridge regressor with the given regularisation strength.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{alpha: alpha}
}

func (r *Ridge) Params() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         r.alpha,
		"fit_intercept": true,
	}
}

func (r *Ridge) Fit(x [][]float64, y []float64) error {
	if err := checkFit(x, len(y)); err != nil {
		return err
	}
	n, p := len(x), len(x[0])
	// centre the attributes and the target, so that the intercept is not penalised
	r.means = make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			col[i] = x[i][j]
		}
		r.means[j] = stat.Mean(col, nil)
	}
	yMean := stat.Mean(y, nil)

	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, x[i][j]-r.means[j])
		}
	}
	yc := make([]float64, n)
	for i := range y {
		yc[i] = y[i] - yMean
	}

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	for j := 0; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+r.alpha)
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), mat.NewVecDense(n, yc))

	var coef mat.VecDense
	if err := coef.SolveVec(&xtx, &xty); err != nil {
		return fmt.Errorf("could not solve normal equations: %v: %w", err, ErrBackend)
	}
	r.coef = &coef
	r.intercept = yMean - floats.Dot(r.means, coef.RawVector().Data)
	return nil
}

func (r *Ridge) Predict(x [][]float64) ([]float64, error) {
	if r.coef == nil {
		return nil, ErrNotFit
	}
	if err := checkWidth(x, len(r.means)); err != nil {
		return nil, err
	}
	w := r.coef.RawVector().Data
	pred := make([]float64, len(x))
	for i, row := range x {
		pred[i] = r.intercept + floats.Dot(row, w)
	}
	return pred, nil
}

// KNNRegressor averages the targets of the k nearest training cases in euclidean distance.
type KNNRegressor struct {
	k int
	x [][]float64
	y []float64
}

// NewKNNRegressor creates a k nearest neighbour regressor.
func NewKNNRegressor(k int) *KNNRegressor {
	return &KNNRegressor{k: k}
}

func (r *KNNRegressor) Params() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": r.k,
		"distance":    "euclidean",
	}
}

func (r *KNNRegressor) Fit(x [][]float64, y []float64) error {
	if err := checkFit(x, len(y)); err != nil {
		return err
	}
	if r.k < 1 {
		return fmt.Errorf("invalid neighbours %d: %w", r.k, ErrInput)
	}
	r.x = x
	r.y = y
	return nil
}

func (r *KNNRegressor) Predict(x [][]float64) ([]float64, error) {
	if r.x == nil {
		return nil, ErrNotFit
	}
	if err := checkWidth(x, len(r.x[0])); err != nil {
		return nil, err
	}
	k := r.k
	if k > len(r.x) {
		k = len(r.x)
	}
	type neighbour struct {
		index    int
		distance float64
	}
	pred := make([]float64, len(x))
	neighbours := make([]neighbour, len(r.x))
	for i, row := range x {
		for j, train := range r.x {
			neighbours[j] = neighbour{index: j, distance: floats.Distance(row, train, 2)}
		}
		// stable on ties so that the first training cases win
		sort.SliceStable(neighbours, func(a, b int) bool {
			return neighbours[a].distance < neighbours[b].distance
		})
		targets := make([]float64, k)
		for j := 0; j < k; j++ {
			targets[j] = r.y[neighbours[j].index]
		}
		pred[i] = stat.Mean(targets, nil)
	}
	return pred, nil
}

// Dummy always predicts the mean training target.
type Dummy struct {
	mean float64
	fit  bool
}

// NewDummy creates a mean baseline regressor.
func NewDummy() *Dummy {
	return &Dummy{}
}

func (d *Dummy) Params() map[string]interface{} {
	return map[string]interface{}{
		"strategy": "mean",
	}
}

func (d *Dummy) Fit(x [][]float64, y []float64) error {
	if err := checkFit(x, len(y)); err != nil {
		return err
	}
	d.mean = stat.Mean(y, nil)
	d.fit = true
	return nil
}

func (d *Dummy) Predict(x [][]float64) ([]float64, error) {
	if !d.fit {
		return nil, ErrNotFit
	}
	pred := make([]float64, len(x))
	for i := range pred {
		pred[i] = d.mean
	}
	return pred, nil
}
