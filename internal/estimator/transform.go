package estimator

import (
	"math"
	"math/cmplx"

	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/mjibson/go-dsp/fft"
)

// Transformer maps each series to a new feature vector.
type Transformer interface {
	Estimator
	Transform(x [][]float64) [][]float64
}

// ZNormalise scales each series to zero mean and unit variance.
// Constant series are only centred.
type ZNormalise struct{}

func (z ZNormalise) Params() map[string]interface{} {
	return map[string]interface{}{
		"transformer": "znormalise",
	}
}

func (z ZNormalise) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		v := xmath.Vector(row)
		if len(v) == 0 {
			out[i] = []float64{}
			continue
		}
		mean := v.Sum() / float64(len(v))
		centred := v.Op(xmath.Add(-mean))
		sd := centred.Norm() / math.Sqrt(float64(len(v)))
		if sd == 0 {
			out[i] = centred
			continue
		}
		out[i] = centred.Op(xmath.Scale(1 / sd))
	}
	return out
}

// Spectral replaces each channel of a series with the amplitudes of its fourier coefficients,
// up to the given number of coefficients per channel, or all non-redundant ones if 0.
type Spectral struct {
	Dimensions   int
	Coefficients int
}

func (s Spectral) Params() map[string]interface{} {
	return map[string]interface{}{
		"transformer":  "spectral",
		"coefficients": s.Coefficients,
	}
}

func (s Spectral) Transform(x [][]float64) [][]float64 {
	dims := s.Dimensions
	if dims < 1 {
		dims = 1
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		length := len(row) / dims
		features := make([]float64, 0)
		for d := 0; d < dims; d++ {
			features = append(features, s.amplitudes(row[d*length:(d+1)*length])...)
		}
		out[i] = features
	}
	return out
}

func (s Spectral) amplitudes(series []float64) []float64 {
	if len(series) == 0 {
		return []float64{}
	}
	cc := fft.FFTReal(series)
	n := len(cc)/2 + 1
	if s.Coefficients > 0 && s.Coefficients < n {
		n = s.Coefficients
	}
	amp := make([]float64, n)
	for i := 0; i < n; i++ {
		amp[i] = cmplx.Abs(cc[i])
	}
	return amp
}

func transform(transformers []Transformer, x [][]float64) [][]float64 {
	for _, t := range transformers {
		x = t.Transform(x)
	}
	return x
}

func pipelineParams(transformers []Transformer, final Estimator) map[string]interface{} {
	params := make(map[string]interface{})
	for _, t := range transformers {
		for k, v := range t.Params() {
			if k == "transformer" {
				continue
			}
			params[k] = v
		}
	}
	for k, v := range final.Params() {
		params[k] = v
	}
	steps := ""
	for _, t := range transformers {
		steps += t.Params()["transformer"].(string) + "+"
	}
	params["steps"] = steps + "estimator"
	return params
}

// ClassifierPipeline applies the transformers before the classifier.
type ClassifierPipeline struct {
	transformers []Transformer
	classifier   Classifier
}

// NewClassifierPipeline creates a classifier on transformed series.
func NewClassifierPipeline(classifier Classifier, transformers ...Transformer) *ClassifierPipeline {
	return &ClassifierPipeline{
		transformers: transformers,
		classifier:   classifier,
	}
}

func (p *ClassifierPipeline) Params() map[string]interface{} {
	return pipelineParams(p.transformers, p.classifier)
}

func (p *ClassifierPipeline) Fit(x [][]float64, y []string) error {
	return p.classifier.Fit(transform(p.transformers, x), y)
}

func (p *ClassifierPipeline) Predict(x [][]float64) ([]string, error) {
	return p.classifier.Predict(transform(p.transformers, x))
}

func (p *ClassifierPipeline) PredictProba(x [][]float64) ([][]float64, error) {
	return p.classifier.PredictProba(transform(p.transformers, x))
}

func (p *ClassifierPipeline) Classes() []string {
	return p.classifier.Classes()
}

// RegressorPipeline applies the transformers before the regressor.
type RegressorPipeline struct {
	transformers []Transformer
	regressor    Regressor
}

// NewRegressorPipeline creates a regressor on transformed series.
func NewRegressorPipeline(regressor Regressor, transformers ...Transformer) *RegressorPipeline {
	return &RegressorPipeline{
		transformers: transformers,
		regressor:    regressor,
	}
}

func (p *RegressorPipeline) Params() map[string]interface{} {
	return pipelineParams(p.transformers, p.regressor)
}

func (p *RegressorPipeline) Fit(x [][]float64, y []float64) error {
	return p.regressor.Fit(transform(p.transformers, x), y)
}

func (p *RegressorPipeline) Predict(x [][]float64) ([]float64, error) {
	return p.regressor.Predict(transform(p.transformers, x))
}

// ClustererPipeline applies the transformers before the clusterer.
type ClustererPipeline struct {
	transformers []Transformer
	clusterer    Clusterer
}

// NewClustererPipeline creates a clusterer on transformed series.
func NewClustererPipeline(clusterer Clusterer, transformers ...Transformer) *ClustererPipeline {
	return &ClustererPipeline{
		transformers: transformers,
		clusterer:    clusterer,
	}
}

func (p *ClustererPipeline) Params() map[string]interface{} {
	return pipelineParams(p.transformers, p.clusterer)
}

func (p *ClustererPipeline) Fit(x [][]float64) error {
	return p.clusterer.Fit(transform(p.transformers, x))
}

func (p *ClustererPipeline) Labels() []int {
	return p.clusterer.Labels()
}

func (p *ClustererPipeline) Predict(x [][]float64) ([]int, error) {
	return p.clusterer.Predict(transform(p.transformers, x))
}
