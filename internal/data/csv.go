package data

import (
	"fmt"
	"os"
	"strconv"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/sjwhitworth/golearn/base"
)

// ReadCSV reads a headerless csv file of numeric attributes with the label in the last column.
func ReadCSV(fileName string) (model.Dataset, error) {
	if _, err := os.Stat(fileName); err != nil {
		return model.Dataset{}, fmt.Errorf("could not open '%s': %w", fileName, ErrNotFound)
	}
	instances, err := base.ParseCSVToInstances(fileName, false)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not parse '%s': %v: %w", fileName, err, ErrMalformed)
	}
	return FromInstances(instances)
}

// FromInstances converts golearn instances into a univariate dataset.
func FromInstances(instances *base.DenseInstances) (model.Dataset, error) {
	attrs := base.NonClassFloatAttributes(instances)
	specs := base.ResolveAttributes(instances, attrs)
	classAttrs := instances.AllClassAttributes()
	if len(classAttrs) != 1 {
		return model.Dataset{}, fmt.Errorf("expected one class attribute but found %d: %w", len(classAttrs), ErrMalformed)
	}
	classSpec := base.ResolveAttributes(instances, classAttrs)[0]

	_, rows := instances.Size()
	ds := model.Dataset{
		X:          make([][]float64, rows),
		Y:          make([]string, rows),
		Dimensions: 1,
		Length:     len(specs),
	}
	for i := 0; i < rows; i++ {
		x := make([]float64, len(specs))
		for j, spec := range specs {
			x[j] = base.UnpackBytesToFloat(instances.Get(spec, i))
		}
		ds.X[i] = x
		raw := instances.Get(classSpec, i)
		switch a := classAttrs[0].(type) {
		case *base.FloatAttribute:
			ds.Y[i] = strconv.FormatFloat(base.UnpackBytesToFloat(raw), 'g', -1, 64)
		default:
			ds.Y[i] = a.GetStringFromSysVal(raw)
		}
	}
	return ds, nil
}
