package estimator

import (
	"fmt"

	"github.com/sjwhitworth/golearn/base"
)

// schema holds the golearn attributes shared by the train and test instances,
// so that both grids are compatible with each other.
type schema struct {
	attrs   []*base.FloatAttribute
	class   *base.CategoricalAttribute
	classes []string
}

func newSchema(width int, classes []string) *schema {
	attrs := make([]*base.FloatAttribute, width)
	for i := range attrs {
		attrs[i] = base.NewFloatAttribute(fmt.Sprintf("t%d", i))
	}
	class := base.NewCategoricalAttribute()
	class.SetName("class")
	for _, c := range classes {
		class.GetSysValFromString(c)
	}
	return &schema{
		attrs:   attrs,
		class:   class,
		classes: classes,
	}
}

// instances creates the golearn grid for the given cases.
// Without labels every case is assigned the first class, as golearn requires a class value.
func (s *schema) instances(x [][]float64, y []string) (*base.DenseInstances, error) {
	if err := checkWidth(x, len(s.attrs)); err != nil {
		return nil, err
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(s.attrs))
	for i, a := range s.attrs {
		specs[i] = inst.AddAttribute(a)
	}
	classSpec := inst.AddAttribute(s.class)
	if err := inst.AddClassAttribute(s.class); err != nil {
		return nil, fmt.Errorf("could not set class attribute: %v: %w", err, ErrBackend)
	}
	if err := inst.Extend(len(x)); err != nil {
		return nil, fmt.Errorf("could not allocate %d rows: %v: %w", len(x), err, ErrBackend)
	}
	for i, row := range x {
		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
		label := s.classes[0]
		if y != nil {
			label = y[i]
		}
		inst.Set(classSpec, i, s.class.GetSysValFromString(label))
	}
	return inst, nil
}

// labels extracts the predicted classes from a golearn prediction grid.
func labels(predictions base.FixedDataGrid) []string {
	_, rows := predictions.Size()
	ll := make([]string, rows)
	for i := 0; i < rows; i++ {
		ll[i] = base.GetClass(predictions, i)
	}
	return ll
}
