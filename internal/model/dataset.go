package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Dataset is a set of time series cases with their labels.
// Multivariate cases are stored with their channels concatenated,
// so each row holds Dimensions*Length values.
type Dataset struct {
	Name       string
	X          [][]float64
	Y          []string
	Dimensions int
	Length     int
}

// Split is the pair of train and test datasets for one experiment.
type Split struct {
	Train Dataset
	Test  Dataset
}

// Size returns the number of cases.
func (d Dataset) Size() int {
	return len(d.X)
}

// Check makes sure attributes and labels are aligned.
func (d Dataset) Check() error {
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("inconsistent dataset '%s': %d cases vs %d labels", d.Name, len(d.X), len(d.Y))
	}
	return nil
}

// Classes returns the distinct labels in lexicographic order.
func (d Dataset) Classes() []string {
	return Classes(d.Y)
}

// Targets returns the labels as numbers, which is what regressors work on.
func (d Dataset) Targets() ([]float64, error) {
	yy := make([]float64, len(d.Y))
	for i, y := range d.Y {
		v, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse target '%s' at %d: %w", y, i, err)
		}
		yy[i] = v
	}
	return yy, nil
}

// Subset returns a copy of the dataset holding the cases at the given indices, in that order.
func (d Dataset) Subset(idx []int) Dataset {
	sub := Dataset{
		Name:       d.Name,
		X:          make([][]float64, len(idx)),
		Y:          make([]string, len(idx)),
		Dimensions: d.Dimensions,
		Length:     d.Length,
	}
	for i, j := range idx {
		sub.X[i] = copyVec(d.X[j])
		sub.Y[i] = d.Y[j]
	}
	return sub
}

// Classes returns the distinct values of the given labels sorted.
func Classes(labels []string) []string {
	seen := make(map[string]struct{})
	classes := make([]string, 0)
	for _, y := range labels {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		classes = append(classes, y)
	}
	sort.Strings(classes)
	return classes
}

// Size returns the total number of cases across both splits.
func (s Split) Size() int {
	return s.Train.Size() + s.Test.Size()
}

// Classes returns the distinct labels across both splits.
func (s Split) Classes() []string {
	all := make([]string, 0, s.Size())
	all = append(all, s.Train.Y...)
	all = append(all, s.Test.Y...)
	return Classes(all)
}

func copyVec(v []float64) []float64 {
	w := make([]float64, len(v))
	copy(w, v)
	return w
}
