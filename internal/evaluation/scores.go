package evaluation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrInput = errors.New("invalid input")

func sameLength(a, b int) error {
	if a != b {
		return fmt.Errorf("%d true values vs %d predictions: %w", a, b, ErrInput)
	}
	if a == 0 {
		return fmt.Errorf("no values: %w", ErrInput)
	}
	return nil
}

// Accuracy is the fraction of correct predictions.
func Accuracy(yTrue, yPred []string) (float64, error) {
	if err := sameLength(len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// BalancedAccuracy is the average of the per-class recall.
func BalancedAccuracy(yTrue, yPred []string) (float64, error) {
	if err := sameLength(len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	total := make(map[string]float64)
	correct := make(map[string]float64)
	for i, y := range yTrue {
		total[y]++
		if y == yPred[i] {
			correct[y]++
		}
	}
	recall := make([]float64, 0, len(total))
	for c, n := range total {
		recall = append(recall, correct[c]/n)
	}
	return stat.Mean(recall, nil), nil
}

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := sameLength(len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	d := floats.Distance(yTrue, yPred, 2)
	return d * d / float64(len(yTrue)), nil
}

// RMSE is the root mean squared error.
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := sameLength(len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue)), nil
}

// RandIndex is the fraction of case pairs on which both labellings agree
// about being in the same group or not.
func RandIndex(a, b []string) (float64, error) {
	if err := sameLength(len(a), len(b)); err != nil {
		return 0, err
	}
	n := len(a)
	if n < 2 {
		return 1, nil
	}
	cells := make(map[[2]string]int)
	rows := make(map[string]int)
	cols := make(map[string]int)
	for i := range a {
		cells[[2]string{a[i], b[i]}]++
		rows[a[i]]++
		cols[b[i]]++
	}
	sumCells, sumRows, sumCols := 0.0, 0.0, 0.0
	for _, c := range cells {
		sumCells += pairs(c)
	}
	for _, c := range rows {
		sumRows += pairs(c)
	}
	for _, c := range cols {
		sumCols += pairs(c)
	}
	all := pairs(n)
	return (all + 2*sumCells - sumRows - sumCols) / all, nil
}

// ClusteringAccuracy is the accuracy after mapping each cluster to a class, see Align.
func ClusteringAccuracy(yTrue, clusters []string) (float64, error) {
	if err := sameLength(len(yTrue), len(clusters)); err != nil {
		return 0, err
	}
	mapping := Align(yTrue, clusters)
	mapped := make([]string, len(clusters))
	for i, c := range clusters {
		mapped[i] = mapping[c]
	}
	return Accuracy(yTrue, mapped)
}

// Unmatched prefixes the labels Align could not give a reference label to.
// It starts with a NUL byte, so it never equals a label read from a results or data file.
const Unmatched = "\x00unmatched:"

// Align maps each label of the given labelling to a label of the reference,
// greedily matching the pairs with the largest overlap first.
// The mapping is one to one: labels left over get the unused reference labels in sorted order,
// and once those run out they are mapped to Unmatched followed by their own value.
func Align(reference, labels []string) map[string]string {
	type cell struct {
		ref, label string
		count      int
	}
	counts := make(map[[2]string]int)
	for i := range labels {
		counts[[2]string{reference[i], labels[i]}]++
	}
	cells := make([]cell, 0, len(counts))
	for k, c := range counts {
		cells = append(cells, cell{ref: k[0], label: k[1], count: c})
	}
	// ties are broken on the labels so that the mapping is deterministic
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].count != cells[j].count {
			return cells[i].count > cells[j].count
		}
		if cells[i].label != cells[j].label {
			return cells[i].label < cells[j].label
		}
		return cells[i].ref < cells[j].ref
	})
	mapping := make(map[string]string)
	used := make(map[string]bool)
	for _, c := range cells {
		if _, ok := mapping[c.label]; ok || used[c.ref] {
			continue
		}
		mapping[c.label] = c.ref
		used[c.ref] = true
	}
	left := make([]string, 0)
	for _, l := range labels {
		if _, ok := mapping[l]; !ok {
			mapping[l] = ""
			left = append(left, l)
		}
	}
	sort.Strings(left)
	free := make([]string, 0)
	for _, r := range reference {
		if !used[r] {
			used[r] = true
			free = append(free, r)
		}
	}
	sort.Strings(free)
	for i, l := range left {
		if i < len(free) {
			mapping[l] = free[i]
			continue
		}
		mapping[l] = Unmatched + l
	}
	return mapping
}

func pairs(n int) float64 {
	return float64(n) * float64(n-1) / 2
}
