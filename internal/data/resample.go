package data

import (
	"fmt"

	"github.com/drakos74/tsml-experiments/internal/model"
	"golang.org/x/exp/rand"
)

// labelled is a case with its label attached, so that both move together in a shuffle.
type labelled struct {
	x []float64
	y string
}

// Resample pools the train and test cases, shuffles them with the given seed
// and splits them again at the original train size.
// The class distribution is preserved only in expectation.
func Resample(train, test model.Dataset, seed int64) (model.Split, error) {
	pool, err := concat(train, test)
	if err != nil {
		return model.Split{}, err
	}
	rng := rand.New(rand.NewSource(uint64(seed)))
	perm := rng.Perm(len(pool))
	shuffled := make([]labelled, len(pool))
	for i, j := range perm {
		shuffled[i] = pool[j]
	}
	return split(train, test, shuffled[:train.Size()], shuffled[train.Size():]), nil
}

// StratifiedResample pools the train and test cases and draws a new train split
// with exactly the per-class counts of the original train split.
func StratifiedResample(train, test model.Dataset, seed int64) (model.Split, error) {
	pool, err := concat(train, test)
	if err != nil {
		return model.Split{}, err
	}
	counts := make(map[string]int)
	for _, y := range train.Y {
		counts[y]++
	}
	byClass := make(map[string][]labelled)
	for _, c := range pool {
		byClass[c.y] = append(byClass[c.y], c)
	}
	rng := rand.New(rand.NewSource(uint64(seed)))
	newTrain := make([]labelled, 0, train.Size())
	newTest := make([]labelled, 0, test.Size())
	// classes are visited in order so that the random stream is consumed deterministically
	for _, class := range model.Classes(append(append([]string{}, train.Y...), test.Y...)) {
		cases := byClass[class]
		perm := rng.Perm(len(cases))
		n := counts[class]
		for i, j := range perm {
			if i < n {
				newTrain = append(newTrain, cases[j])
			} else {
				newTest = append(newTest, cases[j])
			}
		}
	}
	return split(train, test, newTrain, newTest), nil
}

func concat(train, test model.Dataset) ([]labelled, error) {
	if err := train.Check(); err != nil {
		return nil, err
	}
	if err := test.Check(); err != nil {
		return nil, err
	}
	pool := make([]labelled, 0, train.Size()+test.Size())
	for _, ds := range []model.Dataset{train, test} {
		for i := range ds.X {
			pool = append(pool, labelled{x: ds.X[i], y: ds.Y[i]})
		}
	}
	if len(pool) > 0 {
		l := len(pool[0].x)
		for i, c := range pool {
			if len(c.x) != l {
				return nil, fmt.Errorf("case %d has %d values instead of %d: %w", i, len(c.x), l, ErrUnequalLength)
			}
		}
	}
	return pool, nil
}

func split(train, test model.Dataset, trainCases, testCases []labelled) model.Split {
	return model.Split{
		Train: unlabel(train, trainCases),
		Test:  unlabel(test, testCases),
	}
}

// unlabel detaches the labels again, using the template for the dataset metadata.
func unlabel(template model.Dataset, cases []labelled) model.Dataset {
	ds := model.Dataset{
		Name:       template.Name,
		X:          make([][]float64, len(cases)),
		Y:          make([]string, len(cases)),
		Dimensions: template.Dimensions,
		Length:     template.Length,
	}
	for i, c := range cases {
		x := make([]float64, len(c.x))
		copy(x, c.x)
		ds.X[i] = x
		ds.Y[i] = c.y
	}
	return ds
}
