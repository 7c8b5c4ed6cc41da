package consensus

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const defaultIterations = 500

// IterativeVoting clusters cases by the labels other clusterers gave them, read from their results files.
// Each consensus cluster keeps, per clusterer, the share of its members carrying each label.
// Cases move to the cluster whose shares agree most with their own labels until no case moves.
type IterativeVoting struct {
	ResultsDir string
	Clusterers []string
	// Clusters is the number of consensus clusters, 0 uses the number of clusters of the first clusterer.
	Clusters      int
	MaxIterations int
	Seed          int64
}

// NewIterativeVoting creates an iterative vote over the results of the given clusterers.
func NewIterativeVoting(resultsDir string, clusters, maxIterations int, seed int64, clusterers ...string) IterativeVoting {
	if maxIterations < 1 {
		maxIterations = defaultIterations
	}
	return IterativeVoting{
		ResultsDir:    resultsDir,
		Clusterers:    clusterers,
		Clusters:      clusters,
		MaxIterations: maxIterations,
		Seed:          seed,
	}
}

func (v IterativeVoting) Params() map[string]interface{} {
	return map[string]interface{}{
		"clusterers":     v.Clusterers,
		"n_clusters":     v.Clusters,
		"max_iterations": v.MaxIterations,
		"random_state":   v.Seed,
	}
}

// Run votes and writes the consensus as the results of a clusterer with the given name.
func (v IterativeVoting) Run(name, dataset string, resample int, overwrite bool) ([]string, error) {
	return Run(v, v.ResultsDir, name, dataset, resample, overwrite)
}

// Vote fits the consensus clusters on the train split and assigns the test cases to them.
func (v IterativeVoting) Vote(dataset string, resample int) (Consensus, Consensus, error) {
	trainFiles, err := read(v.ResultsDir, v.Clusterers, dataset, resample, results.Train)
	if err != nil {
		return Consensus{}, Consensus{}, err
	}
	testFiles, err := read(v.ResultsDir, v.Clusterers, dataset, resample, results.Test)
	if err != nil {
		return Consensus{}, Consensus{}, err
	}

	codes := newCodebook(trainFiles)
	train := codes.encode(trainFiles)
	if len(train) == 0 {
		return Consensus{}, Consensus{}, fmt.Errorf("no train cases to vote on: %w", ErrInput)
	}
	k := v.Clusters
	if k < 1 {
		k = len(codes.values[0])
	}
	if k > len(train) {
		k = len(train)
	}

	assign := v.initial(train, k)
	iterations := 0
	for ; iterations < v.MaxIterations; iterations++ {
		c := newCentres(train, assign, k, codes)
		changed := false
		for i, labels := range train {
			best, _ := c.closest(labels, assign[i])
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	c := newCentres(train, assign, k, codes)
	log.Debug().
		Str("dataset", dataset).
		Int("clusters", k).
		Int("iterations", iterations).
		Msg("iterative voting converged")

	_, reference := trainFiles[0].Labels()
	names := clusterNames(reference, assign, k)

	test := codes.encode(testFiles)
	testAssign := make([]int, len(test))
	testScores := make([][]float64, len(test))
	for i, labels := range test {
		testAssign[i], testScores[i] = c.closest(labels, 0)
	}
	trainScores := make([][]float64, len(train))
	for i, labels := range train {
		_, trainScores[i] = c.closest(labels, assign[i])
	}

	yTrain, _ := trainFiles[0].Labels()
	yTest, _ := testFiles[0].Labels()
	return consensus(yTrain, assign, trainScores, names, len(v.Clusterers)),
		consensus(yTest, testAssign, testScores, names, len(v.Clusterers)), nil
}

// initial spreads k seed cases apart from each other, the first one drawn with the seed,
// and assigns every case to the seed it agrees with most.
func (v IterativeVoting) initial(cases [][]int, k int) []int {
	rnd := rand.New(rand.NewSource(uint64(v.Seed)))
	seeds := []int{rnd.Intn(len(cases))}
	for len(seeds) < k {
		next, lowest := -1, len(cases[0])+1
		for i, labels := range cases {
			closest := 0
			for _, s := range seeds {
				if a := agreement(labels, cases[s]); a > closest {
					closest = a
				}
			}
			if closest < lowest {
				next, lowest = i, closest
			}
		}
		seeds = append(seeds, next)
	}
	assign := make([]int, len(cases))
	for i, labels := range cases {
		best, most := 0, -1
		for m, s := range seeds {
			if a := agreement(labels, cases[s]); a > most {
				best, most = m, a
			}
		}
		assign[i] = best
	}
	return assign
}

func agreement(a, b []int) int {
	n := 0
	for c := range a {
		if a[c] == b[c] {
			n++
		}
	}
	return n
}

// codebook turns the labels of each clusterer into indices.
type codebook struct {
	index  []map[string]int
	values [][]string
}

func newCodebook(files []results.File) codebook {
	cb := codebook{
		index:  make([]map[string]int, len(files)),
		values: make([][]string, len(files)),
	}
	for c, f := range files {
		_, labels := f.Labels()
		set := make(map[string]struct{})
		for _, l := range labels {
			set[l] = struct{}{}
		}
		values := make([]string, 0, len(set))
		for l := range set {
			values = append(values, l)
		}
		sort.Strings(values)
		cb.values[c] = values
		cb.index[c] = make(map[string]int, len(values))
		for i, l := range values {
			cb.index[c][l] = i
		}
	}
	return cb
}

// encode returns the label indices of every case, -1 for labels unknown to the codebook.
func (cb codebook) encode(files []results.File) [][]int {
	n := len(files[0].Rows)
	cases := make([][]int, n)
	for i := range cases {
		cases[i] = make([]int, len(files))
	}
	for c, f := range files {
		for i, r := range f.Rows {
			j, ok := cb.index[c][r.Predicted]
			if !ok {
				j = -1
			}
			cases[i][c] = j
		}
	}
	return cases
}

// centres holds per consensus cluster and clusterer the share of members with each label.
type centres struct {
	shares [][][]float64
}

func newCentres(cases [][]int, assign []int, k int, cb codebook) *centres {
	shares := make([][][]float64, k)
	sizes := make([]int, k)
	for m := range shares {
		shares[m] = make([][]float64, len(cb.values))
		for c, values := range cb.values {
			shares[m][c] = make([]float64, len(values))
		}
	}
	for i, labels := range cases {
		m := assign[i]
		sizes[m]++
		for c, l := range labels {
			if l >= 0 {
				shares[m][c][l]++
			}
		}
	}
	for m := range shares {
		if sizes[m] == 0 {
			continue
		}
		for c := range shares[m] {
			for l := range shares[m][c] {
				shares[m][c][l] /= float64(sizes[m])
			}
		}
	}
	return &centres{shares: shares}
}

// closest returns the cluster agreeing most with the labels and the agreement with every cluster.
// The current cluster wins ties, then the lowest one.
func (c *centres) closest(labels []int, current int) (int, []float64) {
	scores := make([]float64, len(c.shares))
	for m, shares := range c.shares {
		for cl, l := range labels {
			if l >= 0 {
				scores[m] += shares[cl][l]
			}
		}
	}
	best := current
	for m, s := range scores {
		if s > scores[best] {
			best = m
		}
	}
	return best, scores
}

// clusterNames names the consensus clusters after the labels of the first clusterer they overlap with,
// empty clusters get the smallest free integer label.
func clusterNames(reference []string, assign []int, k int) []string {
	ids := make([]string, len(assign))
	for i, m := range assign {
		ids[i] = strconv.Itoa(m)
	}
	mapping := alignment(reference, ids)
	taken := make(map[string]bool)
	for _, n := range mapping {
		taken[n] = true
	}
	for _, r := range reference {
		taken[r] = true
	}
	names := make([]string, k)
	next := 0
	for m := range names {
		if n, ok := mapping[strconv.Itoa(m)]; ok {
			names[m] = n
			continue
		}
		for taken[strconv.Itoa(next)] {
			next++
		}
		names[m] = strconv.Itoa(next)
		taken[names[m]] = true
	}
	return names
}

func consensus(yTrue []string, assign []int, scores [][]float64, names []string, clusterers int) Consensus {
	labels := make([]string, len(names))
	copy(labels, names)
	sort.Strings(labels)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	c := Consensus{
		True:      yTrue,
		Predicted: make([]string, len(assign)),
		Votes:     make([][]float64, len(assign)),
		Labels:    labels,
	}
	for i, m := range assign {
		c.Predicted[i] = names[m]
		votes := make([]float64, len(labels))
		for cl, s := range scores[i] {
			votes[index[names[cl]]] = s / float64(clusterers)
		}
		c.Votes[i] = votes
	}
	return c
}
