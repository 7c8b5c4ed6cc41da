package consensus

import (
	"sort"

	"github.com/drakos74/tsml-experiments/internal/results"
)

// SimpleVote combines the clusterings of other clusterers, read from their results files.
// The labels of every clusterer are aligned to the first one on the train split
// and each case gets the label most clusterers agree on.
type SimpleVote struct {
	ResultsDir string
	Clusterers []string
}

// NewSimpleVote creates a vote over the results of the given clusterers.
func NewSimpleVote(resultsDir string, clusterers ...string) SimpleVote {
	return SimpleVote{
		ResultsDir: resultsDir,
		Clusterers: clusterers,
	}
}

// Params returns the vote configuration in the same shape as estimator parameters.
func (v SimpleVote) Params() map[string]interface{} {
	return map[string]interface{}{
		"clusterers": v.Clusterers,
	}
}

// Vote runs the vote on both splits of the given experiment.
func (v SimpleVote) Vote(dataset string, resample int) (Consensus, Consensus, error) {
	trainFiles, err := read(v.ResultsDir, v.Clusterers, dataset, resample, results.Train)
	if err != nil {
		return Consensus{}, Consensus{}, err
	}
	testFiles, err := read(v.ResultsDir, v.Clusterers, dataset, resample, results.Test)
	if err != nil {
		return Consensus{}, Consensus{}, err
	}

	_, reference := trainFiles[0].Labels()
	mappings := make([]map[string]string, len(trainFiles))
	for i, f := range trainFiles {
		_, labels := f.Labels()
		mappings[i] = alignment(reference, labels)
	}

	return vote(trainFiles, mappings), vote(testFiles, mappings), nil
}

// Run votes and writes the consensus as the results of a clusterer with the given name.
func (v SimpleVote) Run(name, dataset string, resample int, overwrite bool) ([]string, error) {
	return Run(v, v.ResultsDir, name, dataset, resample, overwrite)
}

func vote(files []results.File, mappings []map[string]string) Consensus {
	yTrue, _ := files[0].Labels()
	n := len(yTrue)
	aligned := make([][]string, len(files))
	set := make(map[string]struct{})
	for i, f := range files {
		_, labels := f.Labels()
		aligned[i] = make([]string, n)
		for j, l := range labels {
			if m, ok := mappings[i][l]; ok {
				l = m
			}
			aligned[i][j] = l
			set[l] = struct{}{}
		}
	}
	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	c := Consensus{
		True:      yTrue,
		Predicted: make([]string, n),
		Votes:     make([][]float64, n),
		Labels:    labels,
	}
	for j := 0; j < n; j++ {
		counts := make([]float64, len(labels))
		for i := range files {
			counts[index[aligned[i][j]]]++
		}
		// ties go to the first clusterer's label, then the smallest label
		best := index[aligned[0][j]]
		for k, count := range counts {
			if count > counts[best] {
				best = k
			}
		}
		for k := range counts {
			counts[k] /= float64(len(files))
		}
		c.Predicted[j] = labels[best]
		c.Votes[j] = counts
	}
	return c
}
