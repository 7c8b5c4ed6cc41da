package consensus

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/drakos74/tsml-experiments/internal/estimator"
	"github.com/drakos74/tsml-experiments/internal/evaluation"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/rs/zerolog/log"
)

var ErrInput = errors.New("invalid consensus input")

// Voter combines the results files of several clusterers into one clustering.
type Voter interface {
	Params() map[string]interface{}
	// Vote returns the consensus on the train and the test split.
	Vote(dataset string, resample int) (Consensus, Consensus, error)
}

// Consensus is the outcome of a vote for one split.
type Consensus struct {
	True      []string
	Predicted []string
	// Votes holds the support of each label in Labels order.
	Votes  [][]float64
	Labels []string
}

// Run votes and writes the consensus as the results of a clusterer with the given name.
func Run(v Voter, resultsDir, name, dataset string, resample int, overwrite bool) ([]string, error) {
	train, test, err := v.Vote(dataset, resample)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	paths := make([]string, 0, 2)
	for _, c := range []struct {
		split     results.Split
		consensus Consensus
	}{
		{split: results.Test, consensus: test},
		{split: results.Train, consensus: train},
	} {
		score, err := evaluation.ClusteringAccuracy(c.consensus.True, c.consensus.Predicted)
		if err != nil {
			return paths, err
		}
		f := results.File{
			Dataset:    dataset,
			Estimator:  name,
			Split:      c.split,
			Resample:   resample,
			TimingType: results.Milliseconds,
			Comment:    results.Comment("consensus", now),
			Parameters: estimator.FormatParams(v.Params()),
			Summary:    results.NewSummary(score, 0, 0).WithClasses(len(c.consensus.Labels)),
			Rows:       make([]results.Row, len(c.consensus.True)),
		}
		for i := range c.consensus.True {
			f.Rows[i] = results.Row{
				True:          c.consensus.True[i],
				Predicted:     c.consensus.Predicted[i],
				Probabilities: c.consensus.Votes[i],
			}
		}
		p, err := results.Write(resultsDir, f, overwrite)
		if err != nil {
			return paths, err
		}
		log.Info().
			Str("path", p).
			Str("split", string(c.split)).
			Float64("score", score).
			Msg("wrote consensus")
		paths = append(paths, p)
	}
	return paths, nil
}

// read loads the results files of all clusterers for one split.
// All files must hold the same number of cases.
func read(resultsDir string, clusterers []string, dataset string, resample int, split results.Split) ([]results.File, error) {
	if len(clusterers) == 0 {
		return nil, fmt.Errorf("no clusterers to vote: %w", ErrInput)
	}
	files := make([]results.File, len(clusterers))
	for i, c := range clusterers {
		f, err := results.ReadExperiment(resultsDir, c, dataset, split, resample)
		if err != nil {
			return nil, fmt.Errorf("could not read results of '%s': %w", c, err)
		}
		if i > 0 && len(f.Rows) != len(files[0].Rows) {
			return nil, fmt.Errorf("'%s' has %d %s cases instead of %d: %w",
				c, len(f.Rows), strings.ToLower(string(split)), len(files[0].Rows), ErrInput)
		}
		files[i] = f
	}
	return files, nil
}

// alignment maps the labels onto the reference labels one to one.
// Labels without a reference counterpart get the smallest free integer label,
// so that they stay apart from the reference labels.
func alignment(reference, labels []string) map[string]string {
	mapping := evaluation.Align(reference, labels)
	taken := make(map[string]bool)
	for _, r := range reference {
		taken[r] = true
	}
	left := make([]string, 0)
	for l, m := range mapping {
		if strings.HasPrefix(m, evaluation.Unmatched) {
			left = append(left, l)
		} else {
			taken[m] = true
		}
	}
	sort.Strings(left)
	next := 0
	for _, l := range left {
		for taken[strconv.Itoa(next)] {
			next++
		}
		mapping[l] = strconv.Itoa(next)
		taken[mapping[l]] = true
	}
	return mapping
}
