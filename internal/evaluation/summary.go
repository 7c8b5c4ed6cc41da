package evaluation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/drakos74/tsml-experiments/internal/buffer"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

// Entry is the aggregated metric of an estimator on a dataset over its resamples.
type Entry struct {
	Estimator string
	Dataset   string
	Mean      float64
	StDev     float64
	Resamples int
	Missing   []int
}

// Table holds the aggregated metric for all requested estimators and datasets.
type Table struct {
	Metric  Metric
	Entries []Entry
	// Averages holds the mean over datasets per estimator, using only the datasets with results.
	Averages map[string]float64
}

func key(estimator, dataset string) string {
	return estimator + "/" + dataset
}

// Summarise reads the test results of every estimator on every dataset for resamples 0..resamples-1
// and aggregates the metric. Missing or unreadable files are recorded, not fatal.
func Summarise(resultsDir string, metric Metric, estimators, datasets []string, resamples int) (Table, error) {
	if resamples < 1 {
		return Table{}, fmt.Errorf("at least one resample is needed: %w", ErrInput)
	}
	scores := buffer.NewStatsCollector()
	averages := buffer.NewStatsCollector()
	table := Table{
		Metric:   metric,
		Entries:  make([]Entry, 0, len(estimators)*len(datasets)),
		Averages: make(map[string]float64),
	}
	for _, estimator := range estimators {
		for _, dataset := range datasets {
			entry := Entry{
				Estimator: estimator,
				Dataset:   dataset,
				Missing:   make([]int, 0),
			}
			for r := 0; r < resamples; r++ {
				f, err := results.ReadExperiment(resultsDir, estimator, dataset, results.Test, r)
				if err != nil {
					entry.Missing = append(entry.Missing, r)
					continue
				}
				score, err := metric.Score(f)
				if err != nil {
					log.Warn().
						Err(err).
						Str("estimator", estimator).
						Str("dataset", dataset).
						Int("resample", r).
						Str("metric", string(metric)).
						Msg("could not score results")
					entry.Missing = append(entry.Missing, r)
					continue
				}
				scores.Push(key(estimator, dataset), score)
			}
			if s, ok := scores.Get(key(estimator, dataset)); ok {
				entry.Mean = s.Avg()
				entry.StDev = s.StDev()
				entry.Resamples = s.Count()
				averages.Push(estimator, s.Avg())
			}
			table.Entries = append(table.Entries, entry)
		}
		if s, ok := averages.Get(estimator); ok {
			table.Averages[estimator] = s.Avg()
		}
	}
	return table, nil
}

// Complete reports whether all requested results were found.
func (t Table) Complete() bool {
	for _, e := range t.Entries {
		if len(e.Missing) > 0 {
			return false
		}
	}
	return true
}

func (t Table) header() []string {
	return []string{"estimator", "dataset", string(t.Metric), "stdev", "resamples", "missing"}
}

func (e Entry) record() []string {
	return []string{
		e.Estimator,
		e.Dataset,
		strconv.FormatFloat(e.Mean, 'f', 4, 64),
		strconv.FormatFloat(e.StDev, 'f', 4, 64),
		strconv.Itoa(e.Resamples),
		strconv.Itoa(len(e.Missing)),
	}
}

// Render prints the table in a human readable form.
func (t Table) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.header())
	for _, e := range t.Entries {
		table.Append(e.record())
	}
	table.Render()
}

// WriteCSV writes the table as csv.
func (t Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.header()); err != nil {
		return err
	}
	for _, e := range t.Entries {
		if err := writer.Write(e.record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
