package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/drakos74/tsml-experiments/infra/config"
	"github.com/drakos74/tsml-experiments/internal/experiment"
	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config is the grid of experiments to run locally.
type Config struct {
	Data       string   `json:"data" yaml:"data"`
	Results    string   `json:"results" yaml:"results"`
	Kind       string   `json:"kind" yaml:"kind"`
	Estimators []string `json:"estimators" yaml:"estimators"`
	Datasets   []string `json:"datasets" yaml:"datasets"`
	// Resamples is the number of resamples to run, starting at Start.
	Resamples  int  `json:"resamples" yaml:"resamples"`
	Start      int  `json:"start" yaml:"start"`
	TrainFold  bool `json:"train_fold" yaml:"train_fold"`
	Predefined bool `json:"predefined_resample" yaml:"predefined_resample"`
	Overwrite  bool `json:"overwrite" yaml:"overwrite"`
	Workers    int  `json:"workers" yaml:"workers"`
}

// LoadConfig loads the grid from a yaml or json file.
func LoadConfig(fileName string) (Config, error) {
	var cfg Config
	if _, err := config.Load(fileName, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Experiments expands the grid, datasets vary slowest and resamples fastest.
func (c Config) Experiments() ([]experiment.Experiment, error) {
	kind, err := model.ParseKind(c.Kind)
	if err != nil {
		return nil, err
	}
	if len(c.Estimators) == 0 || len(c.Datasets) == 0 {
		return nil, fmt.Errorf("grid needs at least one estimator and one dataset")
	}
	if c.Start < 0 {
		return nil, fmt.Errorf("invalid first resample %d", c.Start)
	}
	resamples := c.Resamples
	if resamples < 1 {
		resamples = 1
	}
	ee := make([]experiment.Experiment, 0, len(c.Datasets)*len(c.Estimators)*resamples)
	for _, d := range c.Datasets {
		for _, est := range c.Estimators {
			for r := c.Start; r < c.Start+resamples; r++ {
				ee = append(ee, experiment.Experiment{
					Kind:        kind,
					ProblemPath: c.Data,
					ResultsDir:  c.Results,
					Estimator:   est,
					Dataset:     d,
					Resample:    r,
					TrainFold:   c.TrainFold,
					Predefined:  c.Predefined,
					Overwrite:   c.Overwrite,
				})
			}
		}
	}
	return ee, nil
}

// Outcome is the result of one cell of the grid.
type Outcome struct {
	Experiment experiment.Experiment
	Record     experiment.Record
	Err        error
}

// Report summarises a batch.
type Report struct {
	Run      int
	Skipped  int
	Failed   int
	Outcomes []Outcome
}

// Run runs all experiments of the grid on a bounded number of workers.
// A failing cell does not stop the others, the first failure in grid order is returned.
func Run(ctx context.Context, runner *experiment.Runner, cfg Config) (Report, error) {
	ee, err := cfg.Experiments()
	if err != nil {
		return Report{}, err
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(ee))
	var mutex sync.Mutex
	report := Report{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range ee {
		i, e := i, e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Experiment: e, Err: err}
				return nil
			}
			record, err := runner.LoadAndRun(gctx, e)
			outcomes[i] = Outcome{Experiment: e, Record: record, Err: err}

			mutex.Lock()
			defer mutex.Unlock()
			switch {
			case err == nil:
				report.Run++
			case errors.Is(err, results.ErrExists):
				report.Skipped++
			default:
				report.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	report.Outcomes = outcomes

	log.Info().
		Int("run", report.Run).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("workers", workers).
		Msg("batch done")

	for _, o := range outcomes {
		if o.Err != nil && !errors.Is(o.Err, results.ErrExists) {
			return report, fmt.Errorf("experiment '%s' failed: %w", o.Experiment.Key().ToString(), o.Err)
		}
	}
	return report, nil
}
