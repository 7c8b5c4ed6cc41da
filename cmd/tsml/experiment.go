package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/drakos74/tsml-experiments/internal/array"
	"github.com/drakos74/tsml-experiments/internal/experiment"
	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/drakos74/tsml-experiments/internal/storage"
	"github.com/drakos74/tsml-experiments/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const ignoring = "Ignoring, results already present"

func newExperimentCmd(opts *options, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <data> <results> <estimator> <dataset> [resample] [trainFold] [predefinedResample]",
		Short: short,
		Long: short + `.

The resample id is 1-based, resample 1 is the default train/test split from file.
Without it the task id of the job array the command runs in is used.
trainFold and predefinedResample are enabled with "true".`,
		Args: cobra.RangeArgs(4, 7),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(verb)
			if err != nil {
				return err
			}
			e, err := parseExperiment(kind, args, array.TaskID)
			if err != nil {
				return err
			}
			e.Overwrite = opts.overwrite

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			runner, err := newRunner(opts, e.ResultsDir)
			if err != nil {
				return err
			}
			_, err = runner.LoadAndRun(ctx, e)
			if errors.Is(err, results.ErrExists) {
				fmt.Fprintln(cmd.OutOrStdout(), ignoring)
				return nil
			}
			return err
		},
	}
}

// parseExperiment reads the positional arguments of an experiment.
func parseExperiment(kind model.Kind, args []string, task func() (int, error)) (experiment.Experiment, error) {
	e := experiment.Experiment{
		Kind:        kind,
		ProblemPath: args[0],
		ResultsDir:  args[1],
		Estimator:   args[2],
		Dataset:     args[3],
	}
	var id int
	var err error
	if len(args) > 4 {
		id, err = strconv.Atoi(args[4])
		if err != nil {
			return e, fmt.Errorf("invalid resample '%s': %w", args[4], err)
		}
	} else {
		id, err = task()
		if err != nil {
			return e, fmt.Errorf("no resample given: %w", err)
		}
	}
	e.Resample, err = array.Resample(id)
	if err != nil {
		return e, err
	}
	if len(args) > 5 {
		e.TrainFold = strings.EqualFold(args[5], "true")
	}
	if len(args) > 6 {
		e.Predefined = strings.EqualFold(args[6], "true")
	}
	return e, nil
}

const (
	jsonRecords   = "json"
	memoryRecords = "memory"
	noRecords     = "none"
)

// shard picks the run record storage, json files live in the workspace of each estimator.
func shard(records string) (storage.Shard, error) {
	switch records {
	case jsonRecords:
		return json.WorkspaceShard(zerolog.GlobalLevel() <= zerolog.DebugLevel), nil
	case memoryRecords:
		return json.LocalShard(), nil
	case noRecords:
		return storage.VoidShard(), nil
	}
	return nil, fmt.Errorf("unknown records storage '%s'", records)
}

func newRunner(opts *options, resultsDir string) (*experiment.Runner, error) {
	s, err := shard(opts.records)
	if err != nil {
		return nil, err
	}
	store, err := s(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("could not create records storage: %w", err)
	}
	return experiment.NewRunner().WithStorage(store), nil
}
