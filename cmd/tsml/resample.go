package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/drakos74/tsml-experiments/internal/data"
	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/spf13/cobra"
)

func newResampleCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "resample <data> <dataset> <resample> <out>",
		Short: "Export a resampled split as npy files",
		Long: `Export the split of the given resample id as <out>/<dataset>/<dataset><resample>_TRAIN.npy
and _TEST.npy, ready to be used as a predefined resample. Labels must be numeric.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[2])
			if err != nil || id < 0 {
				return fmt.Errorf("invalid resample '%s'", args[2])
			}
			paths, err := export(k, args[0], args[1], id, args[3])
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(model.Classification), "Experiment kind, regression shuffles without stratification")
	return cmd
}

func export(kind model.Kind, problemPath, dataset string, id int, out string) ([]string, error) {
	split, err := data.LoadSplit(problemPath, dataset, id, false)
	if err != nil {
		return nil, err
	}
	if id != 0 {
		resample := data.StratifiedResample
		if kind == model.Regression {
			resample = data.Resample
		}
		split, err = resample(split.Train, split.Test, int64(id))
		if err != nil {
			return nil, err
		}
	}
	dir := filepath.Join(out, dataset)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not make dir: %s: %w", dir, err)
	}
	name := dataset + strconv.Itoa(id)
	train := filepath.Join(dir, name+data.TrainSuffix+".npy")
	test := filepath.Join(dir, name+data.TestSuffix+".npy")
	if err := data.WriteNpy(train, split.Train); err != nil {
		return nil, err
	}
	if err := data.WriteNpy(test, split.Test); err != nil {
		return nil, err
	}
	return []string{train, test}, nil
}
