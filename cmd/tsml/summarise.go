package main

import (
	"fmt"

	"github.com/drakos74/tsml-experiments/internal/evaluation"
	"github.com/spf13/cobra"
)

func newSummariseCmd() *cobra.Command {
	var metric string
	var estimators, datasets []string
	var resamples int
	var csv bool
	cmd := &cobra.Command{
		Use:   "summarise <results>",
		Short: "Aggregate a metric over the test results of estimators and datasets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := evaluation.ParseMetric(metric)
			if err != nil {
				return err
			}
			table, err := evaluation.Summarise(args[0], m, estimators, datasets, resamples)
			if err != nil {
				return err
			}
			if csv {
				return table.WriteCSV(cmd.OutOrStdout())
			}
			table.Render(cmd.OutOrStdout())
			if !table.Complete() {
				fmt.Fprintln(cmd.OutOrStdout(), "some results are missing")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&metric, "metric", "m", string(evaluation.ACC), "Metric to aggregate")
	cmd.Flags().StringSliceVarP(&estimators, "estimators", "e", nil, "Estimators to summarise")
	cmd.Flags().StringSliceVarP(&datasets, "datasets", "d", nil, "Datasets to summarise")
	cmd.Flags().IntVarP(&resamples, "resamples", "r", 1, "Number of resamples per dataset")
	cmd.Flags().BoolVar(&csv, "csv", false, "Write csv instead of a table")
	_ = cmd.MarkFlagRequired("estimators")
	_ = cmd.MarkFlagRequired("datasets")
	return cmd
}
