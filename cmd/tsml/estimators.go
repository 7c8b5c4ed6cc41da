package main

import (
	"github.com/drakos74/tsml-experiments/internal/estimator"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newEstimatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimators",
		Short: "List the registered estimators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"kind", "estimator"})
			for _, name := range estimator.Classifiers() {
				table.Append([]string{"classifier", name})
			}
			for _, name := range estimator.Regressors() {
				table.Append([]string{"regressor", name})
			}
			for _, name := range estimator.Clusterers() {
				table.Append([]string{"clusterer", name})
			}
			table.Render()
		},
	}
}
