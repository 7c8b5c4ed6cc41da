package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/drakos74/tsml-experiments/internal/batch"
	"github.com/spf13/cobra"
)

func newBatchCmd(opts *options) *cobra.Command {
	var configFile string
	var workers int
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run a grid of experiments locally",
		Long: `Run every estimator on every dataset and resample of the grid in the config file.

Experiments with results already present are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := batch.LoadConfig(configFile)
			if err != nil {
				return err
			}
			if opts.overwrite {
				cfg.Overwrite = true
			}
			if workers > 0 {
				cfg.Workers = workers
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			runner, err := newRunner(opts, cfg.Results)
			if err != nil {
				return err
			}
			report, err := batch.Run(ctx, runner, cfg)
			fmt.Fprintf(cmd.OutOrStdout(), "run: %d, skipped: %d, failed: %d\n", report.Run, report.Skipped, report.Failed)
			return err
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Grid config file (yaml or json)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of experiments to run concurrently, overrides the config")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
