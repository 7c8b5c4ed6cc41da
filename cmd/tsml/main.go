package main

import (
	"fmt"
	"os"

	"github.com/drakos74/tsml-experiments/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options are the flags shared by all commands.
type options struct {
	overwrite   bool
	logLevel    string
	metricsFile string
	records     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "tsml",
		Short: "Run time series machine learning experiments",
		Long: `tsml runs classification, regression and clustering experiments on
time series datasets and writes the predictions in the tsml results format.

Results that are already present are never recomputed unless --overwrite is set,
so that batch and job array runs can be resubmitted safely.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level '%s': %w", opts.logLevel, err)
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.metricsFile == "" {
				return nil
			}
			return metrics.Observer.WriteTextfile(opts.metricsFile)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.overwrite, "overwrite", false, "Recompute results that are already present")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "Write prometheus metrics to this textfile on exit")
	rootCmd.PersistentFlags().StringVar(&opts.records, "records", jsonRecords, "Where run records are kept (json, memory, none)")

	rootCmd.AddCommand(newExperimentCmd(opts, "classify", "Run a classification experiment"))
	rootCmd.AddCommand(newExperimentCmd(opts, "regress", "Run a regression experiment"))
	rootCmd.AddCommand(newExperimentCmd(opts, "cluster", "Run a clustering experiment"))
	rootCmd.AddCommand(newBatchCmd(opts))
	rootCmd.AddCommand(newSummariseCmd())
	rootCmd.AddCommand(newVoteCmd(opts))
	rootCmd.AddCommand(newResampleCmd())
	rootCmd.AddCommand(newEstimatorsCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
