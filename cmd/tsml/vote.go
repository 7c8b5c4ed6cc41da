package main

import (
	"errors"
	"fmt"

	"github.com/drakos74/tsml-experiments/internal/consensus"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/spf13/cobra"
)

const (
	simpleVote      = "simple"
	iterativeVoting = "iterative"
)

func newVoteCmd(opts *options) *cobra.Command {
	var clusterers []string
	var name, method string
	var resample, clusters, iterations int
	var seed int64
	cmd := &cobra.Command{
		Use:   "vote <results> <dataset>",
		Short: "Combine the results of several clusterers into a consensus clustering",
		Long: `Combine the results files of several clusterers into a consensus clustering.

Methods:
  simple    - majority vote after aligning the labels to the first clusterer
  iterative - iterative voting clustering, cases move to the consensus cluster they agree with most`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var voter consensus.Voter
			switch method {
			case simpleVote:
				voter = consensus.NewSimpleVote(args[0], clusterers...)
			case iterativeVoting:
				voter = consensus.NewIterativeVoting(args[0], clusters, iterations, seed, clusterers...)
			default:
				return fmt.Errorf("unknown vote method '%s'", method)
			}
			if name == "" {
				name = defaultVoteName(method)
			}
			paths, err := consensus.Run(voter, args[0], name, args[1], resample, opts.overwrite)
			if errors.Is(err, results.ErrExists) {
				fmt.Fprintln(cmd.OutOrStdout(), ignoring)
				return nil
			}
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&clusterers, "clusterers", nil, "Clusterers whose results are combined")
	cmd.Flags().StringVar(&method, "method", simpleVote, "Vote method (simple, iterative)")
	cmd.Flags().StringVar(&name, "name", "", "Estimator name the consensus is written under (default SimpleVote or IVC)")
	cmd.Flags().IntVar(&resample, "resample", 0, "Resample id of the results files")
	cmd.Flags().IntVar(&clusters, "clusters", 0, "Number of consensus clusters for iterative voting, 0 uses the first clusterer's")
	cmd.Flags().IntVar(&iterations, "iterations", 500, "Maximum iterations of iterative voting")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random state of iterative voting")
	_ = cmd.MarkFlagRequired("clusterers")
	return cmd
}

func defaultVoteName(method string) string {
	if method == iterativeVoting {
		return "IVC"
	}
	return "SimpleVote"
}
