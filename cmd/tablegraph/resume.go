package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// NewResumeCommand returns the command continuing interrupted runs from
// their checkpoints.
func NewResumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resume run-id...",
		Short: "Continue interrupted runs from their last checkpoint",
		Long: `Continue interrupted runs from their last checkpoint.

Run IDs are printed by "run". Checkpoints are read from checkpoint.path,
which must be the store the original run wrote to. A run that already
completed is returned as it finished.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResume,
	}
}

func runResume(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if s.CheckpointPath == "" {
		return errors.New("resume requires checkpoint.path")
	}

	logger := newLogger(cmd.ErrOrStderr(), s)
	ctx := cmd.Context()

	tables, cps, closeStores, err := stores(ctx, s)
	if err != nil {
		return err
	}
	defer closeStores()

	p, err := buildPipeline(s, logger, tables, cps)
	if err != nil {
		return err
	}

	results := make([]tablegraph.Result, len(args))
	for i, runID := range args {
		state, err := p.Resume(ctx, runID)
		if state.RunID == "" {
			state.RunID = runID
		}
		results[i] = tablegraph.Result{State: state, Err: err}
	}

	return writeResults(cmd, results, "runs")
}
