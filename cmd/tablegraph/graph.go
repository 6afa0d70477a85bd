package main

import (
	"github.com/spf13/cobra"
)

// NewGraphCommand returns the command printing the pipeline topology.
func NewGraphCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the pipeline graph in Graphviz DOT format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			p, err := buildPipeline(s, newLogger(cmd.ErrOrStderr(), s), nil, nil)
			if err != nil {
				return err
			}
			return p.DOT(cmd.OutOrStdout())
		},
	}
}
