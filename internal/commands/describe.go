package commands

import (
	"github.com/spf13/cobra"

	"frame/internal/query"
)

// NewDescribeCommand creates the 'describe' subcommand for schema introspection
// Usage: frame data.parquet describe
func NewDescribeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe FROM",
		Short: "Show the columns and types of the dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := resolveSource(args[0])
			if err != nil {
				return err
			}
			return a.runQuery(cmd, args[0], query.Describe(rel))
		},
	}
}
