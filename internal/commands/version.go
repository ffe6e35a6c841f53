package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the 'version' subcommand
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "frame version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
