package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"frame/internal/query"
)

// NewLoadCommand creates the 'load' subcommand for importing a file into a database table
// Usage: frame data.csv load --table sales [--append]
func NewLoadCommand(a *app) *cobra.Command {
	var table string
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "load FROM",
		Short: "Load the dataset into a table of the persistent database",
		Long: `Read the dataset and store it as a table in the persistent DuckDB database,
so later commands can use the table name as FROM.

The table schema is inferred from the source. By default loading replaces any
existing table of the same name. Use the --append flag to add rows to an
existing table without clearing it.

Example:
  frame sales_2024.csv load --table sales
  frame sales_2025.csv load --table sales --append
  frame sales agg region --sum qty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := resolveSource(args[0])
			if err != nil {
				return err
			}

			stmts, err := query.LoadStatements(table, rel, appendMode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loading: %s\n", args[0])
			fmt.Fprintf(out, "Target database: %s\n", a.cfg.DatabasePath)
			if appendMode {
				fmt.Fprintf(out, "Mode: Append to table %s\n", table)
			} else {
				fmt.Fprintf(out, "Mode: Replace table %s\n", table)
			}

			if a.cfg.DatabasePath == "" || a.cfg.DatabasePath == ":memory:" {
				a.logger.Warn("loading into an in-memory database, the table is dropped on exit")
			}

			count, err := a.runExec(cmd, args[0], stmts...)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}

			fmt.Fprintf(out, "Successfully loaded %d rows into %s\n", count, table)
			return nil
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "Name of the table to create or append to (required)")
	cmd.Flags().BoolVar(&appendMode, "append", false, "Append rows to an existing table (default: replace the table)")
	cmd.MarkFlagRequired("table")

	return cmd
}
