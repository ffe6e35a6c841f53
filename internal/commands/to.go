package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"frame/internal/query"
	"frame/internal/source"
)

type toOptions struct {
	format      string
	compression string
	partitionBy columnList
	threads     int
}

// NewToCommand creates the 'to' subcommand for converting the dataset to another file format
// Usage: frame data.csv to data.parquet [--compression zstd] [--partition-by year]
func NewToCommand(a *app) *cobra.Command {
	opts := &toOptions{}

	cmd := &cobra.Command{
		Use:   "to FROM DEST",
		Short: "Write the dataset to a file in another format",
		Long: `Write every row of the dataset to DEST with DuckDB's COPY.

The format is taken from --format, otherwise from the DEST file name, and
defaults to parquet. With --partition-by, DEST is a directory receiving one
hive-style partition per distinct value.

Example:
  frame 'raw/*.csv' to warehouse/sales --format parquet --compression zstd --partition-by "year month"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := resolveSource(args[0])
			if err != nil {
				return err
			}

			stmts, err := opts.statements(rel, args[1])
			if err != nil {
				return err
			}

			n, err := a.runExec(cmd, args[0], stmts...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", n, args[1])
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", "", "Output file format: csv, json, ndjson, parquet")
	flags.StringVarP(&opts.compression, "compression", "c", "", "Compression: "+strings.Join(query.Compressions, ", "))
	flags.VarP(&opts.partitionBy, "partition-by", "p", "Columns to partition the output directory by")
	flags.IntVarP(&opts.threads, "threads", "t", 0, "Number of engine threads to use (default: engine decides)")

	return cmd
}

// statements returns the optional thread setting followed by the COPY
func (o *toOptions) statements(rel source.Relation, dest string) ([]string, error) {
	if o.threads < 0 {
		return nil, fmt.Errorf("--threads must be positive, got %d", o.threads)
	}

	format, err := query.FormatFor(o.format, dest)
	if err != nil {
		return nil, err
	}

	partitions, err := query.EscapeColumns(o.partitionBy.values)
	if err != nil {
		return nil, fmt.Errorf("--partition-by: %w", err)
	}

	c := query.Copy{
		Query:       "SELECT * FROM " + rel.Expr,
		Dest:        dest,
		Format:      format,
		Compression: strings.ToLower(o.compression),
		PartitionBy: partitions,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var stmts []string
	if o.threads > 0 {
		stmts = append(stmts, fmt.Sprintf("SET threads = %d", o.threads))
	}
	return append(stmts, c.String()), nil
}

// writeResult copies the rows of stmt into dest instead of displaying them
func (a *app) writeResult(cmd *cobra.Command, from, stmt, dest string) error {
	format, err := query.FormatFor("", dest)
	if err != nil {
		return err
	}

	c := query.Copy{Query: stmt, Dest: dest, Format: format}
	if err := c.Validate(); err != nil {
		return err
	}

	n, err := a.runExec(cmd, from, c.String())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", n, dest)
	return nil
}
