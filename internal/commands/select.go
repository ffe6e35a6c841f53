package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"frame/internal/config"
	"frame/internal/query"
	"frame/internal/source"
)

type selectOptions struct {
	limit   int64
	where   string
	and     []string
	or      []string
	orderBy []string
	output  string
}

// NewSelectCommand creates the 'select' subcommand for column projection
// Usage: frame data.csv select [COLUMNS...] [--where "x > 1"] [--limit 10] [--output out.parquet]
func NewSelectCommand(a *app) *cobra.Command {
	opts := &selectOptions{}

	cmd := &cobra.Command{
		Use:   "select FROM [COLUMNS...]",
		Short: "Select columns from the dataset",
		Long: `Select columns from the dataset, optionally filtered and ordered.

Without columns every column is returned. Predicates are SQL boolean
expressions; --and and --or terms are appended in order without parentheses.

Example:
  frame sales.csv select region price --where "price > 10" --and "region <> 'north'" --limit -1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := resolveSource(args[0])
			if err != nil {
				return err
			}

			stmt, err := opts.statement(rel, args[1:], a.limitFlag(cmd, opts.limit))
			if err != nil {
				return err
			}

			if opts.output != "" {
				return a.writeResult(cmd, args[0], stmt.String(), opts.output)
			}
			return a.runQuery(cmd, args[0], stmt.String())
		},
	}

	flags := cmd.Flags()
	flags.Int64VarP(&opts.limit, "limit", "l", config.DefaultLimit, config.LimitDescription)
	flags.StringVar(&opts.where, "where", "", "Filter rows with a SQL predicate")
	flags.StringArrayVar(&opts.and, "and", nil, "Additional predicate joined with AND. Repeatable.")
	flags.StringArrayVar(&opts.or, "or", nil, "Additional predicate joined with OR. Repeatable.")
	flags.StringArrayVar(&opts.orderBy, "order-by", nil, "Order by a column, optionally followed by asc or desc. Repeatable.")
	flags.StringVarP(&opts.output, "output", "o", "", "Path to write result to. Displays to stdout if not provided")

	return cmd
}

// statement builds the projection query for rel
func (o *selectOptions) statement(rel source.Relation, columns []string, limit int64) (query.Statement, error) {
	cols, err := query.EscapeColumns(columns)
	if err != nil {
		return query.Statement{}, err
	}

	where, err := query.BuildWhere(o.where, o.and, o.or)
	if err != nil {
		return query.Statement{}, err
	}

	stmt := query.Statement{
		Columns: query.JoinColumns(cols, ""),
		From:    rel.Expr,
		Where:   where,
		Limit:   limit,
	}
	if stmt.Columns == "" {
		stmt.Columns = "*"
	}

	for _, term := range o.orderBy {
		escaped, err := query.EscapeOrderTerm(term)
		if err != nil {
			return query.Statement{}, fmt.Errorf("--order-by: %w", err)
		}
		stmt.OrderBy = append(stmt.OrderBy, escaped)
	}

	return stmt, nil
}
