package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"frame/internal/config"
	"frame/internal/query"
	"frame/internal/source"
)

// aggFunc describes one aggregate flag. The order of aggFuncs is the order
// the aggregates appear in the select list.
type aggFunc struct {
	flag      string
	shorthand string
	fn        string
	distinct  bool
	usage     string
}

var aggFuncs = []aggFunc{
	{flag: "count", shorthand: "c", fn: "COUNT", usage: "Counts the non-null values of each column."},
	{flag: "count-distinct", shorthand: "C", fn: "COUNT", distinct: true, usage: "Counts the distinct values of each column."},
	{flag: "avg", shorthand: "a", fn: "AVG", usage: "Calculates the average value for each column."},
	{flag: "geomean", shorthand: "G", fn: "GEOMEAN", usage: "Calculates the geometric mean of each column."},
	{flag: "list", shorthand: "L", fn: "LIST", usage: "Returns a LIST of the columns for each argument. Example: '--list \"c1,c2,c3 c4,c5\"'"},
	{flag: "histogram", shorthand: "H", fn: "HISTOGRAM", usage: "Returns a LIST of STRUCTs with the fields bucket and count."},
	{flag: "max", shorthand: "M", fn: "MAX", usage: "Finds the max value of each column."},
	{flag: "min", shorthand: "m", fn: "MIN", usage: "Finds the min value of each column."},
	{flag: "product", shorthand: "p", fn: "PRODUCT", usage: "Calculates the product of each column."},
	{flag: "sum", shorthand: "s", fn: "SUM", usage: "Calculates the sum of each column."},
	{flag: "corr", fn: "CORR", usage: "Calculates the correlation coefficient of non-null pairs (y,x). Example: '--corr \"c1,c2 c3,c4\"'"},
	{flag: "entropy", shorthand: "E", fn: "ENTROPY", usage: "Returns the log-2 entropy of count input-values for each column."},
	{flag: "kurtosis", shorthand: "K", fn: "KURTOSIS", usage: "Returns the excess kurtosis (Fisher's definition) of each column, with a sample size bias correction."},
	{flag: "mad", fn: "MAD", usage: "Returns the median absolute deviation of each column. NULL values are ignored."},
	{flag: "median", fn: "MEDIAN", usage: "Returns the middle value of each column. NULL values are ignored."},
	{flag: "mode", fn: "MODE", usage: "Returns the most frequent value of each column. NULL values are ignored."},
}

type aggOptions struct {
	groupBy columnList
	funcs   map[string]*columnList
	limit   int64
	orderBy []string
	write   string
}

// NewAggCommand creates the 'agg' subcommand for grouped and ungrouped aggregation
// Usage: frame data.csv agg [GROUP_BY...] [--sum cols] [--avg cols] ... [--limit 10]
func NewAggCommand(a *app) *cobra.Command {
	opts := &aggOptions{funcs: make(map[string]*columnList, len(aggFuncs))}

	cmd := &cobra.Command{
		Use:   "agg FROM [GROUP_BY...]",
		Short: "Aggregate columns, optionally grouped",
		Long: `Aggregate columns of the dataset with DuckDB aggregate functions.

Columns to group by are given as positional arguments or with --group-by.
Each aggregate flag takes a space separated list of columns and may be repeated.
Every aggregate column is aliased as <function>_<column>, e.g. --sum qty
produces SUM(qty) AS sum_qty, which can be used in --order-by.

Example:
  frame sales.csv agg region --sum qty --avg "price discount" --order-by "sum_qty desc"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := resolveSource(args[0])
			if err != nil {
				return err
			}

			// Positional group-by columns come first and are not split
			if len(args) > 1 {
				opts.groupBy.set = true
				opts.groupBy.values = append(append([]string{}, args[1:]...), opts.groupBy.values...)
			}

			stmt, err := opts.statement(rel, a.limitFlag(cmd, opts.limit))
			if err != nil {
				return err
			}

			if opts.write != "" {
				return a.writeResult(cmd, args[0], stmt.String(), opts.write)
			}
			return a.runQuery(cmd, args[0], stmt.String())
		},
	}

	flags := cmd.Flags()
	flags.VarP(&opts.groupBy, "group-by", "g", "Columns to group the aggregates by. Not necessary for all aggregates.")
	for _, f := range aggFuncs {
		list := &columnList{}
		opts.funcs[f.flag] = list
		flags.VarP(list, f.flag, f.shorthand, f.usage)
	}
	flags.Int64VarP(&opts.limit, "limit", "l", config.DefaultLimit, config.LimitDescription)
	flags.StringArrayVarP(&opts.orderBy, "order-by", "o", nil, "Order by a column or alias, optionally followed by asc or desc. Repeatable.")
	flags.StringVarP(&opts.write, "write", "w", "", "Write the result to this file instead of displaying it")

	return cmd
}

// bindings returns the group-by binding followed by every aggregate that was
// given, in aggFuncs order
func (o *aggOptions) bindings() ([]query.Binding, error) {
	var bindings []query.Binding

	if o.groupBy.set {
		cols, err := query.EscapeColumns(o.groupBy.values)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, query.Binding{Columns: cols})
	}

	for _, f := range aggFuncs {
		list := o.funcs[f.flag]
		if list == nil || !list.set {
			continue
		}

		cols, err := query.EscapeColumns(list.values)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", f.flag, err)
		}

		if f.distinct {
			bindings = append(bindings, query.CountDistinct(cols))
			continue
		}
		bindings = append(bindings, query.Binding{Func: f.fn, Columns: cols})
	}

	return bindings, nil
}

// statement builds the aggregate query for rel
func (o *aggOptions) statement(rel source.Relation, limit int64) (query.Statement, error) {
	bindings, err := o.bindings()
	if err != nil {
		return query.Statement{}, err
	}
	if len(bindings) == 0 {
		return query.Statement{}, fmt.Errorf("nothing to aggregate: give group-by columns or at least one aggregate flag")
	}

	stmt := query.Statement{
		Columns: query.SelectList(bindings),
		From:    rel.Expr,
		Limit:   limit,
	}

	if o.groupBy.set {
		stmt.GroupBy = bindings[0].Columns
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
