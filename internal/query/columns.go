// Package query assembles the SQL statements frame sends to DuckDB.
//
// Column lists are grouped into bindings: an optional aggregate function
// paired with the columns it applies to. Bindings render in the order they
// are given, and a Statement renders its clauses in one fixed order.
package query

import (
	"fmt"
	"strings"
)

// Binding pairs an optional aggregate function with the columns it applies to.
// An empty Func passes the columns through unaliased.
type Binding struct {
	Func    string
	Columns []string
}

var aliasReplacer = strings.NewReplacer(",", "_", " ", "_", `"`, "")

// JoinColumns renders cols as a comma separated column list. With a function
// each column c becomes FUNC(c) AS func_c.
func JoinColumns(cols []string, fn string) string {
	exprs := make([]string, 0, len(cols))
	for _, c := range cols {
		if fn == "" {
			exprs = append(exprs, c)
			continue
		}
		exprs = append(exprs, fmt.Sprintf("%s(%s) AS %s", strings.ToUpper(fn), c, Alias(fn, c)))
	}
	return strings.Join(exprs, ", ")
}

// Alias derives the output column name for fn applied to col. Commas and
// spaces become underscores so composite arguments like "y,x" still yield
// an identifier.
func Alias(fn, col string) string {
	alias := strings.ToLower(fn) + "_" + aliasReplacer.Replace(col)
	if !isBareIdentifier(alias) {
		return QuoteIdentifier(alias)
	}
	return alias
}

// CountDistinct builds the count-distinct binding. Every column is prefixed
// with distinct and counted on its own, so the alias keeps the count prefix:
// COUNT(distinct a) AS count_distinct_a.
func CountDistinct(cols []string) Binding {
	prefixed := make([]string, len(cols))
	for i, c := range cols {
		prefixed[i] = "distinct " + c
	}
	return Binding{Func: "COUNT", Columns: prefixed}
}

// SelectList joins the rendered bindings with ",\n"
func SelectList(bindings []Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = JoinColumns(b.Columns, b.Func)
	}
	return strings.Join(parts, ",\n")
}
