package query

import (
	"fmt"
	"strings"

	"frame/internal/source"
)

// Statement is a SELECT query with one slot per clause. String renders the
// slots in a fixed order: SELECT, FROM, WHERE, GROUP BY, ORDER BY, LIMIT.
type Statement struct {
	// Columns is the rendered select list, see SelectList. It is not
	// defaulted: an empty list leaves the engine to reject the query.
	Columns string
	From    string
	Where   string
	GroupBy []string
	OrderBy []string
	// Limit is applied only when positive
	Limit int64
}

// String joins the present clauses with newlines
func (s Statement) String() string {
	clauses := []string{"SELECT " + s.Columns, "FROM " + s.From}
	if s.Where != "" {
		clauses = append(clauses, "WHERE "+s.Where)
	}
	if s.GroupBy != nil {
		clauses = append(clauses, "GROUP BY "+strings.Join(s.GroupBy, ", "))
	}
	if len(s.OrderBy) > 0 {
		clauses = append(clauses, "ORDER BY "+strings.Join(s.OrderBy, ", "))
	}
	if s.Limit > 0 {
		clauses = append(clauses, fmt.Sprintf("LIMIT %d", s.Limit))
	}

	return strings.Join(clauses, "\n")
}

// Describe returns the schema introspection statement for a relation
func Describe(rel source.Relation) string {
	return "DESCRIBE SELECT * FROM " + rel.Expr
}

// BuildWhere chains the validated predicates: where, then each AND term,
// then each OR term. No parentheses are added.
func BuildWhere(where string, and, or []string) (string, error) {
	if where == "" {
		if len(and) > 0 || len(or) > 0 {
			return "", fmt.Errorf("--and and --or require --where")
		}
		return "", nil
	}

	parts := []string{where}
	for _, c := range and {
		parts = append(parts, "AND", c)
	}
	for _, c := range or {
		parts = append(parts, "OR", c)
	}

	for i := 0; i < len(parts); i += 2 {
		if err := ValidatePredicate(parts[i]); err != nil {
			return "", err
		}
	}
	return strings.Join(parts, " "), nil
}

// TableName escapes a table reference. Qualified names such as main.sales
// pass through; anything else is quoted as a single identifier.
func TableName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("table name is required")
	}
	if err := rejectStatementBreaks(name); err != nil {
		return "", err
	}
	if dottedIdentifier.MatchString(name) || quotedIdentifier.MatchString(name) {
		return name, nil
	}
	return QuoteIdentifier(name), nil
}

// LoadStatements returns the statements materializing rel as table. By
// default the table is replaced; in append mode it is created from the
// source schema when missing and the rows are inserted.
func LoadStatements(table string, rel source.Relation, appendMode bool) ([]string, error) {
	name, err := TableName(table)
	if err != nil {
		return nil, err
	}

	if !appendMode {
		return []string{fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s", name, rel.Expr)}, nil
	}

	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s AS SELECT * FROM %s LIMIT 0", name, rel.Expr),
		fmt.Sprintf("INSERT INTO %s SELECT * FROM %s", name, rel.Expr),
	}, nil
}
