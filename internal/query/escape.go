package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsafeExpression is returned for user input that could alter the
// statement beyond the clause it was meant for
var ErrUnsafeExpression = errors.New("unsafe expression")

var (
	bareIdentifier    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	dottedIdentifier  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	quotedIdentifier  = regexp.MustCompile(`^"(?:[^"]|"")+"$`)
	numericLiteral    = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
	quotedText        = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"`)
	forbiddenKeywords = regexp.MustCompile(`\b(insert|update|delete|drop|create|alter|truncate|merge|upsert|attach|detach|vacuum|copy|export|import|install|begin|commit|rollback|checkpoint)\b`)
)

// QuoteIdentifier wraps a string in double quotes and escapes existing double quotes
func QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isBareIdentifier(s string) bool {
	return bareIdentifier.MatchString(s)
}

// EscapeColumn makes a user supplied column reference safe to interpolate.
// The reference may hold several comma separated arguments (corr takes "y,x").
// Plain and qualified identifiers, numbers, * and quoted identifiers pass
// through unchanged; anything else is quoted as an identifier.
func EscapeColumn(expr string) (string, error) {
	if err := rejectStatementBreaks(expr); err != nil {
		return "", err
	}

	parts := strings.Split(expr, ",")
	changed := false
	for i, p := range parts {
		term := strings.TrimSpace(p)
		if term == "" || term == "*" ||
			dottedIdentifier.MatchString(term) ||
			quotedIdentifier.MatchString(term) ||
			numericLiteral.MatchString(term) {
			continue
		}
		parts[i] = QuoteIdentifier(term)
		changed = true
	}

	if !changed {
		return expr, nil
	}
	return strings.Join(parts, ","), nil
}

// EscapeColumns applies EscapeColumn to every element
func EscapeColumns(cols []string) ([]string, error) {
	out := make([]string, len(cols))
	for i, c := range cols {
		escaped, err := EscapeColumn(c)
		if err != nil {
			return nil, err
		}
		out[i] = escaped
	}
	return out, nil
}

// EscapeOrderTerm escapes an ORDER BY term, keeping a trailing ASC or DESC
func EscapeOrderTerm(term string) (string, error) {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty order term", ErrUnsafeExpression)
	}

	direction := ""
	if last := strings.ToUpper(fields[len(fields)-1]); len(fields) > 1 && (last == "ASC" || last == "DESC") {
		direction = " " + last
		fields = fields[:len(fields)-1]
	}

	col, err := EscapeColumn(strings.Join(fields, " "))
	if err != nil {
		return "", err
	}
	return col + direction, nil
}

// ValidatePredicate ensures a user supplied WHERE fragment stays a predicate.
// Comments, statement separators and write operations are refused outside
// string literals and quoted identifiers.
func ValidatePredicate(expr string) error {
	normalized := strings.TrimSpace(strings.ToLower(expr))
	if normalized == "" {
		return fmt.Errorf("%w: empty predicate", ErrUnsafeExpression)
	}

	// Quoted text cannot end the statement, so it is blanked before checking
	normalized = quotedText.ReplaceAllString(normalized, "''")

	if err := rejectStatementBreaks(normalized); err != nil {
		return err
	}

	// Check for forbidden keywords anywhere in the predicate
	if m := forbiddenKeywords.FindString(normalized); m != "" {
		return fmt.Errorf("%w: forbidden keyword '%s' detected", ErrUnsafeExpression, strings.ToUpper(m))
	}

	return nil
}

func rejectStatementBreaks(s string) error {
	switch {
	case strings.Contains(s, ";"):
		return fmt.Errorf("%w: multiple statements not allowed in %q", ErrUnsafeExpression, s)
	case strings.Contains(s, "--"), strings.Contains(s, "/*"):
		return fmt.Errorf("%w: comments not allowed in %q", ErrUnsafeExpression, s)
	}
	return nil
}
