// Package source resolves the FROM argument into a relation DuckDB can query
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalidPath is returned when the source has no file name component
var ErrInvalidPath = errors.New("invalid path")

// Format identifies a file format with a dedicated DuckDB reader
type Format string

const (
	FormatNone    Format = ""
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
	FormatNDJSON  Format = "ndjson"
)

// readers maps a format to the table function that reads it
var readers = map[Format]string{
	FormatCSV:     "READ_CSV_AUTO",
	FormatParquet: "READ_PARQUET",
	FormatJSON:    "READ_JSON_AUTO",
	FormatNDJSON:  "READ_NDJSON_AUTO",
}

// The first dotted format token anywhere in the name wins, so
// data.csv.bak still reads as CSV.
var formatPattern = regexp.MustCompile(`\.(csv|parquet|json|ndjson)`)

// Relation is a resolved FROM target
type Relation struct {
	Path   string
	Format Format
	// Expr is the SQL placed after FROM
	Expr string
}

func (r Relation) String() string {
	return r.Expr
}

// Resolve turns a file path, glob or table name into a Relation
func Resolve(path string) (Relation, error) {
	name, err := fileName(path)
	if err != nil {
		return Relation{}, err
	}

	format := DetectFormat(name)
	rel := Relation{Path: path, Format: format, Expr: path}
	if reader, ok := readers[format]; ok {
		rel.Expr = fmt.Sprintf("%s(%s)", reader, QuoteLiteral(path))
	}
	return rel, nil
}

// DetectFormat returns the format named by the first format token in name
func DetectFormat(name string) Format {
	m := formatPattern.FindStringSubmatch(name)
	if m == nil {
		return FormatNone
	}
	return Format(m[1])
}

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if _, ok := readers[f]; !ok {
		return FormatNone, fmt.Errorf("unsupported format %q: use csv, json, ndjson or parquet", s)
	}
	return f, nil
}

// QuoteLiteral renders s as a single-quoted SQL string literal
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// fileName returns the last path element, failing for paths that end in
// no name at all (empty, root, "." or "..")
func fileName(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty source path", ErrInvalidPath)
	}
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %q has no file name", ErrInvalidPath, path)
	}
	name := filepath.Base(trimmed)
	if name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q has no file name", ErrInvalidPath, path)
	}
	return name, nil
}
