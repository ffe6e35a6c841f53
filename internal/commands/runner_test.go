package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frame/internal/source"
)

func TestResolveSource(t *testing.T) {
	path := setupEnv(t)

	rel, err := resolveSource(path)
	require.NoError(t, err)
	assert.Equal(t, source.FormatCSV, rel.Format)

	_, err = resolveSource(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "source file does not exist")

	// Globs, URLs and table names are left to the engine
	for _, arg := range []string{"logs/*.parquet", "s3://bucket/data.parquet", "sales"} {
		_, err := resolveSource(arg)
		assert.NoError(t, err, arg)
	}
}

func TestDescribeCommand(t *testing.T) {
	path := setupEnv(t)

	out, err := run(t, "--db", ":memory:", path, "describe")
	require.NoError(t, err)
	assert.Contains(t, out, "column_name")
	assert.Contains(t, out, "qty")
	assert.Contains(t, out, "(3 rows)")
}

func TestAggCommand(t *testing.T) {
	path := setupEnv(t)

	out, err := run(t, "--db", ":memory:", "--output-format", "csv",
		path, "agg", "region", "--sum", "qty", "--order-by", "region")
	require.NoError(t, err)
	assert.Equal(t, "region,sum_qty\nnorth,6\nsouth,3\n", out)

	out, err = run(t, "--db", ":memory:", "--output-format", "csv",
		path, "agg", "--count-distinct", "region", "--max", "qty")
	require.NoError(t, err)
	assert.Equal(t, "count_distinct_region,max_qty\n2,5\n", out)

	_, err = run(t, "--db", ":memory:", path, "agg")
	assert.ErrorContains(t, err, "nothing to aggregate")
}

// TestAggCommandSpaceSeparatedColumns tests that a flag followed by several
// columns applies to all of them instead of grouping by the extras
func TestAggCommandSpaceSeparatedColumns(t *testing.T) {
	path := setupEnv(t)

	out, err := run(t, "--db", ":memory:", "--output-format", "csv",
		path, "agg", "--group-by", "region", "qty", "--count", "price", "--order-by", "region", "--order-by", "qty")
	require.NoError(t, err)
	assert.Equal(t, "region,qty,count_price\nnorth,1,1\nnorth,5,1\nsouth,3,1\n", out)

	out, err = run(t, "--db", ":memory:", "--output-format", "csv", path, "agg", "--max", "qty", "price")
	require.NoError(t, err)
	assert.Equal(t, "max_qty,max_price\n5,4\n", out)

	out, err = run(t, "--db", ":memory:", "--output-format", "csv", path, "agg", "--avg", "qty", "price")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "avg_qty,avg_price", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "3,2.66"), lines[1])

	// The generated statement keeps the group-by columns in argv order
	out, err = run(t, "--output-format", "json", "history", "--sql", "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out, `SELECT region, qty,\nCOUNT(price) AS count_price`)
	assert.Contains(t, out, `GROUP BY region, qty`)
	assert.Contains(t, out, `SELECT MAX(qty) AS max_qty, MAX(price) AS max_price`)
	assert.NotContains(t, out, `GROUP BY price`)
}

func TestSelectCommand(t *testing.T) {
	path := setupEnv(t)

	out, err := run(t, "--db", ":memory:", "--output-format", "csv",
		path, "select", "region", "qty", "--where", "qty > 1", "--order-by", "qty")
	require.NoError(t, err)
	assert.Equal(t, "region,qty\nsouth,3\nnorth,5\n", out)

	out, err = run(t, "--db", ":memory:", "--output-format", "csv",
		path, "select", "qty", "--order-by", "qty", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "qty\n1\n", out)

	_, err = run(t, "--db", ":memory:", path, "select", "--where", "1=1; DROP TABLE x")
	assert.Error(t, err)

	_, err = run(t, "--db", ":memory:", filepath.Join(t.TempDir(), "nope.csv"), "select")
	assert.ErrorContains(t, err, "source file does not exist")
}

func TestSelectWritesOutput(t *testing.T) {
	path := setupEnv(t)
	dest := filepath.Join(t.TempDir(), "north.csv")

	out, err := run(t, "--db", ":memory:", path, "select", "--where", "region = 'north'", "--output", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "region,qty,price")
	assert.NotContains(t, string(data), "south")
}

func TestToCommand(t *testing.T) {
	path := setupEnv(t)
	dest := filepath.Join(t.TempDir(), "sales.parquet")

	_, err := run(t, "--db", ":memory:", path, "to", dest, "--compression", "zstd")
	require.NoError(t, err)
	assert.FileExists(t, dest)

	out, err := run(t, "--db", ":memory:", "--output-format", "csv", dest, "agg", "--count", "region")
	require.NoError(t, err)
	assert.Equal(t, "count_region\n3\n", out)
}

func TestLoadCommand(t *testing.T) {
	path := setupEnv(t)
	db := filepath.Join(t.TempDir(), "frame.db")

	out, err := run(t, "--db", db, path, "load", "--table", "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode: Replace table sales")
	assert.Contains(t, out, "Successfully loaded")

	_, err = run(t, "--db", db, path, "load", "--table", "sales", "--append")
	require.NoError(t, err)

	out, err = run(t, "--db", db, "--output-format", "csv", "sales", "agg", "--count", "region")
	require.NoError(t, err)
	assert.Equal(t, "count_region\n6\n", out)

	_, err = run(t, "--db", db, path, "load")
	assert.Error(t, err, "--table is required")
}

func TestHistoryCommand(t *testing.T) {
	path := setupEnv(t)

	_, err := run(t, "--db", ":memory:", path, "describe")
	require.NoError(t, err)
	_, err = run(t, "--db", ":memory:", "--no-history", path, "select")
	require.NoError(t, err)
	_, err = run(t, "--db", ":memory:", path, "agg")
	require.Error(t, err)

	out, err := run(t, "--output-format", "json", "history", "--sql")
	require.NoError(t, err)
	assert.Contains(t, out, `"command": "describe"`)
	assert.Contains(t, out, "DESCRIBE SELECT * FROM READ_CSV")
	assert.NotContains(t, out, `"command": "select"`)
	// Statements rejected before reaching the engine are not recorded
	assert.NotContains(t, out, `"command": "agg"`)
}
