package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpen tests database initialization
func TestOpen(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
	}{
		{name: "in-memory database", dbPath: ":memory:"},
		{name: "empty path", dbPath: ""},
		{name: "file database path", dbPath: filepath.Join(t.TempDir(), "frame.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Open(tt.dbPath)
			require.NoError(t, err)
			defer db.Close()

			result, err := ExecuteQuery(db, "SELECT 42 AS answer")
			require.NoError(t, err)
			assert.Equal(t, []string{"answer"}, result.Columns)
			require.Equal(t, 1, result.Len())
			assert.EqualValues(t, 42, result.Rows[0][0])
		})
	}
}

func TestOpenUnwritableLocation(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "frame.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestExecuteQuery tests that column order and values survive materialization
func TestExecuteQuery(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	path := writeCSV(t, "region,qty,price\nnorth,2,1.5\nsouth,3,2.0\nnorth,5,1.0\n")

	result, err := ExecuteQuery(db,
		"SELECT region, SUM(qty) AS sum_qty\nFROM READ_CSV_AUTO('"+path+"')\nGROUP BY region\nORDER BY region")
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "sum_qty"}, result.Columns)
	require.Equal(t, 2, result.Len())
	assert.Equal(t, "north", result.Rows[0][0])
	assert.EqualValues(t, 7, toInt64(t, result.Rows[0][1]))
	assert.Equal(t, "south", result.Rows[1][0])
}

func TestExecuteQueryEngineError(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = ExecuteQuery(db, "SELECT missing_column FROM (SELECT 1 AS a)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query execution failed")
}

func TestExec(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = Exec(db, "CREATE TABLE t AS SELECT range AS i FROM range(5)")
	require.NoError(t, err)

	result, err := ExecuteQuery(db, "SELECT COUNT(*) AS n FROM t")
	require.NoError(t, err)
	assert.EqualValues(t, 5, toInt64(t, result.Rows[0][0]))

	_, err = Exec(db, "CREATE TABLE t (i INTEGER)")
	assert.Error(t, err)
}

func TestExecTxRollsBack(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = ExecTx(db,
		"CREATE TABLE t AS SELECT 1 AS i LIMIT 0",
		"INSERT INTO t SELECT missing_column FROM (SELECT 1 AS a)")
	require.Error(t, err)

	// The CREATE must not survive the failed INSERT
	_, err = ExecuteQuery(db, "SELECT * FROM t")
	assert.Error(t, err)

	n, err := ExecTx(db, "CREATE TABLE t (i INTEGER)", "INSERT INTO t VALUES (1), (2)")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "abc", normalizeValue([]byte("abc"), "VARCHAR"))
	assert.Nil(t, normalizeValue(nil, "INTEGER"))
	assert.Equal(t, int64(3), normalizeValue(int64(3), "BIGINT"))
}

// TestExecuteQueryTypedValues tests that wide decimals keep their digits and
// temporal values are formatted by column type
func TestExecuteQueryTypedValues(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	result, err := ExecuteQuery(db, `SELECT
		SUM(x) AS total,
		DATE '2024-03-01' AS d,
		TIMESTAMP '2024-03-01 00:00:00' AS midnight,
		TIMESTAMP '2024-03-01 12:30:05' AS noonish
		FROM (SELECT 12345678901234567890.12::DECIMAL(38,2) AS x)`)
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())

	row := result.Rows[0]
	assert.Equal(t, "12345678901234567890.12", row[0])
	assert.Equal(t, "2024-03-01", row[1])
	assert.Equal(t, "2024-03-01 00:00:00", row[2])
	assert.Equal(t, "2024-03-01 12:30:05", row[3])
}

func toInt64(t *testing.T, v interface{}) int64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		// HUGEINT sums come back as *big.Int
		if s, ok := v.(interface{ Int64() int64 }); ok {
			return s.Int64()
		}
		t.Fatalf("unexpected numeric type %T", v)
		return 0
	}
}
