// Package database provides the DuckDB connection frame queries through and
// the SQLite store that keeps the statement history
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	duckdb "github.com/duckdb/duckdb-go/v2" // DuckDB driver
)

// DB interface defines the engine operations used by the commands
type DB interface {
	Close() error
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
	Begin() (*sql.Tx, error)
}

// duckDB implements the DB interface for DuckDB
type duckDB struct {
	*sql.DB
}

// Result holds a fully materialized result set with its column order
type Result struct {
	Columns []string
	Rows    [][]interface{}
}

// Len returns the number of rows
func (r *Result) Len() int {
	return len(r.Rows)
}

// Open creates the DuckDB connection for this invocation.
// The file is created if it doesn't exist; "" and ":memory:" open an
// in-memory database.
func Open(dbPath string) (DB, error) {
	dsn := dbPath
	if dsn == ":memory:" {
		dsn = ""
	}

	sqlDB, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection per invocation
	sqlDB.SetMaxOpenConns(1)

	db := &duckDB{sqlDB}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	return db, nil
}

// ExecuteQuery executes a SQL query and materializes every row
func ExecuteQuery(db DB, query string) (*Result, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	// Get column names
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	result := &Result{Columns: columns}

	// Process each row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i := range values {
			values[i] = normalizeValue(values[i], types[i].DatabaseTypeName())
		}
		result.Rows = append(result.Rows, values)
	}

	// Check for iteration errors
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return result, nil
}

// Exec runs a statement that returns no rows and reports rows affected when
// the engine knows them
func Exec(db DB, stmt string) (int64, error) {
	res, err := db.Exec(stmt)
	if err != nil {
		return 0, fmt.Errorf("statement execution failed: %w", err)
	}
	return rowsAffected(res), nil
}

// ExecTx runs the statements in one transaction and returns the rows
// affected by the last one. Nothing is kept if any statement fails.
func ExecTx(db DB, stmts ...string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var affected int64
	for _, stmt := range stmts {
		res, err := tx.Exec(stmt)
		if err != nil {
			return 0, fmt.Errorf("statement execution failed: %w", err)
		}
		affected = rowsAffected(res)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return affected, nil
}

func rowsAffected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// normalizeValue converts driver specific values into plain Go values the
// renderers understand. Temporal values are formatted by their column type.
func normalizeValue(val interface{}, dbType string) interface{} {
	switch v := val.(type) {
	case []byte:
		return string(v)
	case duckdb.Decimal:
		// String keeps every digit of wide sums
		return v.String()
	case time.Time:
		switch {
		case dbType == "DATE":
			return v.Format("2006-01-02")
		case strings.HasPrefix(dbType, "TIME") && !strings.HasPrefix(dbType, "TIMESTAMP"):
			return v.Format("15:04:05.999999")
		case dbType == "TIMESTAMPTZ" || dbType == "TIMESTAMP WITH TIME ZONE":
			return v.Format("2006-01-02 15:04:05.999999-07")
		default:
			return v.Format("2006-01-02 15:04:05.999999")
		}
	default:
		return val
	}
}
