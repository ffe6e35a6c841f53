package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"frame/internal/models"
)

// HistoryStore keeps a log of executed statements in a SQLite file, separate
// from the DuckDB database so recording never contends with the query
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens the history file and brings its schema up to date
func OpenHistory(path string) (*HistoryStore, error) {
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	// A single connection keeps ":memory:" stores consistent across calls
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping history: %w", err)
	}

	if err := RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate history: %w", err)
	}

	return &HistoryStore{db: sqlDB}, nil
}

// Close releases the underlying connection
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Record inserts one entry and returns its id
func (h *HistoryStore) Record(entry models.HistoryEntry) (int64, error) {
	insertSQL := `
	INSERT INTO history (run_id, executed_at, command, source, statement, row_count, duration_ms, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := h.db.Exec(insertSQL,
		entry.RunID,
		entry.ExecutedAt.UTC(),
		entry.Command,
		entry.Source,
		entry.Statement,
		entry.RowCount,
		entry.Duration.Milliseconds(),
		entry.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history entry: %w", err)
	}

	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (h *HistoryStore) Recent(limit int) ([]models.HistoryEntry, error) {
	selectSQL := `
	SELECT id, run_id, executed_at, command, source, statement, row_count, duration_ms, error
	FROM history
	ORDER BY id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		selectSQL += "LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.Query(selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		var durationMs int64
		if err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.ExecutedAt,
			&entry.Command,
			&entry.Source,
			&entry.Statement,
			&entry.RowCount,
			&durationMs,
			&entry.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during history iteration: %w", err)
	}

	return entries, nil
}
