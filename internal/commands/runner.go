package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"frame/internal/config"
	"frame/internal/database"
	"frame/internal/models"
	"frame/internal/output"
	"frame/internal/source"
)

// resolveSource resolves the FROM argument. Local files with a known format
// must exist; globs, URLs and table names are left to the engine.
func resolveSource(arg string) (source.Relation, error) {
	rel, err := source.Resolve(arg)
	if err != nil {
		return source.Relation{}, err
	}

	if rel.Format != source.FormatNone && !strings.Contains(arg, "://") && !strings.ContainsAny(arg, "*?[{") {
		if _, err := os.Stat(arg); errors.Is(err, fs.ErrNotExist) {
			return source.Relation{}, fmt.Errorf("source file does not exist: %s", arg)
		}
	}

	return rel, nil
}

// openDatabase opens the engine connection for this invocation
func (a *app) openDatabase() (database.DB, error) {
	if err := config.EnsureParentDir(a.cfg.DatabasePath); err != nil {
		return nil, err
	}

	db, err := database.Open(a.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// runQuery submits one statement and renders the returned rows
func (a *app) runQuery(cmd *cobra.Command, from, stmt string) error {
	db, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	a.logger.Debug("executing statement", "command", cmd.Name(), "sql", stmt)

	start := time.Now()
	result, err := database.ExecuteQuery(db, stmt)
	entry := a.newEntry(cmd, from, stmt, start)
	if err != nil {
		entry.Error = err.Error()
		a.record(entry)
		return err
	}

	entry.RowCount = int64(result.Len())
	a.record(entry)

	return output.Render(cmd.OutOrStdout(), a.cfg.Format, result)
}

// runExec runs statements that return no rows in one transaction and
// returns the rows affected by the last one
func (a *app) runExec(cmd *cobra.Command, from string, stmts ...string) (int64, error) {
	db, err := a.openDatabase()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	for _, stmt := range stmts {
		a.logger.Debug("executing statement", "command", cmd.Name(), "sql", stmt)
	}

	start := time.Now()
	affected, err := database.ExecTx(db, stmts...)
	entry := a.newEntry(cmd, from, strings.Join(stmts, ";\n"), start)
	if err != nil {
		entry.Error = err.Error()
		a.record(entry)
		return 0, err
	}

	entry.RowCount = affected
	a.record(entry)

	return affected, nil
}

func (a *app) newEntry(cmd *cobra.Command, from, stmt string, start time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		RunID:      a.runID,
		ExecutedAt: start,
		Command:    cmd.Name(),
		Source:     from,
		Statement:  stmt,
		Duration:   time.Since(start),
	}
}

// record appends the entry to the history store. Failures are logged and
// never change the outcome of the command.
func (a *app) record(entry models.HistoryEntry) {
	if !a.cfg.HistoryEnabled {
		return
	}

	if err := config.EnsureParentDir(a.cfg.HistoryPath); err != nil {
		a.logger.Warn("history unavailable", "error", err)
		return
	}

	store, err := database.OpenHistory(a.cfg.HistoryPath)
	if err != nil {
		a.logger.Warn("history unavailable", "path", a.cfg.HistoryPath, "error", err)
		return
	}
	defer store.Close()

	if _, err := store.Record(entry); err != nil {
		a.logger.Warn("failed to record history", "error", err)
	}
}

// limitFlag returns the --limit value, falling back to the configured default
// when the flag was not given
func (a *app) limitFlag(cmd *cobra.Command, value int64) int64 {
	if cmd.Flags().Changed("limit") {
		return value
	}
	return int64(a.cfg.Limit)
}
