// Package models defines the data structures shared between packages
package models

import (
	"fmt"
	"time"
)

// HistoryEntry records one statement frame sent to the engine
type HistoryEntry struct {
	ID         int64         `db:"id" json:"id"`                   // Auto-increment primary key
	RunID      string        `db:"run_id" json:"run_id"`           // Correlates log lines of one invocation
	ExecutedAt time.Time     `db:"executed_at" json:"executed_at"` // When the statement was submitted
	Command    string        `db:"command" json:"command"`         // Subcommand name, e.g. "agg"
	Source     string        `db:"source" json:"source"`           // FROM argument as given
	Statement  string        `db:"statement" json:"statement"`     // Generated SQL
	RowCount   int64         `db:"row_count" json:"row_count"`     // Rows returned, 0 for COPY
	Duration   time.Duration `db:"duration_ms" json:"duration"`    // Stored in milliseconds
	Error      string        `db:"error" json:"error,omitempty"`   // Engine error, empty on success
}

// Succeeded reports whether the statement ran without error
func (h HistoryEntry) Succeeded() bool {
	return h.Error == ""
}

// String returns a human-readable representation of the history entry
func (h HistoryEntry) String() string {
	status := "ok"
	if !h.Succeeded() {
		status = "failed"
	}
	return fmt.Sprintf("%s: %s %s (%d rows, %s, %s)",
		h.ExecutedAt.Format("2006-01-02 15:04:05"),
		h.Command,
		h.Source,
		h.RowCount,
		h.Duration.Round(time.Millisecond),
		status)
}
