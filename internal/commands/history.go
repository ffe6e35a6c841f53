package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"frame/internal/config"
	"frame/internal/database"
	"frame/internal/models"
	"frame/internal/output"
)

// DefaultHistoryLimit is the number of entries shown by 'history'
const DefaultHistoryLimit = 20

// NewHistoryCommand creates the 'history' subcommand listing recently executed statements
// Usage: frame history [--limit 20] [--sql]
func NewHistoryCommand(a *app) *cobra.Command {
	var limit int
	var showSQL bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed statements",
		Long: `Show the statements frame sent to the engine, newest first.

Every describe, select, agg, to and load run is recorded in a SQLite file
next to the database unless --no-history is given or history is disabled in
the config file.

Example:
  frame history --limit 5 --sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.EnsureParentDir(a.cfg.HistoryPath); err != nil {
				return err
			}

			store, err := database.OpenHistory(a.cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(limit)
			if err != nil {
				return err
			}

			return output.Render(cmd.OutOrStdout(), a.cfg.Format, historyResult(entries, showSQL))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultHistoryLimit, "Number of entries to show. Use -1 to show all.")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "Include the generated SQL")

	return cmd
}

// historyResult lays the entries out as a result set for the renderers
func historyResult(entries []models.HistoryEntry, showSQL bool) *database.Result {
	r := &database.Result{
		Columns: []string{"id", "executed_at", "command", "source", "rows", "duration", "status"},
	}
	if showSQL {
		r.Columns = append(r.Columns, "statement")
	}

	for _, e := range entries {
		status := "ok"
		if !e.Succeeded() {
			status = e.Error
		}

		row := []interface{}{
			e.ID,
			e.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
			e.Command,
			e.Source,
			e.RowCount,
			fmt.Sprint(e.Duration),
			status,
		}
		if showSQL {
			row = append(row, e.Statement)
		}
		r.Rows = append(r.Rows, row)
	}

	return r
}
