// Package commands implements the CLI commands for frame
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"frame/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries the state shared by every subcommand of one invocation
type app struct {
	overrides config.Overrides
	cfg       *config.Config
	logger    *slog.Logger
	runID     string
}

// NewRootCommand builds the frame command tree.
// Usage: frame [--db frame.db] FROM <command> [flags]
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "frame [--db PATH] FROM <command>",
		Short: "Dataframe cli for operating on data files.",
		Long: `frame turns flags into SQL and runs it on an embedded DuckDB database.

FROM is a file path, a glob pattern or a table name. Files ending in .csv,
.parquet, .json or .ndjson are read with the matching DuckDB reader; anything
else is passed to the engine as written, so tables created with 'load' can be
queried by name.

Examples:
  frame sales.csv describe
  frame sales.csv select region price --where "price > 10"
  frame sales.csv agg region --sum qty --avg price --order-by "sum_qty desc"
  frame 'logs/*.parquet' agg --count-distinct user_id --limit -1
  frame sales.csv to sales.parquet --compression zstd`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.overrides.Database, "db", "", config.DatabaseFileDescription+" (default ~/"+config.DirName+"/"+config.DefaultDatabaseFile+")")
	flags.StringVar(&a.overrides.ConfigPath, "config", "", "Path to config file (default ~/"+config.DirName+"/"+config.DefaultConfigFile+")")
	flags.StringVar(&a.overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.overrides.Format, "output-format", "", "Result format: table, csv, json")
	flags.BoolVar(&a.overrides.NoHistory, "no-history", false, "Do not record this statement in the history")

	rootCmd.AddCommand(NewDescribeCommand(a))
	rootCmd.AddCommand(NewSelectCommand(a))
	rootCmd.AddCommand(NewAggCommand(a))
	rootCmd.AddCommand(NewToCommand(a))
	rootCmd.AddCommand(NewLoadCommand(a))
	rootCmd.AddCommand(NewHistoryCommand(a))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// setup resolves configuration once, before any subcommand runs
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.overrides, os.Getenv)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.runID = uuid.NewString()

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()})
	a.logger = slog.New(handler).With("run_id", a.runID)
	a.logger.Debug("configuration resolved",
		"db", cfg.DatabasePath,
		"history", cfg.HistoryEnabled,
		"format", cfg.Format)

	return nil
}

// PrepareArgs rewrites the command line into the shape cobra parses:
// FROM behind the subcommand, and one value per columns flag.
func PrepareArgs(root *cobra.Command, args []string) []string {
	return ExpandColumnFlags(root, HoistSource(root, args))
}

// HoistSource moves a FROM argument written before the subcommand behind
// the subcommand name, so "frame data.csv agg" parses as "frame agg data.csv".
// Arguments already in subcommand-first order are returned unchanged.
func HoistSource(root *cobra.Command, args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args
		}

		if strings.HasPrefix(arg, "-") && arg != "-" {
			if flagTakesValue(root.PersistentFlags(), arg) {
				i++
			}
			continue
		}

		// First positional argument
		if isCommand(root, arg) || i+1 >= len(args) || !isCommand(root, args[i+1]) {
			return args
		}

		hoisted := make([]string, 0, len(args))
		hoisted = append(hoisted, args[:i]...)
		hoisted = append(hoisted, args[i+1], arg)
		return append(hoisted, args[i+2:]...)
	}
	return args
}

// flagTakesValue reports whether a root flag written without "=" consumes
// the next argument
func flagTakesValue(fs *pflag.FlagSet, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}

	var f *pflag.Flag
	switch {
	case strings.HasPrefix(arg, "--"):
		f = fs.Lookup(arg[2:])
	case len(arg) == 2:
		f = fs.ShorthandLookup(arg[1:])
	}
	return f != nil && f.NoOptDefVal == ""
}

// isCommand reports whether name selects a subcommand. help and completion
// are added by cobra at execution time, so they are checked by name.
func isCommand(root *cobra.Command, name string) bool {
	if name == "help" || name == "completion" {
		return true
	}
	for _, c := range root.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}
