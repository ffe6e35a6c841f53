// Package config provides shared configuration constants and resolves the
// per-user settings for frame
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-user directory holding the database, history and config file
	DirName = ".frame"

	// DefaultDatabaseFile is the persistent DuckDB file used when no --db flag is provided
	DefaultDatabaseFile = "frame.db"

	// DatabaseFileDescription is the help text description for the database file flag
	DatabaseFileDescription = "Path to persistent database. Unnecessary for strictly file based ops."

	// DefaultHistoryFile is the SQLite file recording executed statements
	DefaultHistoryFile = "history.db"

	// DefaultConfigFile is the YAML settings file inside DirName
	DefaultConfigFile = "config.yaml"

	// DefaultLimit is the row limit applied by select and agg
	DefaultLimit = 10

	// LimitDescription is the help text description for the limit flag
	LimitDescription = "Limit rows to display. Use -1 to return all rows."

	// DefaultLogLevel keeps debug output quiet unless asked for
	DefaultLogLevel = "warn"

	// DefaultFormat is the output format for result rows
	DefaultFormat = "table"
)

// Environment variables consulted between flags and the config file
const (
	EnvDatabase = "FRAME_DB"
	EnvConfig   = "FRAME_CONFIG"
	EnvLogLevel = "FRAME_LOG_LEVEL"
	EnvFormat   = "FRAME_FORMAT"
)

// Formats lists the supported output formats
var Formats = []string{"table", "csv", "json"}

// FileConfig represents ~/.frame/config.yaml
type FileConfig struct {
	Database    string `yaml:"db,omitempty"`
	HistoryFile string `yaml:"history-file,omitempty"`
	History     *bool  `yaml:"history,omitempty"`
	Limit       *int   `yaml:"limit,omitempty"`
	LogLevel    string `yaml:"log-level,omitempty"`
	Format      string `yaml:"format,omitempty"`
}

// Overrides carries the root flags that were explicitly set on the command line
type Overrides struct {
	ConfigPath string
	Database   string
	LogLevel   string
	Format     string
	NoHistory  bool
}

// Config is the resolved configuration for one invocation
type Config struct {
	Dir            string
	DatabasePath   string
	HistoryPath    string
	HistoryEnabled bool
	Limit          int
	LogLevel       string
	Format         string
}

// Dir returns the path to ~/.frame
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Load reads a YAML config file. A missing file yields an empty config
// unless required is set.
func Load(path string, required bool) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve computes the configuration for this invocation.
// Precedence: flag > environment > config file > default.
// It never touches the filesystem beyond reading the config file.
func Resolve(o Overrides, getenv func(string) string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	// Locate the config file; an explicitly named file must exist
	configPath := filepath.Join(dir, DefaultConfigFile)
	required := false
	if p := first(o.ConfigPath, getenv(EnvConfig)); p != "" {
		configPath = p
		required = true
	}

	file, err := Load(configPath, required)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Dir:            dir,
		DatabasePath:   first(o.Database, getenv(EnvDatabase), file.Database, filepath.Join(dir, DefaultDatabaseFile)),
		HistoryPath:    first(file.HistoryFile, filepath.Join(dir, DefaultHistoryFile)),
		HistoryEnabled: !o.NoHistory && (file.History == nil || *file.History),
		Limit:          DefaultLimit,
		LogLevel:       strings.ToLower(first(o.LogLevel, getenv(EnvLogLevel), file.LogLevel, DefaultLogLevel)),
		Format:         strings.ToLower(first(o.Format, getenv(EnvFormat), file.Format, DefaultFormat)),
	}
	if file.Limit != nil {
		cfg.Limit = *file.Limit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that come from user input
func (c *Config) Validate() error {
	if !isOneOf(c.Format, Formats) {
		return fmt.Errorf("unsupported output format %q: use one of %s", c.Format, strings.Join(Formats, ", "))
	}
	if !isOneOf(c.LogLevel, []string{"debug", "info", "warn", "warning", "error"}) {
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// EnsureParentDir creates the directory holding a database file.
// In-memory databases have no directory.
func EnsureParentDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isOneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
