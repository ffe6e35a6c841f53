package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frame/internal/config"
)

const salesCSV = `region,qty,price
north,1,2.5
south,3,4
north,5,1.5
`

// setupEnv isolates HOME and the FRAME_* variables and returns a CSV path
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{config.EnvDatabase, config.EnvLogLevel, config.EnvFormat, config.EnvConfig} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0o644))
	return path
}

// run executes the CLI the way main does and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(PrepareArgs(root, args))

	err := root.Execute()
	return stdout.String(), err
}

// TestNewRootCommand tests that every subcommand is registered
func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"describe", "select", "agg", "to", "load", "history", "version"} {
		assert.True(t, isCommand(root, name), "missing subcommand %s", name)
	}

	for _, flag := range []string{"db", "config", "log-level", "output-format", "no-history"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}

func TestHoistSource(t *testing.T) {
	root := NewRootCommand()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "source first",
			args: []string{"data.csv", "agg", "--sum", "a"},
			want: []string{"agg", "data.csv", "--sum", "a"},
		},
		{
			name: "command first",
			args: []string{"agg", "data.csv", "--sum", "a"},
			want: []string{"agg", "data.csv", "--sum", "a"},
		},
		{
			name: "root flag with value before source",
			args: []string{"--db", "x.db", "data.csv", "describe"},
			want: []string{"--db", "x.db", "describe", "data.csv"},
		},
		{
			name: "root flag with equals",
			args: []string{"--db=x.db", "data.csv", "describe"},
			want: []string{"--db=x.db", "describe", "data.csv"},
		},
		{
			name: "boolean root flag",
			args: []string{"--no-history", "data.csv", "describe"},
			want: []string{"--no-history", "describe", "data.csv"},
		},
		{
			name: "table named like nothing",
			args: []string{"sales", "select", "a"},
			want: []string{"select", "sales", "a"},
		},
		{
			name: "no command",
			args: []string{"data.csv"},
			want: []string{"data.csv"},
		},
		{
			name: "help",
			args: []string{"help", "agg"},
			want: []string{"help", "agg"},
		},
		{
			name: "after terminator",
			args: []string{"--", "data.csv", "agg"},
			want: []string{"--", "data.csv", "agg"},
		},
		{
			name: "empty",
			args: []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HoistSource(root, tt.args))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "frame version dev"), out)
}

func TestInvalidOutputFormat(t *testing.T) {
	path := setupEnv(t)

	_, err := run(t, "--db", ":memory:", "--output-format", "xml", path, "describe")
	assert.Error(t, err)
}
