// Package main provides the CLI entry point for frame
// Each invocation builds one SQL statement from its flags:
// 1. describe - show the schema of a file or table
// 2. select / agg - project, filter and aggregate
// 3. to / load - write the dataset to a file or a table
package main

import (
	"fmt"
	"os"

	"frame/internal/commands"
)

func main() {
	rootCmd := commands.NewRootCommand()

	// Accept "frame data.csv agg --sum a b" as well as "frame agg data.csv --sum a --sum b"
	rootCmd.SetArgs(commands.PrepareArgs(rootCmd, os.Args[1:]))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
