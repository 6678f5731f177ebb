// ABOUTME: Main entry point for the ctxbrain CLI application
// ABOUTME: Delegates to the commands package for all subcommand handling
package main

import (
	"fmt"
	"os"

	"github.com/ctxforge/ctxbrain/cmd/ctxbrain/commands"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
