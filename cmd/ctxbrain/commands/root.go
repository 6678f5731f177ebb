// ABOUTME: Root CLI command wiring global flags and all subcommands
// ABOUTME: Provides the entry point used by main and the shared output settings
package commands

import (
	"github.com/spf13/cobra"
)

// Global flags shared by all subcommands
var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
 ██████╗████████╗██╗  ██╗██████╗ ██████╗  █████╗ ██╗███╗   ██╗
██╔════╝╚══██╔══╝╚██╗██╔╝██╔══██╗██╔══██╗██╔══██╗██║████╗  ██║
██║        ██║    ╚███╔╝ ██████╔╝██████╔╝███████║██║██╔██╗ ██║
██║        ██║    ██╔██╗ ██╔══██╗██╔══██╗██╔══██║██║██║╚██╗██║
╚██████╗   ██║   ██╔╝ ██╗██████╔╝██║  ██║██║  ██║██║██║ ╚████║
 ╚═════╝   ╚═╝   ╚═╝  ╚═╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctxbrain",
		Short: "Context intelligence for developer history",
		Long: banner + `
ctxbrain stores conversations, decisions, and code patterns from your
development history, learns per-developer technology preferences, and
retrieves the most relevant context for the task at hand.

Retrieval blends semantic similarity, learned preferences, recency, and
project scope, fits results into a token budget, and warns when a query
resembles a known anti-pattern.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, table, json)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewStoreCmd())
	cmd.AddCommand(NewRetrieveCmd())
	cmd.AddCommand(NewOutcomeCmd())
	cmd.AddCommand(NewProfileCmd())
	cmd.AddCommand(NewProjectCmd())
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewTransferCmd())
	cmd.AddCommand(NewRecomputeCmd())
	cmd.AddCommand(NewPurgeCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
