// ABOUTME: CLI command to rebuild the pattern link index immediately
// ABOUTME: Useful after bulk ingestion instead of waiting for the scheduler
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

// NewRecomputeCmd creates the recompute command
func NewRecomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild pattern transfer links now",
		Long: `Rebuild the cross-technology pattern link index immediately.

The serve command recomputes links on a schedule; run this after bulk
ingestion to make transfer candidates available right away. Items
stored without an embedding are embedded first when OpenAI is
configured.`,
		RunE: runRecompute,
	}

	return cmd
}

func runRecompute(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := engine.RecomputeLinks(cmd.Context())
	if err != nil {
		return fmt.Errorf("recomputing links: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Link index rebuilt: %d link(s)\n", count)
	}

	return nil
}
