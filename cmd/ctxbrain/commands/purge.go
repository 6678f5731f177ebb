// ABOUTME: CLI command to purge expired context items
// ABOUTME: Removes old items that stayed cold and unsuccessful
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

// NewPurgeCmd creates the purge command
func NewPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired context items",
		Long: `Delete context items past the retention window that were rarely
accessed and never reported successful. Items that are old but still
useful (high outcome score or frequent access) are kept.`,
		RunE: runPurge,
	}

	return cmd
}

func runPurge(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	purged, err := engine.PurgeExpired(cmd.Context())
	if err != nil {
		return fmt.Errorf("purging items: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Purged %d expired item(s)\n", purged)
	}

	return nil
}
