// ABOUTME: CLI command to report whether retrieved context helped
// ABOUTME: Feeds outcome scores and developer preference learning
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctxforge/ctxbrain/internal/core"
	"github.com/joho/godotenv"
)

var (
	outcomeFailure    bool
	outcomeSourceTech string
	outcomeTargetTech string
)

// NewOutcomeCmd creates the outcome command
func NewOutcomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outcome <item-id>",
		Short: "Report how a context item worked out",
		Long: `Report whether applying a context item succeeded.

Success nudges the item's outcome score and the owning developer's
preferences up; --failure nudges them down. Pass --source and --target
together to also record a cross-technology adoption attempt.

Examples:
  ctxbrain outcome ctx_20250601_120000_a1b2c3d4
  ctxbrain outcome ctx_20250601_120000_a1b2c3d4 --failure
  ctxbrain outcome ctx_20250601_120000_a1b2c3d4 --source go --target rust`,
		Args: cobra.ExactArgs(1),
		RunE: runOutcome,
	}

	cmd.Flags().BoolVar(&outcomeFailure, "failure", false, "Report a failed application instead of a success")
	cmd.Flags().StringVar(&outcomeSourceTech, "source", "", "Source technology of a transfer attempt")
	cmd.Flags().StringVar(&outcomeTargetTech, "target", "", "Target technology of a transfer attempt")
	cmd.MarkFlagsRequiredTogether("source", "target")

	return cmd
}

func runOutcome(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := engine.ReportOutcome(cmd.Context(), core.OutcomeReport{
		ItemID:           args[0],
		Success:          !outcomeFailure,
		SourceTechnology: outcomeSourceTech,
		TargetTechnology: outcomeTargetTech,
	})
	if err != nil {
		return fmt.Errorf("reporting outcome: %w", err)
	}

	if !quiet {
		label := "success"
		if outcomeFailure {
			label = "failure"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %s for %s (outcome score now %.2f)\n",
			label, result.ItemID, result.OutcomeScore)
		if verbose && result.ProfileUpdated {
			fmt.Fprintf(cmd.OutOrStdout(), "  developer profile updated\n")
		}
	}

	return nil
}
