// ABOUTME: CLI command to inspect a developer's learned preference profile
// ABOUTME: Shows technology weights, transfer stats, and flagged anti-patterns
package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

// NewProfileCmd creates the profile command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile <developer-id>",
		Short: "Show a developer's preference profile",
		Long: `Show the learned preference profile for a developer.

Profiles accumulate from stored items and outcome reports: technology
weights, per-pattern confidence, flagged anti-patterns, and
cross-technology transfer statistics. Unknown developers get a fresh
neutral profile.

Examples:
  ctxbrain profile dev-7
  ctxbrain profile dev-7 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runProfile,
	}

	return cmd
}

func runProfile(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	profile, err := engine.ProfileSummary(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting profile: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FIELD\tVALUE\n")
	fmt.Fprintf(w, "-----\t-----\n")
	fmt.Fprintf(w, "Developer\t%s\n", profile.DeveloperID)
	fmt.Fprintf(w, "Updates\t%d\n", profile.UpdateCount)
	if profile.UpdateCount > 0 {
		fmt.Fprintf(w, "Last Updated\t%s\n", formatTime(profile.UpdatedAt))
	}
	fmt.Fprintf(w, "Patterns Tracked\t%d\n", len(profile.PatternConfidence))
	fmt.Fprintf(w, "Anti-Patterns Flagged\t%d\n", len(profile.AntiPatterns))
	fmt.Fprintf(w, "Snapshots\t%d\n", len(profile.EvolutionLog))
	w.Flush()

	if len(profile.TechnologyWeights) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTechnology Weights:\n")
		techs := make([]string, 0, len(profile.TechnologyWeights))
		for tech := range profile.TechnologyWeights {
			techs = append(techs, tech)
		}
		sort.Strings(techs)
		for _, tech := range techs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %.3f\n", tech, profile.TechnologyWeights[tech].Float())
		}
	}

	if len(profile.TransferStats) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTransfer Attempts:\n")
		pairs := make([]string, 0, len(profile.TransferStats))
		for pair := range profile.TransferStats {
			pairs = append(pairs, pair)
		}
		sort.Strings(pairs)
		for _, pair := range pairs {
			stat := profile.TransferStats[pair]
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %d/%d succeeded\n", pair, stat.Successes, stat.Attempts)
		}
	}

	if verbose && len(profile.AntiPatterns) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFlagged Anti-Patterns:\n")
		ids := make([]string, 0, len(profile.AntiPatterns))
		for id := range profile.AntiPatterns {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (evidence: %d)\n", id, profile.AntiPatterns[id])
		}
	}

	return nil
}
