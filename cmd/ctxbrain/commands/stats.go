// ABOUTME: CLI command to show store-wide statistics
// ABOUTME: Reports item, project, profile, and link counts plus search aggregates
package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/joho/godotenv"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		Long: `Show counts of stored items by kind, registered projects, learned
profiles, and pattern links, plus retrieval analytics.

Examples:
  ctxbrain stats
  ctxbrain stats --format json`,
		RunE: runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := engine.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FIELD\tVALUE\n")
	fmt.Fprintf(w, "-----\t-----\n")
	fmt.Fprintf(w, "Items\t%d\n", stats.TotalItems)

	kinds := make([]string, 0, len(stats.ItemsByKind))
	for kind := range stats.ItemsByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "  %s\t%d\n", kind, stats.ItemsByKind[models.Kind(kind)])
	}

	fmt.Fprintf(w, "Projects\t%d\n", stats.Projects)
	fmt.Fprintf(w, "Profiles\t%d\n", stats.Profiles)
	fmt.Fprintf(w, "Pattern Links\t%d\n", stats.Links)
	if stats.Searches != nil {
		fmt.Fprintf(w, "Searches\t%d\n", stats.Searches.TotalSearches)
		if stats.Searches.TotalSearches > 0 {
			fmt.Fprintf(w, "  avg duration\t%.1fms\n", stats.Searches.AvgDurationMS)
			fmt.Fprintf(w, "  degraded\t%d\n", stats.Searches.DegradedCount)
		}
	}
	w.Flush()

	return nil
}
