// ABOUTME: CLI command to retrieve ranked context for a query
// ABOUTME: Supports scope filters, budget fitting, and table or JSON output
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ctxforge/ctxbrain/internal/core"
	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/joho/godotenv"
)

var (
	retrieveProject      string
	retrieveDeveloper    string
	retrieveTechs        []string
	retrieveKinds        []string
	retrieveCrossProject bool
	retrieveK            int
	retrieveMaxUnits     int
	retrieveUnit         string
	retrieveCompress     bool
)

// NewRetrieveCmd creates the retrieve command
func NewRetrieveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrieve [query]",
		Short: "Retrieve ranked context",
		Long: `Retrieve the most relevant context items for a query.

Ranking blends semantic similarity, the developer's learned preferences,
recency, and project scope. Without a query (or without OpenAI
configured) retrieval falls back to non-semantic ranking. A budget caps
the result in tokens, chars, or items, compressing entries when --compress
is set.

Examples:
  ctxbrain retrieve --project proj_a1b2c3d4 "database connection pooling"
  ctxbrain retrieve --project proj_a1b2c3d4 --developer dev-7 --kind code_pattern "retry logic"
  ctxbrain retrieve --project proj_a1b2c3d4 --cross-project --max-units 2000 --compress "auth flow"
  ctxbrain retrieve --project proj_a1b2c3d4 --format json "error handling"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRetrieve,
	}

	cmd.Flags().StringVar(&retrieveProject, "project", "", "Project ID to search in (required)")
	cmd.Flags().StringVar(&retrieveDeveloper, "developer", "", "Developer ID for preference-aware ranking")
	cmd.Flags().StringSliceVar(&retrieveTechs, "tech", []string{}, "Filter by technology tag (can be repeated)")
	cmd.Flags().StringSliceVar(&retrieveKinds, "kind", []string{}, "Filter by item kind (can be repeated)")
	cmd.Flags().BoolVar(&retrieveCrossProject, "cross-project", false, "Include items from other projects at reduced weight")
	cmd.Flags().IntVar(&retrieveK, "limit", 10, "Maximum results to return")
	cmd.Flags().IntVar(&retrieveMaxUnits, "max-units", 0, "Budget cap (0 means unlimited)")
	cmd.Flags().StringVar(&retrieveUnit, "unit", "tokens", "Budget unit (tokens, chars, items)")
	cmd.Flags().BoolVar(&retrieveCompress, "compress", false, "Summarize oversized entries instead of skipping them")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	if err := validatePositiveInt(retrieveK, "limit"); err != nil {
		return err
	}

	var query string
	if len(args) > 0 {
		query = args[0]
	}

	req := core.RetrieveRequest{
		Query:        query,
		DeveloperID:  retrieveDeveloper,
		ProjectID:    retrieveProject,
		Technologies: retrieveTechs,
		Kinds:        retrieveKinds,
		CrossProject: retrieveCrossProject,
		K:            retrieveK,
	}

	if retrieveMaxUnits > 0 {
		unit, err := models.ParseBudgetUnit(retrieveUnit)
		if err != nil {
			return err
		}
		req.Budget = &models.Budget{
			MaxUnits: retrieveMaxUnits,
			Unit:     unit,
			Compress: retrieveCompress,
		}
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	fitted, err := engine.Retrieve(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("retrieving context: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(fitted, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if fitted.Degraded && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Note: semantic ranking unavailable, results ordered by preference and recency\n\n")
	}

	if len(fitted.Entries) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No context found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tKIND\tITEM ID\tPREVIEW\n")
	fmt.Fprintf(w, "-----\t----\t-------\t-------\n")

	for _, entry := range fitted.Entries {
		preview := entry.Content
		if entry.IsSummary {
			preview = "[summary] " + preview
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
			entry.Score,
			entry.Kind,
			truncate(entry.ItemID, 30),
			truncate(preview, 60))
	}
	w.Flush()

	for _, warning := range fitted.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "\n⚠ resembles anti-pattern %s (similarity %.2f)", warning.MatchedPatternID, warning.Similarity)
		if warning.SuggestedAlternativeID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), ", consider %s", warning.SuggestedAlternativeID)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d result(s), %d %s used\n", len(fitted.Entries), fitted.UnitsUsed, fitted.Unit)
	}

	return nil
}
