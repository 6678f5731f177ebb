// ABOUTME: CLI command to find cross-technology transfer candidates
// ABOUTME: Ranks links by per-developer success probability when one is given
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

var (
	transferTarget    string
	transferDeveloper string
)

// NewTransferCmd creates the transfer command
func NewTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer <pattern-id>",
		Short: "Find transfer candidates for a pattern",
		Long: `Find technologies a stored pattern is believed to transfer to.

Candidates come from the periodically recomputed link index and are
ordered by success probability. With --developer, probabilities reflect
that developer's own transfer track record.

Examples:
  ctxbrain transfer ctx_20250601_120000_a1b2c3d4
  ctxbrain transfer ctx_20250601_120000_a1b2c3d4 --target rust --developer dev-7`,
		Args: cobra.ExactArgs(1),
		RunE: runTransfer,
	}

	cmd.Flags().StringVar(&transferTarget, "target", "", "Restrict candidates to one target technology")
	cmd.Flags().StringVar(&transferDeveloper, "developer", "", "Developer ID for personalized success probability")

	return cmd
}

func runTransfer(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	links, err := engine.TransferCandidates(cmd.Context(), args[0], transferTarget, transferDeveloper)
	if err != nil {
		return fmt.Errorf("finding transfer candidates: %w", err)
	}

	if len(links) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No transfer candidates found (links are recomputed hourly; try 'ctxbrain recompute')\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(links, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TARGET TECH\tPROBABILITY\tSIMILARITY\tCOST\tTARGET ITEM\n")
	fmt.Fprintf(w, "-----------\t-----------\t----------\t----\t-----------\n")

	for _, link := range links {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%s\n",
			link.TargetTechnology,
			link.SuccessProbability,
			link.Similarity,
			link.AdaptationCost,
			truncate(link.TargetItemID, 30))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d candidate(s)\n", len(links))
	}

	return nil
}
