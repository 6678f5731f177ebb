// ABOUTME: CLI command to store a context item
// ABOUTME: Accepts content from argument, file, or stdin with scope flags
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctxforge/ctxbrain/internal/core"
	"github.com/joho/godotenv"
)

var (
	storeProject   string
	storeDeveloper string
	storeKind      string
	storeTags      []string
	storeFile      string
)

// NewStoreCmd creates the store command
func NewStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store [content]",
		Short: "Store a context item",
		Long: `Store a conversation, decision, or code pattern as a context item.

Content comes from the argument, --file, or stdin. The item is embedded
for semantic retrieval when OpenAI is configured; identical content in
the same project is detected and not stored twice.

Examples:
  ctxbrain store --project proj_a1b2c3d4 "Chose pgx over database/sql for batch performance"
  ctxbrain store --project proj_a1b2c3d4 --kind code_pattern --tag go --tag grpc --file snippet.md
  cat decision.md | ctxbrain store --project proj_a1b2c3d4 --kind decision --developer dev-7`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStore,
	}

	cmd.Flags().StringVar(&storeProject, "project", "", "Project ID the item belongs to (required)")
	cmd.Flags().StringVar(&storeDeveloper, "developer", "", "Developer ID credited with the item")
	cmd.Flags().StringVar(&storeKind, "kind", "conversation", "Item kind (conversation, decision, code_pattern, anti_pattern)")
	cmd.Flags().StringSliceVar(&storeTags, "tag", []string{}, "Technology tag (can be repeated)")
	cmd.Flags().StringVar(&storeFile, "file", "", "Read content from file")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runStore(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var content string
	switch {
	case storeFile != "":
		data, err := os.ReadFile(storeFile)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		content = string(data)
	case len(args) > 0:
		content = args[0]
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		content = string(data)
	}

	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("no content provided (pass an argument, --file, or pipe to stdin)")
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	item, err := engine.Store(cmd.Context(), core.StoreRequest{
		ProjectID:      storeProject,
		DeveloperID:    storeDeveloper,
		Kind:           storeKind,
		Content:        content,
		TechnologyTags: storeTags,
	})
	if err != nil {
		if core.IsDuplicateContent(err) {
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Content already stored as %s\n", item.ID)
			}
			return nil
		}
		return fmt.Errorf("storing context: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored %s (%s)\n", item.ID, item.Kind)
		if verbose {
			if len(item.Embedding) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  embedded with %d dimensions\n", len(item.Embedding))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "  stored without embedding (non-semantic ranking only)\n")
			}
			if len(item.TechnologyTags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  tags: %s\n", strings.Join(item.TechnologyTags, ", "))
			}
		}
	}

	return nil
}
