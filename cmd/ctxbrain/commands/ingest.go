// ABOUTME: CLI command to batch ingest raw observations from JSONL
// ABOUTME: Skips duplicate content and reports stored versus skipped counts
package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/joho/godotenv"
)

var (
	ingestProject   string
	ingestDeveloper string
	ingestSource    string
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Batch ingest observations from JSONL",
		Long: `Ingest a batch of raw observations from a JSONL file or stdin.

Each line is one observation:
  {"source":"git-log","project_id":"proj_a1b2c3d4","developer_id":"dev-7",
   "kind":"decision","content":"...","technology_tags":["go"],
   "observed_at":"2025-06-01T12:00:00Z"}

kind defaults to conversation and observed_at to now. Blank project_id,
developer_id, and source fields are filled from the flags. Content
already stored in the project is skipped, not an error.

Examples:
  ctxbrain ingest history.jsonl
  git log --format='%s' | while read line; do echo "{\"content\":\"$line\"}"; done | \
    ctxbrain ingest --project proj_a1b2c3d4 --source git-log`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestProject, "project", "", "Default project ID for observations missing one")
	cmd.Flags().StringVar(&ingestDeveloper, "developer", "", "Default developer ID for observations missing one")
	cmd.Flags().StringVar(&ingestSource, "source", "", "Default source label for observations missing one")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var reader io.Reader
	if len(args) > 0 {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening file: %w", err)
		}
		defer file.Close()
		reader = file
	} else {
		reader = cmd.InOrStdin()
	}

	observations, err := readObservations(reader)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		return fmt.Errorf("no observations to ingest")
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	stored, skipped, err := engine.Ingest(cmd.Context(), observations)
	if err != nil {
		return fmt.Errorf("ingest aborted after %d stored, %d skipped: %w", stored, skipped, err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Ingested %d observation(s), skipped %d duplicate(s)\n", stored, skipped)
	}

	return nil
}

// readObservations parses JSONL, filling blank scope fields from flags.
func readObservations(r io.Reader) ([]models.RawObservation, error) {
	var observations []models.RawObservation

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var obs models.RawObservation
		if err := json.Unmarshal([]byte(text), &obs); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}

		if obs.ProjectID == "" {
			obs.ProjectID = ingestProject
		}
		if obs.DeveloperID == "" {
			obs.DeveloperID = ingestDeveloper
		}
		if obs.Source == "" {
			obs.Source = ingestSource
		}

		observations = append(observations, obs)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return observations, nil
}
