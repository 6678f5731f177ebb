// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Engine wiring plus formatting helpers used across subcommands
package commands

import (
	"fmt"
	"log"
	"time"

	"github.com/ctxforge/ctxbrain/internal/config"
	"github.com/ctxforge/ctxbrain/internal/core"
	"github.com/ctxforge/ctxbrain/internal/llm"
	"github.com/ctxforge/ctxbrain/internal/storage"
)

// openEngine loads configuration and wires an engine over local storage.
// The caller owns the returned storage handle and must close it.
func openEngine() (*core.Engine, *storage.Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}

	var embedder core.Embedder
	var summarizer core.Summarizer
	if cfg.OpenAIKey != "" {
		client, err := llm.NewClient(cfg)
		if err != nil {
			log.Printf("Warning: failed to initialize OpenAI client: %v", err)
		} else {
			embedder = client
			summarizer = client
			if verbose {
				log.Println("OpenAI client initialized")
			}
		}
	} else if verbose {
		log.Println("OPENAI_API_KEY not set, running in non-semantic mode")
	}

	return core.NewEngine(cfg, store, embedder, summarizer), store, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

// containsString checks if a slice contains a string
func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
