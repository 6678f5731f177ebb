// ABOUTME: Serve command starts the Model Context Protocol server
// ABOUTME: Enables LLM agents to store and retrieve context via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctxforge/ctxbrain/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs ctxbrain as an MCP (Model Context Protocol) server over stdio,
exposing context storage, ranked retrieval, outcome feedback, and
pattern transfer tools to coding agents.`,
		RunE: runServe,
		Example: `  # Start MCP server (typically called by the agent host)
  ctxbrain serve

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "ctxbrain": {
  #       "command": "ctxbrain",
  #       "args": ["serve"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runServe starts the MCP server
func runServe(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	if os.Getenv("OPENAI_API_KEY") == "" && !quiet {
		log.Println("Warning: OPENAI_API_KEY not set - semantic ranking and compression will not work")
	}

	// Background pattern link recomputation
	if err := engine.StartScheduler(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	server := mcpserver.NewMCPServer(
		"Context Intelligence Engine",
		"0.1.0",
	)

	mcp.RegisterTools(server, engine)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Printf("ctxbrain MCP server starting on stdio (db: %s)", store.Path())
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := engine.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: %v", err)
		}

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
