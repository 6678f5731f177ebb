// ABOUTME: Main entry point for the ctxbrain MCP server with stdio transport
// ABOUTME: Wires storage, the LLM client, and the engine, and runs the link recompute scheduler

package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ctxforge/ctxbrain/internal/config"
	"github.com/ctxforge/ctxbrain/internal/core"
	"github.com/ctxforge/ctxbrain/internal/llm"
	"github.com/ctxforge/ctxbrain/internal/mcp"
	"github.com/ctxforge/ctxbrain/internal/storage"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Without an API key the engine still serves, ranking non-semantically.
	var embedder core.Embedder
	var summarizer core.Summarizer
	if cfg.OpenAIKey != "" {
		client, err := llm.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize OpenAI client: %v", err)
		}
		embedder = client
		summarizer = client
	} else {
		log.Println("Warning: OPENAI_API_KEY not set - embeddings and compression will not work")
	}

	engine := core.NewEngine(cfg, store, embedder, summarizer)
	if err := engine.StartScheduler(); err != nil {
		log.Fatalf("Failed to start link recompute scheduler: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := engine.Shutdown(ctx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	server := mcpserver.NewMCPServer(
		"Context Intelligence Engine",
		"0.1.0",
	)
	mcp.RegisterTools(server, engine)

	log.Printf("ctxbrain MCP server starting on stdio (db: %s)...", store.Path())
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
