// ABOUTME: MCP tool definitions and registration for the context intelligence server
// ABOUTME: Defines JSON schemas for all 6 tools exposed over stdio

package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ctxforge/ctxbrain/internal/core"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(server *mcpserver.MCPServer, engine *core.Engine) *Handlers {
	handlers := &Handlers{engine: engine}

	// 1. store_context - Persist one unit of developer history
	server.AddTool(mcp.Tool{
		Name:        "store_context",
		Description: "Store a context item (conversation, decision, code pattern, or anti-pattern) into a registered project. Storing identical content twice returns the existing item.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Registered project the item belongs to",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Item kind: conversation, decision, code_pattern, or anti_pattern",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "The context content to store",
				},
				"developer_id": map[string]interface{}{
					"type":        "string",
					"description": "Developer who produced the item (drives preference learning)",
				},
				"technology_tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Technologies the item concerns (e.g., 'go', 'react')",
				},
			},
			Required: []string{"project_id", "kind", "content"},
		},
	}, handlers.StoreContext)

	// 2. retrieve_context - Ranked retrieval fitted to an optional budget
	server.AddTool(mcp.Tool{
		Name:        "retrieve_context",
		Description: "Retrieve the most relevant context for a query, ranked by semantic similarity, developer preference, recency, and project scope. Includes anti-pattern warnings.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Anchor project for scope scoring",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query; empty retrieves by non-semantic factors only",
				},
				"developer_id": map[string]interface{}{
					"type":        "string",
					"description": "Developer whose preferences shape the ranking",
				},
				"technologies": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Restrict results to items tagged with any of these technologies",
				},
				"kinds": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Restrict results to these item kinds",
				},
				"cross_project": map[string]interface{}{
					"type":        "boolean",
					"description": "Include items from other projects (discounted by scope)",
				},
				"k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 10)",
				},
				"max_units": map[string]interface{}{
					"type":        "number",
					"description": "Size budget for the assembled context; omit for no budget",
				},
				"unit": map[string]interface{}{
					"type":        "string",
					"description": "Budget unit: tokens, chars, or items (default: tokens)",
				},
				"compress": map[string]interface{}{
					"type":        "boolean",
					"description": "Summarize oversized items into leftover budget instead of skipping them",
				},
			},
			Required: []string{"project_id"},
		},
	}, handlers.RetrieveContext)

	// 3. report_outcome - Feedback on a previously retrieved item
	server.AddTool(mcp.Tool{
		Name:        "report_outcome",
		Description: "Report whether applying a context item worked out. Adjusts the item's outcome score and the owning developer's preference profile.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": map[string]interface{}{
					"type":        "string",
					"description": "The context item the feedback concerns",
				},
				"success": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether applying the item succeeded",
				},
				"source_technology": map[string]interface{}{
					"type":        "string",
					"description": "Set together with target_technology to record a cross-technology transfer attempt",
				},
				"target_technology": map[string]interface{}{
					"type":        "string",
					"description": "Technology the item was adapted to",
				},
			},
			Required: []string{"item_id", "success"},
		},
	}, handlers.ReportOutcome)

	// 4. get_developer_profile - Learned preference profile
	server.AddTool(mcp.Tool{
		Name:        "get_developer_profile",
		Description: "Get a developer's learned preference profile: technology weights, pattern confidence, flagged anti-patterns, transfer stats, and the evolution log.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"developer_id": map[string]interface{}{
					"type":        "string",
					"description": "Developer to look up; unknown developers read as neutral",
				},
			},
			Required: []string{"developer_id"},
		},
	}, handlers.GetDeveloperProfile)

	// 5. register_project - Project scope registration
	server.AddTool(mcp.Tool{
		Name:        "register_project",
		Description: "Register (or refresh) a project scope. Technologies are detected from marker files under root_path when not provided.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Human-readable project name",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable project identifier; generated when omitted",
				},
				"root_path": map[string]interface{}{
					"type":        "string",
					"description": "Filesystem root of the project, used for technology detection",
				},
				"technologies": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Explicit technology list; skips detection",
				},
			},
			Required: []string{"name"},
		},
	}, handlers.RegisterProject)

	// 6. find_transfer_candidates - Cross-technology pattern reuse
	server.AddTool(mcp.Tool{
		Name:        "find_transfer_candidates",
		Description: "Find cross-technology reuse candidates for a stored pattern, ordered by success probability for the given developer.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pattern_id": map[string]interface{}{
					"type":        "string",
					"description": "The code_pattern or anti_pattern item to transfer",
				},
				"target_technology": map[string]interface{}{
					"type":        "string",
					"description": "Restrict candidates to one target technology",
				},
				"developer_id": map[string]interface{}{
					"type":        "string",
					"description": "Developer whose adoption history personalizes the probabilities",
				},
			},
			Required: []string{"pattern_id"},
		},
	}, handlers.FindTransferCandidates)

	return handlers
}
