// ABOUTME: MCP tool handler implementations for the context intelligence server
// ABOUTME: Thin argument-parsing shims over the engine, with proper error handling per tool

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ctxforge/ctxbrain/internal/core"
	"github.com/ctxforge/ctxbrain/internal/models"
)

// Handlers contains the handler functions for all MCP tools.
type Handlers struct {
	engine *core.Engine
}

// StoreContext handles the store_context tool.
func (h *Handlers) StoreContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("project_id argument is required and must be a string"), nil
	}
	kind, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("kind argument is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	item, err := h.engine.Store(ctx, core.StoreRequest{
		ProjectID:      projectID,
		DeveloperID:    request.GetString("developer_id", ""),
		Kind:           kind,
		Content:        content,
		TechnologyTags: stringArray(request, "technology_tags"),
	})
	duplicate := false
	if err != nil {
		// Duplicate content resolves to the existing item; anything else fails.
		if !core.IsDuplicateContent(err) {
			return mcp.NewToolResultError(fmt.Sprintf("store failed: %v", err)), nil
		}
		duplicate = true
	}

	response := map[string]interface{}{
		"item_id":       item.ID,
		"kind":          string(item.Kind),
		"project_id":    item.ProjectID,
		"outcome_score": item.OutcomeScore.Float(),
		"embedded":      item.Embedding != nil,
		"duplicate":     duplicate,
		"created_at":    item.CreatedAt.Format(time.RFC3339),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// RetrieveContext handles the retrieve_context tool.
func (h *Handlers) RetrieveContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("project_id argument is required and must be a string"), nil
	}

	req := core.RetrieveRequest{
		Query:        request.GetString("query", ""),
		DeveloperID:  request.GetString("developer_id", ""),
		ProjectID:    projectID,
		Technologies: stringArray(request, "technologies"),
		Kinds:        stringArray(request, "kinds"),
		CrossProject: request.GetBool("cross_project", false),
		K:            request.GetInt("k", 0),
	}

	if maxUnits := request.GetInt("max_units", 0); maxUnits > 0 {
		unit := models.UnitTokens
		if s := request.GetString("unit", ""); s != "" {
			parsed, perr := models.ParseBudgetUnit(s)
			if perr != nil {
				return mcp.NewToolResultError(perr.Error()), nil
			}
			unit = parsed
		}
		req.Budget = &models.Budget{
			MaxUnits: maxUnits,
			Unit:     unit,
			Compress: request.GetBool("compress", false),
		}
	}

	fitted, err := h.engine.Retrieve(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(fitted)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ReportOutcome handles the report_outcome tool.
func (h *Handlers) ReportOutcome(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError("item_id argument is required and must be a string"), nil
	}
	success, err := request.RequireBool("success")
	if err != nil {
		return mcp.NewToolResultError("success argument is required and must be a boolean"), nil
	}

	result, err := h.engine.ReportOutcome(ctx, core.OutcomeReport{
		ItemID:           itemID,
		Success:          success,
		SourceTechnology: request.GetString("source_technology", ""),
		TargetTechnology: request.GetString("target_technology", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("outcome report failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetDeveloperProfile handles the get_developer_profile tool.
func (h *Handlers) GetDeveloperProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	developerID, err := request.RequireString("developer_id")
	if err != nil {
		return mcp.NewToolResultError("developer_id argument is required and must be a string"), nil
	}

	profile, err := h.engine.ProfileSummary(ctx, developerID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load profile: %v", err)), nil
	}

	responseJSON, err := json.Marshal(profile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// RegisterProject handles the register_project tool.
func (h *Handlers) RegisterProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required and must be a string"), nil
	}

	project, err := h.engine.RegisterProject(ctx, &models.Project{
		ID:           request.GetString("project_id", ""),
		Name:         name,
		RootPath:     request.GetString("root_path", ""),
		Technologies: stringArray(request, "technologies"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("project registration failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// FindTransferCandidates handles the find_transfer_candidates tool.
func (h *Handlers) FindTransferCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patternID, err := request.RequireString("pattern_id")
	if err != nil {
		return mcp.NewToolResultError("pattern_id argument is required and must be a string"), nil
	}

	links, err := h.engine.TransferCandidates(ctx, patternID,
		request.GetString("target_technology", ""),
		request.GetString("developer_id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("transfer lookup failed: %v", err)), nil
	}
	if links == nil {
		links = []models.PatternLink{}
	}

	response := map[string]interface{}{
		"pattern_id": patternID,
		"candidates": links,
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// stringArray pulls an optional string-array argument from the request.
func stringArray(request mcp.CallToolRequest, key string) []string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := args[key]
	if !ok {
		return nil
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
