package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/errors"
	"github.com/alignlab/entalign/internal/match"
	"github.com/alignlab/entalign/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	store  *corpus.Store
	engine *match.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, store *corpus.Store, engine *match.Engine) *Handlers {
	return &Handlers{db: db, store: store, engine: engine}
}

// Request types for each tool

// AlignRequest represents the arguments for entity_align.
type AlignRequest struct {
	User     string `json:"user"`
	TextID   string `json:"text_id"`
	Category string `json:"category"`
	Strategy string `json:"strategy,omitempty"`
}

// SubmitRequest represents the arguments for annotation_submit.
type SubmitRequest struct {
	User       string              `json:"user"`
	TextID     string              `json:"text_id"`
	Text       string              `json:"text,omitempty"`
	Entities   map[string][]string `json:"entities"`
	Matched    map[string][]string `json:"matched,omitempty"`
	Unmatched  map[string][]string `json:"unmatched,omitempty"`
	Undetected map[string][]string `json:"undetected,omitempty"`
}

// ListRequest represents the arguments for annotation_list.
type ListRequest struct {
	User string `json:"user"`
}

// DeleteRequest represents the arguments for annotation_delete.
type DeleteRequest struct {
	User string `json:"user"`
	ID   string `json:"id"`
}

// CategoriesRequest represents the arguments for text_categories.
type CategoriesRequest struct {
	User   string `json:"user"`
	TextID string `json:"text_id"`
}

// StatusRequest represents the arguments for text_status.
type StatusRequest struct {
	User string `json:"user"`
}

// Handler implementations

// HandleAlign handles the entity_align tool call.
func (h *Handlers) HandleAlign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AlignRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Align(ctx, h.store, h.engine, ops.AlignInput{
		User:     input.User,
		TextID:   input.TextID,
		Category: input.Category,
		Strategy: match.Strategy(input.Strategy),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSubmit handles the annotation_submit tool call.
func (h *Handlers) HandleSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SubmitRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Submit(ctx, h.db, h.store, ops.SubmitInput{
		User:       input.User,
		TextID:     input.TextID,
		Text:       input.Text,
		Entities:   input.Entities,
		Matched:    input.Matched,
		Unmatched:  input.Unmatched,
		Undetected: input.Undetected,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the annotation_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{User: input.User})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the annotation_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{User: input.User, ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategories handles the text_categories tool call.
func (h *Handlers) HandleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoriesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Categories(ctx, h.db, h.store, ops.CategoriesInput{
		User:   input.User,
		TextID: input.TextID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus handles the text_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Status(ctx, h.db, h.store, ops.StatusInput{User: input.User})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if alignErr, ok := err.(*errors.AlignError); ok {
		errorObj := map[string]any{
			"code":    alignErr.Code,
			"message": alignErr.Message,
			"status":  alignErr.Status,
		}
		if alignErr.Code != errors.ErrInternal && alignErr.Details != nil {
			errorObj["details"] = alignErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
