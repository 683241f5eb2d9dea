package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/config"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db         *sql.DB
	cfg        *config.Config
	normalizer ops.Normalizer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg, normalizer: ops.DefaultNormalizer()}
}

// Request types for each tool

// CreateRequest represents the arguments for summary_create.
type CreateRequest struct {
	Repository    string            `json:"repository"`
	GitURL        *string           `json:"git_url,omitempty"`
	CurrentCommit *string           `json:"current_commit,omitempty"`
	Sections      map[string]string `json:"sections"`
}

// UpdateTechnicalRequest represents the arguments for summary_update_technical.
type UpdateTechnicalRequest struct {
	Repository  string            `json:"repository"`
	ToCommit    string            `json:"to_commit"`
	Sections    map[string]string `json:"sections"`
	AgentReport string            `json:"agent_report,omitempty"`
}

// UpdateNarrativeRequest represents the arguments for summary_update_narrative.
type UpdateNarrativeRequest struct {
	Repository    string            `json:"repository"`
	Sections      map[string]string `json:"sections,omitempty"`
	RawReport     string            `json:"raw_report,omitempty"`
	CommitRef     *string           `json:"commit_ref,omitempty"`
	ChangeSummary string            `json:"change_summary,omitempty"`
}

// GetRequest represents the arguments for summary_get.
type GetRequest struct {
	Repository string `json:"repository"`
	Deep       bool   `json:"deep,omitempty"`
}

// ListRequest represents the arguments for summary_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ExportRequest represents the arguments for summary_export.
type ExportRequest struct {
	Path       string  `json:"path,omitempty"`
	Repository *string `json:"repository,omitempty"`
}

// JournalAddRequest represents the arguments for journal_add.
type JournalAddRequest struct {
	Repository string   `json:"repository"`
	Content    string   `json:"content"`
	CommitRef  *string  `json:"commit_ref,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// JournalListRequest represents the arguments for journal_list.
type JournalListRequest struct {
	Repository string `json:"repository,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// Handler implementations

// HandleCreate handles the summary_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Create(ctx, h.db, ops.CreateInput{
		Repository:    input.Repository,
		GitURL:        input.GitURL,
		CurrentCommit: input.CurrentCommit,
		Sections:      input.Sections,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdateTechnical handles the summary_update_technical tool call.
func (h *Handlers) HandleUpdateTechnical(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateTechnicalRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UpdateTechnical(ctx, h.db, h.cfg, ops.UpdateTechnicalInput{
		Repository:  input.Repository,
		ToCommit:    input.ToCommit,
		Sections:    input.Sections,
		AgentReport: input.AgentReport,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdateNarrative handles the summary_update_narrative tool call.
func (h *Handlers) HandleUpdateNarrative(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateNarrativeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UpdateNarrative(ctx, h.db, h.cfg, h.normalizer, ops.UpdateNarrativeInput{
		Repository:    input.Repository,
		Sections:      input.Sections,
		RawReport:     input.RawReport,
		CommitRef:     input.CommitRef,
		ChangeSummary: input.ChangeSummary,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the summary_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if input.Deep {
		result, err := ops.GetDeep(ctx, h.db, input.Repository)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(result)
	}

	result, err := ops.GetShallow(ctx, h.db, input.Repository)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the summary_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, input.Limit, input.Offset)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the summary_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:       input.Path,
		Repository: input.Repository,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleJournalAdd handles the journal_add tool call.
func (h *Handlers) HandleJournalAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[JournalAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.JournalAdd(ctx, h.db, ops.JournalAddInput{
		Repository: input.Repository,
		Content:    input.Content,
		CommitRef:  input.CommitRef,
		Tags:       input.Tags,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleJournalList handles the journal_list tool call.
func (h *Handlers) HandleJournalList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[JournalListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.JournalList(ctx, h.db, input.Repository, input.Limit, input.Offset)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult creates an MCP error result from any error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if terr, ok := err.(*errors.TartarusError); ok {
		errorObj := map[string]any{
			"code":    terr.Code,
			"message": terr.Message,
			"status":  terr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if terr.Code != errors.ErrInternal && terr.Details != nil {
			errorObj["details"] = terr.Details
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
