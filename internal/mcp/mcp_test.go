package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/config"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/db"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests
	return database, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func tier1Args() map[string]any {
	return map[string]any{
		"file_structure": "cmd/ and internal/ layout",
		"tech_stack":     "Go 1.24, SQLite",
		"patterns":       "ops layer over transactional store",
		"commands":       "make build, make test",
		"architecture":   "single binary, MCP over stdio",
	}
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	return payload
}

// mustCreateSummary stores a summary through the handler for use as a fixture.
func mustCreateSummary(t *testing.T, h *Handlers, repository string) {
	t.Helper()
	result, err := h.HandleCreate(context.Background(), makeRequest(map[string]any{
		"repository":     repository,
		"current_commit": "initial0",
		"sections":       tier1Args(),
	}))
	if err != nil {
		t.Fatalf("HandleCreate returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("setup create failed: %v", extractErrorMessage(result))
	}
}

// TestHandleCreate tests the summary_create handler.
func TestHandleCreate(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "create with all tier-1 sections",
			args: map[string]any{
				"repository": "acme/api",
				"sections":   tier1Args(),
			},
			wantError: false,
		},
		{
			name: "create without repository",
			args: map[string]any{
				"sections": tier1Args(),
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "create missing tier-1 section",
			args: map[string]any{
				"repository": "acme/web",
				"sections": map[string]any{
					"file_structure": "src/ layout",
					"tech_stack":     "TypeScript",
				},
			},
			wantError: true,
			errorCode: "VALIDATION_FAILED",
		},
		{
			name: "create unknown section name",
			args: map[string]any{
				"repository": "acme/web",
				"sections": func() map[string]any {
					args := tier1Args()
					args["banana"] = "not a section"
					return args
				}(),
			},
			wantError: true,
			errorCode: "VALIDATION_FAILED",
		},
		{
			name: "create duplicate repository",
			args: map[string]any{
				"repository": "acme/api", // already exists from first test
				"sections":   tier1Args(),
			},
			wantError: true,
			errorCode: "ALREADY_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCreate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

// TestHandleUpdateTechnical tests the summary_update_technical handler.
func TestHandleUpdateTechnical(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()
	mustCreateSummary(t, h, "acme/api")

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "commit-pinned update",
			args: map[string]any{
				"repository":   "acme/api",
				"to_commit":    "abc123",
				"sections":     map[string]any{"tech_stack": "Go 1.25, SQLite"},
				"agent_report": "toolchain bump",
			},
			wantError: false,
		},
		{
			name: "missing to_commit",
			args: map[string]any{
				"repository": "acme/api",
				"sections":   map[string]any{"tech_stack": "Go"},
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "narrative name in technical update",
			args: map[string]any{
				"repository": "acme/api",
				"to_commit":  "abc123",
				"sections":   map[string]any{"status": "wrong vocabulary"},
			},
			wantError: true,
			errorCode: "VALIDATION_FAILED",
		},
		{
			name: "empty sections",
			args: map[string]any{
				"repository": "acme/api",
				"to_commit":  "abc123",
				"sections":   map[string]any{},
			},
			wantError: true,
			errorCode: "NO_CHANGES",
		},
		{
			name: "unknown repository",
			args: map[string]any{
				"repository": "ghost/repo",
				"to_commit":  "abc123",
				"sections":   map[string]any{"tech_stack": "Go"},
			},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleUpdateTechnical(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

// TestHandleUpdateNarrative tests the summary_update_narrative handler.
func TestHandleUpdateNarrative(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()
	mustCreateSummary(t, h, "acme/api")

	result, err := h.HandleUpdateNarrative(ctx, makeRequest(map[string]any{
		"repository": "acme/api",
		"sections":   map[string]any{"summary": "Payments API."},
		"raw_report": "# Status\nBilling rewrite underway.",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got: %v", extractErrorMessage(result))
	}

	payload := decodeResult(t, result)
	updated, _ := payload["updated_sections"].([]any)
	if len(updated) != 2 {
		t.Errorf("updated_sections = %v, want summary and status", updated)
	}
}

// TestHandleGet tests the summary_get handler, both projections.
func TestHandleGet(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()
	mustCreateSummary(t, h, "acme/api")

	// Push one update so deep has history to show
	updateResult, _ := h.HandleUpdateTechnical(ctx, makeRequest(map[string]any{
		"repository":   "acme/api",
		"to_commit":    "abc123",
		"sections":     map[string]any{"tech_stack": "Go 1.25, SQLite"},
		"agent_report": "bump",
	}))
	if updateResult.IsError {
		t.Fatalf("setup update failed: %v", extractErrorMessage(updateResult))
	}

	shallowResult, err := h.HandleGet(ctx, makeRequest(map[string]any{"repository": "acme/api"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if shallowResult.IsError {
		t.Fatalf("shallow get failed: %v", extractErrorMessage(shallowResult))
	}
	shallow := decodeResult(t, shallowResult)
	sections, _ := shallow["sections"].(map[string]any)
	if sections["tech_stack"] != "Go 1.25, SQLite" {
		t.Errorf("shallow tech_stack = %v", sections["tech_stack"])
	}

	deepResult, err := h.HandleGet(ctx, makeRequest(map[string]any{"repository": "acme/api", "deep": true}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	deep := decodeResult(t, deepResult)
	if deep["has_sections"] != true {
		t.Errorf("has_sections = %v, want true", deep["has_sections"])
	}
	deepSections, _ := deep["sections"].(map[string]any)
	techStack, _ := deepSections["tech_stack"].(map[string]any)
	history, _ := techStack["history"].([]any)
	if len(history) != 1 {
		t.Errorf("deep history length = %d, want 1", len(history))
	}

	notFound, _ := h.HandleGet(ctx, makeRequest(map[string]any{"repository": "ghost/repo"}))
	if !notFound.IsError {
		t.Error("expected error for unknown repository")
	}
	assertErrorCode(t, notFound, "NOT_FOUND")
}

// TestHandleJournal tests journal_add and journal_list handlers.
func TestHandleJournal(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()
	mustCreateSummary(t, h, "acme/api")

	addResult, err := h.HandleJournalAdd(ctx, makeRequest(map[string]any{
		"repository": "acme/api",
		"content":    "Refactored the auth flow.",
		"tags":       []any{"auth"},
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if addResult.IsError {
		t.Fatalf("journal add failed: %v", extractErrorMessage(addResult))
	}

	orphan, _ := h.HandleJournalAdd(ctx, makeRequest(map[string]any{
		"repository": "ghost/repo",
		"content":    "orphan",
	}))
	assertErrorCode(t, orphan, "NOT_FOUND")

	listResult, err := h.HandleJournalList(ctx, makeRequest(map[string]any{"repository": "acme/api"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	payload := decodeResult(t, listResult)
	entries, _ := payload["entries"].([]any)
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

// TestHandleList tests the summary_list handler.
func TestHandleList(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()
	mustCreateSummary(t, h, "acme/api")
	mustCreateSummary(t, h, "acme/web")

	result, err := h.HandleList(ctx, makeRequest(map[string]any{"limit": 1}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	payload := decodeResult(t, result)
	summaries, _ := payload["summaries"].([]any)
	if len(summaries) != 1 {
		t.Errorf("summaries = %d, want 1", len(summaries))
	}
	pagination, _ := payload["pagination"].(map[string]any)
	if pagination["total"] != float64(2) {
		t.Errorf("total = %v, want 2", pagination["total"])
	}
	if pagination["has_more"] != true {
		t.Errorf("has_more = %v, want true", pagination["has_more"])
	}
}

// Registry-level tests

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"summary_get", "bogus_tool"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v, want [bogus_tool]", unknown)
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	unknown := ValidateDisabledTypes([]string{"summary", "journal", "wiki"})
	if len(unknown) != 1 || unknown[0] != "wiki" {
		t.Errorf("unknown = %v, want [wiki]", unknown)
	}
}

func TestExpandTypesToTools(t *testing.T) {
	tools := ExpandTypesToTools([]string{"journal"})
	if len(tools) != 2 {
		t.Errorf("journal type should expand to 2 tools, got %v", tools)
	}
	for _, name := range tools {
		if GetTypeForTool(name) != "journal" {
			t.Errorf("tool %q does not belong to journal type", name)
		}
	}
}

func TestNewServer_RespectsDisabledTools(t *testing.T) {
	database, cfg := testSetup(t)
	cfg.DisabledTools = []string{"summary_export"}
	cfg.DisabledTypes = []string{"journal"}

	s := NewServer(database, cfg, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}
