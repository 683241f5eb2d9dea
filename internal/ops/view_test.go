package ops

import (
	"context"
	"testing"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/config"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/db"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

func TestGetShallow_CurrentValuesOnly(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()
	mustCreate(t, database, "acme/api")

	if _, err := UpdateTechnical(context.Background(), database, cfg, UpdateTechnicalInput{
		Repository:  "acme/api",
		ToCommit:    "abc123",
		Sections:    map[string]string{"tech_stack": "Node 22, Postgres 16"},
		AgentReport: "upgrade",
	}); err != nil {
		t.Fatalf("UpdateTechnical failed: %v", err)
	}

	output, err := GetShallow(context.Background(), database, "acme/api")
	if err != nil {
		t.Fatalf("GetShallow failed: %v", err)
	}

	if output.Sections["tech_stack"] != "Node 22, Postgres 16" {
		t.Errorf("tech_stack = %q, want the updated value", output.Sections["tech_stack"])
	}
	if output.CurrentCommit == nil || *output.CurrentCommit != "abc123" {
		t.Errorf("CurrentCommit = %v, want abc123", output.CurrentCommit)
	}
	// Every created section is present, none carry history in this view.
	if len(output.Sections) != 5 {
		t.Errorf("Sections count = %d, want 5", len(output.Sections))
	}
}

func TestGetDeep_FullHistory(t *testing.T) {
	database := newTestDB(t)
	cfg := config.DefaultConfig()
	mustCreate(t, database, "acme/api")

	if _, err := UpdateTechnical(context.Background(), database, cfg, UpdateTechnicalInput{
		Repository:  "acme/api",
		ToCommit:    "abc123",
		Sections:    map[string]string{"tech_stack": "Node 22, Postgres 16"},
		AgentReport: "upgrade",
	}); err != nil {
		t.Fatalf("UpdateTechnical failed: %v", err)
	}

	view, err := GetDeep(context.Background(), database, "acme/api")
	if err != nil {
		t.Fatalf("GetDeep failed: %v", err)
	}

	if !view.HasSections {
		t.Error("HasSections = false, want true")
	}
	sec := view.Sections["tech_stack"]
	if len(sec.History) != 1 {
		t.Fatalf("History length = %d, want 1", len(sec.History))
	}
	// Shallow and deep agree on the current value.
	shallow, err := GetShallow(context.Background(), database, "acme/api")
	if err != nil {
		t.Fatalf("GetShallow failed: %v", err)
	}
	if shallow.Sections["tech_stack"] != sec.CurrentValue {
		t.Errorf("shallow %q != deep current %q", shallow.Sections["tech_stack"], sec.CurrentValue)
	}
	// The mirror rides along for cross-checking.
	if view.Legacy["tech_stack"] != sec.CurrentValue {
		t.Errorf("Legacy[tech_stack] = %q, want %q", view.Legacy["tech_stack"], sec.CurrentValue)
	}
}

func TestGetShallow_LegacyRowFallback(t *testing.T) {
	database := newTestDB(t)

	legacy := &summary.ProjectSummary{
		ID:            "01LEGACYROW0000000000000AB",
		Repository:    "old/repo",
		SchemaVersion: summary.SchemaV1,
		Legacy: map[string]string{
			"tech_stack": "Node 20, Postgres 15",
			"commands":   "npm test",
		},
		CreatedAt: 1000,
		UpdatedAt: 1000,
	}
	if err := db.InsertSummary(context.Background(), database, legacy); err != nil {
		t.Fatalf("InsertSummary failed: %v", err)
	}

	output, err := GetShallow(context.Background(), database, "old/repo")
	if err != nil {
		t.Fatalf("GetShallow failed: %v", err)
	}
	if output.Sections["tech_stack"] != "Node 20, Postgres 15" {
		t.Errorf("legacy fallback missing: %v", output.Sections)
	}

	view, err := GetDeep(context.Background(), database, "old/repo")
	if err != nil {
		t.Fatalf("GetDeep failed: %v", err)
	}
	if view.HasSections {
		t.Error("HasSections = true for a pure legacy row, want false")
	}
}

func TestGetShallow_NotFound(t *testing.T) {
	database := newTestDB(t)

	_, err := GetShallow(context.Background(), database, "ghost/repo")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got: %v", err)
	}
}
