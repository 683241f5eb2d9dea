package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ChangeSummaryMaxChars != 280 {
		t.Errorf("ChangeSummaryMaxChars = %d, want 280", cfg.ChangeSummaryMaxChars)
	}
	if cfg.AllowUnsafePaths {
		t.Error("AllowUnsafePaths = true, want false")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChangeSummaryMaxChars != 280 {
		t.Errorf("ChangeSummaryMaxChars = %d, want default 280", cfg.ChangeSummaryMaxChars)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{"change_summary_max_chars": 120, "disabled_tools": ["summary_export"]}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChangeSummaryMaxChars != 120 {
		t.Errorf("ChangeSummaryMaxChars = %d, want 120", cfg.ChangeSummaryMaxChars)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "summary_export" {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load succeeded on invalid JSON, want error")
	}
}

func TestMerge_OverlayWins(t *testing.T) {
	base := &Config{ChangeSummaryMaxChars: 280, DBMaxOpenConns: 4}
	overlay := &Config{ChangeSummaryMaxChars: 100}

	merged := Merge(base, overlay)

	if merged.ChangeSummaryMaxChars != 100 {
		t.Errorf("ChangeSummaryMaxChars = %d, want 100", merged.ChangeSummaryMaxChars)
	}
	// Zero overlay values fall back to base.
	if merged.DBMaxOpenConns != 4 {
		t.Errorf("DBMaxOpenConns = %d, want 4", merged.DBMaxOpenConns)
	}
}

func TestMerge_ArraysDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"summary_export", "journal_add"}}
	overlay := &Config{DisabledTools: []string{"journal_add", " summary_list "}}

	merged := Merge(base, overlay)

	want := []string{"summary_export", "journal_add", "summary_list"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, name := range want {
		if merged.DisabledTools[i] != name {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], name)
		}
	}
}

func TestLoadWithRepo_RepoOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()
	nested := filepath.Join(repoRoot, "a", "b")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(repoRoot, ".tartarus"), 0700); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(`{"change_summary_max_chars": 200}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repoRoot, ".tartarus", "config.json"), []byte(`{"change_summary_max_chars": 64}`), 0600); err != nil {
		t.Fatal(err)
	}

	// Walks upward from the nested dir to find the repo config.
	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo failed: %v", err)
	}
	if cfg.ChangeSummaryMaxChars != 64 {
		t.Errorf("ChangeSummaryMaxChars = %d, want repo value 64", cfg.ChangeSummaryMaxChars)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if path := FindRepoConfig(t.TempDir()); path != "" {
		t.Errorf("FindRepoConfig = %q, want empty", path)
	}
}
