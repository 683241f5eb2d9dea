package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/config"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
)

func TestValidatePath_RejectsTraversal(t *testing.T) {
	cfg := config.DefaultConfig()
	err := ValidatePath("../evil.jsonl", cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for traversal, got: %v", err)
	}
}

func TestValidatePath_RequiresJSONLExtension(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	err := ValidatePath(filepath.Join(tmpDir, "export.json"), cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for wrong extension, got: %v", err)
	}
}

func TestValidatePath_AllowedDirectoryOnly(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	if err := ValidatePath(filepath.Join(tmpDir, "ok.jsonl"), cfg); err != nil {
		t.Errorf("path directly in allowed dir should pass: %v", err)
	}

	// Subdirectories of an allowed dir are still rejected.
	sub := filepath.Join(tmpDir, "nested")
	if err := os.MkdirAll(sub, 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	err := ValidatePath(filepath.Join(sub, "nested.jsonl"), cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for nested path, got: %v", err)
	}

	// A directory outside the allowed set is rejected.
	other := t.TempDir()
	err = ValidatePath(filepath.Join(other, "outside.jsonl"), cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for outside path, got: %v", err)
	}
}

func TestValidatePath_UnsafeModeSkipsDirectoryChecks(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	sub := filepath.Join(tmpDir, "anywhere")
	if err := os.MkdirAll(sub, 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := ValidatePath(filepath.Join(sub, "free.jsonl"), cfg); err != nil {
		t.Errorf("unsafe mode should skip directory checks: %v", err)
	}
}

func TestValidatePath_RejectsSymlinkFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	target := filepath.Join(tmpDir, "target.jsonl")
	if err := os.WriteFile(target, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	link := filepath.Join(tmpDir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	err := ValidatePath(link, cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for symlink file, got: %v", err)
	}

	// Unsafe mode still rejects symlinks.
	cfg.AllowUnsafePaths = true
	err = ValidatePath(link, cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("unsafe mode should still reject symlinks, got: %v", err)
	}
}

func TestValidatePath_RelativeAllowedPathsIgnored(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{"relative/dir"}

	err := ValidatePath("relative/dir/export.jsonl", cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("relative allowed paths should not take effect, got: %v", err)
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme/api", "acme-api"},
		{"..secret", "secret"},
		{"a//..//b", "a-b"},
		{"", "unnamed"},
		{"---", "unnamed"},
		{"normal-name", "normal-name"},
	}
	for _, tt := range tests {
		if got := SanitizeForFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeForFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
