package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/config"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/db"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path       string  // optional, default: ~/.tartarus/exports/<repository>-<timestamp>.jsonl
	Repository *string // optional filter by repository
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path         string `json:"path"`
	SummaryCount int    `json:"summary_count"`
	JournalCount int    `json:"journal_count"`
	ExportedAt   int64  `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL export file.
type ExportHeader struct {
	TartarusExport bool   `json:"_tartarus_export"`
	SchemaVersion  string `json:"schema_version"`
	ExportedAt     int64  `json:"exported_at"`
}

// exportRecord is one data line of a JSONL export. Kind discriminates
// summary records from journal records.
type exportRecord struct {
	Kind    string                `json:"kind"`
	Summary *summaryExportRecord  `json:"summary,omitempty"`
	Journal *summary.JournalEntry `json:"journal,omitempty"`
}

// summaryExportRecord is the portable form of a project summary: sectioned
// data with full history. The legacy mirror is omitted since it is derivable.
type summaryExportRecord struct {
	ID            string                     `json:"id"`
	Repository    string                     `json:"repository"`
	GitURL        *string                    `json:"git_url,omitempty"`
	CurrentCommit *string                    `json:"current_commit,omitempty"`
	SchemaVersion int                        `json:"schema_version"`
	Sections      map[string]summary.Section `json:"sections,omitempty"`
	Legacy        map[string]string          `json:"legacy,omitempty"`
	CreatedAt     int64                      `json:"created_at"`
	UpdatedAt     int64                      `json:"updated_at"`
}

// Export writes summaries and journal entries to a JSONL file. The file is
// written to a temp path and renamed into place, so a failed export never
// clobbers an existing file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(input.Repository, now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too: a hostile repository name must not
	// steer the file out of the exports directory.
	if err := ValidatePath(exportPath, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	writeLine := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return errors.NewInternal(err)
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return errors.NewInternal(err)
		}
		return nil
	}

	header := ExportHeader{
		TartarusExport: true,
		SchemaVersion:  "2.0",
		ExportedAt:     exportedAt,
	}
	if err := writeLine(header); err != nil {
		return nil, err
	}

	filterRepo := ""
	if input.Repository != nil {
		filterRepo = *input.Repository
	}

	summaryCount := 0
	rows, err := db.StreamSummariesForExport(ctx, database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("export")
		default:
		}

		s, err := db.ScanSummaryFromRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if filterRepo != "" && s.Repository != filterRepo {
			continue
		}

		record := exportRecord{
			Kind: "summary",
			Summary: &summaryExportRecord{
				ID:            s.ID,
				Repository:    s.Repository,
				GitURL:        s.GitURL,
				CurrentCommit: s.CurrentCommit,
				SchemaVersion: s.SchemaVersion,
				Sections:      s.Sections,
				Legacy:        s.Legacy,
				CreatedAt:     s.CreatedAt,
				UpdatedAt:     s.UpdatedAt,
			},
		}
		if err := writeLine(record); err != nil {
			return nil, err
		}
		summaryCount++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	journalCount := 0
	jrows, err := db.StreamJournalForExport(ctx, database, input.Repository)
	if err != nil {
		return nil, err
	}
	defer jrows.Close()
	for jrows.Next() {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("export")
		default:
		}

		e, err := db.ScanJournalFromRows(jrows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := writeLine(exportRecord{Kind: "journal", Journal: e}); err != nil {
			return nil, err
		}
		journalCount++
	}
	if err := jrows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:         exportPath,
		SummaryCount: summaryCount,
		JournalCount: journalCount,
		ExportedAt:   exportedAt,
	}, nil
}

// defaultExportPath generates the default export path.
// Format: ~/.tartarus/exports/<repository>-<timestamp>.jsonl or all-<timestamp>.jsonl
func defaultExportPath(repository *string, now time.Time) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}

	timestamp := now.Format("2006-01-02T150405")
	name := "all"
	if repository != nil && *repository != "" {
		name = SanitizeForFilename(*repository)
	}

	filename := fmt.Sprintf("%s-%s.jsonl", name, timestamp)
	return filepath.Join(homeDir, ".tartarus", "exports", filename), nil
}
