package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/db"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// ShallowOutput is the size-constrained read projection of one summary.
type ShallowOutput struct {
	Repository    string            `json:"repository"`
	GitURL        *string           `json:"git_url,omitempty"`
	CurrentCommit *string           `json:"current_commit,omitempty"`
	SchemaVersion int               `json:"schema_version"`
	Sections      map[string]string `json:"sections"`
	UpdatedAt     int64             `json:"updated_at"`
}

// GetShallow returns current section values only, no history. This is the
// default read for agent context windows.
func GetShallow(ctx context.Context, database *sql.DB, repository string) (*ShallowOutput, error) {
	repository = strings.TrimSpace(repository)
	if repository == "" {
		return nil, errors.NewInvalidRequest("repository is required")
	}

	s, err := db.GetByRepository(ctx, database, repository)
	if err != nil {
		return nil, err
	}

	return &ShallowOutput{
		Repository:    s.Repository,
		GitURL:        s.GitURL,
		CurrentCommit: s.CurrentCommit,
		SchemaVersion: s.SchemaVersion,
		Sections:      summary.Shallow(s),
		UpdatedAt:     s.UpdatedAt,
	}, nil
}

// GetDeep returns the full projection with per-section history and the
// legacy mirror.
func GetDeep(ctx context.Context, database *sql.DB, repository string) (*summary.DeepView, error) {
	repository = strings.TrimSpace(repository)
	if repository == "" {
		return nil, errors.NewInvalidRequest("repository is required")
	}

	s, err := db.GetByRepository(ctx, database, repository)
	if err != nil {
		return nil, err
	}
	return summary.Deep(s), nil
}
