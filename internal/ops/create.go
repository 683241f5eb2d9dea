package ops

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"time"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/db"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/schema"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Repository    string            // required, unique key
	GitURL        *string           // optional
	CurrentCommit *string           // optional
	Sections      map[string]string // must cover every tier-1 name, non-empty
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	Repository     string   `json:"repository"`
	SchemaVersion  int      `json:"schema_version"`
	SectionsFilled []string `json:"sections_filled"`
	SectionsCount  int      `json:"sections_count"`
	Commit         *string  `json:"commit,omitempty"`
}

// Create initializes the project summary for a repository. The tier-1 gate
// runs before anything touches the store: a rejected creation writes nothing,
// and the rejection names exactly the sections the caller must fill.
func Create(ctx context.Context, database *sql.DB, input CreateInput) (*CreateOutput, error) {
	repository := strings.TrimSpace(input.Repository)
	if repository == "" {
		return nil, errors.NewInvalidRequest("repository is required")
	}

	// Unknown names are rejected verbatim; extra technical/narrative names
	// beyond tier-1 are accepted and stored.
	var unknown []string
	for name := range input.Sections {
		if schema.Classify(name) == schema.Unknown {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, errors.NewInvalidSections("create", unknown)
	}

	provided := filterNonEmpty(input.Sections)

	var missing []string
	for _, name := range schema.Tier1Sections() {
		if provided[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingTier1(missing)
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	commit := cleanOptionalString(input.CurrentCommit)

	// Sections start with empty history: there is nothing to supersede yet.
	sections := make(map[string]summary.Section, len(provided))
	filled := make([]string, 0, len(provided))
	for name, value := range provided {
		sections[name] = summary.Section{
			CurrentValue:      value,
			LastUpdatedCommit: commit,
			LastUpdatedAt:     now,
		}
		filled = append(filled, name)
	}
	slices.Sort(filled)

	s := &summary.ProjectSummary{
		ID:            id,
		Repository:    repository,
		GitURL:        cleanOptionalString(input.GitURL),
		CurrentCommit: commit,
		SchemaVersion: summary.SchemaV2,
		Sections:      sections,
		Legacy:        summary.MirrorFromSections(sections),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := db.InsertSummary(ctx, database, s); err != nil {
		return nil, err
	}

	return &CreateOutput{
		Repository:     repository,
		SchemaVersion:  summary.SchemaV2,
		SectionsFilled: filled,
		SectionsCount:  len(filled),
		Commit:         commit,
	}, nil
}
