package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/config"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/db"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/schema"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// UpdateTechnicalInput contains parameters for the UpdateTechnical operation.
type UpdateTechnicalInput struct {
	Repository  string            // required
	ToCommit    string            // required, pins the write
	Sections    map[string]string // technical vocabulary only
	AgentReport string            // short change description, truncated to a preview
}

// UpdateTechnicalOutput contains the result of the UpdateTechnical operation.
type UpdateTechnicalOutput struct {
	Repository      string   `json:"repository"`
	FromCommit      *string  `json:"from_commit"`
	ToCommit        string   `json:"to_commit"`
	UpdatedSections []string `json:"updated_sections"`
	// TotalUpdates counts history entries appended across this call; a
	// first fill of a previously unset section contributes zero.
	TotalUpdates int `json:"total_updates"`
}

// UpdateTechnical applies a commit-pinned batch of technical section values.
// The whole batch lands in one transaction or not at all; every touched
// section pushes its old value into history, identical values included, so
// the ledger records that the value was confirmed at the new commit.
func UpdateTechnical(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateTechnicalInput) (*UpdateTechnicalOutput, error) {
	repository := strings.TrimSpace(input.Repository)
	if repository == "" {
		return nil, errors.NewInvalidRequest("repository is required")
	}
	toCommit := strings.TrimSpace(input.ToCommit)
	if toCommit == "" {
		return nil, errors.NewInvalidRequest("to_commit is required")
	}

	if err := validateVocabulary("update_technical", input.Sections, schema.Technical); err != nil {
		return nil, err
	}

	proposed := filterNonEmpty(input.Sections)
	if len(proposed) == 0 {
		return nil, errors.NewNoChanges("update_technical")
	}

	changeSummary := TruncatePreview(input.AgentReport, cfg.ChangeSummaryMaxChars)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	s, err := db.GetByRepository(ctx, tx, repository)
	if err != nil {
		return nil, err
	}

	fromCommit := s.CurrentCommit

	// A legacy flat row gets its sections seeded from the mirror first, so
	// the old flat values are superseded into history rather than dropped.
	if s.SchemaVersion < summary.SchemaV2 || s.Sections == nil {
		seeded := summary.SectionsFromLegacy(s.Legacy)
		for name, sec := range s.Sections {
			seeded[name] = sec
		}
		s.Sections = seeded
		s.SchemaVersion = summary.SchemaV2
	}

	now := time.Now().Unix()
	outcome := summary.MergeSections(s.Sections, proposed, &toCommit, changeSummary, now)

	s.CurrentCommit = &toCommit
	s.Legacy = summary.MirrorFromSections(s.Sections)
	s.UpdatedAt = now

	if err := db.UpdateSections(ctx, tx, s); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &UpdateTechnicalOutput{
		Repository:      repository,
		FromCommit:      fromCommit,
		ToCommit:        toCommit,
		UpdatedSections: outcome.Updated,
		TotalUpdates:    outcome.HistoryAppended,
	}, nil
}
