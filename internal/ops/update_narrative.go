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

// UpdateNarrativeInput contains parameters for the UpdateNarrative operation.
type UpdateNarrativeInput struct {
	Repository    string            // required
	Sections      map[string]string // narrative vocabulary only, win over RawReport
	RawReport     string            // optional free-form report, normalized into gaps
	CommitRef     *string           // optional; narrative writes need no commit pin
	ChangeSummary string            // short change description for history entries
}

// UpdateNarrativeOutput contains the result of the UpdateNarrative operation.
type UpdateNarrativeOutput struct {
	Repository      string   `json:"repository"`
	UpdatedSections []string `json:"updated_sections"`
	// TotalUpdates counts history entries appended across this call; a
	// first fill of a previously unset section contributes zero.
	TotalUpdates int `json:"total_updates"`
}

// UpdateNarrative applies narrative section values. Directly provided values
// always win; when a raw report is supplied, the normalizer fills only the
// sections the caller left out. Section names outside the narrative
// vocabulary coming from the caller are rejected; unknown names coming from
// the normalizer are dropped silently, since the caller never wrote them.
func UpdateNarrative(ctx context.Context, database *sql.DB, cfg *config.Config, normalizer Normalizer, input UpdateNarrativeInput) (*UpdateNarrativeOutput, error) {
	repository := strings.TrimSpace(input.Repository)
	if repository == "" {
		return nil, errors.NewInvalidRequest("repository is required")
	}

	if err := validateVocabulary("update_narrative", input.Sections, schema.Narrative); err != nil {
		return nil, err
	}

	direct := filterNonEmpty(input.Sections)
	rawReport := strings.TrimSpace(input.RawReport)
	if len(direct) == 0 && rawReport == "" {
		return nil, errors.NewNoChanges("update_narrative")
	}

	changeSummary := TruncatePreview(input.ChangeSummary, cfg.ChangeSummaryMaxChars)
	commitRef := cleanOptionalString(input.CommitRef)
	if normalizer == nil {
		normalizer = DefaultNormalizer()
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	s, err := db.GetByRepository(ctx, tx, repository)
	if err != nil {
		return nil, err
	}

	proposed := direct
	if rawReport != "" {
		recent, _, jerr := db.ListJournalEntries(ctx, database, repository, recentJournalLimit, 0)
		if jerr != nil {
			recent = nil
		}
		extracted, nerr := normalizer.Normalize(ctx, rawReport, s, recent)
		if nerr != nil {
			return nil, errors.NewInternal(nerr)
		}
		for name, value := range filterNonEmpty(extracted) {
			if schema.Classify(name) != schema.Narrative {
				continue
			}
			if _, taken := proposed[name]; !taken {
				proposed[name] = value
			}
		}
	}

	if len(proposed) == 0 {
		return nil, errors.NewNoChanges("update_narrative")
	}

	if s.SchemaVersion < summary.SchemaV2 || s.Sections == nil {
		seeded := summary.SectionsFromLegacy(s.Legacy)
		for name, sec := range s.Sections {
			seeded[name] = sec
		}
		s.Sections = seeded
		s.SchemaVersion = summary.SchemaV2
	}

	now := time.Now().Unix()
	outcome := summary.MergeSections(s.Sections, proposed, commitRef, changeSummary, now)

	if commitRef != nil {
		s.CurrentCommit = commitRef
	}
	s.Legacy = summary.MirrorFromSections(s.Sections)
	s.UpdatedAt = now

	if err := db.UpdateSections(ctx, tx, s); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &UpdateNarrativeOutput{
		Repository:      repository,
		UpdatedSections: outcome.Updated,
		TotalUpdates:    outcome.HistoryAppended,
	}, nil
}
