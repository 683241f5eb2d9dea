package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/db"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// JournalAddInput contains parameters for the JournalAdd operation.
type JournalAddInput struct {
	Repository string   // required; the summary must already exist
	Content    string   // required
	CommitRef  *string  // optional
	Tags       []string // optional
}

// JournalAddOutput contains the result of the JournalAdd operation.
type JournalAddOutput struct {
	ID         string `json:"id"`
	Repository string `json:"repository"`
	CreatedAt  int64  `json:"created_at"`
}

// JournalAdd appends a dev-journal entry for a repository. Entries are
// append-only and require the repository's summary to exist, so the journal
// can't outrun the knowledge base it annotates.
func JournalAdd(ctx context.Context, database *sql.DB, input JournalAddInput) (*JournalAddOutput, error) {
	repository := strings.TrimSpace(input.Repository)
	if repository == "" {
		return nil, errors.NewInvalidRequest("repository is required")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}

	if _, err := db.GetByRepository(ctx, database, repository); err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var tags []string
	for _, t := range input.Tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	entry := &summary.JournalEntry{
		ID:         id,
		Repository: repository,
		Content:    content,
		CommitRef:  cleanOptionalString(input.CommitRef),
		Tags:       tags,
		CreatedAt:  time.Now().Unix(),
	}

	if err := db.InsertJournalEntry(ctx, database, entry); err != nil {
		return nil, err
	}

	return &JournalAddOutput{
		ID:         entry.ID,
		Repository: entry.Repository,
		CreatedAt:  entry.CreatedAt,
	}, nil
}

// JournalListOutput contains the result of the JournalList operation.
type JournalListOutput struct {
	Entries    []summary.JournalEntry `json:"entries"`
	Pagination Pagination             `json:"pagination"`
}

// JournalList returns journal entries newest first, optionally scoped to one
// repository. An empty repository lists across all of them.
func JournalList(ctx context.Context, database *sql.DB, repository string, limit, offset int) (*JournalListOutput, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	if limit > MaxJournalLimit {
		limit = MaxJournalLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := db.ListJournalEntries(ctx, database, strings.TrimSpace(repository), limit, offset)
	if err != nil {
		return nil, err
	}

	return &JournalListOutput{
		Entries: entries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(entries) < total,
			Total:   total,
		},
	}, nil
}
