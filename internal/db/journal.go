package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// InsertJournalEntry stores a new journal entry. Entries are append-only;
// there is no update or delete path.
func InsertJournalEntry(ctx context.Context, ex Execer, e *summary.JournalEntry) error {
	var tagsJSON sql.NullString
	if len(e.Tags) > 0 {
		data, err := json.Marshal(e.Tags)
		if err != nil {
			return errors.NewInternal(err)
		}
		tagsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO journal_entries (id, repository, content, commit_ref, tags_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := ex.ExecContext(ctx, query,
		e.ID, e.Repository, e.Content, toNullString(e.CommitRef), tagsJSON, e.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// ListJournalEntries returns entries newest first, optionally filtered to a
// repository, with the total count for pagination.
func ListJournalEntries(ctx context.Context, database *sql.DB, repository string, limit, offset int) ([]summary.JournalEntry, int, error) {
	countQuery := "SELECT COUNT(*) FROM journal_entries"
	listQuery := `
		SELECT id, repository, content, commit_ref, tags_json, created_at
		FROM journal_entries
	`
	var countArgs, listArgs []any
	if repository != "" {
		countQuery += " WHERE repository = ?"
		listQuery += " WHERE repository = ?"
		countArgs = append(countArgs, repository)
		listArgs = append(listArgs, repository)
	}
	listQuery += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	listArgs = append(listArgs, limit, offset)

	var total int
	if err := database.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := database.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []summary.JournalEntry
	for rows.Next() {
		var (
			e         summary.JournalEntry
			commitRef sql.NullString
			tagsJSON  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Repository, &e.Content, &commitRef, &tagsJSON, &e.CreatedAt); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		e.CommitRef = fromNullString(commitRef)
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &e.Tags); err != nil {
				return nil, 0, errors.NewInternal(err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return entries, total, nil
}

// StreamJournalForExport returns a rows cursor over journal entries, oldest
// first, optionally filtered to a repository. Caller must Close the rows.
func StreamJournalForExport(ctx context.Context, database *sql.DB, repository *string) (*sql.Rows, error) {
	query := `
		SELECT id, repository, content, commit_ref, tags_json, created_at
		FROM journal_entries
	`
	var args []any
	if repository != nil && *repository != "" {
		query += " WHERE repository = ?"
		args = append(args, *repository)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// ScanJournalFromRows scans one journal entry from a rows cursor positioned
// by Next.
func ScanJournalFromRows(rows *sql.Rows) (*summary.JournalEntry, error) {
	var (
		e         summary.JournalEntry
		commitRef sql.NullString
		tagsJSON  sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.Repository, &e.Content, &commitRef, &tagsJSON, &e.CreatedAt); err != nil {
		return nil, errors.NewInternal(err)
	}
	e.CommitRef = fromNullString(commitRef)
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &e.Tags); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	return &e, nil
}
