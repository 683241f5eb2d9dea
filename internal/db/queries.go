package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/schema"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so reads can run inside
// the transaction that wraps an update.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// rowScanner is the shared surface of *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// summaryColumns lists the summaries columns in select/insert order:
// fixed head, mirror columns in vocabulary order, fixed tail.
func summaryColumns() []string {
	cols := []string{"id", "repository", "git_url", "current_commit", "schema_version", "sections_json"}
	cols = append(cols, schema.AllSectionNames()...)
	return append(cols, "created_at", "updated_at")
}

// InsertSummary stores a new project summary row, mirror columns included.
func InsertSummary(ctx context.Context, ex Execer, s *summary.ProjectSummary) error {
	sectionsJSON, err := marshalSections(s.Sections)
	if err != nil {
		return errors.NewInternal(err)
	}

	cols := summaryColumns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := "INSERT INTO summaries (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"

	args := []any{
		s.ID, s.Repository, toNullString(s.GitURL), toNullString(s.CurrentCommit),
		s.SchemaVersion, sectionsJSON,
	}
	args = append(args, mirrorArgs(s.Legacy)...)
	args = append(args, s.CreatedAt, s.UpdatedAt)

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewAlreadyExists(s.Repository)
		}
		return errors.NewInternal(err)
	}

	return nil
}

// GetByRepository retrieves the full aggregate for a repository, or NOT_FOUND.
// Never partial: sections, history, and the legacy mirror come back together.
func GetByRepository(ctx context.Context, q Querier, repository string) (*summary.ProjectSummary, error) {
	query := "SELECT " + strings.Join(summaryColumns(), ", ") + " FROM summaries WHERE repository = ?"

	row := q.QueryRowContext(ctx, query, repository)
	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(repository)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return s, nil
}

// UpdateSections writes a merged aggregate back: sections JSON, recomputed
// mirror columns, commit and timestamp, all in one statement so the mirror
// can never drift from the sections map.
func UpdateSections(ctx context.Context, ex Execer, s *summary.ProjectSummary) error {
	sectionsJSON, err := marshalSections(s.Sections)
	if err != nil {
		return errors.NewInternal(err)
	}

	var sets []string
	sets = append(sets, "sections_json = ?", "schema_version = ?", "current_commit = ?", "updated_at = ?")
	args := []any{sectionsJSON, s.SchemaVersion, toNullString(s.CurrentCommit), s.UpdatedAt}

	for _, name := range schema.AllSectionNames() {
		sets = append(sets, name+" = ?")
	}
	args = append(args, mirrorArgs(s.Legacy)...)
	args = append(args, s.ID)

	query := "UPDATE summaries SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(s.Repository)
	}

	return nil
}

// ListSummaries returns summary overviews ordered by most recent update.
func ListSummaries(ctx context.Context, database *sql.DB, limit, offset int) ([]summary.Overview, int, error) {
	var total int
	if err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM summaries").Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, repository, current_commit, schema_version, sections_json, updated_at
		FROM summaries
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := database.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []summary.Overview
	for rows.Next() {
		var (
			o             summary.Overview
			currentCommit sql.NullString
			sectionsJSON  sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Repository, &currentCommit, &o.SchemaVersion, &sectionsJSON, &o.UpdatedAt); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		o.CurrentCommit = fromNullString(currentCommit)
		if sectionsJSON.Valid && sectionsJSON.String != "" {
			var sections map[string]summary.Section
			if err := json.Unmarshal([]byte(sectionsJSON.String), &sections); err != nil {
				return nil, 0, errors.NewInternal(err)
			}
			o.SectionsCount = len(sections)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return items, total, nil
}

// StreamSummariesForExport returns all summary rows for export streaming.
// Callers must Close the rows and scan with ScanSummaryFromRows.
func StreamSummariesForExport(ctx context.Context, database *sql.DB) (*sql.Rows, error) {
	query := "SELECT " + strings.Join(summaryColumns(), ", ") + " FROM summaries ORDER BY repository"
	rows, err := database.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// ScanSummaryFromRows scans one export row into an aggregate.
func ScanSummaryFromRows(rows *sql.Rows) (*summary.ProjectSummary, error) {
	return scanSummary(rows)
}

// scanSummary scans a single row into a ProjectSummary.
func scanSummary(row rowScanner) (*summary.ProjectSummary, error) {
	var (
		s             summary.ProjectSummary
		gitURL        sql.NullString
		currentCommit sql.NullString
		sectionsJSON  sql.NullString
	)

	names := schema.AllSectionNames()
	mirror := make([]sql.NullString, len(names))

	dest := []any{&s.ID, &s.Repository, &gitURL, &currentCommit, &s.SchemaVersion, &sectionsJSON}
	for i := range mirror {
		dest = append(dest, &mirror[i])
	}
	dest = append(dest, &s.CreatedAt, &s.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	s.GitURL = fromNullString(gitURL)
	s.CurrentCommit = fromNullString(currentCommit)

	if sectionsJSON.Valid && sectionsJSON.String != "" {
		if err := json.Unmarshal([]byte(sectionsJSON.String), &s.Sections); err != nil {
			return nil, err
		}
	}

	s.Legacy = make(map[string]string)
	for i, name := range names {
		if mirror[i].Valid {
			s.Legacy[name] = mirror[i].String
		}
	}

	return &s, nil
}

// marshalSections encodes the sections map, or NULL when there is none
// (legacy rows have no sectioned data).
func marshalSections(sections map[string]summary.Section) (sql.NullString, error) {
	if len(sections) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(sections)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// mirrorArgs renders the legacy mirror values in vocabulary order,
// NULL for sections never set.
func mirrorArgs(legacy map[string]string) []any {
	names := schema.AllSectionNames()
	args := make([]any, len(names))
	for i, name := range names {
		if value, ok := legacy[name]; ok && value != "" {
			args[i] = value
		} else {
			args[i] = nil
		}
	}
	return args
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
