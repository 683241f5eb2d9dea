package ops

import (
	"context"
	"database/sql"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/db"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Summaries  []summary.Overview `json:"summaries"`
	Pagination Pagination         `json:"pagination"`
}

// List returns summary overviews, newest update first.
func List(ctx context.Context, database *sql.DB, limit, offset int) (*ListOutput, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	overviews, total, err := db.ListSummaries(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Summaries: overviews,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(overviews) < total,
			Total:   total,
		},
	}, nil
}
