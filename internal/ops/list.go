package ops

import (
	"context"
	"database/sql"

	"github.com/alignlab/entalign/internal/db"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	User string
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Annotations []db.RecordWithText `json:"annotations"`
	Total       int                 `json:"total"`
}

// List returns the user's annotation records, newest first, each joined
// with its source text.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	user, err := requireUser(input.User)
	if err != nil {
		return nil, err
	}

	records, err := db.ListRecordsByUser(ctx, database, user)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []db.RecordWithText{}
	}

	return &ListOutput{Annotations: records, Total: len(records)}, nil
}
