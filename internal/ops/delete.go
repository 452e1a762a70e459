package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/alignlab/entalign/internal/db"
	"github.com/alignlab/entalign/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	User string
	ID   string // annotation record ULID
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Delete removes one annotation record. Only the owning user may delete;
// a foreign record yields NOT_AUTHORIZED, an unknown one NOT_FOUND.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	user, err := requireUser(input.User)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	if err := db.DeleteRecordOwned(ctx, database, id, user); err != nil {
		return nil, err
	}

	return &DeleteOutput{ID: id, Deleted: true}, nil
}
