package ops

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/alignlab/entalign/internal/annotation"
	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/db"
	"github.com/alignlab/entalign/internal/errors"
)

// IngestInput contains parameters for the Ingest operation.
type IngestInput struct {
	Path string // required, JSONL corpus file
}

// IngestOutput contains the result of the Ingest operation.
type IngestOutput struct {
	Ingested int           `json:"ingested"`
	Skipped  int           `json:"skipped"`
	Errors   []IngestError `json:"errors,omitempty"`
}

// IngestError describes a corpus line that could not be ingested.
type IngestError struct {
	Line    int    `json:"line,omitempty"`
	TextID  string `json:"text_id,omitempty"`
	Message string `json:"message"`
}

// Ingest loads a JSONL corpus file and persists its texts to the ledger.
// Texts already present keep their stored body; re-running an ingest is a
// no-op for them. Malformed corpus lines are reported and skipped.
func Ingest(ctx context.Context, database *sql.DB, input IngestInput) (*IngestOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if _, err := os.Stat(input.Path); os.IsNotExist(err) {
		return nil, errors.NewNotFound(input.Path)
	}

	store, parseErrors, err := corpus.LoadFile(input.Path)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	output := &IngestOutput{}
	for _, pe := range parseErrors {
		output.Errors = append(output.Errors, IngestError{Line: pe.Line, Message: pe.Message})
		output.Skipped++
	}

	now := time.Now().UnixMilli()
	for _, textID := range store.TextIDs() {
		record := store.Get(textID)
		err := db.InsertText(ctx, database, &annotation.Text{
			ID:        NewULID(),
			TextID:    record.TextID,
			Body:      record.Text,
			CreatedAt: now,
		})
		if err == db.ErrUniqueConstraint {
			output.Skipped++
			continue
		}
		if err != nil {
			output.Errors = append(output.Errors, IngestError{TextID: record.TextID, Message: err.Error()})
			output.Skipped++
			continue
		}
		output.Ingested++
	}

	return output, nil
}
