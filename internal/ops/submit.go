package ops

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/alignlab/entalign/internal/annotation"
	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/db"
	"github.com/alignlab/entalign/internal/errors"
)

// SubmitInput contains parameters for the Submit operation. The maps are
// keyed by category; Entities carries the full entity list per category,
// and Matched/Unmatched/Undetected carry the annotator's partition of it.
type SubmitInput struct {
	User   string
	TextID string
	Text   string // body; falls back to the corpus when empty

	Entities   map[string][]string // required, at least one category
	Matched    map[string][]string
	Unmatched  map[string][]string
	Undetected map[string][]string
}

// SubmitOutput contains the result of the Submit operation.
type SubmitOutput struct {
	TextID  string         `json:"text_id"`
	Created int            `json:"created"`
	Skipped int            `json:"skipped"`
	Results []SubmitResult `json:"results"`
}

// SubmitResult reports the outcome for one category of a submission.
type SubmitResult struct {
	Category string `json:"category"`
	ID       string `json:"id,omitempty"`
	Created  bool   `json:"created"`
}

// Submit persists one annotation record per submitted category, atomically.
// The first record for a (user, text, category) triple wins; a category the
// user already annotated is skipped without error, so re-submitting is safe.
// The text row is created on first contact and its body never overwritten.
func Submit(ctx context.Context, database *sql.DB, store *corpus.Store, input SubmitInput) (*SubmitOutput, error) {
	user, err := requireUser(input.User)
	if err != nil {
		return nil, err
	}
	textID, err := requireTextID(input.TextID)
	if err != nil {
		return nil, err
	}
	if len(input.Entities) == 0 {
		return nil, errors.NewInvalidRequest("at least one category is required")
	}

	body := input.Text
	if body == "" {
		if record := store.Get(textID); record != nil {
			body = record.Text
		}
	}
	if body == "" {
		return nil, errors.NewNotFound(textID)
	}

	// Deterministic category order regardless of map iteration.
	categories := make([]string, 0, len(input.Entities))
	for category := range input.Entities {
		if category == "" {
			return nil, errors.NewInvalidRequest("category name must not be empty")
		}
		categories = append(categories, category)
	}
	sort.Strings(categories)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()

	exists, err := db.TextExists(ctx, tx, textID)
	if err != nil {
		return nil, err
	}
	if !exists {
		err := db.InsertText(ctx, tx, &annotation.Text{
			ID:        NewULID(),
			TextID:    textID,
			Body:      body,
			CreatedAt: now,
		})
		if err != nil && err != db.ErrUniqueConstraint {
			return nil, err
		}
	}

	output := &SubmitOutput{TextID: textID}
	for _, category := range categories {
		record := &annotation.Record{
			ID:         NewULID(),
			UserID:     user,
			TextID:     textID,
			Category:   category,
			Entities:   annotation.CleanList(input.Entities[category]),
			Matched:    annotation.CleanList(input.Matched[category]),
			Unmatched:  annotation.CleanList(input.Unmatched[category]),
			Undetected: annotation.CleanList(input.Undetected[category]),
			CreatedAt:  now,
		}

		err := db.InsertRecord(ctx, tx, record)
		if err == db.ErrUniqueConstraint {
			output.Skipped++
			output.Results = append(output.Results, SubmitResult{Category: category})
			continue
		}
		if err != nil {
			return nil, err
		}
		output.Created++
		output.Results = append(output.Results, SubmitResult{
			Category: category,
			ID:       record.ID,
			Created:  true,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return output, nil
}
