package ops

import (
	"context"
	"database/sql"

	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/db"
	"github.com/alignlab/entalign/internal/errors"
)

// CategoriesInput contains parameters for the Categories operation.
type CategoriesInput struct {
	User   string
	TextID string
}

// CategoryStatus reports one category of a text and whether the user has
// annotated it.
type CategoryStatus struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// CategoriesOutput contains the result of the Categories operation.
type CategoriesOutput struct {
	TextID     string           `json:"text_id"`
	Categories []CategoryStatus `json:"categories"`
	Done       bool             `json:"done"`
}

// Categories reports the user's per-category progress on one text. The
// corpus, not the ledger, decides which categories a text has; a text with
// no categories is trivially done.
func Categories(ctx context.Context, database *sql.DB, store *corpus.Store, input CategoriesInput) (*CategoriesOutput, error) {
	user, err := requireUser(input.User)
	if err != nil {
		return nil, err
	}
	textID, err := requireTextID(input.TextID)
	if err != nil {
		return nil, err
	}

	record := store.Get(textID)
	if record == nil {
		return nil, errors.NewNotFound(textID)
	}

	annotated, err := db.AnnotatedCategories(ctx, database, user, textID)
	if err != nil {
		return nil, err
	}

	output := &CategoriesOutput{TextID: textID, Done: true}
	for _, name := range record.Categories() {
		done := annotated[name]
		if !done {
			output.Done = false
		}
		output.Categories = append(output.Categories, CategoryStatus{Name: name, Done: done})
	}
	if output.Categories == nil {
		output.Categories = []CategoryStatus{}
	}

	return output, nil
}

// StatusInput contains parameters for the Status operation.
type StatusInput struct {
	User string
}

// TextStatus reports one corpus text's annotation progress for a user.
type TextStatus struct {
	TextID    string `json:"text_id"`
	Total     int    `json:"total"`
	Annotated int    `json:"annotated"`
	Done      bool   `json:"done"`
}

// StatusOutput contains the result of the Status operation.
type StatusOutput struct {
	Texts      []TextStatus `json:"texts"`
	TotalTexts int          `json:"total_texts"`
	DoneTexts  int          `json:"done_texts"`
}

// Status aggregates the user's progress across the whole corpus, in corpus
// order. A text counts as done when every one of its categories has a
// record from this user.
func Status(ctx context.Context, database *sql.DB, store *corpus.Store, input StatusInput) (*StatusOutput, error) {
	user, err := requireUser(input.User)
	if err != nil {
		return nil, err
	}

	pairs, err := db.AnnotatedPairs(ctx, database, user)
	if err != nil {
		return nil, err
	}

	output := &StatusOutput{Texts: []TextStatus{}}
	for _, textID := range store.TextIDs() {
		record := store.Get(textID)
		annotated := 0
		for _, name := range record.Categories() {
			if pairs[textID][name] {
				annotated++
			}
		}

		status := TextStatus{
			TextID:    textID,
			Total:     len(record.Candidates),
			Annotated: annotated,
			Done:      annotated == len(record.Candidates),
		}
		output.Texts = append(output.Texts, status)
		output.TotalTexts++
		if status.Done {
			output.DoneTexts++
		}
	}

	return output, nil
}
