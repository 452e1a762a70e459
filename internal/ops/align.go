package ops

import (
	"context"

	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/errors"
	"github.com/alignlab/entalign/internal/match"
)

// AlignInput contains parameters for the Align operation.
type AlignInput struct {
	User     string
	TextID   string
	Category string
	Strategy match.Strategy // default: semantic
}

// AlignOutput contains the result of the Align operation. Proposals are
// machine suggestions only; nothing is persisted until the user submits.
type AlignOutput struct {
	TextID     string           `json:"text_id"`
	Category   string           `json:"category"`
	Strategy   match.Strategy   `json:"strategy"`
	Text       string           `json:"text"`
	Candidates []string         `json:"candidates"`
	Proposals  []match.Proposal `json:"proposals"`
	Degraded   bool             `json:"degraded"`
}

// Align runs the alignment engine over one (text, category) candidate list
// from the corpus. A matcher failure degrades to an empty proposal list
// rather than failing the operation.
func Align(ctx context.Context, store *corpus.Store, engine *match.Engine, input AlignInput) (*AlignOutput, error) {
	if _, err := requireUser(input.User); err != nil {
		return nil, err
	}
	textID, err := requireTextID(input.TextID)
	if err != nil {
		return nil, err
	}
	if input.Category == "" {
		return nil, errors.NewInvalidRequest("category is required")
	}
	if input.Strategy == "" {
		input.Strategy = match.StrategySemantic
	}
	if !input.Strategy.Valid() {
		return nil, errors.NewInvalidRequest("strategy must be one of: semantic, fuzzy")
	}

	record := store.Get(textID)
	if record == nil {
		return nil, errors.NewNotFound(textID)
	}
	candidates, ok := store.Candidates(textID, input.Category)
	if !ok {
		return nil, errors.NewNotFound(input.Category)
	}

	proposals, degraded := engine.Align(ctx, record.Text, candidates, input.Strategy)

	if candidates == nil {
		candidates = []string{}
	}
	return &AlignOutput{
		TextID:     textID,
		Category:   input.Category,
		Strategy:   input.Strategy,
		Text:       record.Text,
		Candidates: candidates,
		Proposals:  proposals,
		Degraded:   degraded,
	}, nil
}
