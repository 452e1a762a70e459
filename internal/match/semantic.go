package match

import (
	"context"

	"github.com/alignlab/entalign/internal/embed"
)

// Semantic aligns candidates by cosine similarity between the text
// embedding and each candidate embedding (embedded independently, no joint
// context). Candidates scoring at or above threshold are accepted; a
// literal span is attached when the locator finds one, but semantic
// acceptance does not require literal containment. Below-threshold
// candidates are dropped entirely.
func Semantic(ctx context.Context, embedder embed.Embedder, text string, candidates []string, threshold float64) ([]Proposal, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	textVec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	candidateVecs, err := embedAll(ctx, embedder, candidates)
	if err != nil {
		return nil, err
	}

	var proposals []Proposal
	for i, candidate := range candidates {
		similarity := embed.CosineSimilarity(textVec, candidateVecs[i])
		if similarity < threshold {
			continue
		}

		proposal := Proposal{
			Entity:     candidate,
			Similarity: similarity,
		}
		if span, ok := Locate(text, candidate); ok {
			proposal.Span = &span
			proposal.MatchedText = text[span.Start:span.End]
		}
		proposals = append(proposals, proposal)
	}

	return proposals, nil
}

// embedAll embeds every candidate, batching when the embedder supports it.
func embedAll(ctx context.Context, embedder embed.Embedder, texts []string) ([][]float32, error) {
	if batcher, ok := embedder.(embed.BatchEmbedder); ok {
		return batcher.EmbedBatch(ctx, texts)
	}

	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := embedder.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}
