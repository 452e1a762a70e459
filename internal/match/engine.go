package match

import (
	"context"
	"fmt"
	"log"

	"github.com/alignlab/entalign/internal/embed"
)

// Engine dispatches an alignment request to a strategy and applies its
// threshold. The embedding service is injected once at construction and
// shared read-only across requests.
type Engine struct {
	embedder          embed.Embedder
	semanticThreshold float64
	fuzzyThreshold    int
	maxWindowWords    int
}

// NewEngine creates an Engine with the given embedder and thresholds.
func NewEngine(embedder embed.Embedder, semanticThreshold float64, fuzzyThreshold, maxWindowWords int) *Engine {
	return &Engine{
		embedder:          embedder,
		semanticThreshold: semanticThreshold,
		fuzzyThreshold:    fuzzyThreshold,
		maxWindowWords:    maxWindowWords,
	}
}

// Align runs the selected strategy over the candidates. Accepted proposals
// come back in input candidate order; dropped candidates are simply absent.
// Fail-open: on any matcher error the engine logs it and returns an empty
// list with degraded=true instead of propagating, so callers can still
// serve the request.
func (e *Engine) Align(ctx context.Context, text string, candidates []string, strategy Strategy) (proposals []Proposal, degraded bool) {
	proposals, err := e.align(ctx, text, candidates, strategy)
	if err != nil {
		log.Printf("align: %s strategy failed: %v", strategy, err)
		return []Proposal{}, true
	}
	if proposals == nil {
		proposals = []Proposal{}
	}
	return proposals, false
}

func (e *Engine) align(ctx context.Context, text string, candidates []string, strategy Strategy) ([]Proposal, error) {
	switch strategy {
	case StrategySemantic:
		return Semantic(ctx, e.embedder, text, candidates, e.semanticThreshold)
	case StrategyFuzzy:
		return Fuzzy(text, candidates, e.fuzzyThreshold, e.maxWindowWords), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}
