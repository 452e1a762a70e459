// Package match implements the entity-to-text alignment engine: a span
// locator for literal occurrences, a semantic matcher over embeddings, a
// lexical fuzzy matcher over word windows, and the orchestrating Engine.
package match

// Strategy selects the matching algorithm for one request.
type Strategy string

const (
	StrategySemantic Strategy = "semantic"
	StrategyFuzzy    Strategy = "fuzzy"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategySemantic || s == StrategyFuzzy
}

// Span is a byte-offset pair locating a literal occurrence within text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Proposal is a transient match result for one candidate. Span and
// MatchedText are present only when a literal occurrence was located;
// the semantic strategy accepts candidates without one.
type Proposal struct {
	Entity      string  `json:"entity"`
	Similarity  float64 `json:"similarity"`
	Span        *Span   `json:"span,omitempty"`
	MatchedText string  `json:"matched_text,omitempty"`
}
