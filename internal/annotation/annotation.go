// Package annotation defines the domain types for the annotation ledger:
// immutable source texts and per-user, per-category annotation records.
package annotation

import "strings"

// Text is an immutable unit of work. TextID is the externally assigned
// identifier; Body is never mutated after first persistence.
type Text struct {
	ID        string `json:"id"`
	TextID    string `json:"text_id"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
}

// Record is the durable, user-curated outcome for one (user, text, category)
// triple. Matched, Unmatched, and Undetected partition the candidate list
// (or a superset of it, when the annotator adds entities) as confirmed by
// the human annotator. At most one record exists per (user, text, category).
type Record struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	TextID     string   `json:"text_id"`
	Category   string   `json:"category"`
	Entities   []string `json:"entities"`
	Matched    []string `json:"matched"`
	Unmatched  []string `json:"unmatched"`
	Undetected []string `json:"undetected"`
	CreatedAt  int64    `json:"created_at"`
}

// CleanList trims whitespace from each entry and drops empty strings,
// preserving order. Returns nil for an all-empty input.
func CleanList(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
