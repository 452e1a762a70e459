package match

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Fuzzy aligns candidates lexically. Each candidate is tried as an exact
// word-bounded occurrence first (similarity 1.0); otherwise every
// contiguous word window of length 1..maxWindow is scored with a
// normalized edit-similarity ratio and the candidate is accepted if the
// best ratio meets threshold (0-100 scale). Ties go to the
// earliest-starting, shortest window. Candidates with no window at or
// above threshold are dropped: fuzzy matching never reports a match
// without a located span.
func Fuzzy(text string, candidates []string, threshold, maxWindow int) []Proposal {
	words := splitWords(text)
	lowerText := strings.ToLower(text)

	var proposals []Proposal
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}

		if span, ok := Locate(text, candidate); ok {
			proposals = append(proposals, Proposal{
				Entity:      candidate,
				Similarity:  1.0,
				Span:        &span,
				MatchedText: text[span.Start:span.End],
			})
			continue
		}

		lowerCand := strings.ToLower(candidate)
		best := -1
		bestWindow := ""
		for i := range words {
			for n := 1; n <= maxWindow && i+n <= len(words); n++ {
				window := text[words[i].start:words[i+n-1].end]
				r := ratio(lowerCand, strings.ToLower(window))
				// Strict comparison keeps the first of tied windows.
				if r > best {
					best = r
					bestWindow = window
				}
			}
		}

		if best < threshold || bestWindow == "" {
			continue
		}

		// Span is the first plain substring occurrence of the winning
		// window, not word-boundary constrained.
		idx := strings.Index(lowerText, strings.ToLower(bestWindow))
		if idx < 0 || idx+len(bestWindow) > len(text) {
			continue
		}
		span := Span{Start: idx, End: idx + len(bestWindow)}
		proposals = append(proposals, Proposal{
			Entity:      candidate,
			Similarity:  float64(best) / 100.0,
			Span:        &span,
			MatchedText: text[span.Start:span.End],
		})
	}

	return proposals
}

// ratio is the normalized edit-similarity between two strings on a 0-100
// scale: 100 for equal strings, 0 for a full-length rewrite.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100.0 * (1.0 - float64(dist)/float64(longest))))
}

// wordSpan marks a whitespace-delimited word's byte offsets in the text.
type wordSpan struct {
	start int
	end   int
}

// splitWords returns the byte offsets of every whitespace-delimited word.
func splitWords(text string) []wordSpan {
	var words []wordSpan
	inWord := false
	start := 0
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord {
				words = append(words, wordSpan{start: start, end: i})
				inWord = false
			}
			continue
		}
		if !inWord {
			start = i
			inWord = true
		}
	}
	if inWord {
		words = append(words, wordSpan{start: start, end: len(text)})
	}
	return words
}
