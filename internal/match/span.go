package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Locate returns the first case-insensitive, word-boundary-delimited
// occurrence of candidate as literal text. Word boundary means the match
// is not adjacent to a letter or digit, so "cell" does not match inside
// "cellular". Later duplicate occurrences are not reported.
func Locate(text, candidate string) (Span, bool) {
	if text == "" || candidate == "" {
		return Span{}, false
	}

	lowerText := strings.ToLower(text)
	lowerCand := strings.ToLower(candidate)

	for from := 0; from+len(lowerCand) <= len(lowerText); {
		idx := strings.Index(lowerText[from:], lowerCand)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(lowerCand)
		// Bounds re-check guards against case folds that change byte length.
		if end <= len(text) && wordBounded(lowerText, start, end) {
			return Span{Start: start, End: end}, true
		}
		from = start + 1
	}

	return Span{}, false
}

// wordBounded reports whether s[start:end] is not adjacent to a word rune.
func wordBounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
