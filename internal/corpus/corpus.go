// Package corpus reads the JSONL candidate source: one record per text,
// with reserved keys "text_id" and "text" and arbitrary category keys
// mapping to candidate entity lists. The corpus, not the ledger, is the
// source of truth for which categories exist for a text.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Reserved record keys that are not category names.
const (
	KeyTextID = "text_id"
	KeyText   = "text"
)

// Record is one validated corpus line: a text plus its per-category
// candidate entity lists.
type Record struct {
	TextID     string
	Text       string
	Candidates map[string][]string
}

// Categories returns the record's category names, sorted for determinism.
func (r *Record) Categories() []string {
	names := make([]string, 0, len(r.Candidates))
	for name := range r.Candidates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseError describes a rejected corpus line.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Store is an in-memory corpus keyed by text_id. Loaded once at startup
// and read-only thereafter.
type Store struct {
	records map[string]*Record
	order   []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Add inserts a record. The first record for a text_id wins; later
// duplicates are ignored, matching the append-only corpus contract.
func (s *Store) Add(r *Record) {
	if _, ok := s.records[r.TextID]; ok {
		return
	}
	s.records[r.TextID] = r
	s.order = append(s.order, r.TextID)
}

// Get returns the record for a text_id, or nil if unknown.
func (s *Store) Get(textID string) *Record {
	return s.records[textID]
}

// Candidates returns the candidate list for a (text_id, category), or
// (nil, false) if the text or category is unknown.
func (s *Store) Candidates(textID, category string) ([]string, bool) {
	r := s.records[textID]
	if r == nil {
		return nil, false
	}
	entities, ok := r.Candidates[category]
	return entities, ok
}

// Categories returns the sorted category names for a text_id.
// Unknown text_ids yield an empty list.
func (s *Store) Categories(textID string) []string {
	r := s.records[textID]
	if r == nil {
		return nil
	}
	return r.Categories()
}

// TextIDs returns all text_ids in corpus order.
func (s *Store) TextIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}

// Load reads a JSONL corpus from r. Malformed lines are rejected with a
// ParseError and skipped; valid lines still load. Blank lines are ignored.
func Load(r io.Reader) (*Store, []ParseError) {
	store := NewStore()
	var parseErrors []ParseError

	scanner := bufio.NewScanner(r)
	// Texts can be long; raise the scanner limit well past the default 64K.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, err := parseLine([]byte(line))
		if err != nil {
			parseErrors = append(parseErrors, ParseError{Line: lineNum, Message: err.Error()})
			continue
		}
		store.Add(record)
	}
	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ParseError{Line: lineNum, Message: err.Error()})
	}

	return store, parseErrors
}

// LoadFile reads a JSONL corpus from a file path.
func LoadFile(path string) (*Store, []ParseError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	store, parseErrors := Load(f)
	return store, parseErrors, nil
}

// parseLine validates one corpus line against the expected schema.
// Every non-reserved key must map to a flat list of strings.
func parseLine(data []byte) (*Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}

	record := &Record{Candidates: make(map[string][]string)}

	if rawID, ok := raw[KeyTextID]; ok {
		if err := json.Unmarshal(rawID, &record.TextID); err != nil {
			return nil, fmt.Errorf("%s must be a string", KeyTextID)
		}
	}
	if record.TextID == "" {
		return nil, fmt.Errorf("%s is required", KeyTextID)
	}

	if rawText, ok := raw[KeyText]; ok {
		if err := json.Unmarshal(rawText, &record.Text); err != nil {
			return nil, fmt.Errorf("%s must be a string", KeyText)
		}
	}
	if record.Text == "" {
		return nil, fmt.Errorf("%s is required", KeyText)
	}

	for key, value := range raw {
		if key == KeyTextID || key == KeyText {
			continue
		}
		var entities []string
		if err := json.Unmarshal(value, &entities); err != nil {
			return nil, fmt.Errorf("category %q must be a flat list of strings", key)
		}
		record.Candidates[key] = entities
	}

	return record, nil
}
