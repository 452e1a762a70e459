package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// SemanticThreshold is the minimum cosine similarity for the semantic
	// matcher to accept a candidate (0-1 scale).
	SemanticThreshold float64 `json:"semantic_threshold"`

	// FuzzyThreshold is the minimum edit-similarity ratio for the fuzzy
	// matcher to accept a candidate (0-100 scale).
	FuzzyThreshold int `json:"fuzzy_threshold"`

	// MaxWindowWords is the maximum word-window length the fuzzy matcher
	// slides over the text.
	MaxWindowWords int `json:"max_window_words"`

	// EmbedEndpoint is the base URL of the Ollama-compatible embedding server.
	EmbedEndpoint string `json:"embed_endpoint"`

	// EmbedModel is the embedding model name loaded by the embedding server.
	EmbedModel string `json:"embed_model"`

	// CorpusPath is the JSONL corpus file supplying texts and per-category
	// candidate entities. Relative paths resolve against the working directory.
	CorpusPath string `json:"corpus_path"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SemanticThreshold: 0.80,
		FuzzyThreshold:    80,
		MaxWindowWords:    3,
		EmbedEndpoint:     "http://localhost:11434",
		EmbedModel:        "nomic-embed-text",
		CorpusPath:        "corpus.jsonl",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.entalign.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// loadFile loads configuration from a specific file path, merged over defaults.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SemanticThreshold = overlay.SemanticThreshold
	if result.SemanticThreshold == 0 {
		result.SemanticThreshold = base.SemanticThreshold
	}

	result.FuzzyThreshold = overlay.FuzzyThreshold
	if result.FuzzyThreshold == 0 {
		result.FuzzyThreshold = base.FuzzyThreshold
	}

	result.MaxWindowWords = overlay.MaxWindowWords
	if result.MaxWindowWords == 0 {
		result.MaxWindowWords = base.MaxWindowWords
	}

	result.EmbedEndpoint = overlay.EmbedEndpoint
	if result.EmbedEndpoint == "" {
		result.EmbedEndpoint = base.EmbedEndpoint
	}

	result.EmbedModel = overlay.EmbedModel
	if result.EmbedModel == "" {
		result.EmbedModel = base.EmbedModel
	}

	result.CorpusPath = overlay.CorpusPath
	if result.CorpusPath == "" {
		result.CorpusPath = base.CorpusPath
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
