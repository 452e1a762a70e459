package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SemanticThreshold != 0.80 {
		t.Errorf("SemanticThreshold = %v, want 0.80", cfg.SemanticThreshold)
	}
	if cfg.FuzzyThreshold != 80 {
		t.Errorf("FuzzyThreshold = %d, want 80", cfg.FuzzyThreshold)
	}
	if cfg.MaxWindowWords != 3 {
		t.Errorf("MaxWindowWords = %d, want 3", cfg.MaxWindowWords)
	}
	if cfg.EmbedEndpoint == "" {
		t.Error("EmbedEndpoint should have a default")
	}
	if cfg.EmbedModel == "" {
		t.Error("EmbedModel should have a default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FuzzyThreshold != 80 {
		t.Errorf("missing file should yield defaults, FuzzyThreshold = %d", cfg.FuzzyThreshold)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"semantic_threshold": 0.65, "fuzzy_threshold": 90, "embed_model": "mxbai-embed-large"}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SemanticThreshold != 0.65 {
		t.Errorf("SemanticThreshold = %v, want 0.65", cfg.SemanticThreshold)
	}
	if cfg.FuzzyThreshold != 90 {
		t.Errorf("FuzzyThreshold = %d, want 90", cfg.FuzzyThreshold)
	}
	if cfg.EmbedModel != "mxbai-embed-large" {
		t.Errorf("EmbedModel = %q, want mxbai-embed-large", cfg.EmbedModel)
	}
	// Unset fields fall back to defaults
	if cfg.MaxWindowWords != 3 {
		t.Errorf("MaxWindowWords = %d, want default 3", cfg.MaxWindowWords)
	}
	if cfg.EmbedEndpoint != "http://localhost:11434" {
		t.Errorf("EmbedEndpoint = %q, want default", cfg.EmbedEndpoint)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestMergeDisabledTools(t *testing.T) {
	base := &Config{DisabledTools: []string{"entity_align", " text_status "}}
	overlay := &Config{DisabledTools: []string{"entity_align", "annotation_submit"}}

	merged := Merge(base, overlay)

	want := []string{"entity_align", "text_status", "annotation_submit"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, s := range want {
		if merged.DisabledTools[i] != s {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], s)
		}
	}
}
