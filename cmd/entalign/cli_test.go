package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/db"
	"github.com/alignlab/entalign/internal/match"
	"github.com/alignlab/entalign/internal/ops"
)

const testCorpusJSONL = `{"text_id": "t1", "text": "Aspirin reduces fever and mild pain.", "drugs": ["aspirin", "ibuprofen"]}
{"text_id": "t2", "text": "Chronic kidney disease worsens over time.", "conditions": ["kidney disease"]}
`

// stubEmbedder keeps CLI tests off the network.
type stubEmbedder struct{}

func (s *stubEmbedder) Available() bool { return false }

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, stderrors.New("no embedding backend in tests")
}

// setupTestApp creates a CLI app over a temporary database and test corpus.
func setupTestApp(t *testing.T) (*sql.DB, *corpus.Store, func(args ...string) (string, error)) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, parseErrors := corpus.Load(strings.NewReader(testCorpusJSONL))
	if len(parseErrors) > 0 {
		t.Fatalf("test corpus has parse errors: %v", parseErrors)
	}

	engine := match.NewEngine(&stubEmbedder{}, 0.80, 80, 3)
	app := newCLIApp(database, nil, store, engine)

	run := func(args ...string) (string, error) {
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := app.Run(append([]string{"entalign"}, args...))

		w.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		os.Stdout = oldStdout

		return buf.String(), err
	}

	return database, store, run
}

func TestCLIIngest(t *testing.T) {
	_, _, run := setupTestApp(t)

	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	if err := os.WriteFile(path, []byte(testCorpusJSONL), 0o644); err != nil {
		t.Fatalf("failed to write corpus: %v", err)
	}

	stdout, err := run("ingest", path)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	var output ops.IngestOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}
	if output.Ingested != 2 {
		t.Errorf("Ingested = %d, want 2", output.Ingested)
	}
}

func TestCLIAlignFuzzy(t *testing.T) {
	_, _, run := setupTestApp(t)

	stdout, err := run("align", "--user=alice", "--category=drugs", "--strategy=fuzzy", "t1")
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}

	var output ops.AlignOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}
	if len(output.Proposals) != 1 || output.Proposals[0].Entity != "aspirin" {
		t.Errorf("Proposals = %+v", output.Proposals)
	}
}

func TestCLISubmitAndLifecycle(t *testing.T) {
	_, _, run := setupTestApp(t)

	// Pipe the annotation payload via stdin
	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	os.Stdin = stdinR
	go func() {
		_, _ = stdinW.WriteString(`{"text_id": "t1", "entities": {"drugs": ["aspirin"]}, "matched": {"drugs": ["aspirin"]}}`)
		stdinW.Close()
	}()

	stdout, err := run("submit", "--user=alice")
	os.Stdin = oldStdin

	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	var submitOutput ops.SubmitOutput
	if err := json.Unmarshal([]byte(stdout), &submitOutput); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}
	if submitOutput.Created != 1 {
		t.Fatalf("Created = %d, want 1", submitOutput.Created)
	}
	id := submitOutput.Results[0].ID

	// annotations
	stdout, err = run("annotations", "--user=alice")
	if err != nil {
		t.Fatalf("annotations failed: %v", err)
	}
	var listOutput ops.ListOutput
	if err := json.Unmarshal([]byte(stdout), &listOutput); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}
	if listOutput.Total != 1 {
		t.Errorf("Total = %d, want 1", listOutput.Total)
	}

	// categories
	stdout, err = run("categories", "--user=alice", "t1")
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	var catOutput ops.CategoriesOutput
	if err := json.Unmarshal([]byte(stdout), &catOutput); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}
	if !catOutput.Done {
		t.Errorf("Done = false, want true after annotating the only category")
	}

	// status
	stdout, err = run("status", "--user=alice")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	var statusOutput ops.StatusOutput
	if err := json.Unmarshal([]byte(stdout), &statusOutput); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}
	if statusOutput.DoneTexts != 1 {
		t.Errorf("DoneTexts = %d, want 1", statusOutput.DoneTexts)
	}

	// delete
	stdout, err = run("delete", "--user=alice", id)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	var deleteOutput ops.DeleteOutput
	if err := json.Unmarshal([]byte(stdout), &deleteOutput); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}
	if !deleteOutput.Deleted {
		t.Error("Deleted = false, want true")
	}
}

func TestCLIErrorHandling(t *testing.T) {
	_, _, run := setupTestApp(t)

	t.Run("align without user", func(t *testing.T) {
		_, err := run("align", "--category=drugs", "t1")
		if err == nil {
			t.Error("expected error for missing user")
		}
	})

	t.Run("delete nonexistent", func(t *testing.T) {
		_, err := run("delete", "--user=alice", "nonexistent")
		if err == nil {
			t.Error("expected error for unknown id")
		}
	})

	t.Run("ingest missing path", func(t *testing.T) {
		_, err := run("ingest")
		if err == nil {
			t.Error("expected error for missing path")
		}
	})
}

func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"no args", []string{"entalign"}, false},
		{"known subcommand", []string{"entalign", "status"}, true},
		{"serve subcommand", []string{"entalign", "serve"}, true},
		{"help flag", []string{"entalign", "--help"}, true},
		{"version flag", []string{"entalign", "-v"}, true},
		{"unknown arg", []string{"entalign", "bogus"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = oldArgs }()

			if got := isCLIMode(); got != tt.want {
				t.Errorf("isCLIMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"no args", []string{"entalign"}, false},
		{"help", []string{"entalign", "help"}, true},
		{"help flag", []string{"entalign", "--help"}, true},
		{"subcommand", []string{"entalign", "status"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = oldArgs }()

			if got := isHelpOrVersion(); got != tt.want {
				t.Errorf("isHelpOrVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}
