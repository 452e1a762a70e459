package ops

import (
	"context"
	"testing"

	"github.com/alignlab/entalign/internal/db"
	"github.com/alignlab/entalign/internal/errors"
)

func TestSubmit(t *testing.T) {
	database := testDB(t)
	store := testStore(t)

	output, err := Submit(context.Background(), database, store, SubmitInput{
		User:   "alice",
		TextID: "t1",
		Entities: map[string][]string{
			"drugs":    {"aspirin", "ibuprofen"},
			"symptoms": {"fever", "pain"},
		},
		Matched:   map[string][]string{"drugs": {"aspirin"}, "symptoms": {"fever", "pain"}},
		Unmatched: map[string][]string{"drugs": {"ibuprofen"}},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if output.Created != 2 || output.Skipped != 0 {
		t.Errorf("Created = %d, Skipped = %d, want 2, 0", output.Created, output.Skipped)
	}

	// Categories come back in sorted order regardless of map iteration.
	if output.Results[0].Category != "drugs" || output.Results[1].Category != "symptoms" {
		t.Errorf("Results = %+v, want sorted categories", output.Results)
	}
	for _, r := range output.Results {
		if !r.Created || r.ID == "" {
			t.Errorf("result %+v should be created with an id", r)
		}
	}

	// The text row is created from the corpus body on first submit.
	text, err := db.GetTextByTextID(context.Background(), database, "t1")
	if err != nil {
		t.Fatalf("GetTextByTextID failed: %v", err)
	}
	if text.Body != "Aspirin reduces fever and mild pain." {
		t.Errorf("Body = %q", text.Body)
	}
}

func TestSubmit_FirstWriteWins(t *testing.T) {
	database := testDB(t)
	store := testStore(t)

	first, err := Submit(context.Background(), database, store, SubmitInput{
		User:     "alice",
		TextID:   "t1",
		Entities: map[string][]string{"drugs": {"aspirin"}},
		Matched:  map[string][]string{"drugs": {"aspirin"}},
	})
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	second, err := Submit(context.Background(), database, store, SubmitInput{
		User:      "alice",
		TextID:    "t1",
		Entities:  map[string][]string{"drugs": {"something else"}},
		Unmatched: map[string][]string{"drugs": {"something else"}},
	})
	if err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}

	if second.Created != 0 || second.Skipped != 1 {
		t.Errorf("Created = %d, Skipped = %d, want 0, 1", second.Created, second.Skipped)
	}

	// The stored record still carries the first submission's data.
	record, err := db.GetRecordByID(context.Background(), database, first.Results[0].ID)
	if err != nil {
		t.Fatalf("GetRecordByID failed: %v", err)
	}
	if len(record.Entities) != 1 || record.Entities[0] != "aspirin" {
		t.Errorf("Entities = %v, want the first write preserved", record.Entities)
	}
}

func TestSubmit_PartialSkip(t *testing.T) {
	database := testDB(t)
	store := testStore(t)

	_, err := Submit(context.Background(), database, store, SubmitInput{
		User:     "alice",
		TextID:   "t1",
		Entities: map[string][]string{"drugs": {"aspirin"}},
	})
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	// A second submission covering an annotated and a fresh category
	// creates only the fresh one.
	output, err := Submit(context.Background(), database, store, SubmitInput{
		User:   "alice",
		TextID: "t1",
		Entities: map[string][]string{
			"drugs":    {"aspirin"},
			"symptoms": {"fever"},
		},
	})
	if err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}

	if output.Created != 1 || output.Skipped != 1 {
		t.Errorf("Created = %d, Skipped = %d, want 1, 1", output.Created, output.Skipped)
	}
}

func TestSubmit_UsersIndependent(t *testing.T) {
	database := testDB(t)
	store := testStore(t)

	for _, user := range []string{"alice", "bob"} {
		output, err := Submit(context.Background(), database, store, SubmitInput{
			User:     user,
			TextID:   "t1",
			Entities: map[string][]string{"drugs": {"aspirin"}},
		})
		if err != nil {
			t.Fatalf("Submit for %s failed: %v", user, err)
		}
		if output.Created != 1 {
			t.Errorf("Created = %d for %s, want 1", output.Created, user)
		}
	}
}

func TestSubmit_ExplicitBody(t *testing.T) {
	database := testDB(t)
	store := testStore(t)

	// A text outside the corpus can still be annotated with an explicit body.
	_, err := Submit(context.Background(), database, store, SubmitInput{
		User:     "alice",
		TextID:   "external-1",
		Text:     "An external sentence.",
		Entities: map[string][]string{"misc": {"sentence"}},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	text, err := db.GetTextByTextID(context.Background(), database, "external-1")
	if err != nil {
		t.Fatalf("GetTextByTextID failed: %v", err)
	}
	if text.Body != "An external sentence." {
		t.Errorf("Body = %q", text.Body)
	}
}

func TestSubmit_UnknownTextNoBody(t *testing.T) {
	_, err := Submit(context.Background(), testDB(t), testStore(t), SubmitInput{
		User:     "alice",
		TextID:   "nope",
		Entities: map[string][]string{"drugs": {"aspirin"}},
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Submit should return ErrNotFound, got: %v", err)
	}
}

func TestSubmit_NoCategories(t *testing.T) {
	_, err := Submit(context.Background(), testDB(t), testStore(t), SubmitInput{
		User:   "alice",
		TextID: "t1",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Submit should return ErrInvalidRequest, got: %v", err)
	}
}

func TestSubmit_RequiresUser(t *testing.T) {
	_, err := Submit(context.Background(), testDB(t), testStore(t), SubmitInput{
		TextID:   "t1",
		Entities: map[string][]string{"drugs": {"aspirin"}},
	})
	if !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("Submit should return ErrUnauthenticated, got: %v", err)
	}
}
