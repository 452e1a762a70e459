package ops

import (
	"context"
	"testing"

	"github.com/alignlab/entalign/internal/errors"
)

func TestCategories(t *testing.T) {
	database := testDB(t)
	store := testStore(t)

	_, err := Submit(context.Background(), database, store, SubmitInput{
		User:     "alice",
		TextID:   "t1",
		Entities: map[string][]string{"drugs": {"aspirin"}},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	output, err := Categories(context.Background(), database, store, CategoriesInput{
		User:   "alice",
		TextID: "t1",
	})
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}

	if len(output.Categories) != 2 {
		t.Fatalf("Categories = %+v, want drugs and symptoms", output.Categories)
	}
	if output.Categories[0].Name != "drugs" || !output.Categories[0].Done {
		t.Errorf("Categories[0] = %+v, want drugs done", output.Categories[0])
	}
	if output.Categories[1].Name != "symptoms" || output.Categories[1].Done {
		t.Errorf("Categories[1] = %+v, want symptoms pending", output.Categories[1])
	}
	if output.Done {
		t.Error("Done = true with a pending category")
	}
}

func TestCategories_NoCategoriesTriviallyDone(t *testing.T) {
	output, err := Categories(context.Background(), testDB(t), testStore(t), CategoriesInput{
		User:   "alice",
		TextID: "t3",
	})
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if !output.Done || len(output.Categories) != 0 {
		t.Errorf("output = %+v, want trivially done", output)
	}
}

func TestCategories_UnknownText(t *testing.T) {
	_, err := Categories(context.Background(), testDB(t), testStore(t), CategoriesInput{
		User:   "alice",
		TextID: "nope",
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Categories should return ErrNotFound, got: %v", err)
	}
}

func TestStatus(t *testing.T) {
	database := testDB(t)
	store := testStore(t)

	// Fully annotate t2, partially annotate t1. t3 has no categories.
	_, err := Submit(context.Background(), database, store, SubmitInput{
		User:     "alice",
		TextID:   "t2",
		Entities: map[string][]string{"conditions": {"kidney disease"}},
	})
	if err != nil {
		t.Fatalf("Submit t2 failed: %v", err)
	}
	_, err = Submit(context.Background(), database, store, SubmitInput{
		User:     "alice",
		TextID:   "t1",
		Entities: map[string][]string{"drugs": {"aspirin"}},
	})
	if err != nil {
		t.Fatalf("Submit t1 failed: %v", err)
	}

	output, err := Status(context.Background(), database, store, StatusInput{User: "alice"})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if output.TotalTexts != 3 {
		t.Fatalf("TotalTexts = %d, want 3", output.TotalTexts)
	}
	if output.DoneTexts != 2 {
		t.Errorf("DoneTexts = %d, want t2 and the category-less t3", output.DoneTexts)
	}

	// Corpus order is preserved.
	want := []struct {
		textID    string
		total     int
		annotated int
		done      bool
	}{
		{"t1", 2, 1, false},
		{"t2", 1, 1, true},
		{"t3", 0, 0, true},
	}
	for i, w := range want {
		got := output.Texts[i]
		if got.TextID != w.textID || got.Total != w.total || got.Annotated != w.annotated || got.Done != w.done {
			t.Errorf("Texts[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestStatus_OtherUsersInvisible(t *testing.T) {
	database := testDB(t)
	store := testStore(t)

	_, err := Submit(context.Background(), database, store, SubmitInput{
		User:     "bob",
		TextID:   "t2",
		Entities: map[string][]string{"conditions": {"kidney disease"}},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	output, err := Status(context.Background(), database, store, StatusInput{User: "alice"})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	// Only t3, which has no categories, counts as done for alice.
	if output.DoneTexts != 1 {
		t.Errorf("DoneTexts = %d, want 1", output.DoneTexts)
	}
}

func TestStatus_RequiresUser(t *testing.T) {
	_, err := Status(context.Background(), testDB(t), testStore(t), StatusInput{})
	if !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("Status should return ErrUnauthenticated, got: %v", err)
	}
}
