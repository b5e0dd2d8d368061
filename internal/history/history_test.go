package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := Open(filepath.Join(t.TempDir(), "history.db"))
	if !store.Available() {
		t.Fatal("store should open in a temp directory")
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndRecords(t *testing.T) {
	store := newTestStore(t)

	records := []Record{
		{Timestamp: time.Now().Add(-2 * time.Minute), Session: "s1", Prompt: "first question", Model: "fast", Success: true, DurationMS: 1200},
		{Timestamp: time.Now().Add(-1 * time.Minute), Session: "s1", Prompt: "second question", Model: "fast", Success: false, DurationMS: 300, Error: "model not available"},
		{Timestamp: time.Now(), Session: "s2", Prompt: "unrelated", Model: "quick", Success: true, DurationMS: 90},
	}
	for _, rec := range records {
		if err := store.Save(rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := store.Records(0, "")
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	// Newest first
	if got[0].Prompt != "unrelated" {
		t.Errorf("got[0].Prompt = %q, want newest record first", got[0].Prompt)
	}
	if !got[1].Success && got[1].Error != "model not available" {
		t.Errorf("failed record lost its error: %+v", got[1])
	}
}

func TestStore_RecordsLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		rec := Record{Timestamp: time.Now().Add(time.Duration(i) * time.Second), Prompt: "q", Success: true}
		if err := store.Save(rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := store.Records(2, "")
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d records, want 2", len(got))
	}
}

func TestStore_RecordsSearch(t *testing.T) {
	store := newTestStore(t)

	prompts := []string{"explain this stack trace", "write a haiku", "explain goroutines"}
	for _, p := range prompts {
		if err := store.Save(Record{Timestamp: time.Now(), Prompt: p, Success: true}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := store.Records(0, "explain")
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2 matching", len(got))
	}
	for _, rec := range got {
		if rec.Prompt == "write a haiku" {
			t.Errorf("non-matching record returned: %q", rec.Prompt)
		}
	}
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Record{Timestamp: time.Now(), Prompt: "q", Success: true}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	got, err := store.Records(0, "")
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records after Clear, want 0", len(got))
	}
}

func TestStore_Unavailable(t *testing.T) {
	store := &Store{}

	if store.Available() {
		t.Error("empty store must report unavailable")
	}
	if err := store.Save(Record{Prompt: "q"}); err != nil {
		t.Errorf("Save() on unavailable store error = %v, want nil", err)
	}
	got, err := store.Records(0, "")
	if err != nil || got != nil {
		t.Errorf("Records() = %v, %v, want nil, nil", got, err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
