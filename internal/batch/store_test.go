package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"charsmith/internal/core/domain"
)

func newTestStore(t *testing.T) *StateStore {
	t.Helper()
	store, err := NewStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStateStore failed: %v", err)
	}
	return store
}

func testState(batchID string, total int) *domain.BatchState {
	return domain.NewBatchState(batchID, total, domain.BatchConfig{
		Concurrency:     2,
		CallsPerSecond:  1,
		MaxRetries:      3,
		ContinueOnError: true,
	})
}

func TestStateStore_SaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	state := testState("batch-1", 3)
	state.MarkCompleted("a wandering knight", "drafts/knight.md")
	state.MarkFailed("a cursed jester", "generation API returned 400 Bad Request: nope", 1)

	if err := store.Save(state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load("batch-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BatchID != "batch-1" || loaded.TotalSeeds != 3 {
		t.Errorf("Unexpected state: %+v", loaded)
	}
	if len(loaded.Completed) != 1 || loaded.Completed[0].ResultPath != "drafts/knight.md" {
		t.Errorf("Completed not preserved: %+v", loaded.Completed)
	}
	if len(loaded.Failed) != 1 || loaded.Failed[0].Attempts != 1 {
		t.Errorf("Failed not preserved: %+v", loaded.Failed)
	}
	if loaded.CurrentIndex != 2 {
		t.Errorf("Expected current_index 2, got %d", loaded.CurrentIndex)
	}
	if loaded.Config != state.Config {
		t.Errorf("Config snapshot changed: %+v", loaded.Config)
	}
}

func TestStateStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("nope")
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Expected ErrStateNotFound, got %v", err)
	}
}

func TestStateStore_LoadCorrupt(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(store.dir, "batch_broken.json")
	if err := os.WriteFile(path, []byte(`{"batch_id": "bro`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Load("broken")
	if !errors.Is(err, ErrStateCorrupt) {
		t.Fatalf("Expected ErrStateCorrupt, got %v", err)
	}

	// Parseable JSON without a batch_id is also corrupt, not empty.
	if err := os.WriteFile(filepath.Join(store.dir, "batch_empty.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("empty"); !errors.Is(err, ErrStateCorrupt) {
		t.Fatalf("Expected ErrStateCorrupt for missing batch_id, got %v", err)
	}
}

func TestStateStore_DeleteExactMatchOnly(t *testing.T) {
	store := newTestStore(t)

	// "batch-1" is a prefix of "batch-10"; delete must not touch it.
	for _, id := range []string{"batch-1", "batch-10"} {
		if err := store.Save(testState(id, 1)); err != nil {
			t.Fatalf("Save(%s) failed: %v", id, err)
		}
	}

	if err := store.Delete("batch-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Load("batch-1"); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("batch-1 still present after delete: %v", err)
	}
	if _, err := store.Load("batch-10"); err != nil {
		t.Errorf("batch-10 deleted by prefix match: %v", err)
	}
}

func TestStateStore_DeleteMissing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete("ghost"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Expected ErrStateNotFound, got %v", err)
	}
}

func TestStateStore_CleanRetention(t *testing.T) {
	store := newTestStore(t)

	old := testState("old-batch", 1)
	old.StartTime = time.Now().Add(-48 * time.Hour)
	if err := store.Save(old); err != nil {
		t.Fatal(err)
	}
	fresh := testState("fresh-batch", 1)
	if err := store.Save(fresh); err != nil {
		t.Fatal(err)
	}

	// A corrupt file must be skipped, never abort the sweep.
	corrupt := filepath.Join(store.dir, "batch_junk.json")
	if err := os.WriteFile(corrupt, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Clean(24 * time.Hour)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removal, got %d", removed)
	}
	if _, err := store.Load("old-batch"); !errors.Is(err, ErrStateNotFound) {
		t.Error("Old batch survived cleanup")
	}
	if _, err := store.Load("fresh-batch"); err != nil {
		t.Errorf("Fresh batch removed by cleanup: %v", err)
	}
	if _, err := os.Stat(corrupt); err != nil {
		t.Errorf("Corrupt file should be left in place: %v", err)
	}
}

func TestStateStore_LoadMostRecent(t *testing.T) {
	store := newTestStore(t)

	first := testState("first", 1)
	first.StartTime = time.Now().Add(-time.Hour)
	second := testState("second", 1)

	for _, s := range []*domain.BatchState{first, second} {
		if err := store.Save(s); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := store.LoadMostRecent()
	if err != nil {
		t.Fatalf("LoadMostRecent failed: %v", err)
	}
	if recent.BatchID != "second" {
		t.Errorf("Expected second, got %s", recent.BatchID)
	}
}

func TestStateStore_LoadMostRecentEmpty(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.LoadMostRecent(); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Expected ErrStateNotFound, got %v", err)
	}
}

func TestStateStore_SaveIsAtomicReplace(t *testing.T) {
	store := newTestStore(t)

	state := testState("batch-a", 2)
	if err := store.Save(state); err != nil {
		t.Fatal(err)
	}
	state.MarkCompleted("seed one", "drafts/one.md")
	if err := store.Save(state); err != nil {
		t.Fatal(err)
	}

	// Exactly one durable artifact per batch id, no temp leftovers.
	entries, err := os.ReadDir(store.dir)
	if err != nil {
		t.Fatal(err)
	}
	jsonFiles := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			jsonFiles++
		}
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
	if jsonFiles != 1 {
		t.Errorf("Expected 1 state file, got %d", jsonFiles)
	}

	loaded, err := store.Load("batch-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Completed) != 1 {
		t.Errorf("Second save not visible: %+v", loaded)
	}
}
