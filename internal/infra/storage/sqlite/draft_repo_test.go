package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"charsmith/internal/core/domain"
)

func newTestRepo(t *testing.T) *DraftRepository {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDraftRepository(db)
}

func sampleDraft(seed, name, content string) *domain.Draft {
	return &domain.Draft{
		Seed:      seed,
		Name:      name,
		Content:   content,
		Path:      "drafts/sample.md",
		CreatedAt: time.Now().UTC(),
	}
}

func TestDraftRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	draft := sampleDraft("a fallen knight", "Serra", "# Serra\n\nGrim and loyal.")
	if err := repo.Save(ctx, draft); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if draft.ID == "" {
		t.Fatal("Save did not assign an id")
	}

	got, err := repo.GetByID(ctx, draft.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Draft not found")
	}
	if got.Seed != draft.Seed || got.Name != "Serra" {
		t.Errorf("Fields differ: %+v", got)
	}
}

func TestDraftRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing draft, got %+v", got)
	}
}

func TestDraftRepository_Search(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	drafts := []*domain.Draft{
		sampleDraft("a fallen knight", "Serra", "# Serra\n\nA knight haunted by a broken oath."),
		sampleDraft("a cheerful gravedigger", "Mort", "# Mort\n\nTalks to crows at dusk."),
		sampleDraft("a pirate queen", "Anchor", "# Anchor\n\nRuns a noodle stand now."),
	}
	for _, d := range drafts {
		if err := repo.Save(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := repo.Search(ctx, "knight", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "Serra" {
		t.Errorf("Search(knight) = %+v", hits)
	}

	hits, err = repo.Search(ctx, "crows", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "Mort" {
		t.Errorf("Search(crows) = %+v", hits)
	}

	hits, err = repo.Search(ctx, "spaceship", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected no hits, got %+v", hits)
	}
}

func TestDraftRepository_List(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := sampleDraft("first seed", "First", "# First")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleDraft("second seed", "Second", "# Second")
	for _, d := range []*domain.Draft{older, newer} {
		if err := repo.Save(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	drafts, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(drafts) != 2 || drafts[0].Name != "Second" {
		t.Errorf("List order wrong: %+v", drafts)
	}
}

func TestDraftRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	draft := sampleDraft("a seed", "Gone", "# Gone\n\nSoon removed.")
	if err := repo.Save(ctx, draft); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := repo.GetByID(ctx, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("Draft still present after delete")
	}

	// FTS index follows the delete.
	hits, err := repo.Search(ctx, "Gone", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("Deleted draft still searchable: %+v", hits)
	}

	if err := repo.Delete(ctx, "no-such-id"); err == nil {
		t.Error("Expected error deleting missing draft")
	}
}
