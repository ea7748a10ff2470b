package metadata

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSaveLookupRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	names := &Names{
		Fingerprint: "fp-1",
		Artist:      "Miles Davis",
		Title:       "Kind of Blue",
		Tracks:      map[int]string{1: "So What", 2: "Freddie Freeloader"},
	}
	if err := store.Save(ctx, names); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Lookup(ctx, "fp-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Artist != "Miles Davis" || got.Title != "Kind of Blue" {
		t.Fatalf("got %q / %q", got.Artist, got.Title)
	}
	if len(got.Tracks) != 2 || got.Tracks[1] != "So What" {
		t.Fatalf("tracks = %v", got.Tracks)
	}
}

func TestStoreLookupUnknownFingerprint(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Lookup(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreSaveReplacesTracks(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := &Names{Fingerprint: "fp-2", Artist: "a", Title: "b", Tracks: map[int]string{1: "old", 2: "stale"}}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := &Names{Fingerprint: "fp-2", Artist: "a", Title: "b", Tracks: map[int]string{1: "new"}}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Lookup(ctx, "fp-2")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got.Tracks) != 1 || got.Tracks[1] != "new" {
		t.Fatalf("tracks = %v, want only the replacement", got.Tracks)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	ctx := context.Background()

	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := store.Save(ctx, &Names{Fingerprint: "fp-3", Artist: "x", Title: "y"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Lookup(ctx, "fp-3"); err != nil {
		t.Fatalf("Lookup after reopen: %v", err)
	}
}
