package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDatasetFetcher_Fetch(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	scratch := t.TempDir()
	src := writeTemp(t, scratch, "events.csv", "data")
	objects := []string{"d/a.csv", "d/b.csv", "d/c.csv"}
	for _, obj := range objects {
		if err := store.Upload(ctx, src, obj); err != nil {
			t.Fatal(err)
		}
	}

	fetcher := NewDatasetFetcher(store, 2, t.TempDir())
	result, err := fetcher.Fetch(ctx, objects)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.LocalPaths) != 3 || result.Downloads != 3 {
		t.Fatalf("expected 3 downloads, got %+v", result)
	}
	for _, local := range result.LocalPaths {
		if _, err := os.Stat(local); err != nil {
			t.Fatalf("fetched file missing: %v", err)
		}
	}
}

func TestDatasetFetcher_CacheHit(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := writeTemp(t, t.TempDir(), "events.csv", "data")
	if err := store.Upload(ctx, src, "d/a.csv"); err != nil {
		t.Fatal(err)
	}

	cacheDir := t.TempDir()
	fetcher := NewDatasetFetcher(store, 2, cacheDir)

	first, err := fetcher.Fetch(ctx, []string{"d/a.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Downloads != 1 || first.CacheHits != 0 {
		t.Fatalf("first fetch: %+v", first)
	}

	second, err := fetcher.Fetch(ctx, []string{"d/a.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if second.Downloads != 0 || second.CacheHits != 1 {
		t.Fatalf("second fetch should hit cache: %+v", second)
	}
}

func TestDatasetFetcher_PartialFailure(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := writeTemp(t, t.TempDir(), "events.csv", "data")
	if err := store.Upload(ctx, src, "d/exists.csv"); err != nil {
		t.Fatal(err)
	}

	fetcher := NewDatasetFetcher(store, 2, t.TempDir())
	result, err := fetcher.Fetch(ctx, []string{"d/exists.csv", "d/missing.csv"})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.LocalPaths) != 1 {
		t.Fatalf("expected 1 success, got %d", len(result.LocalPaths))
	}
	if _, failed := result.Errors["d/missing.csv"]; !failed {
		t.Fatal("expected error for missing object")
	}
}

func TestDatasetFetcher_FetchOne(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := writeTemp(t, t.TempDir(), "events.csv", "data")
	if err := store.Upload(ctx, src, "d/a.csv"); err != nil {
		t.Fatal(err)
	}

	fetcher := NewDatasetFetcher(store, 1, t.TempDir())
	local, err := fetcher.FetchOne(ctx, "d/a.csv")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(local) != "a.csv" {
		t.Fatalf("unexpected local path %q", local)
	}

	if _, err := fetcher.FetchOne(ctx, "d/missing.csv"); err == nil {
		t.Fatal("expected error for missing object")
	}
}
