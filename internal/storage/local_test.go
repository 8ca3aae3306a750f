package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	scratch := t.TempDir()
	src := writeTemp(t, scratch, "events.csv", "user_id,event_timestamp,lat,lon,event_type\n")

	if err := store.Upload(ctx, src, "datasets/events.csv"); err != nil {
		t.Fatal(err)
	}

	exists, err := store.Exists(ctx, "datasets/events.csv")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("uploaded object should exist")
	}

	dst := filepath.Join(scratch, "downloaded.csv")
	if err := store.Download(ctx, "datasets/events.csv", dst); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "user_id,event_timestamp,lat,lon,event_type\n" {
		t.Fatalf("downloaded content mismatch: %q", content)
	}
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	err = store.Download(context.Background(), "nope.csv", filepath.Join(t.TempDir(), "out.csv"))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	src := writeTemp(t, t.TempDir(), "a.csv", "x")
	if err := store.Upload(ctx, src, "a.csv"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "a.csv"); err != nil {
		t.Fatal(err)
	}

	exists, err := store.Exists(ctx, "a.csv")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("deleted object should not exist")
	}

	if err := store.Delete(ctx, "a.csv"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_ListObjects(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	scratch := t.TempDir()
	src := writeTemp(t, scratch, "x.csv", "x")
	for _, obj := range []string{"datasets/jan.csv", "datasets/feb.csv", "exports/run.db"} {
		if err := store.Upload(ctx, src, obj); err != nil {
			t.Fatal(err)
		}
	}

	objects, err := store.ListObjects(ctx, "datasets/")
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 dataset objects, got %d: %v", len(objects), objects)
	}
}
