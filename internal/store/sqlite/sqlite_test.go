package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/shelf/internal/store"
)

func openTest(t *testing.T, path string) *Backend {
	t.Helper()
	b, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackendSetGetDelete(t *testing.T) {
	ctx := context.Background()
	b := openTest(t, filepath.Join(t.TempDir(), "shelf.db"))

	if _, err := b.Get(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get() missing key error = %v, want ErrNotFound", err)
	}
	if err := b.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := b.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set() upsert error = %v", err)
	}
	if v, err := b.Get(ctx, "k"); err != nil || v != "v2" {
		t.Errorf("Get() = (%q, %v), want (v2, nil)", v, err)
	}
	if err := b.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}

func TestBackendPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shelf.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := first.Set(ctx, "shelf:next_id", "7"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second := openTest(t, path)
	if v, err := second.Get(ctx, "shelf:next_id"); err != nil || v != "7" {
		t.Errorf("Get() after reopen = (%q, %v), want (7, nil)", v, err)
	}
}

func TestBackendClosed(t *testing.T) {
	ctx := context.Background()
	b, err := Open(filepath.Join(t.TempDir(), "shelf.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = b.Close()

	if err := b.Set(ctx, "k", "v"); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Set() on closed db error = %v, want ErrUnavailable", err)
	}
}
