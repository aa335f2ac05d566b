package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

func newTestBackend(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	b := NewBackend(client)
	t.Cleanup(func() { _ = b.Close() })
	return b, mr
}

func TestBackendSetGetDelete(t *testing.T) {
	ctx := context.Background()
	b, mr := newTestBackend(t)

	if _, err := b.Get(ctx, "shelf:books"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get() missing key error = %v, want ErrNotFound", err)
	}

	if err := b.Set(ctx, "shelf:books", "[]"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := mr.Get("shelf:books"); got != "[]" {
		t.Errorf("redis holds %q, want []", got)
	}
	if ttl := mr.TTL("shelf:books"); ttl != 0 {
		t.Errorf("key has TTL %v, want none", ttl)
	}

	v, err := b.Get(ctx, "shelf:books")
	if err != nil || v != "[]" {
		t.Errorf("Get() = (%q, %v), want ([], nil)", v, err)
	}

	if err := b.Delete(ctx, "shelf:books"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if mr.Exists("shelf:books") {
		t.Error("key still exists after Delete()")
	}
}

func TestBackendServerDown(t *testing.T) {
	ctx := context.Background()
	b, mr := newTestBackend(t)
	mr.Close()

	if err := b.Set(ctx, "k", "v"); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Set() with server down error = %v, want ErrUnavailable", err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Get() with server down error = %v, want ErrUnavailable", err)
	}
}

func TestStoreOverRedis(t *testing.T) {
	ctx := context.Background()
	b, mr := newTestBackend(t)
	s := store.New(b, "", logger.NewNop())

	books := []domain.Book{
		{ID: 1, Title: "Night Watch", Author: "Terry Pratchett", Status: domain.NotRead},
		{ID: 0, Title: "Dune", Author: "Frank Herbert", URL: "https://example.com", Status: domain.Read},
	}
	if err := s.SaveBooks(ctx, books); err != nil {
		t.Fatalf("SaveBooks() error = %v", err)
	}
	if err := s.SaveNextID(ctx, 2); err != nil {
		t.Fatalf("SaveNextID() error = %v", err)
	}

	got := s.LoadBooks(ctx)
	if len(got) != 2 || got[0] != books[0] || got[1] != books[1] {
		t.Errorf("LoadBooks() = %+v, want %+v", got, books)
	}
	if v, _ := mr.Get("shelf:next_id"); v != "2" {
		t.Errorf("next id stored as %q, want 2", v)
	}

	// Only the two data keys remain, probes clean up after themselves
	if keys := mr.Keys(); len(keys) != 2 {
		t.Errorf("redis keys = %v, want books and next_id only", keys)
	}
}
