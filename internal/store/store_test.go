package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

func sampleBooks() []domain.Book {
	return []domain.Book{
		{ID: 2, Title: "Night Watch", Author: "Terry Pratchett", URL: "https://www.goodreads.com/book/show/47989.Night_Watch", Status: domain.NotRead},
		{ID: 1, Title: "The War of Art", Author: "Steven Pressfield", Status: domain.Read},
		{ID: 0, Title: "Dune", Author: "Frank Herbert", URL: "", Status: domain.Read},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New(), "", logger.NewNop())

	want := sampleBooks()
	if err := s.SaveBooks(ctx, want); err != nil {
		t.Fatalf("SaveBooks() error = %v", err)
	}
	if err := s.SaveNextID(ctx, 3); err != nil {
		t.Fatalf("SaveNextID() error = %v", err)
	}

	got := s.LoadBooks(ctx)
	if len(got) != len(want) {
		t.Fatalf("LoadBooks() returned %d books, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("book[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Saving what was loaded reproduces it exactly
	if err := s.SaveBooks(ctx, got); err != nil {
		t.Fatalf("SaveBooks() second pass error = %v", err)
	}
	again := s.LoadBooks(ctx)
	for i := range want {
		if again[i] != want[i] {
			t.Errorf("second round book[%d] = %+v, want %+v", i, again[i], want[i])
		}
	}

	id, ok := s.LoadNextID(ctx)
	if !ok || id != 3 {
		t.Errorf("LoadNextID() = (%d, %v), want (3, true)", id, ok)
	}
}

func TestStoreEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New(), "", logger.NewNop())

	if books := s.LoadBooks(ctx); len(books) != 0 {
		t.Errorf("LoadBooks() on empty medium = %v, want empty", books)
	}
	if _, ok := s.LoadNextID(ctx); ok {
		t.Error("LoadNextID() on empty medium should report ok=false")
	}
}

func TestStoreIsAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy medium", func(t *testing.T) {
		b := memory.New()
		s := store.New(b, "", logger.NewNop())
		if !s.IsAvailable(ctx) {
			t.Fatal("IsAvailable() = false, want true")
		}
		if b.Len() != 0 {
			t.Errorf("probe left %d keys behind", b.Len())
		}
	})

	t.Run("disabled medium", func(t *testing.T) {
		b := memory.New()
		b.SetDisabled(true)
		s := store.New(b, "", logger.NewNop())
		if s.IsAvailable(ctx) {
			t.Error("IsAvailable() = true for a disabled medium")
		}
	})

	t.Run("quota exceeded", func(t *testing.T) {
		s := store.New(memory.NewWithQuota(4), "", logger.NewNop())
		if s.IsAvailable(ctx) {
			t.Error("IsAvailable() = true for a full medium")
		}
	})

	t.Run("no backend", func(t *testing.T) {
		s := store.New(nil, "", logger.NewNop())
		if s.IsAvailable(ctx) {
			t.Error("IsAvailable() = true without a backend")
		}
		if s.Backend() != "none" {
			t.Errorf("Backend() = %q, want none", s.Backend())
		}
	})

	t.Run("panicking medium", func(t *testing.T) {
		s := store.New(panicBackend{}, "", logger.NewNop())
		if s.IsAvailable(ctx) {
			t.Error("IsAvailable() = true for a panicking medium")
		}
	})
}

func TestStoreUnavailableSkipsWrites(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	b.SetDisabled(true)
	s := store.New(b, "", logger.NewNop())

	if err := s.SaveBooks(ctx, sampleBooks()); err != nil {
		t.Errorf("SaveBooks() on unavailable medium error = %v, want nil", err)
	}
	if err := s.SaveNextID(ctx, 3); err != nil {
		t.Errorf("SaveNextID() on unavailable medium error = %v, want nil", err)
	}
	if books := s.LoadBooks(ctx); books != nil {
		t.Errorf("LoadBooks() on unavailable medium = %v, want nil", books)
	}

	b.SetDisabled(false)
	if b.Len() != 0 {
		t.Errorf("unavailable medium received %d keys", b.Len())
	}
}

func TestStoreCorruptContent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		books string
	}{
		{name: "not json", books: "{{{"},
		{name: "wrong shape", books: `{"id":1}`},
		{name: "unknown status", books: `[{"id":0,"title":"a","author":"b","url":"","status":"Skimmed"}]`},
		{name: "duplicate ids", books: `[{"id":1,"title":"a","author":"b","status":"Read"},{"id":1,"title":"c","author":"d","status":"Read"}]`},
		{name: "negative id", books: `[{"id":-1,"title":"a","author":"b","status":"Read"}]`},
		{name: "blank title", books: `[{"id":0,"title":" ","author":"b","status":"Read"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := memory.New()
			if err := b.Set(ctx, store.BooksKey(store.DefaultKeyPrefix), tt.books); err != nil {
				t.Fatalf("seed backend: %v", err)
			}
			s := store.New(b, "", logger.NewNop())
			if books := s.LoadBooks(ctx); books != nil {
				t.Errorf("LoadBooks() = %v, want nil for corrupt content", books)
			}
		})
	}

	t.Run("corrupt next id", func(t *testing.T) {
		b := memory.New()
		_ = b.Set(ctx, store.NextIDKey(store.DefaultKeyPrefix), "seven")
		s := store.New(b, "", logger.NewNop())
		if _, ok := s.LoadNextID(ctx); ok {
			t.Error("LoadNextID() ok = true for corrupt content")
		}
	})
}

func TestStoreKeyPrefix(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	s := store.New(b, "test:", logger.NewNop())

	if err := s.SaveNextID(ctx, 5); err != nil {
		t.Fatalf("SaveNextID() error = %v", err)
	}
	v, err := b.Get(ctx, "test:next_id")
	if err != nil {
		t.Fatalf("expected value under prefixed key: %v", err)
	}
	if v != "5" {
		t.Errorf("stored next id = %q, want 5", v)
	}
	if _, err := b.Get(ctx, store.NextIDKey(store.DefaultKeyPrefix)); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("default prefix key should be absent, got err = %v", err)
	}
}

type panicBackend struct{}

func (panicBackend) Name() string                                { return "panic" }
func (panicBackend) Get(context.Context, string) (string, error) { panic("boom") }
func (panicBackend) Set(context.Context, string, string) error   { panic("boom") }
func (panicBackend) Delete(context.Context, string) error        { panic("boom") }
func (panicBackend) Close() error                                { return nil }

// probeCounter counts availability probes: only the probe ever deletes.
type probeCounter struct {
	*memory.Backend
	deletes int
}

func (p *probeCounter) Delete(ctx context.Context, key string) error {
	p.deletes++
	return p.Backend.Delete(ctx, key)
}

func TestStoreSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	b := &probeCounter{Backend: memory.New()}
	s := store.New(b, "", logger.NewNop())

	written, err := s.Save(ctx, sampleBooks(), 3)
	if err != nil || !written {
		t.Fatalf("Save() = (%v, %v), want (true, nil)", written, err)
	}
	if b.deletes != 1 {
		t.Errorf("Save() probed %d times, want 1", b.deletes)
	}

	b.deletes = 0
	snap, ok := s.Load(ctx)
	if !ok {
		t.Fatal("Load() ok = false on a healthy medium")
	}
	if b.deletes != 1 {
		t.Errorf("Load() probed %d times, want 1", b.deletes)
	}
	if len(snap.Books) != 3 || snap.Books[0] != sampleBooks()[0] {
		t.Errorf("Load() books = %+v", snap.Books)
	}
	if !snap.HasNextID || snap.NextID != 3 {
		t.Errorf("Load() next id = (%d, %v), want (3, true)", snap.NextID, snap.HasNextID)
	}
}

func TestStoreLoadUnavailable(t *testing.T) {
	b := memory.New()
	b.SetDisabled(true)
	s := store.New(b, "", logger.NewNop())

	if snap, ok := s.Load(context.Background()); ok || snap.Books != nil {
		t.Errorf("Load() = (%+v, %v), want empty and false", snap, ok)
	}
}

func TestStoreRejectedWriteIsSkipped(t *testing.T) {
	ctx := context.Background()
	// Room for the probe key, not for the book list
	b := memory.NewWithQuota(200)
	s := store.New(b, "", logger.NewNop())

	if !s.IsAvailable(ctx) {
		t.Fatal("IsAvailable() = false, the probe should fit the quota")
	}

	written, err := s.Save(ctx, sampleBooks(), 3)
	if err != nil {
		t.Errorf("Save() error = %v, want nil for a full medium", err)
	}
	if written {
		t.Error("Save() written = true, want false for a full medium")
	}
	if err := s.SaveBooks(ctx, sampleBooks()); err != nil {
		t.Errorf("SaveBooks() error = %v, want nil for a full medium", err)
	}
	if b.Len() != 0 {
		t.Errorf("full medium holds %d keys, want 0", b.Len())
	}
}
