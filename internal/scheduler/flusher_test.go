package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/library"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

type countingSnap struct {
	mu    sync.Mutex
	calls int
	clean bool
}

func (c *countingSnap) Persist(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return !c.clean, nil
}

func (c *countingSnap) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestFlusher_CatchesUpAfterOutage(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)

	backend := memory.New()
	st := store.New(backend, "", log)
	lib := library.New(st, log)

	// Medium is down while the user works
	backend.SetDisabled(true)
	lib.Add(ctx, domain.Draft{Title: "Dune", Author: "Frank Herbert"})
	lib.Add(ctx, domain.Draft{Title: "Emma", Author: "Jane Austen"})

	f := NewFlusher(lib, log, 0, nil)
	if f.Flush(ctx) {
		t.Fatal("Flush() reported success while storage is down")
	}

	backend.SetDisabled(false)
	if books := st.LoadBooks(ctx); len(books) != 0 {
		t.Fatalf("storage already holds %d books before flush", len(books))
	}

	if !f.Flush(ctx) {
		t.Fatal("Flush() = false with storage back")
	}
	if books := st.LoadBooks(ctx); len(books) != 2 || books[0].Title != "Emma" {
		t.Errorf("storage after flush = %+v", books)
	}
	if id, ok := st.LoadNextID(ctx); !ok || id != 2 {
		t.Errorf("next id after flush = (%d, %v), want (2, true)", id, ok)
	}
}

func TestFlusher_ManualTrigger(t *testing.T) {
	snap := &countingSnap{}
	trigger := make(chan struct{}, 1)
	f := NewFlusher(snap, logger.New("error", false), 0, trigger)

	f.Start(context.Background())
	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for snap.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	f.Stop()

	if snap.count() != 1 {
		t.Errorf("Persist() called %d times, want 1", snap.count())
	}
}

func TestFlusher_Periodic(t *testing.T) {
	snap := &countingSnap{}
	f := NewFlusher(snap, logger.New("error", false), 10*time.Millisecond, nil)

	f.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for snap.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	f.Stop()

	if snap.count() < 2 {
		t.Errorf("Persist() called %d times, want at least 2", snap.count())
	}
}

func TestFlusher_NothingToFlush(t *testing.T) {
	snap := &countingSnap{clean: true}
	f := NewFlusher(snap, logger.New("error", false), 0, nil)

	if f.Flush(context.Background()) {
		t.Error("Flush() = true with nothing pending")
	}
}

func TestFlusher_IdleFlushKeepsOtherWriters(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	backend := memory.New()

	// A server session and a CLI session share one medium
	serverStore := store.New(backend, "", log)
	server := library.New(serverStore, log)
	server.Add(ctx, domain.Draft{Title: "Dune", Author: "Frank Herbert"})

	cliStore := store.New(backend, "", log)
	cli := library.New(cliStore, log)
	snap, _ := cliStore.Load(ctx)
	cli.Hydrate(snap.Books, snap.NextID)
	cli.Add(ctx, domain.Draft{Title: "Emma", Author: "Jane Austen"})

	f := NewFlusher(server, log, 0, nil)
	if f.Flush(ctx) {
		t.Error("Flush() wrote although the server snapshot already landed")
	}

	if books := serverStore.LoadBooks(ctx); len(books) != 2 || books[0].Title != "Emma" {
		t.Errorf("stored books after idle flush = %+v, want Emma then Dune", books)
	}
	if id, _ := serverStore.LoadNextID(ctx); id != 2 {
		t.Errorf("stored next id after idle flush = %d, want 2", id)
	}
}

func TestFlusher_StopIsIdempotent(t *testing.T) {
	f := NewFlusher(&countingSnap{}, logger.New("error", false), time.Hour, nil)
	f.Start(context.Background())
	f.Stop()
	f.Stop()
}
