package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
)

type countingBackend struct {
	*memory.Backend
	calls int
}

func (c *countingBackend) Set(ctx context.Context, key, value string) error {
	c.calls++
	return c.Backend.Set(ctx, key, value)
}

func TestGuardOpensAfterFailures(t *testing.T) {
	ctx := context.Background()
	inner := &countingBackend{Backend: memory.New()}
	inner.SetDisabled(true)

	g := store.Guard(inner, store.GuardConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		ConsecutiveFails: 2,
	}, logger.NewNop())

	for i := 0; i < 2; i++ {
		if err := g.Set(ctx, "k", "v"); !errors.Is(err, store.ErrUnavailable) {
			t.Fatalf("Set() #%d error = %v, want ErrUnavailable", i, err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("inner backend saw %d calls, want 2", inner.calls)
	}

	// Breaker is open now: the inner backend is not reached
	err := g.Set(ctx, "k", "v")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Set() with open breaker error = %v, want ErrUnavailable", err)
	}
	if inner.calls != 2 {
		t.Errorf("open breaker let a call through, calls = %d", inner.calls)
	}
}

func TestGuardNotFoundIsHealthy(t *testing.T) {
	ctx := context.Background()
	g := store.Guard(memory.New(), store.GuardConfig{ConsecutiveFails: 1, Timeout: time.Minute}, logger.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := g.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("Get() #%d error = %v, want ErrNotFound", i, err)
		}
	}

	if err := g.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() after misses error = %v, breaker should still be closed", err)
	}
	v, err := g.Get(ctx, "k")
	if err != nil || v != "v" {
		t.Errorf("Get() = (%q, %v), want (v, nil)", v, err)
	}
}

func TestGuardedStoreReportsUnavailable(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()
	inner.SetDisabled(true)
	s := store.New(store.Guard(inner, store.DefaultGuardConfig(), logger.NewNop()), "", logger.NewNop())

	for i := 0; i < 5; i++ {
		if s.IsAvailable(ctx) {
			t.Fatalf("IsAvailable() #%d = true for a disabled medium", i)
		}
	}
}
