package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Backend keeps values in process memory. Data does not survive a restart.
//
// Quota and SetDisabled mimic the ways a browser-style storage medium
// refuses writes, which makes the backend useful in tests.
type Backend struct {
	mu       sync.RWMutex
	data     map[string]string
	quota    int // max total bytes of keys+values, 0 = unlimited
	disabled bool
}

// New creates an empty memory backend with no quota.
func New() *Backend {
	return &Backend{data: make(map[string]string)}
}

// NewWithQuota creates a backend that rejects writes beyond quota bytes.
func NewWithQuota(quota int) *Backend {
	b := New()
	b.quota = quota
	return b
}

// SetDisabled makes every call fail with store.ErrUnavailable.
func (b *Backend) SetDisabled(disabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = disabled
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Get(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.disabled {
		return "", fmt.Errorf("%w: memory backend disabled", store.ErrUnavailable)
	}
	v, ok := b.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (b *Backend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disabled {
		return fmt.Errorf("%w: memory backend disabled", store.ErrUnavailable)
	}
	if b.quota > 0 {
		used := b.usedLocked() - b.sizeLocked(key) + len(key) + len(value)
		if used > b.quota {
			return fmt.Errorf("%w: quota of %d bytes exceeded", store.ErrUnavailable, b.quota)
		}
	}
	b.data[key] = value
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disabled {
		return fmt.Errorf("%w: memory backend disabled", store.ErrUnavailable)
	}
	delete(b.data, key)
	return nil
}

func (b *Backend) Close() error { return nil }

// Len returns the number of stored keys.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

func (b *Backend) usedLocked() int {
	n := 0
	for k, v := range b.data {
		n += len(k) + len(v)
	}
	return n
}

func (b *Backend) sizeLocked(key string) int {
	v, ok := b.data[key]
	if !ok {
		return 0
	}
	return len(key) + len(v)
}
