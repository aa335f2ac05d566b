package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Backend stores values as plain Redis strings without TTL.
type Backend struct {
	client redis.UniversalClient
}

// NewBackend wraps an existing client. Close closes the client.
func NewBackend(client redis.UniversalClient) *Backend {
	return &Backend{
		client: client,
	}
}

func (b *Backend) Name() string { return "redis" }

// Get retrieves a value from Redis by key
func (b *Backend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("%w: failed to get %s: %v", store.ErrUnavailable, key, err)
	}
	return v, nil
}

// Set stores a value in Redis
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to set %s: %v", store.ErrUnavailable, key, err)
	}
	return nil
}

// Delete removes a key from Redis
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", store.ErrUnavailable, key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}
