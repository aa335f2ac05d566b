package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by a Backend when a key holds no value.
	ErrNotFound = errors.New("key not found")

	// ErrUnavailable means the medium cannot accept writes right now:
	// quota exceeded, disabled, unreachable or unsupported all map here.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrMalformed means stored content exists but cannot be decoded.
	ErrMalformed = errors.New("stored data malformed")
)

// Backend is a durable string key-value medium.
type Backend interface {
	// Name identifies the medium in logs and status endpoints.
	Name() string

	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	Close() error
}
