package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Store persists the book list and the id counter on a Backend.
//
// Every method is safe to call when the medium is gone: loads come back
// empty and saves are skipped, including writes the medium rejects after a
// successful probe. Nothing here panics or surfaces ErrUnavailable to the
// caller.
type Store struct {
	backend Backend
	prefix  string
	logger  logger.Logger
}

// New creates a Store. A nil backend yields a store that is never available.
func New(backend Backend, prefix string, log logger.Logger) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{
		backend: backend,
		prefix:  prefix,
		logger:  log,
	}
}

// Backend returns the name of the underlying medium, or "none".
func (s *Store) Backend() string {
	if s == nil || s.backend == nil {
		return "none"
	}
	return s.backend.Name()
}

// IsAvailable probes the medium by writing then deleting a throwaway key.
// Any failure, including a panic inside the backend, reads as false.
func (s *Store) IsAvailable(ctx context.Context) (ok bool) {
	if s == nil || s.backend == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("storage probe panicked",
				logger.String("backend", s.backend.Name()),
				logger.String("panic", fmt.Sprint(r)))
			ok = false
		}
	}()

	key := probeKey(s.prefix)
	if err := s.backend.Set(ctx, key, "1"); err != nil {
		s.logger.Debug("storage probe failed",
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
		return false
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Debug("storage probe cleanup failed",
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
		return false
	}
	return true
}

// Snapshot is the persisted state a session resumes from.
type Snapshot struct {
	Books     []domain.Book
	NextID    int
	HasNextID bool
}

// Load probes the medium once and reads both keys. ok is false when the
// medium is unavailable; absent or corrupt keys come back empty.
func (s *Store) Load(ctx context.Context) (snap Snapshot, ok bool) {
	if !s.IsAvailable(ctx) {
		return Snapshot{}, false
	}
	snap.Books = s.loadBooks(ctx)
	snap.NextID, snap.HasNextID = s.loadNextID(ctx)
	return snap, true
}

// LoadBooks returns the persisted books in their saved order.
// Absent, unreadable or corrupt content all come back as nil.
func (s *Store) LoadBooks(ctx context.Context) []domain.Book {
	if !s.IsAvailable(ctx) {
		return nil
	}
	return s.loadBooks(ctx)
}

// LoadNextID returns the persisted id counter. ok is false when it is
// absent, unreadable or corrupt.
func (s *Store) LoadNextID(ctx context.Context) (id int, ok bool) {
	if !s.IsAvailable(ctx) {
		return 0, false
	}
	return s.loadNextID(ctx)
}

func (s *Store) loadBooks(ctx context.Context) []domain.Book {
	raw, err := s.backend.Get(ctx, BooksKey(s.prefix))
	if err != nil {
		s.logReadError("books", err)
		return nil
	}

	books, err := decodeBooks(raw)
	if err != nil {
		s.logger.Warn("ignoring stored books",
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
		return nil
	}
	return books
}

func (s *Store) loadNextID(ctx context.Context) (int, bool) {
	raw, err := s.backend.Get(ctx, NextIDKey(s.prefix))
	if err != nil {
		s.logReadError("next id", err)
		return 0, false
	}

	id, err := decodeNextID(raw)
	if err != nil {
		s.logger.Warn("ignoring stored next id",
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
		return 0, false
	}
	return id, true
}

// Save probes the medium once, then writes the books and the counter.
// written is false when the write was skipped, either because the probe
// failed or because the medium rejected it as unavailable (quota, outage).
// Only unexpected errors are returned.
func (s *Store) Save(ctx context.Context, books []domain.Book, nextID int) (written bool, err error) {
	if !s.IsAvailable(ctx) {
		return false, nil
	}

	data, err := encodeBooks(books)
	if err != nil {
		return false, err
	}
	if written, err = s.write(ctx, "books", BooksKey(s.prefix), data); !written || err != nil {
		return false, err
	}
	return s.write(ctx, "next id", NextIDKey(s.prefix), encodeNextID(nextID))
}

// SaveBooks writes the full list. It is skipped when the medium is unavailable.
func (s *Store) SaveBooks(ctx context.Context, books []domain.Book) error {
	if !s.IsAvailable(ctx) {
		return nil
	}

	data, err := encodeBooks(books)
	if err != nil {
		return err
	}
	_, err = s.write(ctx, "books", BooksKey(s.prefix), data)
	return err
}

// SaveNextID writes the id counter. It is skipped when the medium is unavailable.
func (s *Store) SaveNextID(ctx context.Context, id int) error {
	if !s.IsAvailable(ctx) {
		return nil
	}

	_, err := s.write(ctx, "next id", NextIDKey(s.prefix), encodeNextID(id))
	return err
}

// write stores one key. ErrUnavailable from the medium is logged and
// reported as a skipped write rather than an error.
func (s *Store) write(ctx context.Context, what, key, value string) (bool, error) {
	err := s.backend.Set(ctx, key, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUnavailable):
		s.logger.Warn("storage rejected "+what+", skipping write",
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
		return false, nil
	default:
		return false, fmt.Errorf("failed to save %s: %w", what, err)
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) logReadError(what string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Debug("no stored "+what, logger.String("backend", s.backend.Name()))
	case errors.Is(err, ErrMalformed):
		s.logger.Warn("ignoring stored "+what,
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
	default:
		s.logger.Warn("failed to read stored "+what,
			logger.String("backend", s.backend.Name()),
			logger.Error(err))
	}
}
