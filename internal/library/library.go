package library

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Persister is the durable side of the library. *store.Store implements it.
//
// Save reports written=false when the medium skipped the write; the
// library then keeps the snapshot dirty until a later Persist lands it.
type Persister interface {
	Save(ctx context.Context, books []domain.Book, nextID int) (written bool, err error)
}

// Observer is notified after each mutation. Used for metrics.
type Observer interface {
	BookAdded()
	BookRemoved()
	BookUpdated()
	Persisted(written bool, err error)
}

// Source tells where the current session's books came from.
type Source string

const (
	SourceNone    Source = ""
	SourceStorage Source = "storage"
	SourceSeed    Source = "seed"
)

// Library is the authoritative in-memory reading list.
//
// Books are kept most-recently-added first. Every mutation updates memory,
// then persists the full snapshot, then returns; the mutex is held across
// both steps so durable state never runs ahead of memory.
//
// A snapshot that could not be written marks the library dirty. Only a
// dirty library is written again by Persist, so an idle session never
// overwrites what other processes stored since.
type Library struct {
	mu            sync.Mutex
	books         []domain.Book // presentation order, newest first
	nextID        int
	source        Source
	lastPersisted time.Time
	dirty         bool

	persister Persister
	observer  Observer
	logger    logger.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithObserver attaches an observer for mutation events.
func WithObserver(o Observer) Option {
	return func(l *Library) { l.observer = o }
}

// New creates an empty library. A nil persister keeps everything in memory.
func New(p Persister, log logger.Logger, opts ...Option) *Library {
	l := &Library{
		books:     make([]domain.Book, 0),
		persister: p,
		logger:    log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Hydrate replaces the content with previously persisted books, keeping
// their order and ids. nextID is raised above every id present if needed.
// Nothing is written back.
func (l *Library) Hydrate(books []domain.Book, nextID int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.books = make([]domain.Book, len(books))
	copy(l.books, books)

	for _, b := range books {
		if b.ID >= nextID {
			nextID = b.ID + 1
		}
	}
	if nextID < 0 {
		nextID = 0
	}
	l.nextID = nextID
	l.source = SourceStorage
	l.dirty = false
}

// Add stores a new book at the front of the list and persists.
// The draft is trusted; validate it with domain.ValidateDraft beforehand.
func (l *Library) Add(ctx context.Context, d domain.Draft) domain.Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.addLocked(d)
	l.persistLocked(ctx)
	return b
}

// AddMany adds drafts in slice order, so the last draft ends up first in
// List. The snapshot is persisted once after the whole batch.
func (l *Library) AddMany(ctx context.Context, drafts []domain.Draft) []domain.Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	added := make([]domain.Book, 0, len(drafts))
	for _, d := range drafts {
		added = append(added, l.addLocked(d))
	}
	if len(added) > 0 {
		l.persistLocked(ctx)
	}
	return added
}

// Seed hydrates an empty session from drafts given in presentation order:
// drafts[0] ends up first in List. It is AddMany over the reversed slice.
func (l *Library) Seed(ctx context.Context, drafts []domain.Draft) []domain.Book {
	reversed := make([]domain.Draft, len(drafts))
	for i, d := range drafts {
		reversed[len(drafts)-1-i] = d
	}

	added := l.AddMany(ctx, reversed)

	l.mu.Lock()
	l.source = SourceSeed
	l.mu.Unlock()

	return added
}

func (l *Library) addLocked(d domain.Draft) domain.Book {
	b := domain.Book{
		ID:     l.nextID,
		Title:  d.Title,
		Author: d.Author,
		URL:    d.URL,
		Status: d.Status,
	}
	l.nextID++

	l.books = append(l.books, domain.Book{})
	copy(l.books[1:], l.books)
	l.books[0] = b

	if l.observer != nil {
		l.observer.BookAdded()
	}
	return b
}

// Remove deletes the book with id. It reports whether one was found;
// an unknown id is a no-op and persists nothing.
func (l *Library) Remove(ctx context.Context, id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return false
	}
	l.books = append(l.books[:i], l.books[i+1:]...)

	if l.observer != nil {
		l.observer.BookRemoved()
	}
	l.persistLocked(ctx)
	return true
}

// Update applies every present, non-empty patch field that differs from
// the current value. It reports whether anything changed; the snapshot is
// persisted only in that case.
func (l *Library) Update(ctx context.Context, id int, p domain.Patch) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return false
	}

	b := &l.books[i]
	changed := false

	if p.Title != nil && *p.Title != "" && *p.Title != b.Title {
		b.Title = *p.Title
		changed = true
	}
	if p.Author != nil && *p.Author != "" && *p.Author != b.Author {
		b.Author = *p.Author
		changed = true
	}
	if p.Status != nil && p.Status.Valid() && *p.Status != b.Status {
		b.Status = *p.Status
		changed = true
	}

	if !changed {
		return false
	}
	if l.observer != nil {
		l.observer.BookUpdated()
	}
	l.persistLocked(ctx)
	return true
}

// Toggle flips the status of the book with id and returns the updated book.
func (l *Library) Toggle(ctx context.Context, id int) (domain.Book, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return domain.Book{}, false
	}
	l.books[i].Status = l.books[i].Status.Toggle()

	if l.observer != nil {
		l.observer.BookUpdated()
	}
	l.persistLocked(ctx)
	return l.books[i], true
}

// Get returns a copy of the book with id.
func (l *Library) Get(id int) (domain.Book, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return domain.Book{}, false
	}
	return l.books[i], true
}

// List returns a copy of all books, newest first.
func (l *Library) List() []domain.Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Book, len(l.books))
	copy(out, l.books)
	return out
}

// Len returns the number of books.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.books)
}

// NextID returns the id the next Add will assign.
func (l *Library) NextID() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID
}

// Source returns how the session was hydrated.
func (l *Library) Source() Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// LastPersisted returns when a snapshot last reached durable storage.
// Skipped and failed writes leave it unchanged.
func (l *Library) LastPersisted() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastPersisted
}

// Dirty reports whether the last snapshot has not reached storage yet.
func (l *Library) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// Persist writes the current snapshot if an earlier write was skipped or
// failed. It reports whether a write landed and, unlike the mutation
// paths, returns the write error.
func (l *Library) Persist(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		return false, nil
	}
	return l.persistLocked(ctx)
}

// persistLocked writes the snapshot. Failures are logged and never change
// the outcome of the mutation that triggered them.
func (l *Library) persistLocked(ctx context.Context) (bool, error) {
	if l.persister == nil {
		return false, nil
	}

	written, err := l.persister.Save(ctx, l.books, l.nextID)
	l.dirty = !written || err != nil

	if l.observer != nil {
		l.observer.Persisted(written, err)
	}
	if err != nil {
		l.logger.Warn("failed to persist library",
			logger.Int("books", len(l.books)),
			logger.Int("next_id", l.nextID),
			logger.Error(err))
		return false, err
	}
	if !written {
		l.logger.Debug("storage skipped snapshot, keeping it for the next flush",
			logger.Int("books", len(l.books)))
		return false, nil
	}

	l.lastPersisted = time.Now()
	return true, nil
}

func (l *Library) indexLocked(id int) int {
	for i := range l.books {
		if l.books[i].ID == id {
			return i
		}
	}
	return -1
}
