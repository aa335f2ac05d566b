package seed

import (
	"context"
	"errors"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/library"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// ErrAlreadyBootstrapped is returned by every Run after the first.
var ErrAlreadyBootstrapped = errors.New("library already bootstrapped")

// Storage is the read side of the durable store. *store.Store implements it.
type Storage interface {
	Load(ctx context.Context) (store.Snapshot, bool)
}

// Bootstrapper hydrates a library exactly once.
type Bootstrapper struct {
	storage Storage
	loader  *Loader // optional seed override
	logger  logger.Logger
	once    sync.Once
}

// NewBootstrapper creates a bootstrapper. seedFile may be empty to use the
// built-in list.
func NewBootstrapper(storage Storage, seedFile string, log logger.Logger) *Bootstrapper {
	var loader *Loader
	if seedFile != "" {
		loader = NewLoader(seedFile)
	}
	return &Bootstrapper{
		storage: storage,
		loader:  loader,
		logger:  log,
	}
}

// Run hydrates lib from storage when it is available and holds at least one
// book, from the seed list otherwise. It returns the source it used.
// A stored id counter is honoured in both cases, so seeding an emptied
// store never hands out ids that were already used.
func (b *Bootstrapper) Run(ctx context.Context, lib *library.Library) (library.Source, error) {
	source := library.SourceNone
	b.once.Do(func() {
		source = b.run(ctx, lib)
	})
	if source == library.SourceNone {
		return source, ErrAlreadyBootstrapped
	}
	return source, nil
}

func (b *Bootstrapper) run(ctx context.Context, lib *library.Library) library.Source {
	var (
		snap store.Snapshot
		ok   bool
	)
	if b.storage != nil {
		snap, ok = b.storage.Load(ctx)
	}

	switch {
	case !ok:
		b.logger.Warn("storage unavailable, using seed list and keeping changes in memory")
	case len(snap.Books) > 0:
		if !snap.HasNextID {
			b.logger.Warn("stored next id missing, deriving it from stored books")
		}
		lib.Hydrate(snap.Books, snap.NextID)
		b.logger.Info("library hydrated from storage",
			logger.Int("count", len(snap.Books)),
			logger.Int("next_id", lib.NextID()))
		return library.SourceStorage
	default:
		b.logger.Info("no books found in storage, using seed list")
		if snap.HasNextID {
			lib.Hydrate(nil, snap.NextID)
		}
	}

	drafts := b.seedDrafts()
	lib.Seed(ctx, drafts)
	b.logger.Info("library hydrated from seed list",
		logger.Int("count", len(drafts)),
		logger.Int("next_id", lib.NextID()))
	return library.SourceSeed
}

func (b *Bootstrapper) seedDrafts() []domain.Draft {
	if b.loader == nil {
		return Builtin()
	}

	drafts, err := b.loader.Load()
	if err != nil {
		b.logger.Warn("failed to load seed file, using built-in seed list",
			logger.String("file", b.loader.filePath),
			logger.Error(err))
		return Builtin()
	}
	return drafts
}
