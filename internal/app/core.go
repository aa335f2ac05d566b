package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/library"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/redis"
	"github.com/MrSnakeDoc/shelf/internal/seed"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/file"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
	"github.com/MrSnakeDoc/shelf/internal/store/sqlite"
)

// storageProbeTimeout bounds a single availability probe made for metrics.
const storageProbeTimeout = 2 * time.Second

// Core is what the server and every CLI command share: a bootstrapped
// library backed by the configured storage.
type Core struct {
	Config  *config.Config
	Logger  logger.Logger
	Store   *store.Store
	Library *library.Library
	Metrics *metrics.Collector
	Source  library.Source
}

// Bootstrap opens storage and hydrates a library from it, or from the seed
// list when storage is empty or unreachable. Storage being down is not an
// error; the session simply runs in memory.
func Bootstrap(ctx context.Context, cfg *config.Config, log logger.Logger) (*Core, error) {
	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	st := store.New(backend, cfg.KeyPrefix, log)
	m := metrics.New()
	lib := library.New(st, log, library.WithObserver(m))

	m.TrackBooks(lib.Len)
	m.TrackStorage(st.Backend(), func() bool {
		probeCtx, cancel := context.WithTimeout(context.Background(), storageProbeTimeout)
		defer cancel()
		return st.IsAvailable(probeCtx)
	})

	source, err := seed.NewBootstrapper(st, cfg.SeedFile, log).Run(ctx, lib)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("bootstrap library: %w", err)
	}

	log.Info("library ready",
		logger.String("source", string(source)),
		logger.String("backend", st.Backend()),
		logger.Int("books", lib.Len()),
		logger.Int("next_id", lib.NextID()))

	return &Core{
		Config:  cfg,
		Logger:  log,
		Store:   st,
		Library: lib,
		Metrics: m,
		Source:  source,
	}, nil
}

// Close releases the storage backend.
func (c *Core) Close() error {
	return c.Store.Close()
}

// openBackend returns the configured medium. A medium that cannot be opened
// degrades to a nil backend (never available) instead of failing startup;
// only invalid configuration is an error.
func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), nil

	case config.StorageFile:
		return file.New(cfg.DataFile), nil

	case config.StorageSQLite:
		b, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Error("sqlite unavailable - continuing without durable storage",
				logger.String("path", cfg.SQLitePath),
				logger.Error(err))
			return nil, nil
		}
		return b, nil

	case config.StorageRedis:
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil && !errors.Is(err, redis.ErrUnreachable) {
			return nil, fmt.Errorf("invalid redis options: %w", err)
		}
		// An unreachable server still yields a client that reconnects on
		// its own; the breaker keeps calls fast until then.
		return store.Guard(redisstore.NewBackend(client), store.DefaultGuardConfig(), log), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
