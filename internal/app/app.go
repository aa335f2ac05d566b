package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	core    *Core
	server  *httpserver.Server
	flusher *scheduler.Flusher
}

// New bootstraps the library and wires the HTTP server around it.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	core, err := Bootstrap(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	// Create manual flush trigger channel
	flushTrigger := make(chan struct{}, 1)

	flusher := scheduler.NewFlusher(
		core.Library,
		loggerClient,
		cfg.FlushInterval,
		flushTrigger,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		AllowedHosts:     cfg.AllowedHosts,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		TrustProxy:       cfg.TrustProxy,
		CORSOrigins:      cfg.CORSOrigins,
		RateBurst:        cfg.RateBurst,
		RateRefillPerMin: cfg.RateRefillPerMin,
		Library:          core.Library,
		Storage:          core.Store,
		MetricsHandler:   core.Metrics.Handler(),
		FlushTrigger:     flushTrigger,
	}

	return &App{
		cfg:     cfg,
		logger:  loggerClient,
		core:    core,
		server:  httpserver.New(cfg, loggerClient, d),
		flusher: flusher,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Shelf %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Shelf %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.flusher.Start(ctx)
	a.logger.Info("flusher started",
		logger.Duration("interval", a.cfg.FlushInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	// Stop the loop, then write a last snapshot so nothing mutated during
	// an outage is lost if storage is back by now.
	a.flusher.Stop()
	a.flusher.Flush(shutdownCtx)

	if err := a.core.Close(); err != nil {
		a.logger.Warnf("failed to close storage: %v", err)
	} else {
		a.logger.Info("✅ Storage closed cleanly")
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ Shelf stopped cleanly")
	return nil
}
