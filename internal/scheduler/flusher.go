package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Snapshotter writes the in-memory state to durable storage when it has
// not landed yet. *library.Library implements it.
type Snapshotter interface {
	Persist(ctx context.Context) (bool, error)
}

// Flusher re-persists the library snapshot periodically and on demand.
//
// Mutations already persist synchronously. The flusher exists for the case
// where the medium was down during a mutation and has since come back: the
// next flush brings durable state level with memory again. A snapshot that
// already landed is never rewritten, so other writers sharing the medium
// are left alone.
type Flusher struct {
	snap          Snapshotter
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewFlusher creates a new flusher
func NewFlusher(
	snap Snapshotter,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Flusher {
	return &Flusher{
		snap:          snap,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic flush loop. A non-positive interval disables
// the ticker; manual triggers still work.
func (f *Flusher) Start(ctx context.Context) {
	f.started.Store(true)

	go func() {
		defer close(f.done)

		var tick <-chan time.Time
		if f.interval > 0 {
			ticker := time.NewTicker(f.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				f.Flush(ctx)
			case <-f.manualTrigger:
				f.logger.Info("manual flush triggered")
				f.Flush(ctx)
			case <-f.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the flusher and waits for the loop to exit.
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() { close(f.stopCh) })
	if f.started.Load() {
		<-f.done
	}
}

// Flush writes the snapshot if an earlier write did not land. It reports
// whether a write happened without error.
func (f *Flusher) Flush(ctx context.Context) bool {
	written, err := f.snap.Persist(ctx)
	if err != nil {
		f.logger.Warn("failed to flush library", logger.Error(err))
		return false
	}
	if !written {
		f.logger.Debug("nothing to flush")
		return false
	}

	f.logger.Info("library flushed to storage")
	return true
}
