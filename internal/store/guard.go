package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// GuardConfig tunes the circuit breaker placed in front of a Backend.
type GuardConfig struct {
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // window after which closed-state counts reset
	Timeout          time.Duration // how long the breaker stays open
	ConsecutiveFails uint32        // failures in a row that trip the breaker
}

// DefaultGuardConfig suits a network medium such as Redis.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		ConsecutiveFails: 3,
	}
}

type guarded struct {
	next Backend
	cb   *gobreaker.CircuitBreaker
}

// Guard wraps next with a circuit breaker. While open, every call fails
// immediately with ErrUnavailable instead of waiting on a dead medium.
func Guard(next Backend, cfg GuardConfig, log logger.Logger) Backend {
	if cfg.ConsecutiveFails == 0 {
		cfg.ConsecutiveFails = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFails
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("storage circuit breaker state changed",
				logger.String("backend", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
		// A missing key is a healthy answer
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformed)
		},
	})

	return &guarded{next: next, cb: cb}
}

func (g *guarded) Name() string { return g.next.Name() }

func (g *guarded) Get(ctx context.Context, key string) (string, error) {
	v, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Get(ctx, key)
	})
	if err != nil {
		return "", g.translate(err)
	}
	return v.(string), nil
}

func (g *guarded) Set(ctx context.Context, key, value string) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.next.Set(ctx, key, value)
	})
	return g.translate(err)
}

func (g *guarded) Delete(ctx context.Context, key string) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.next.Delete(ctx, key)
	})
	return g.translate(err)
}

func (g *guarded) Close() error { return g.next.Close() }

func (g *guarded) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s circuit %v", ErrUnavailable, g.next.Name(), err)
	}
	return err
}
