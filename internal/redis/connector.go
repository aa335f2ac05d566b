package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// ErrUnreachable is returned by New when Redis did not answer within
// ConnectTimeout. The client returned alongside it is still usable and
// reconnects on its own once Redis comes back.
var ErrUnreachable = errors.New("redis unreachable")

// ConnectOptions defines Redis connection retry behavior.
type ConnectOptions struct {
	Addr           string        // Redis address (ex: "localhost:6379")
	User           string        // Optional username
	Password       string        // Optional password
	RedisDB        int           // Redis DB number
	DialTimeout    time.Duration // Redis dial timeout
	ReadTimeout    time.Duration // Redis read timeout
	WriteTimeout   time.Duration // Redis write timeout
	PoolSize       int           // Redis connection pool size
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // attempts logged at warn before switching to error
}

// Validate reports every option that would make the retry loop misbehave.
func (o ConnectOptions) Validate() error {
	var errs []error
	positive := []struct {
		name string
		val  time.Duration
	}{
		{"ConnectTimeout", o.ConnectTimeout},
		{"RetryInterval", o.RetryInterval},
		{"MaxWait", o.MaxWait},
		{"PingTimeout", o.PingTimeout},
	}
	for _, p := range positive {
		if p.val <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", p.name, p.val))
		}
	}
	if o.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold))
	}
	return errors.Join(errs...)
}

// New creates a Redis client and waits for it to answer a PING, retrying
// with exponential backoff until ConnectTimeout or ctx is done.
//
// Invalid options return a nil client. An unreachable server returns the
// client together with an error wrapping ErrUnreachable, so callers can
// degrade instead of exiting.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.Validate(); err != nil {
		log.Error("invalid redis options", logger.Error(err))
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	c := &connector{client: client, opts: opts, logger: log}
	if err := c.waitReady(ctx); err != nil {
		return client, err
	}
	return client, nil
}

type connector struct {
	client *redis.Client
	opts   ConnectOptions
	logger logger.Logger
}

func (c *connector) waitReady(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, c.opts.ConnectTimeout)
	defer cancel()

	c.logger.Info("connecting to redis",
		logger.String("addr", c.opts.Addr),
		logger.Duration("timeout", c.opts.ConnectTimeout))

	start := time.Now()
	wait := c.opts.RetryInterval

	for attempt := 1; ; attempt++ {
		err := c.ping(ctx)
		if err == nil {
			c.logConnected(attempt, time.Since(start))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.logger.Error("redis unavailable - continuing without durable storage",
				logger.String("addr", c.opts.Addr),
				logger.Int("attempts", attempt),
				logger.Duration("timeout", c.opts.ConnectTimeout),
				logger.Error(err))
			return fmt.Errorf("%w at %s after %d attempts (timeout: %v): %v",
				ErrUnreachable, c.opts.Addr, attempt, c.opts.ConnectTimeout, err)

		case <-timer.C:
			c.logRetry(attempt, timeLeft(ctx), wait, err)
			wait = min(wait*2, c.opts.MaxWait)
		}
	}
}

func (c *connector) ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, c.opts.PingTimeout)
	defer cancel()
	return c.client.Ping(pingCtx).Err()
}

func (c *connector) logConnected(attempts int, elapsed time.Duration) {
	if attempts == 1 {
		c.logger.Info("connected to redis", logger.String("addr", c.opts.Addr))
		return
	}
	c.logger.Warn("connected to redis after retry",
		logger.String("addr", c.opts.Addr),
		logger.Int("attempts", attempts),
		logger.Duration("elapsed", elapsed))
}

func (c *connector) logRetry(attempt int, remaining, waited time.Duration, err error) {
	fields := []logger.Field{
		logger.String("addr", c.opts.Addr),
		logger.Int("attempt", attempt),
		logger.Duration("next_retry_in", waited),
		logger.Error(err),
	}

	switch {
	case remaining < 10*time.Second:
		c.logger.Error("redis still down - retrying but timeout approaching",
			append(fields, logger.Duration("remaining", remaining))...)
	case attempt <= c.opts.WarnThreshold:
		c.logger.Warn("redis connection failed, retrying", fields...)
	default:
		c.logger.Error("redis still unavailable - connection attempts failing", fields...)
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
