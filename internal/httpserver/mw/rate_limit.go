package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// RateLimitConfig configures a per-client token bucket limiter.
type RateLimitConfig struct {
	Burst             int              // bucket capacity
	RefillPerIPPerMin int              // tokens added per minute
	MaxEntries        int              // sweep early once this many clients are tracked (0 = no cap)
	SweepInterval     time.Duration    // how often idle buckets are dropped
	IdleTTL           time.Duration    // a bucket unused this long is dropped
	TrustProxy        bool             // resolve IP from proxy headers when true
	Now               func() time.Time // clock, defaults to time.Now
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// tokenBucket is one client's allowance.
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	updated  time.Time
	lastSeen time.Time
}

// take refills the bucket up to capacity, then spends one token if it can.
// On refusal it returns how long until a token is available.
func (b *tokenBucket) take(now time.Time, capacity, perSec float64) (ok bool, remaining int, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.updated).Seconds(); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+elapsed*perSec)
		b.updated = now
	}

	if b.tokens < 1 {
		missing := 1 - b.tokens
		return false, 0, time.Duration(missing / perSec * float64(time.Second))
	}

	b.tokens--
	b.lastSeen = now
	return true, int(b.tokens), 0
}

func (b *tokenBucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastSeen)
}

// clientBuckets maps client IPs to buckets and drops idle ones.
type clientBuckets struct {
	cfg       RateLimitConfig
	perSec    float64
	capacity  float64
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	lastSweep time.Time
}

func newClientBuckets(cfg RateLimitConfig) *clientBuckets {
	return &clientBuckets{
		cfg:       cfg,
		perSec:    float64(cfg.RefillPerIPPerMin) / 60,
		capacity:  float64(cfg.Burst),
		buckets:   make(map[string]*tokenBucket, 1024),
		lastSweep: cfg.Now(),
	}
}

func (c *clientBuckets) get(ip string, now time.Time) *tokenBucket {
	c.mu.Lock()
	defer c.mu.Unlock()

	full := c.cfg.MaxEntries > 0 && len(c.buckets) >= c.cfg.MaxEntries
	if full || now.Sub(c.lastSweep) >= c.cfg.SweepInterval {
		c.sweepLocked(now)
	}

	b, ok := c.buckets[ip]
	if !ok {
		b = &tokenBucket{tokens: c.capacity, updated: now, lastSeen: now}
		c.buckets[ip] = b
	}
	return b
}

func (c *clientBuckets) sweepLocked(now time.Time) {
	for ip, b := range c.buckets {
		if b.idleSince(now) > c.cfg.IdleTTL {
			delete(c.buckets, ip)
		}
	}
	c.lastSweep = now
}

// RateLimit rejects requests with 429 once a client has spent its burst.
// Tokens refill continuously at RefillPerIPPerMin.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	clients := newClientBuckets(cfg)
	limit := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := cfg.Now()
			ip := utils.ClientIP(r, cfg.TrustProxy)

			ok, remaining, wait := clients.get(ip, now).take(now, clients.capacity, clients.perSec)

			// Headers must be set before the handler writes its status line.
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				retry := max(int(math.Ceil(wait.Seconds())), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
