package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/library"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Storage is the read-only view of durable storage the handlers need.
// *store.Store implements it.
type Storage interface {
	Backend() string
	IsAvailable(ctx context.Context) bool
}

type Deps struct {
	Logger           logger.Logger
	StartTime        time.Time
	Version          string
	Commit           string
	BuildDate        string
	GoVersion        string
	TimeNow          func() time.Time // for testing, defaults to time.Now
	AllowedHosts     []string         // Host headers allowed to access the server
	AllowedCIDRS     []string         // IPs allowed to access status endpoints
	TrustProxy       bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins      []string         // Origins allowed by the CORS middleware
	RateBurst        int              // Mutation burst per client IP
	RateRefillPerMin int              // Mutation refill per client IP per minute
	Library          *library.Library // Authoritative book collection
	Storage          Storage          // Durable storage status
	MetricsHandler   http.Handler     // Prometheus exposition (nil disables /metrics)
	FlushTrigger     chan struct{}    // Channel to trigger a manual snapshot flush
}
