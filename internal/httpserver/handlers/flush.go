package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

type flushResponse struct {
	Queued bool   `json:"queued"`
	Detail string `json:"detail"`
}

// Flush queues a write of any snapshot that has not reached storage yet.
// Only one flush can be pending.
func Flush(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.FlushTrigger <- struct{}{}:
			d.Logger.Info("manual flush triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, d.Logger, http.StatusAccepted, flushResponse{
				Queued: true,
				Detail: "flush triggered",
			})
		default:
			d.Logger.Warn("flush already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, d.Logger, http.StatusTooManyRequests, flushResponse{
				Queued: false,
				Detail: "flush already pending, please wait",
			})
		}
	}
}
