package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/library"
)

type readyzResponse struct {
	Ready            bool   `json:"ready"`
	Source           string `json:"source,omitempty"`
	StorageAvailable bool   `json:"storage_available"`
}

// Readyz answers 200 once the library has been bootstrapped. Storage being
// down does not make the service unready; it only stops persisting.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src := d.Library.Source()
		resp := readyzResponse{
			Ready:            src != library.SourceNone,
			Source:           string(src),
			StorageAvailable: probeStorage(r.Context(), d),
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, d.Logger, status, resp)
	}
}

func probeStorage(parent context.Context, d deps.Deps) bool {
	if d.Storage == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()
	return d.Storage.IsAvailable(ctx)
}
