package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	Books         *int   `json:"books,omitempty"`
	NextID        *int   `json:"next_id,omitempty"`
	Source        string `json:"source,omitempty"`
	LastPersisted string `json:"last_persisted,omitempty"`
	PendingWrite  bool   `json:"pending_write,omitempty"`
	Backend       string `json:"backend,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books := d.Library.Len()
		nextID := d.Library.NextID()
		lastPersisted := d.Library.LastPersisted()
		lastPersistedStr := "never"
		if !lastPersisted.IsZero() {
			lastPersistedStr = lastPersisted.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"library": {
				OK:            true,
				Books:         &books,
				NextID:        &nextID,
				Source:        string(d.Library.Source()),
				LastPersisted: lastPersistedStr,
				PendingWrite:  d.Library.Dirty(),
			},
			"storage": checkStorage(r, d),
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if storage, exists := components["storage"]; exists && !storage.OK {
		return "memory-only" // changes are lost on restart
	}
	return "durable"
}

func checkStorage(r *http.Request, d deps.Deps) componentStatus {
	backend := "none"
	if d.Storage != nil {
		backend = d.Storage.Backend()
	}

	if !probeStorage(r.Context(), d) {
		return componentStatus{
			OK:      false,
			Backend: backend,
			Mode:    "degraded",
			Impact:  "changes-not-persisted",
		}
	}

	return componentStatus{
		OK:      true,
		Backend: backend,
		Mode:    "optimal",
		Impact:  "changes-persisted",
	}
}
