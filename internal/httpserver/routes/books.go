package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register("books", registerBooks) }

func registerBooks(r chi.Router, d deps.Deps) {
	// One limiter shared by every mutating route, so buckets are per client
	// rather than per endpoint.
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RateRefillPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}))

	r.Get("/books", handlers.ListBooks(d))
	r.Get("/books/{id}", handlers.GetBook(d))

	limited.Post("/books", handlers.AddBook(d))
	limited.Patch("/books/{id}", handlers.UpdateBook(d))
	limited.Delete("/books/{id}", handlers.RemoveBook(d))
	limited.Post("/books/{id}/toggle", handlers.ToggleBook(d))
}
