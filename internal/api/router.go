package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/dagaz/internal/dayservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /stream inside the auth group.
func NewRouter(svc *dayservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Events CRUD and relocation.
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Get("/events/{fingerprint}", h.GetEvent)
	r.Delete("/events/{fingerprint}", h.DeleteEvent)
	r.Post("/events/{fingerprint}/move", h.MoveEvent)
	r.Post("/events/{fingerprint}/duplicate", h.DuplicateEvent)

	// Day view.
	r.Get("/day/{date}", h.DayEvents)

	// Search.
	r.Get("/search", h.Search)

	// Note attachments.
	r.Get("/notes/{id}", h.GetNote)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/stream", sseHandler.ServeHTTP)
	}

	return r
}
