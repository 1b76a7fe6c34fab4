// Package api wires the HTTP surface: routing, middleware and handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/middleware"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/response"
)

// Dependencies holds the middleware and handlers the router assembles.
// Nil handlers answer 501 so the router can be built incrementally in
// tests.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	StartJobHandler http.HandlerFunc
	GetJobHandler   http.HandlerFunc

	CreateTripHandler  http.HandlerFunc
	ListTripsHandler   http.HandlerFunc
	PreviewTripHandler http.HandlerFunc
	ListTasksHandler   http.HandlerFunc
	ItineraryHandler   http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the chi router with the full middleware stack.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check.
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes.
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/jobs", orNotImplemented(deps.StartJobHandler))
		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))

		r.Post("/api/v1/trips", orNotImplemented(deps.CreateTripHandler))
		r.Get("/api/v1/trips", orNotImplemented(deps.ListTripsHandler))
		r.Post("/api/v1/trips/preview", orNotImplemented(deps.PreviewTripHandler))
		r.Get("/api/v1/trips/{tripID}/tasks", orNotImplemented(deps.ListTasksHandler))
		r.Get("/api/v1/trips/{tripID}/itinerary", orNotImplemented(deps.ItineraryHandler))

		// Admin routes.
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
