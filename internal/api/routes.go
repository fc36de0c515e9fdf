package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a router with every route configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/achievements", h.ListAchievements)
		r.Get("/achievements/{id}", h.GetAchievement)
		r.Post("/achievements/{id}/toggle", h.ToggleAchievement)
		r.Get("/profiles/{username}", h.GetProfile)
		r.Post("/guide", h.Ask)
	})

	return r
}
