package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogger)
	router.Use(h.withLogging)

	// read-only surface for the device UI shell
	router.Group(func(r chi.Router) {
		r.Get("/api/status", h.status)
		r.Get("/api/pending", h.pendingSummary)
	})

	return router
}
