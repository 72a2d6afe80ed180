package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/version/", h.getServerVersion)
	})

	// batch reconciliation and recency views, one route per entity family
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/sync/notes", h.syncNotes)
		r.Post("/api/sync/bookmarks", h.syncBookmarks)
		r.Post("/api/sync/files", h.syncFiles)

		r.Get("/api/recent/notes", h.recentNotes)
		r.Get("/api/recent/bookmarks", h.recentBookmarks)
		r.Get("/api/recent/files", h.recentFiles)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
