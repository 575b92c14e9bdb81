// internal/app/features/news/routes.go
package news

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/news.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeArticle)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.HandleCreate)
		r.Patch("/{id}", h.HandlePatch)
		r.Put("/{id}", h.HandlePatch)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}
