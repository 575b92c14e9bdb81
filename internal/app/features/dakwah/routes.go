// internal/app/features/dakwah/routes.go
package dakwah

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/daily-dakwah.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/highlight", h.ServeHighlighted)
	r.Get("/{id}", h.ServePost)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleEdit)
		r.Patch("/{id}/highlight", h.HandleHighlight)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}
