// internal/app/features/sliders/routes.go
package sliders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/home-sliders. Reads are public; requireAdmin
// gates every change.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeSlider)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleEdit)
		r.Put("/{id}/visibility", h.HandleVisibility)
		r.Patch("/{id}/visibility", h.HandleVisibility)
		r.Put("/{id}/highlight", h.HandleVisibility)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}
