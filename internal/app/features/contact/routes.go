// internal/app/features/contact/routes.go
package contact

import "github.com/go-chi/chi/v5"

// Routes mounts under /api/contact-us.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeContact)
	return r
}
