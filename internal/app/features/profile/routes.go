// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// Routes mounts under /api/profile behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeProfile)
	r.Put("/", h.HandleUpdateProfile)
	r.Put("/password", h.HandleChangePassword)
	return r
}
