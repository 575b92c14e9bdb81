// internal/app/features/auditlog/routes.go
package auditlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/audit-log. Every route requires an administrator.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAdmin)
	r.Get("/", h.ServeList)
	r.Get("/event-types", h.ServeEventTypes)
	return r
}
