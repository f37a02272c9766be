// internal/app/features/analytics/routes.go
package analytics

import (
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)

	r.Get("/dashboard", h.ServeDashboard)
	r.Get("/tasks", h.ServeTaskBreakdown)
	r.Get("/projects", h.ServeProjectBreakdown)

	return r
}
