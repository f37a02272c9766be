// internal/app/features/projects/routes.go
package projects

import (
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)

	r.Route("/{projectID}", func(r chi.Router) {
		r.Get("/", h.ServeProject)
		r.Put("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)

		r.Get("/members", h.ServeMembers)
		r.Post("/members", h.HandleAddMember)
		r.Put("/members/{userID}", h.HandleUpdateMemberRole)
		r.Delete("/members/{userID}", h.HandleRemoveMember)
	})

	return r
}
