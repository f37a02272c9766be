// internal/app/features/tasks/routes.go
package tasks

import (
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)

	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", h.ServeTask)
		r.Put("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)

		r.Post("/comments", h.HandleAddComment)
		r.Put("/comments/{commentID}", h.HandleUpdateComment)
		r.Delete("/comments/{commentID}", h.HandleDeleteComment)

		r.Post("/subtasks", h.HandleAddSubtask)
		r.Put("/subtasks/{subtaskID}/toggle", h.HandleToggleSubtask)
	})

	return r
}
