// internal/app/features/notifications/routes.go
package notifications

import (
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Put("/read-all", h.HandleMarkAllRead)
	r.Put("/{notificationID}/read", h.HandleMarkRead)
	r.Delete("/{notificationID}", h.HandleDelete)

	return r
}
