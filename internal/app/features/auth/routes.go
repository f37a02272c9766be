// internal/app/features/auth/routes.go
package auth

import (
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/forgot-password", h.HandleForgotPassword)
	r.Post("/reset-password/{token}", h.HandleResetPassword)
	r.Get("/verify-reset-token/{token}", h.HandleVerifyResetToken)

	// Authenticated
	r.Group(func(r chi.Router) {
		r.Use(sysauth.RequireSignedIn)
		r.Get("/profile", h.ServeProfile)
		r.Put("/profile", h.HandleUpdateProfile)
		r.Put("/password", h.HandleChangePassword)
		r.Post("/logout", h.HandleLogout)
		r.Delete("/account", h.HandleDeleteAccount)
	})

	return r
}
