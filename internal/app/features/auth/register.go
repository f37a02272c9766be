// internal/app/features/auth/register.go
package auth

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/dalemusser/taskhive/internal/app/system/authutil"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/normalize"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.uber.org/zap"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the payload returned after register and login.
type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleRegister creates an account and signs the first session token.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("name is required"))
		return
	}
	if !authutil.ValidEmail(req.Email) {
		h.ErrLog.Respond(w, r, apierror.Validation("a valid email is required"))
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		h.ErrLog.Respond(w, r, apierror.Validation(err.Error()))
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.ErrLog.ServerError(w, r, "hash password", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			h.ErrLog.Respond(w, r, apierror.Validation(err.Error()))
			return
		}
		h.ErrLog.ServerError(w, r, "create user", err)
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), user.Name, user.Email, user.Role)
	if err != nil {
		h.ErrLog.ServerError(w, r, "issue token", err)
		return
	}

	h.Log.Info("account registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", normalize.Email(user.Email)))

	httpjson.Created(w, sessionResponse{Token: token, User: user})
}
