// internal/app/features/auth/login.go
package auth

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/dalemusser/taskhive/internal/app/system/authutil"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// genericLoginError keeps unknown-email and wrong-password
// indistinguishable to the caller.
const genericLoginError = "Invalid email or password."

// HandleLogin verifies credentials and signs a session token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if allowed, reason := h.Limiter.Check(r, req.Email); !allowed {
		h.Log.Warn("login rate limited",
			zap.String("reason", reason),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.ErrLog.Respond(w, r, apierror.RateLimited("Too many attempts. Try again later."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByEmail(ctx, req.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.Authentication(genericLoginError))
			return
		}
		h.ErrLog.ServerError(w, r, "load user for login", err)
		return
	}

	if !authutil.CheckPassword(req.Password, user.PasswordHash) {
		h.ErrLog.Respond(w, r, apierror.Authentication(genericLoginError))
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), user.Name, user.Email, user.Role)
	if err != nil {
		h.ErrLog.ServerError(w, r, "issue token", err)
		return
	}

	// A successful login clears the per-email counter so a user who
	// mistyped a few times isn't locked out after signing in.
	h.Limiter.ResetEmail(req.Email)

	httpjson.OK(w, sessionResponse{Token: token, User: *user})
}

// HandleLogout acknowledges a sign-out. Tokens are stateless, so the
// client discarding its copy is the actual logout; this endpoint exists
// so clients have a uniform call to hook cleanup onto.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	httpjson.NoData(w)
}
