// internal/app/features/auth/reset.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/taskhive/internal/app/store/passwordresets"
	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/dalemusser/taskhive/internal/app/system/authutil"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/mailer"
	"github.com/dalemusser/taskhive/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type forgotRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword issues a reset token and emails the link. The
// response is identical whether or not the account exists, so the
// endpoint cannot be used to probe for registered emails.
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if allowed, reason := h.Limiter.Check(r, req.Email); !allowed {
		h.Log.Warn("forgot-password rate limited",
			zap.String("reason", reason),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.ErrLog.Respond(w, r, apierror.RateLimited("Too many attempts. Try again later."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).GetByEmail(ctx, req.Email)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			h.Log.Error("load user for reset", zap.Error(err))
		}
		// Same success shape as the real path.
		httpjson.NoData(w)
		return
	}

	token, err := h.Resets.Issue(ctx, user.ID)
	if err != nil {
		h.Log.Error("issue reset token", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		httpjson.NoData(w)
		return
	}

	link := h.BaseURL + "/reset-password/" + token
	email := mailer.BuildResetEmail(mailer.ResetEmailData{
		SiteName:  h.SiteName,
		ResetLink: link,
		ExpiresIn: expiresIn(h.Resets.Expiry()),
	})
	email.To = user.Email

	if h.Mailer == nil {
		// Dev setups without SMTP: keep the flow usable.
		h.Log.Info("smtp not configured; reset link not emailed",
			zap.String("user_id", user.ID.Hex()),
			zap.String("reset_link", link))
	} else if err := h.Mailer.Send(email); err != nil {
		h.Log.Error("send reset email", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}

	httpjson.NoData(w)
}

type resetRequest struct {
	Password string `json:"password"`
}

// HandleResetPassword redeems a token and replaces the password.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req resetRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		h.ErrLog.Respond(w, r, apierror.Validation(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pr, err := h.Resets.Redeem(ctx, token)
	if err != nil {
		if err == passwordresets.ErrTokenInvalid {
			h.ErrLog.Respond(w, r, apierror.Authentication("This reset link is invalid or has expired."))
			return
		}
		h.ErrLog.ServerError(w, r, "redeem reset token", err)
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.ErrLog.ServerError(w, r, "hash password", err)
		return
	}
	if err := userstore.New(h.DB).UpdatePasswordHash(ctx, pr.UserID, hash); err != nil {
		h.ErrLog.ServerError(w, r, "store new password", err)
		return
	}

	h.Log.Info("password reset", zap.String("user_id", pr.UserID.Hex()))
	httpjson.NoData(w)
}

// HandleVerifyResetToken reports whether a token is currently redeemable,
// so the reset form can reject dead links before asking for a password.
func (h *Handler) HandleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err := h.Resets.Verify(ctx, token)
	if err != nil {
		if err == passwordresets.ErrTokenInvalid {
			h.ErrLog.Respond(w, r, apierror.Authentication("This reset link is invalid or has expired."))
			return
		}
		h.ErrLog.ServerError(w, r, "verify reset token", err)
		return
	}

	httpjson.OK(w, map[string]bool{"valid": true})
}

// expiresIn renders a duration the way the email template expects,
// e.g. "1 hour" or "30 minutes".
func expiresIn(d time.Duration) string {
	if d >= time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	minutes := int(d.Minutes())
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
