// internal/app/features/auth/profile.go
package auth

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/sanitize"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeProfile returns the signed-in user's own record.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Token outlived the account.
			h.ErrLog.Respond(w, r, apierror.Authentication("Account no longer exists."))
			return
		}
		h.ErrLog.ServerError(w, r, "load profile", err)
		return
	}

	httpjson.OK(w, user)
}

type profileUpdateRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Location *string `json:"location"`
}

// HandleUpdateProfile applies a partial profile update and returns the
// refreshed record.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	var req profileUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("name cannot be empty"))
		return
	}

	// User-supplied free text is sanitized before it is stored.
	if req.Bio != nil {
		clean := sanitize.Text(*req.Bio)
		req.Bio = &clean
	}
	if req.Location != nil {
		clean := sanitize.Text(*req.Location)
		req.Location = &clean
	}
	if req.Avatar != nil {
		clean := strings.TrimSpace(*req.Avatar)
		req.Avatar = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := userstore.New(h.DB)
	if err := store.UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		Name:     req.Name,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Location: req.Location,
	}); err != nil {
		h.ErrLog.ServerError(w, r, "update profile", err)
		return
	}

	user, err := store.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload profile", err)
		return
	}
	httpjson.OK(w, user)
}
