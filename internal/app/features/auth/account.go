// internal/app/features/auth/account.go
package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/store/notifications"
	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/authutil"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleChangePassword verifies the current password and replaces it.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	var req changePasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		h.ErrLog.Respond(w, r, apierror.Validation(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := userstore.New(h.DB)
	user, err := store.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "load user for password change", err)
		return
	}

	if !authutil.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		h.ErrLog.Respond(w, r, apierror.Authentication("Current password is incorrect."))
		return
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		h.ErrLog.ServerError(w, r, "hash password", err)
		return
	}
	if err := store.UpdatePasswordHash(ctx, uid, hash); err != nil {
		h.ErrLog.ServerError(w, r, "store new password", err)
		return
	}

	h.Log.Info("password changed", zap.String("user_id", uid.Hex()))
	httpjson.NoData(w)
}

// HandleDeleteAccount removes the account and its personal footprint:
// personal tasks, notifications, reset tokens, project memberships, and
// any task assignments. Projects the user owns survive with their owner
// gone dark; transferring ownership is a product decision deferred until
// someone asks for it.
func (h *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// Each cleanup step is independent; a failure aborts so a retry can
	// finish the job (all steps are idempotent).
	if _, err := taskstore.New(h.DB).DeletePersonalByUser(ctx, uid); err != nil {
		h.ErrLog.ServerError(w, r, "delete personal tasks", err)
		return
	}
	if _, err := taskstore.New(h.DB).UnassignUser(ctx, uid, nil); err != nil {
		h.ErrLog.ServerError(w, r, "unassign tasks", err)
		return
	}
	if _, err := projectstore.New(h.DB).RemoveUserFromAll(ctx, uid); err != nil {
		h.ErrLog.ServerError(w, r, "remove project memberships", err)
		return
	}
	if _, err := notifications.New(h.DB).DeleteByRecipient(ctx, uid); err != nil {
		h.ErrLog.ServerError(w, r, "delete notifications", err)
		return
	}
	if err := h.Resets.DeleteByUser(ctx, uid); err != nil {
		h.ErrLog.ServerError(w, r, "delete reset tokens", err)
		return
	}

	n, err := userstore.New(h.DB).Delete(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "delete user", err)
		return
	}
	if n == 0 {
		h.ErrLog.Respond(w, r, apierror.NotFound("Account not found."))
		return
	}

	h.Log.Info("account deleted", zap.String("user_id", uid.Hex()))
	httpjson.NoData(w)
}
