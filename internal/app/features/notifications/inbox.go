// internal/app/features/notifications/inbox.go
package notifications

import (
	"context"
	"net/http"

	notifstore "github.com/dalemusser/taskhive/internal/app/store/notifications"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/paging"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

type listResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
	Meta          paging.Meta           `json:"meta"`
}

// HandleList returns the caller's notifications, newest first, with the
// unread total for the badge.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := notifstore.New(h.DB)
	rows, err := store.ListForUser(ctx, uid, page.Skip(), page.LookAhead())
	if err != nil {
		h.ErrLog.ServerError(w, r, "list notifications", err)
		return
	}
	unread, err := store.UnreadCount(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "count unread notifications", err)
		return
	}

	rows, hasNext := paging.Trim(rows, page.Limit)
	if rows == nil {
		rows = []models.Notification{}
	}
	httpjson.OK(w, listResponse{
		Notifications: rows,
		UnreadCount:   unread,
		Meta:          paging.MetaFor(page, hasNext),
	})
}

// HandleMarkRead marks one of the caller's notifications as read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	id, err := notificationID(r)
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Notification not found."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := notifstore.New(h.DB).MarkRead(ctx, id, uid); err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Notification not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "mark notification read", err)
		return
	}
	httpjson.NoData(w)
}

// HandleMarkAllRead marks every unread notification as read.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := notifstore.New(h.DB).MarkAllRead(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "mark all notifications read", err)
		return
	}
	httpjson.OK(w, map[string]int64{"marked": n})
}

// HandleDelete removes one of the caller's notifications.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	id, err := notificationID(r)
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Notification not found."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := notifstore.New(h.DB).Delete(ctx, id, uid); err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Notification not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "delete notification", err)
		return
	}
	httpjson.NoData(w)
}
