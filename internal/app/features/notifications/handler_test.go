package notifications_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/taskhive/internal/app/features/notifications"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/dalemusser/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*notifications.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return notifications.NewHandler(db, apierror.NewErrorLogger(logger), logger), db
}

func TestListWithUnreadCount(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	me := fx.CreateUser(ctx, "Me", "me@example.com", "user")
	other := fx.CreateUser(ctx, "Other", "other@example.com", "user")

	fx.CreateNotification(ctx, me.ID, other.ID, "task-assigned", "first")
	fx.CreateNotification(ctx, me.ID, other.ID, "task-updated", "second")
	fx.CreateNotification(ctx, other.ID, me.ID, "task-updated", "not mine")

	rec := testutil.NewRecorder()
	h.HandleList(rec, testutil.NewAuthenticatedRequest("GET", "/api/notifications", testutil.UserFor(me)))
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int64                 `json:"unreadCount"`
	}
	rec.DecodeData(t, &got)
	if len(got.Notifications) != 2 {
		t.Errorf("notifications: got %d, want 2", len(got.Notifications))
	}
	if got.UnreadCount != 2 {
		t.Errorf("unreadCount: got %d, want 2", got.UnreadCount)
	}
}

func TestMarkReadRecipientGuard(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	me := fx.CreateUser(ctx, "Me", "me@example.com", "user")
	other := fx.CreateUser(ctx, "Other", "other@example.com", "user")
	n := fx.CreateNotification(ctx, me.ID, other.ID, "task-assigned", "hello")

	// Someone else's mark-read attempt looks like a missing notification.
	req := testutil.NewAuthenticatedRequest("PUT", "/api/notifications/"+n.ID.Hex()+"/read", testutil.UserFor(other))
	req = testutil.WithChiURLParam(req, "notificationID", n.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleMarkRead(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)

	req = testutil.NewAuthenticatedRequest("PUT", "/api/notifications/"+n.ID.Hex()+"/read", testutil.UserFor(me))
	req = testutil.WithChiURLParam(req, "notificationID", n.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleMarkRead(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	if cnt, err := db.Collection("notifications").CountDocuments(ctx, map[string]any{
		"_id": n.ID, "read": true,
	}); err != nil || cnt != 1 {
		t.Errorf("notification not marked read: n=%d err=%v", cnt, err)
	}
}

func TestMarkAllRead(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	me := fx.CreateUser(ctx, "Me", "me@example.com", "user")
	other := fx.CreateUser(ctx, "Other", "other@example.com", "user")
	fx.CreateNotification(ctx, me.ID, other.ID, "task-assigned", "one")
	fx.CreateNotification(ctx, me.ID, other.ID, "task-updated", "two")

	rec := testutil.NewRecorder()
	h.HandleMarkAllRead(rec, testutil.NewAuthenticatedRequest("PUT", "/api/notifications/read-all", testutil.UserFor(me)))
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Marked int64 `json:"marked"`
	}
	rec.DecodeData(t, &got)
	if got.Marked != 2 {
		t.Errorf("marked: got %d, want 2", got.Marked)
	}
}

func TestDeleteNotification(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	me := fx.CreateUser(ctx, "Me", "me@example.com", "user")
	other := fx.CreateUser(ctx, "Other", "other@example.com", "user")
	n := fx.CreateNotification(ctx, me.ID, other.ID, "task-assigned", "bye")

	req := testutil.NewAuthenticatedRequest("DELETE", "/api/notifications/"+n.ID.Hex(), testutil.UserFor(me))
	req = testutil.WithChiURLParam(req, "notificationID", n.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	if cnt, err := db.Collection("notifications").CountDocuments(ctx, map[string]any{"_id": n.ID}); err != nil || cnt != 0 {
		t.Errorf("notification still present: n=%d err=%v", cnt, err)
	}
}
