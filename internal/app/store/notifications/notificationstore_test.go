package notifications_test

import (
	"testing"
	"time"

	"github.com/dalemusser/taskhive/internal/app/store/notifications"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/dalemusser/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_ListForUser_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifications.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	actor := primitive.NewObjectID()

	old := fixtures.CreateNotification(ctx, uid, actor, models.NotifyTaskUpdated, "old")
	// Push the first one back in time so ordering is deterministic.
	_, _ = db.Collection("notifications").UpdateByID(ctx, old.ID,
		bson.M{"$set": bson.M{"created_at": time.Now().Add(-time.Hour)}})
	fixtures.CreateNotification(ctx, uid, actor, models.NotifyCommentAdded, "new")
	fixtures.CreateNotification(ctx, primitive.NewObjectID(), actor, models.NotifyTaskUpdated, "other user")

	got, err := store.ListForUser(ctx, uid, 0, 50)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got))
	}
	if got[0].Message != "new" {
		t.Errorf("first item: got %q, want the newest", got[0].Message)
	}
}

func TestStore_MarkRead_RecipientGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifications.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	n := fixtures.CreateNotification(ctx, uid, primitive.NewObjectID(), models.NotifyTaskAssigned, "hi")

	// Someone else cannot mark it read.
	if err := store.MarkRead(ctx, n.ID, stranger); err != mongo.ErrNoDocuments {
		t.Fatalf("expected ErrNoDocuments for wrong recipient, got %v", err)
	}

	if err := store.MarkRead(ctx, n.ID, uid); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	count, err := store.UnreadCount(ctx, uid)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("unread count: got %d, want 0", count)
	}
}

func TestStore_MarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifications.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	actor := primitive.NewObjectID()
	fixtures.CreateNotification(ctx, uid, actor, models.NotifyTaskUpdated, "a")
	fixtures.CreateNotification(ctx, uid, actor, models.NotifyTaskUpdated, "b")
	fixtures.CreateNotification(ctx, uid, actor, models.NotifyTaskUpdated, "c")

	before, _ := store.UnreadCount(ctx, uid)
	if before != 3 {
		t.Fatalf("unread before: got %d, want 3", before)
	}

	n, err := store.MarkAllRead(ctx, uid)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if n != 3 {
		t.Errorf("marked %d, want 3", n)
	}

	after, _ := store.UnreadCount(ctx, uid)
	if after != 0 {
		t.Errorf("unread after: got %d, want 0", after)
	}
}

func TestStore_Delete_RecipientGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifications.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	n := fixtures.CreateNotification(ctx, uid, primitive.NewObjectID(), models.NotifyMemberAdded, "x")

	if err := store.Delete(ctx, n.ID, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Fatalf("expected ErrNoDocuments for wrong recipient, got %v", err)
	}
	if err := store.Delete(ctx, n.ID, uid); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}

func TestStore_CreateMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifications.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	recipients := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	batch := make([]models.Notification, 0, len(recipients))
	for _, r := range recipients {
		batch = append(batch, models.Notification{
			RecipientID: r,
			ActorID:     actor,
			Type:        models.NotifyProjectUpdate,
			Message:     "project changed",
		})
	}
	if err := store.CreateMany(ctx, batch); err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}

	for _, r := range recipients {
		count, err := store.UnreadCount(ctx, r)
		if err != nil {
			t.Fatalf("UnreadCount failed: %v", err)
		}
		if count != 1 {
			t.Errorf("recipient %s: unread %d, want 1", r.Hex(), count)
		}
	}

	// Empty batch is a no-op, not an error.
	if err := store.CreateMany(ctx, nil); err != nil {
		t.Errorf("CreateMany(nil) = %v", err)
	}
}

func TestStore_PurgeRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifications.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	actor := primitive.NewObjectID()

	oldRead := fixtures.CreateNotification(ctx, uid, actor, models.NotifyTaskUpdated, "old read")
	oldUnread := fixtures.CreateNotification(ctx, uid, actor, models.NotifyTaskUpdated, "old unread")
	recent := fixtures.CreateNotification(ctx, uid, actor, models.NotifyTaskUpdated, "recent read")

	past := time.Now().Add(-48 * time.Hour)
	_, _ = db.Collection("notifications").UpdateByID(ctx, oldRead.ID,
		bson.M{"$set": bson.M{"created_at": past, "read": true}})
	_, _ = db.Collection("notifications").UpdateByID(ctx, oldUnread.ID,
		bson.M{"$set": bson.M{"created_at": past}})
	_, _ = db.Collection("notifications").UpdateByID(ctx, recent.ID,
		bson.M{"$set": bson.M{"read": true}})

	n, err := store.PurgeRead(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeRead failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1 (only old+read)", n)
	}

	remaining, _ := store.ListForUser(ctx, uid, 0, 50)
	if len(remaining) != 2 {
		t.Errorf("%d notifications remain, want 2", len(remaining))
	}
}
