package users_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/taskhive/internal/app/features/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/dalemusser/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*users.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return users.NewHandler(db, apierror.NewErrorLogger(logger), logger), db
}

func TestListDirectorySearch(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	fx.CreateUser(ctx, "Grace Field", "grace@example.com", "user")
	fx.CreateUser(ctx, "Henry Stone", "henry@example.com", "user")

	rec := testutil.NewRecorder()
	h.HandleList(rec, testutil.NewAuthenticatedRequest("GET", "/api/users?search=grace", testutil.RegularUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Users []models.PublicProfile `json:"users"`
	}
	rec.DecodeData(t, &got)
	if len(got.Users) != 1 || got.Users[0].Name != "Grace Field" {
		t.Errorf("search: got %+v", got.Users)
	}
}

func TestServeUserPublicOnly(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	user := fx.CreateUser(ctx, "Grace Field", "grace@example.com", "user")

	req := testutil.NewAuthenticatedRequest("GET", "/api/users/"+user.ID.Hex(), testutil.RegularUser())
	req = testutil.WithChiURLParam(req, "userID", user.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeUser(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got models.PublicProfile
	rec.DecodeData(t, &got)
	if got.Name != "Grace Field" {
		t.Errorf("name: got %q", got.Name)
	}
	// The raw body must not leak private fields.
	body := rec.Body.String()
	for _, secret := range []string{`"password_hash"`, `"role"`, `"created_at"`} {
		if strings.Contains(body, secret) {
			t.Errorf("response leaks %s", secret)
		}
	}
}

func TestServeUserMissing(t *testing.T) {
	h, _ := newTestHandler(t)

	id := primitive.NewObjectID().Hex()
	req := testutil.NewAuthenticatedRequest("GET", "/api/users/"+id, testutil.RegularUser())
	req = testutil.WithChiURLParam(req, "userID", id)
	rec := testutil.NewRecorder()
	h.ServeUser(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}
