package projects_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/taskhive/internal/app/features/projects"
	"github.com/dalemusser/taskhive/internal/app/store/notifications"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/dalemusser/taskhive/internal/app/system/notify"
	"github.com/dalemusser/taskhive/internal/app/system/realtime"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/dalemusser/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*projects.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := apierror.NewErrorLogger(logger)
	notifier := notify.New(notifications.New(db), realtime.NewHub(logger), logger)
	return projects.NewHandler(db, errLog, logger, notifier), db
}

func TestListScopedToCaller(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	member := fx.CreateUser(ctx, "Member", "member@example.com", "user")
	outsider := fx.CreateUser(ctx, "Outsider", "outsider@example.com", "user")

	mine := fx.CreateProject(ctx, "Mine", owner.ID)
	fx.AddProjectMember(ctx, mine.ID, member.ID, "member")
	fx.CreateProject(ctx, "Theirs", outsider.ID)

	var got struct {
		Projects []models.Project `json:"projects"`
	}

	rec := testutil.NewRecorder()
	h.HandleList(rec, testutil.NewAuthenticatedRequest("GET", "/api/projects", testutil.UserFor(member)))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeData(t, &got)
	if len(got.Projects) != 1 || got.Projects[0].ID != mine.ID {
		t.Errorf("member listing: got %d projects", len(got.Projects))
	}

	rec = testutil.NewRecorder()
	h.HandleList(rec, testutil.NewAuthenticatedRequest("GET", "/api/projects?search=mine", testutil.UserFor(owner)))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeData(t, &got)
	if len(got.Projects) != 1 {
		t.Errorf("search listing: got %d projects, want 1", len(got.Projects))
	}
}

func TestCreateProject(t *testing.T) {
	h, _ := newTestHandler(t)
	owner := testutil.RegularUser()

	req := testutil.NewJSONRequest("POST", "/api/projects", map[string]any{
		"name":        "Launch",
		"description": "Get <b>ready</b>",
		"priority":    "high",
	}, owner)
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var got models.Project
	rec.DecodeData(t, &got)
	if got.Status != models.ProjectPlanning {
		t.Errorf("default status: got %q", got.Status)
	}
	if got.Priority != models.PriorityHigh {
		t.Errorf("priority: got %q", got.Priority)
	}
	if got.Description != "Get ready" {
		t.Errorf("description not sanitized: got %q", got.Description)
	}
	if got.OwnerID.Hex() != owner.ID {
		t.Errorf("owner: got %s", got.OwnerID.Hex())
	}
}

func TestCreateProjectValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	owner := testutil.RegularUser()

	for name, body := range map[string]map[string]any{
		"empty name": {"name": "   "},
		"bad status": {"name": "X", "status": "someday"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/projects", body, owner))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestServeProjectHiddenFromOutsiders(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	outsider := fx.CreateUser(ctx, "Outsider", "outsider@example.com", "user")
	project := fx.CreateProject(ctx, "Secret", owner.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/api/projects/"+project.ID.Hex(), testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeProject(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	// Outsiders get the same 404 as a missing project.
	req = testutil.NewAuthenticatedRequest("GET", "/api/projects/"+project.ID.Hex(), testutil.UserFor(outsider))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec = testutil.NewRecorder()
	h.ServeProject(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestUpdateProjectPermissions(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	manager := fx.CreateUser(ctx, "Manager", "manager@example.com", "user")
	member := fx.CreateUser(ctx, "Member", "member@example.com", "user")
	project := fx.CreateProject(ctx, "Launch", owner.ID)
	fx.AddProjectMember(ctx, project.ID, manager.ID, "manager")
	fx.AddProjectMember(ctx, project.ID, member.ID, "member")

	body := map[string]any{"status": "in-progress"}

	req := testutil.NewJSONRequest("PUT", "/api/projects/"+project.ID.Hex(), body, testutil.UserFor(manager))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got models.Project
	rec.DecodeData(t, &got)
	if got.Status != models.ProjectInProgress {
		t.Errorf("status after update: got %q", got.Status)
	}

	// Plain members cannot update.
	req = testutil.NewJSONRequest("PUT", "/api/projects/"+project.ID.Hex(), body, testutil.UserFor(member))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The update notified the rest of the team.
	n, err := notifications.New(db).UnreadCount(ctx, member.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if n != 1 {
		t.Errorf("member notifications: got %d, want 1", n)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	member := fx.CreateUser(ctx, "Member", "member@example.com", "user")
	project := fx.CreateProject(ctx, "Doomed", owner.ID)
	fx.AddProjectMember(ctx, project.ID, member.ID, "member")
	fx.CreateTask(ctx, "In project", owner.ID, &project.ID)
	personal := fx.CreateTask(ctx, "Personal", owner.ID, nil)

	// Members cannot delete.
	req := testutil.NewAuthenticatedRequest("DELETE", "/api/projects/"+project.ID.Hex(), testutil.UserFor(member))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	req = testutil.NewAuthenticatedRequest("DELETE", "/api/projects/"+project.ID.Hex(), testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	if n, err := db.Collection("projects").CountDocuments(ctx, map[string]any{"_id": project.ID}); err != nil || n != 0 {
		t.Errorf("project still present: n=%d err=%v", n, err)
	}
	if n, err := db.Collection("tasks").CountDocuments(ctx, map[string]any{"project_id": project.ID}); err != nil || n != 0 {
		t.Errorf("project tasks still present: n=%d err=%v", n, err)
	}
	if n, err := db.Collection("tasks").CountDocuments(ctx, map[string]any{"_id": personal.ID}); err != nil || n != 1 {
		t.Errorf("personal task should survive: n=%d err=%v", n, err)
	}
}

func TestAddMemberByEmail(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	joiner := fx.CreateUser(ctx, "Joiner", "joiner@example.com", "user")
	project := fx.CreateProject(ctx, "Launch", owner.ID)

	req := testutil.NewJSONRequest("POST", "/api/projects/"+project.ID.Hex()+"/members",
		map[string]string{"email": "Joiner@Example.com", "role": "manager"}, testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleAddMember(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var got models.Project
	rec.DecodeData(t, &got)
	if got.MemberRole(joiner.ID) != "manager" {
		t.Errorf("joiner role: got %q", got.MemberRole(joiner.ID))
	}

	// Already on the project.
	req = testutil.NewJSONRequest("POST", "/api/projects/"+project.ID.Hex()+"/members",
		map[string]string{"email": "joiner@example.com", "role": "member"}, testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleAddMember(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)

	// Unknown email.
	req = testutil.NewJSONRequest("POST", "/api/projects/"+project.ID.Hex()+"/members",
		map[string]string{"email": "ghost@example.com", "role": "member"}, testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleAddMember(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)

	// The newcomer was told.
	n, err := notifications.New(db).UnreadCount(ctx, joiner.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if n != 1 {
		t.Errorf("joiner notifications: got %d, want 1", n)
	}
}

func TestServeMembersOwnerFirst(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	member := fx.CreateUser(ctx, "Member", "member@example.com", "user")
	project := fx.CreateProject(ctx, "Launch", owner.ID)
	fx.AddProjectMember(ctx, project.ID, member.ID, "member")

	req := testutil.NewAuthenticatedRequest("GET", "/api/projects/"+project.ID.Hex()+"/members", testutil.UserFor(member))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeMembers(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Members []struct {
			User models.PublicProfile `json:"user"`
			Role string               `json:"role"`
		} `json:"members"`
	}
	rec.DecodeData(t, &got)
	if len(got.Members) != 2 {
		t.Fatalf("members: got %d, want 2", len(got.Members))
	}
	if got.Members[0].Role != "owner" || got.Members[0].User.ID != owner.ID {
		t.Errorf("first row should be the owner, got %+v", got.Members[0])
	}
}

func TestRemoveMember(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	leaver := fx.CreateUser(ctx, "Leaver", "leaver@example.com", "user")
	bystander := fx.CreateUser(ctx, "Bystander", "bystander@example.com", "user")
	project := fx.CreateProject(ctx, "Launch", owner.ID)
	fx.AddProjectMember(ctx, project.ID, leaver.ID, "member")
	fx.AddProjectMember(ctx, project.ID, bystander.ID, "member")

	task := fx.CreateTask(ctx, "Assigned work", owner.ID, &project.ID)
	if _, err := db.Collection("tasks").UpdateByID(ctx, task.ID,
		map[string]any{"$set": map[string]any{"assignee_id": leaver.ID}}); err != nil {
		t.Fatalf("assign task: %v", err)
	}

	// A plain member cannot remove someone else.
	req := testutil.NewAuthenticatedRequest("DELETE",
		"/api/projects/"+project.ID.Hex()+"/members/"+bystander.ID.Hex(), testutil.UserFor(leaver))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", bystander.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleRemoveMember(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The owner cannot be removed.
	req = testutil.NewAuthenticatedRequest("DELETE",
		"/api/projects/"+project.ID.Hex()+"/members/"+owner.ID.Hex(), testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", owner.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleRemoveMember(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)

	// Leaving the project is allowed and clears the member's assignments.
	req = testutil.NewAuthenticatedRequest("DELETE",
		"/api/projects/"+project.ID.Hex()+"/members/"+leaver.ID.Hex(), testutil.UserFor(leaver))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", leaver.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleRemoveMember(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	if n, err := db.Collection("projects").CountDocuments(ctx, map[string]any{
		"_id": project.ID, "members.user_id": leaver.ID,
	}); err != nil || n != 0 {
		t.Errorf("leaver still a member: n=%d err=%v", n, err)
	}
	if n, err := db.Collection("tasks").CountDocuments(ctx, map[string]any{
		"_id": task.ID, "assignee_id": leaver.ID,
	}); err != nil || n != 0 {
		t.Errorf("leaver still assigned: n=%d err=%v", n, err)
	}
}
