package tasks_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/taskhive/internal/app/features/tasks"
	"github.com/dalemusser/taskhive/internal/app/store/notifications"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/dalemusser/taskhive/internal/app/system/notify"
	"github.com/dalemusser/taskhive/internal/app/system/realtime"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/dalemusser/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*tasks.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := apierror.NewErrorLogger(logger)
	notifier := notify.New(notifications.New(db), realtime.NewHub(logger), logger)
	return tasks.NewHandler(db, errLog, logger, notifier), db
}

func TestCreatePersonalTask(t *testing.T) {
	h, _ := newTestHandler(t)
	me := testutil.RegularUser()

	req := testutil.NewJSONRequest("POST", "/api/tasks", map[string]any{
		"title":       "Buy stamps",
		"description": "<i>plain</i> text",
	}, me)
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var got models.Task
	rec.DecodeData(t, &got)
	if got.Status != models.TaskTodo || got.Priority != models.PriorityMedium {
		t.Errorf("defaults: status=%q priority=%q", got.Status, got.Priority)
	}
	if got.ProjectID != nil {
		t.Error("personal task should have no project")
	}
	if got.Description != "plain text" {
		t.Errorf("description not sanitized: got %q", got.Description)
	}
}

func TestCreateProjectTaskRequiresMembership(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	outsider := fx.CreateUser(ctx, "Outsider", "outsider@example.com", "user")
	project := fx.CreateProject(ctx, "Launch", owner.ID)

	body := map[string]any{"title": "Plan", "project_id": project.ID.Hex()}

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/tasks", body, testutil.UserFor(outsider)))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/tasks", body, testutil.UserFor(owner)))
	rec.AssertStatus(t, http.StatusCreated)
}

func TestCreateRejectsNonMemberAssignee(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	outsider := fx.CreateUser(ctx, "Outsider", "outsider@example.com", "user")
	member := fx.CreateUser(ctx, "Member", "member@example.com", "user")
	project := fx.CreateProject(ctx, "Launch", owner.ID)
	fx.AddProjectMember(ctx, project.ID, member.ID, "member")

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/tasks", map[string]any{
		"title": "Plan", "project_id": project.ID.Hex(), "assignee_id": outsider.ID.Hex(),
	}, testutil.UserFor(owner)))
	rec.AssertStatus(t, http.StatusBadRequest)

	// A real member works, and gets told about it.
	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/tasks", map[string]any{
		"title": "Plan", "project_id": project.ID.Hex(), "assignee_id": member.ID.Hex(),
	}, testutil.UserFor(owner)))
	rec.AssertStatus(t, http.StatusCreated)

	n, err := notifications.New(db).UnreadCount(ctx, member.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if n != 1 {
		t.Errorf("assignee notifications: got %d, want 1", n)
	}
}

func TestListVisibility(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	member := fx.CreateUser(ctx, "Member", "member@example.com", "user")
	project := fx.CreateProject(ctx, "Launch", owner.ID)
	fx.AddProjectMember(ctx, project.ID, member.ID, "member")

	fx.CreateTask(ctx, "Project work", owner.ID, &project.ID)
	fx.CreateTask(ctx, "Member errand", member.ID, nil)
	fx.CreateTask(ctx, "Owner secret", owner.ID, nil)

	var got struct {
		Tasks []models.Task `json:"tasks"`
	}

	rec := testutil.NewRecorder()
	h.HandleList(rec, testutil.NewAuthenticatedRequest("GET", "/api/tasks", testutil.UserFor(member)))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeData(t, &got)
	if len(got.Tasks) != 2 {
		t.Errorf("member sees %d tasks, want 2 (project + own personal)", len(got.Tasks))
	}

	rec = testutil.NewRecorder()
	h.HandleList(rec, testutil.NewAuthenticatedRequest("GET", "/api/tasks?project="+project.ID.Hex(), testutil.UserFor(member)))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeData(t, &got)
	if len(got.Tasks) != 1 {
		t.Errorf("project filter: got %d tasks, want 1", len(got.Tasks))
	}
}

func TestServeTaskHidden(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	outsider := fx.CreateUser(ctx, "Outsider", "outsider@example.com", "user")
	task := fx.CreateTask(ctx, "Private", owner.ID, nil)

	req := testutil.NewAuthenticatedRequest("GET", "/api/tasks/"+task.ID.Hex(), testutil.UserFor(outsider))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeTask(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)

	req = testutil.NewAuthenticatedRequest("GET", "/api/tasks/"+task.ID.Hex(), testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec = testutil.NewRecorder()
	h.ServeTask(rec, req)
	rec.AssertStatus(t, http.StatusOK)
}

func TestUpdateTaskCompletion(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	task := fx.CreateTask(ctx, "Finish me", owner.ID, nil)

	req := testutil.NewJSONRequest("PUT", "/api/tasks/"+task.ID.Hex(),
		map[string]any{"status": "completed"}, testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got models.Task
	rec.DecodeData(t, &got)
	if got.Status != models.TaskCompleted || got.CompletedAt == nil {
		t.Errorf("completion: status=%q completed_at=%v", got.Status, got.CompletedAt)
	}

	// Reopening clears the completion timestamp.
	req = testutil.NewJSONRequest("PUT", "/api/tasks/"+task.ID.Hex(),
		map[string]any{"status": "todo"}, testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeData(t, &got)
	if got.CompletedAt != nil {
		t.Error("completed_at should be cleared on reopen")
	}
}

func TestDeleteTaskRemovesNotifications(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	other := fx.CreateUser(ctx, "Other", "other@example.com", "user")
	task := fx.CreateTask(ctx, "Doomed", owner.ID, nil)

	n := fx.CreateNotification(ctx, other.ID, owner.ID, "task-updated", "ref")
	if _, err := db.Collection("notifications").UpdateByID(ctx, n.ID,
		map[string]any{"$set": map[string]any{"task_id": task.ID}}); err != nil {
		t.Fatalf("link notification: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("DELETE", "/api/tasks/"+task.ID.Hex(), testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	if cnt, err := db.Collection("tasks").CountDocuments(ctx, map[string]any{"_id": task.ID}); err != nil || cnt != 0 {
		t.Errorf("task still present: n=%d err=%v", cnt, err)
	}
	if cnt, err := db.Collection("notifications").CountDocuments(ctx, map[string]any{"task_id": task.ID}); err != nil || cnt != 0 {
		t.Errorf("task notifications still present: n=%d err=%v", cnt, err)
	}
}

func TestCommentAuthorGuard(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	member := fx.CreateUser(ctx, "Member", "member@example.com", "user")
	project := fx.CreateProject(ctx, "Launch", owner.ID)
	fx.AddProjectMember(ctx, project.ID, member.ID, "member")
	task := fx.CreateTask(ctx, "Discuss", owner.ID, &project.ID)

	req := testutil.NewJSONRequest("POST", "/api/tasks/"+task.ID.Hex()+"/comments",
		map[string]string{"text": "Looks <b>good</b>"}, testutil.UserFor(member))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleAddComment(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var comment models.Comment
	rec.DecodeData(t, &comment)
	if comment.Text != "Looks good" {
		t.Errorf("comment not sanitized: got %q", comment.Text)
	}

	// Someone else cannot edit it.
	req = testutil.NewJSONRequest("PUT", "/api/tasks/"+task.ID.Hex()+"/comments/"+comment.ID.Hex(),
		map[string]string{"text": "rewritten"}, testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	req = testutil.WithChiURLParam(req, "commentID", comment.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleUpdateComment(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The author can delete it.
	req = testutil.NewJSONRequest("DELETE", "/api/tasks/"+task.ID.Hex()+"/comments/"+comment.ID.Hex(),
		nil, testutil.UserFor(member))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	req = testutil.WithChiURLParam(req, "commentID", comment.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDeleteComment(rec, req)
	rec.AssertStatus(t, http.StatusOK)
}

func TestSubtaskToggle(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "user")
	task := fx.CreateTask(ctx, "Checklist", owner.ID, nil)

	req := testutil.NewJSONRequest("POST", "/api/tasks/"+task.ID.Hex()+"/subtasks",
		map[string]string{"text": "Step one"}, testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleAddSubtask(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var subtask models.Subtask
	rec.DecodeData(t, &subtask)
	if subtask.Done {
		t.Error("new subtask should start not done")
	}

	req = testutil.NewAuthenticatedRequest("PUT",
		"/api/tasks/"+task.ID.Hex()+"/subtasks/"+subtask.ID.Hex()+"/toggle", testutil.UserFor(owner))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	req = testutil.WithChiURLParam(req, "subtaskID", subtask.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleToggleSubtask(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Done bool `json:"done"`
	}
	rec.DecodeData(t, &got)
	if !got.Done {
		t.Error("toggle should flip the subtask to done")
	}
}
