package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calls stack, so multi-parameter routes work.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name, email, and role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtest1", // never verified
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateProject creates a test project owned by ownerID.
func (f *Fixtures) CreateProject(ctx context.Context, name string, ownerID primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test project description",
		Status:      models.ProjectPlanning,
		Priority:    models.PriorityMedium,
		OwnerID:     ownerID,
		Members:     []models.ProjectMember{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("projects").InsertOne(ctx, project)
	if err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// AddProjectMember adds userID to the project's member list with the given role.
func (f *Fixtures) AddProjectMember(ctx context.Context, projectID, userID primitive.ObjectID, role string) {
	f.t.Helper()

	m := models.ProjectMember{UserID: userID, Role: role, AddedAt: time.Now().UTC()}
	_, err := f.db.Collection("projects").UpdateByID(ctx, projectID,
		map[string]any{"$push": map[string]any{"members": m}})
	if err != nil {
		f.t.Fatalf("failed to add test project member: %v", err)
	}
}

// CreateTask creates a test task. projectID may be nil for a personal task.
func (f *Fixtures) CreateTask(ctx context.Context, title string, creatorID primitive.ObjectID, projectID *primitive.ObjectID) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Status:    models.TaskTodo,
		Priority:  models.PriorityMedium,
		ProjectID: projectID,
		CreatorID: creatorID,
		Comments:  []models.Comment{},
		Subtasks:  []models.Subtask{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("tasks").InsertOne(ctx, task)
	if err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// CreateCompletedTask creates a completed test task with completed_at set to when.
func (f *Fixtures) CreateCompletedTask(ctx context.Context, title string, creatorID primitive.ObjectID, projectID *primitive.ObjectID, when time.Time) models.Task {
	f.t.Helper()

	task := f.CreateTask(ctx, title, creatorID, projectID)
	_, err := f.db.Collection("tasks").UpdateByID(ctx, task.ID,
		map[string]any{"$set": map[string]any{
			"status":       models.TaskCompleted,
			"completed_at": when,
		}})
	if err != nil {
		f.t.Fatalf("failed to complete test task: %v", err)
	}
	task.Status = models.TaskCompleted
	task.CompletedAt = &when
	return task
}

// CreateNotification creates a test notification for recipientID.
func (f *Fixtures) CreateNotification(ctx context.Context, recipientID, actorID primitive.ObjectID, typ, message string) models.Notification {
	f.t.Helper()

	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        typ,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := f.db.Collection("notifications").InsertOne(ctx, n)
	if err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}

	return n
}
