// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	errBadStatus   = errors.New(`status must be "todo"|"in-progress"|"review"|"completed"`)
	errBadPriority = errors.New(`priority must be "low"|"medium"|"high"`)

	// ErrNotCommentAuthor is returned when editing or deleting a comment
	// written by someone else.
	ErrNotCommentAuthor = errors.New("only the comment author can modify it")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Create inserts a new task. Defaults status to todo and priority to medium
// when unset; sets completed_at when created directly in completed.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.TitleCI = text.Fold(t.Title)
	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if !models.ValidTaskStatus(t.Status) {
		return models.Task{}, errBadStatus
	}
	if !models.ValidPriority(t.Priority) {
		return models.Task{}, errBadPriority
	}
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []models.Subtask{}
	}
	if t.Status == models.TaskCompleted {
		t.CompletedAt = &now
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Status     string
	Priority   string
	ProjectID  *primitive.ObjectID
	AssigneeID *primitive.ObjectID
	Search     string
}

// VisibilityFilter limits a query to tasks uid may see: tasks in any of the
// given projects, plus personal tasks they created or are assigned.
func VisibilityFilter(uid primitive.ObjectID, projectIDs []primitive.ObjectID) bson.M {
	personal := bson.M{
		"project_id": nil,
		"$or": []bson.M{
			{"creator_id": uid},
			{"assignee_id": uid},
		},
	}
	if len(projectIDs) == 0 {
		return personal
	}
	return bson.M{"$or": []bson.M{
		{"project_id": bson.M{"$in": projectIDs}},
		personal,
	}}
}

// List returns tasks visible to uid, newest activity first. projectIDs is
// the caller's project scope (from the project store); fetch one row past
// the page to detect hasNext.
func (s *Store) List(ctx context.Context, uid primitive.ObjectID, projectIDs []primitive.ObjectID, f Filter, skip, limit int64) ([]models.Task, error) {
	clauses := []bson.M{VisibilityFilter(uid, projectIDs)}
	if f.Status != "" {
		clauses = append(clauses, bson.M{"status": f.Status})
	}
	if f.Priority != "" {
		clauses = append(clauses, bson.M{"priority": f.Priority})
	}
	if f.ProjectID != nil {
		clauses = append(clauses, bson.M{"project_id": *f.ProjectID})
	}
	if f.AssigneeID != nil {
		clauses = append(clauses, bson.M{"assignee_id": *f.AssigneeID})
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		clauses = append(clauses, bson.M{"title_ci": bson.M{"$regex": regexp.QuoteMeta(text.Fold(q))}})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"$and": clauses}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update holds the fields a task update may change. Nil pointers leave the
// stored value unchanged.
type Update struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *primitive.ObjectID
	ClearAssignee bool
}

// UpdateInfo applies a partial update, maintaining completed_at when the
// status enters or leaves completed.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, upd Update) error {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	unset := bson.M{}

	if upd.Title != nil && strings.TrimSpace(*upd.Title) != "" {
		set["title"] = strings.TrimSpace(*upd.Title)
		set["title_ci"] = text.Fold(*upd.Title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Status != nil {
		if !models.ValidTaskStatus(*upd.Status) {
			return errBadStatus
		}
		set["status"] = *upd.Status
		if *upd.Status == models.TaskCompleted {
			set["completed_at"] = now
		} else {
			unset["completed_at"] = ""
		}
	}
	if upd.Priority != nil {
		if !models.ValidPriority(*upd.Priority) {
			return errBadPriority
		}
		set["priority"] = *upd.Priority
	}
	if upd.ClearDueDate {
		unset["due_date"] = ""
	} else if upd.DueDate != nil {
		set["due_date"] = *upd.DueDate
	}
	if upd.ClearAssignee {
		unset["assignee_id"] = ""
	} else if upd.AssigneeID != nil {
		set["assignee_id"] = *upd.AssigneeID
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a task by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByProject removes every task in a project. Returns the number deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeletePersonalByUser removes personal (projectless) tasks created by uid.
// Used when an account is deleted.
func (s *Store) DeletePersonalByUser(ctx context.Context, uid primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": nil, "creator_id": uid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// UnassignUser clears uid as assignee everywhere. Used on account delete
// and project member removal (scoped by projectID when non-nil).
func (s *Store) UnassignUser(ctx context.Context, uid primitive.ObjectID, projectID *primitive.ObjectID) (int64, error) {
	filter := bson.M{"assignee_id": uid}
	if projectID != nil {
		filter["project_id"] = *projectID
	}
	res, err := s.c.UpdateMany(ctx, filter, bson.M{
		"$unset": bson.M{"assignee_id": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// AddComment appends a comment and returns it with its generated ID.
func (s *Store) AddComment(ctx context.Context, id primitive.ObjectID, authorID primitive.ObjectID, body string) (models.Comment, error) {
	now := time.Now().UTC()
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Text:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": now},
	})
	if err != nil {
		return models.Comment{}, err
	}
	if res.MatchedCount == 0 {
		return models.Comment{}, mongo.ErrNoDocuments
	}
	return c, nil
}

// UpdateComment edits a comment's text. Only the author may edit; a
// mismatch returns ErrNotCommentAuthor.
func (s *Store) UpdateComment(ctx context.Context, id, commentID, authorID primitive.ObjectID, body string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "comments": bson.M{"$elemMatch": bson.M{"_id": commentID, "author_id": authorID}}},
		bson.M{"$set": bson.M{
			"comments.$.text":       body,
			"comments.$.updated_at": now,
			"updated_at":            now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.commentMissReason(ctx, id, commentID)
	}
	return nil
}

// DeleteComment removes a comment. Only the author may delete.
func (s *Store) DeleteComment(ctx context.Context, id, commentID, authorID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "comments": bson.M{"$elemMatch": bson.M{"_id": commentID, "author_id": authorID}}},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"_id": commentID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.commentMissReason(ctx, id, commentID)
	}
	return nil
}

// commentMissReason distinguishes "comment not found" from "not the author"
// after a guarded update matched nothing.
func (s *Store) commentMissReason(ctx context.Context, id, commentID primitive.ObjectID) error {
	err := s.c.FindOne(ctx, bson.M{"_id": id, "comments._id": commentID}).Err()
	if err == nil {
		return ErrNotCommentAuthor
	}
	return err // mongo.ErrNoDocuments or a real error
}

// AddSubtask appends a checklist item and returns it with its generated ID.
func (s *Store) AddSubtask(ctx context.Context, id primitive.ObjectID, body string) (models.Subtask, error) {
	now := time.Now().UTC()
	st := models.Subtask{
		ID:        primitive.NewObjectID(),
		Text:      body,
		CreatedAt: now,
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"subtasks": st},
		"$set":  bson.M{"updated_at": now},
	})
	if err != nil {
		return models.Subtask{}, err
	}
	if res.MatchedCount == 0 {
		return models.Subtask{}, mongo.ErrNoDocuments
	}
	return st, nil
}

// ToggleSubtask flips a checklist item's done flag and returns the new value.
func (s *Store) ToggleSubtask(ctx context.Context, id, subtaskID primitive.ObjectID) (bool, error) {
	// Read the current value, then flip it with a guarded write. Lost
	// updates under concurrent toggles are acceptable (last write wins).
	var t struct {
		Subtasks []models.Subtask `bson:"subtasks"`
	}
	err := s.c.FindOne(ctx, bson.M{"_id": id, "subtasks._id": subtaskID},
		options.FindOne().SetProjection(bson.M{"subtasks": 1})).Decode(&t)
	if err != nil {
		return false, err
	}
	var current bool
	found := false
	for _, st := range t.Subtasks {
		if st.ID == subtaskID {
			current = st.Done
			found = true
			break
		}
	}
	if !found {
		return false, mongo.ErrNoDocuments
	}

	next := !current
	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id, "subtasks._id": subtaskID},
		bson.M{"$set": bson.M{
			"subtasks.$.done": next,
			"updated_at":      time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return next, nil
}
