// internal/app/store/projects/projectstore.go
package projectstore

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
	// ErrAlreadyMember is returned when adding a user who is already on the project.
	ErrAlreadyMember = errors.New("user is already a member of this project")
	errBadStatus     = errors.New(`status must be "planning"|"in-progress"|"on-hold"|"completed"`)
	errBadPriority   = errors.New(`priority must be "low"|"medium"|"high"`)
	errBadMemberRole = errors.New(`member role must be "member"|"manager"`)
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Create inserts a new project with the given owner. Defaults status to
// planning and priority to medium when unset.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	if p.Status == "" {
		p.Status = models.ProjectPlanning
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	if !models.ValidProjectStatus(p.Status) {
		return models.Project{}, errBadStatus
	}
	if !models.ValidPriority(p.Priority) {
		return models.Project{}, errBadPriority
	}
	if p.Members == nil {
		p.Members = []models.ProjectMember{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Filter narrows ListForUser results. Zero values mean "no constraint".
type Filter struct {
	Status   string
	Priority string
	Search   string
}

// ListForUser returns projects where uid is the owner or a member, newest
// activity first. Fetch one row past the page to detect hasNext.
func (s *Store) ListForUser(ctx context.Context, uid primitive.ObjectID, f Filter, skip, limit int64) ([]models.Project, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"owner_id": uid},
			{"members.user_id": uid},
		},
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		filter["name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(q))}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IDsForUser returns the IDs of every project uid belongs to (owned or
// member). Used to scope task queries.
func (s *Store) IDsForUser(ctx context.Context, uid primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"owner_id": uid},
			{"members.user_id": uid},
		},
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// Update holds the fields a project update may change. Nil pointers leave
// the stored value unchanged.
type Update struct {
	Name          *string
	Description   *string
	Status        *string
	Priority      *string
	Deadline      *time.Time
	ClearDeadline bool
}

// UpdateInfo applies a partial update and bumps updated_at.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		set["name"] = strings.TrimSpace(*upd.Name)
		set["name_ci"] = text.Fold(*upd.Name)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Status != nil {
		if !models.ValidProjectStatus(*upd.Status) {
			return errBadStatus
		}
		set["status"] = *upd.Status
	}
	if upd.Priority != nil {
		if !models.ValidPriority(*upd.Priority) {
			return errBadPriority
		}
		set["priority"] = *upd.Priority
	}
	update := bson.M{"$set": set}
	if upd.ClearDeadline {
		update["$unset"] = bson.M{"deadline": ""}
	} else if upd.Deadline != nil {
		set["deadline"] = *upd.Deadline
	}

	_, err := s.c.UpdateByID(ctx, id, update)
	return err
}

// Touch bumps updated_at, used when embedded state changes elsewhere.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
	return err
}

// Delete removes a project by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddMember appends uid to the member list. Rejects duplicates and the
// owner (owner membership is implicit).
func (s *Store) AddMember(ctx context.Context, id primitive.ObjectID, m models.ProjectMember) error {
	switch m.Role {
	case "member", "manager":
		// ok
	default:
		return errBadMemberRole
	}
	if m.AddedAt.IsZero() {
		m.AddedAt = time.Now().UTC()
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":             id,
			"owner_id":        bson.M{"$ne": m.UserID},
			"members.user_id": bson.M{"$ne": m.UserID},
		},
		bson.M{
			"$push": bson.M{"members": m},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the project is gone or the user is already on it; look
		// once to tell the two apart.
		err := s.c.FindOne(ctx, bson.M{"_id": id}).Err()
		if err == mongo.ErrNoDocuments {
			return mongo.ErrNoDocuments
		}
		if err != nil {
			return err
		}
		return ErrAlreadyMember
	}
	return nil
}

// UpdateMemberRole changes the role of an existing member. Returns
// mongo.ErrNoDocuments when the (project, user) pair does not exist.
func (s *Store) UpdateMemberRole(ctx context.Context, id, uid primitive.ObjectID, role string) error {
	switch role {
	case "member", "manager":
		// ok
	default:
		return errBadMemberRole
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "members.user_id": uid},
		bson.M{"$set": bson.M{
			"members.$.role": role,
			"updated_at":     time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveMember pulls uid from the member list. Returns mongo.ErrNoDocuments
// when the user was not a member.
func (s *Store) RemoveMember(ctx context.Context, id, uid primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "members.user_id": uid},
		bson.M{
			"$pull": bson.M{"members": bson.M{"user_id": uid}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveUserFromAll strips uid from every member list. Used when an account
// is deleted. Projects the user owns are left alone; the caller decides
// their fate.
func (s *Store) RemoveUserFromAll(ctx context.Context, uid primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"members.user_id": uid},
		bson.M{"$pull": bson.M{"members": bson.M{"user_id": uid}}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// IDsOwnedBy returns the IDs of projects uid owns.
func (s *Store) IDsOwnedBy(ctx context.Context, uid primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"owner_id": uid}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}
