// internal/app/policy/taskpolicy/taskpolicy.go
//
// Authorization rules:
//   - Admins can view and modify every task
//   - Project tasks: any member of the project (owner included) may view
//     and modify
//   - Personal tasks (no project): only the creator and the assignee
//
// Returns an error when the project lookup fails, allowing callers to
// distinguish "not authorized" (false, nil) from "database error"
// (false, err).
package taskpolicy

import (
	"context"

	"github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CanAccess reports whether su may view or modify the task.
func CanAccess(ctx context.Context, db *mongo.Database, t models.Task, su *auth.SessionUser) (bool, error) {
	if su == nil {
		return false, nil
	}
	uid, err := su.ObjectID()
	if err != nil {
		return false, nil
	}
	if su.Role == "admin" {
		return true, nil
	}

	if t.ProjectID == nil {
		if t.CreatorID == uid {
			return true, nil
		}
		return t.AssigneeID != nil && *t.AssigneeID == uid, nil
	}

	var p models.Project
	err = db.Collection("projects").FindOne(ctx, bson.M{"_id": *t.ProjectID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		// Orphaned reference; fall back to personal-task rules.
		if t.CreatorID == uid {
			return true, nil
		}
		return t.AssigneeID != nil && *t.AssigneeID == uid, nil
	}
	if err != nil {
		return false, err
	}
	return p.HasMember(uid), nil
}

// IsProjectMember reports whether uid belongs to the given project.
// Used by the realtime hub to gate join-project requests.
func IsProjectMember(ctx context.Context, db *mongo.Database, projectID, uid primitive.ObjectID) (bool, error) {
	n, err := db.Collection("projects").CountDocuments(ctx, bson.M{
		"_id": projectID,
		"$or": []bson.M{
			{"owner_id": uid},
			{"members.user_id": uid},
		},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
