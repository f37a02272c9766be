// internal/app/policy/projectpolicy/projectpolicy.go
//
// Authorization rules:
//   - Admins can view and manage every project
//   - The owner can do anything with their project
//   - Managers can edit project info and membership, not delete the project
//   - Members can view the project and its tasks
package projectpolicy

import (
	"github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func userID(su *auth.SessionUser) (primitive.ObjectID, bool) {
	if su == nil {
		return primitive.NilObjectID, false
	}
	id, err := su.ObjectID()
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// CanView reports whether su may see the project and its tasks.
func CanView(p models.Project, su *auth.SessionUser) bool {
	uid, ok := userID(su)
	if !ok {
		return false
	}
	if su.Role == "admin" {
		return true
	}
	return p.HasMember(uid)
}

// CanManage reports whether su may edit project info or membership:
// admins, the owner, and manager members.
func CanManage(p models.Project, su *auth.SessionUser) bool {
	uid, ok := userID(su)
	if !ok {
		return false
	}
	if su.Role == "admin" {
		return true
	}
	switch p.MemberRole(uid) {
	case "owner", "manager":
		return true
	}
	return false
}

// CanDelete reports whether su may delete the project: admins and the owner.
func CanDelete(p models.Project, su *auth.SessionUser) bool {
	uid, ok := userID(su)
	if !ok {
		return false
	}
	if su.Role == "admin" {
		return true
	}
	return p.OwnerID == uid
}
