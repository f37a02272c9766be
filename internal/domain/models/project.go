// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project status values.
const (
	ProjectPlanning   = "planning"
	ProjectInProgress = "in-progress"
	ProjectOnHold     = "on-hold"
	ProjectCompleted  = "completed"
)

// Priority values shared by projects and tasks.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ProjectMember is one entry in a project's embedded member list.
// The owner is never duplicated into this list; owner membership is implicit.
type ProjectMember struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role    string             `bson:"role" json:"role"` // member | manager
	AddedAt time.Time          `bson:"added_at" json:"added_at"`
}

// Project groups tasks under an owner and a member list.
//
// Invariant: at most one ProjectMember per user_id, and the owner does not
// appear in Members.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Priority    string             `bson:"priority" json:"priority"`
	Deadline    *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`

	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Members []ProjectMember    `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MemberIDs returns the owner plus every member user ID, deduplicated.
func (p *Project) MemberIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(p.Members)+1)
	ids = append(ids, p.OwnerID)
	for _, m := range p.Members {
		if m.UserID != p.OwnerID {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// HasMember reports whether uid is the owner or appears in the member list.
func (p *Project) HasMember(uid primitive.ObjectID) bool {
	if uid == p.OwnerID {
		return true
	}
	for _, m := range p.Members {
		if m.UserID == uid {
			return true
		}
	}
	return false
}

// MemberRole returns the role uid holds on the project: "owner", "manager",
// "member", or "" when uid is not associated with the project.
func (p *Project) MemberRole(uid primitive.ObjectID) string {
	if uid == p.OwnerID {
		return "owner"
	}
	for _, m := range p.Members {
		if m.UserID == uid {
			return m.Role
		}
	}
	return ""
}
