// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types; each names the mutation that produced the record.
const (
	NotifyTaskAssigned  = "task_assigned"
	NotifyTaskUpdated   = "task_updated"
	NotifyCommentAdded  = "comment_added"
	NotifyProjectUpdate = "project_updated"
	NotifyMemberAdded   = "member_added"
	NotifyMemberRemoved = "member_removed"
)

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t string) bool {
	switch t {
	case NotifyTaskAssigned, NotifyTaskUpdated, NotifyCommentAdded,
		NotifyProjectUpdate, NotifyMemberAdded, NotifyMemberRemoved:
		return true
	}
	return false
}

// Notification is the durable record of an event delivered to one recipient.
// The live socket push is best-effort; this document is the source of truth.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	ActorID     primitive.ObjectID  `bson:"actor_id" json:"actor_id"`
	Type        string              `bson:"type" json:"type"`
	Message     string              `bson:"message" json:"message"`
	ProjectID   *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	TaskID      *primitive.ObjectID `bson:"task_id,omitempty" json:"task_id,omitempty"`
	Read        bool                `bson:"read" json:"read"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}
