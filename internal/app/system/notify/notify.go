// internal/app/system/notify/notify.go
//
// Notifier is the single path for fan-out after mutations: it persists one
// Notification document per recipient, then pushes live socket events.
// Persistence is the source of truth; the push is fire-and-forget, so an
// offline recipient simply finds the notification on next load.
package notify

import (
	"context"
	"fmt"

	"github.com/dalemusser/taskhive/internal/app/store/notifications"
	"github.com/dalemusser/taskhive/internal/app/system/realtime"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Actor identifies who performed the mutation being announced.
type Actor struct {
	ID   primitive.ObjectID
	Name string
}

type Notifier struct {
	notifications *notifications.Store
	hub           *realtime.Hub
	log           *zap.Logger
}

func New(store *notifications.Store, hub *realtime.Hub, logger *zap.Logger) *Notifier {
	return &Notifier{notifications: store, hub: hub, log: logger}
}

// TaskAssigned tells the assignee they were handed a task.
func (n *Notifier) TaskAssigned(ctx context.Context, task models.Task, actor Actor, assignee primitive.ObjectID) {
	if assignee == actor.ID {
		return // self-assignment needs no announcement
	}
	msg := fmt.Sprintf("%s assigned you the task %q", actor.Name, task.Title)
	n.deliver(ctx, []primitive.ObjectID{assignee}, models.Notification{
		ActorID:   actor.ID,
		Type:      models.NotifyTaskAssigned,
		Message:   msg,
		ProjectID: task.ProjectID,
		TaskID:    &task.ID,
	})
	n.hub.EmitToUser(assignee.Hex(), realtime.EventTaskAssigned, taskPayload(task, actor))
}

// TaskUpdated tells the project (minus the actor) a task changed.
func (n *Notifier) TaskUpdated(ctx context.Context, task models.Task, project models.Project, actor Actor) {
	msg := fmt.Sprintf("%s updated the task %q", actor.Name, task.Title)
	n.deliver(ctx, recipientsExcept(project, actor.ID), models.Notification{
		ActorID:   actor.ID,
		Type:      models.NotifyTaskUpdated,
		Message:   msg,
		ProjectID: task.ProjectID,
		TaskID:    &task.ID,
	})
	n.hub.EmitToProject(project.ID.Hex(), actor.ID.Hex(), realtime.EventTaskUpdated, taskPayload(task, actor))
}

// CommentAdded tells the project (minus the author) a comment landed.
func (n *Notifier) CommentAdded(ctx context.Context, task models.Task, project models.Project, comment models.Comment, actor Actor) {
	msg := fmt.Sprintf("%s commented on %q", actor.Name, task.Title)
	n.deliver(ctx, recipientsExcept(project, actor.ID), models.Notification{
		ActorID:   actor.ID,
		Type:      models.NotifyCommentAdded,
		Message:   msg,
		ProjectID: task.ProjectID,
		TaskID:    &task.ID,
	})
	n.hub.EmitToProject(project.ID.Hex(), actor.ID.Hex(), realtime.EventNewComment, map[string]any{
		"task_id": task.ID.Hex(),
		"comment": comment,
		"actor":   actorPayload(actor),
	})
}

// ProjectUpdated tells the project (minus the actor) its info changed.
func (n *Notifier) ProjectUpdated(ctx context.Context, project models.Project, actor Actor) {
	msg := fmt.Sprintf("%s updated the project %q", actor.Name, project.Name)
	n.deliver(ctx, recipientsExcept(project, actor.ID), models.Notification{
		ActorID:   actor.ID,
		Type:      models.NotifyProjectUpdate,
		Message:   msg,
		ProjectID: &project.ID,
	})
	n.hub.EmitToProject(project.ID.Hex(), actor.ID.Hex(), realtime.EventProjectUpdated, map[string]any{
		"project": project,
		"actor":   actorPayload(actor),
	})
}

// MemberAdded tells the new member they joined a project.
func (n *Notifier) MemberAdded(ctx context.Context, project models.Project, actor Actor, member primitive.ObjectID) {
	msg := fmt.Sprintf("%s added you to the project %q", actor.Name, project.Name)
	n.deliver(ctx, []primitive.ObjectID{member}, models.Notification{
		ActorID:   actor.ID,
		Type:      models.NotifyMemberAdded,
		Message:   msg,
		ProjectID: &project.ID,
	})
	n.hub.EmitToUser(member.Hex(), realtime.EventMemberAdded, map[string]any{
		"project": project,
		"actor":   actorPayload(actor),
	})
	n.hub.EmitToProject(project.ID.Hex(), actor.ID.Hex(), realtime.EventMemberAdded, map[string]any{
		"project_id": project.ID.Hex(),
		"user_id":    member.Hex(),
		"actor":      actorPayload(actor),
	})
}

// MemberRemoved tells the removed member they lost access.
func (n *Notifier) MemberRemoved(ctx context.Context, project models.Project, actor Actor, member primitive.ObjectID) {
	msg := fmt.Sprintf("%s removed you from the project %q", actor.Name, project.Name)
	n.deliver(ctx, []primitive.ObjectID{member}, models.Notification{
		ActorID:   actor.ID,
		Type:      models.NotifyMemberRemoved,
		Message:   msg,
		ProjectID: &project.ID,
	})
	n.hub.EmitToUser(member.Hex(), realtime.EventMemberRemoved, map[string]any{
		"project_id": project.ID.Hex(),
		"actor":      actorPayload(actor),
	})
	n.hub.EmitToProject(project.ID.Hex(), actor.ID.Hex(), realtime.EventMemberRemoved, map[string]any{
		"project_id": project.ID.Hex(),
		"user_id":    member.Hex(),
		"actor":      actorPayload(actor),
	})
}

// deliver persists one notification per recipient, then pushes each to the
// recipient's own socket room. A persistence failure is logged, not
// returned: the mutation that triggered the fan-out already succeeded.
func (n *Notifier) deliver(ctx context.Context, recipients []primitive.ObjectID, template models.Notification) {
	if len(recipients) == 0 {
		return
	}

	batch := make([]models.Notification, 0, len(recipients))
	for _, r := range recipients {
		doc := template
		doc.RecipientID = r
		batch = append(batch, doc)
	}

	if err := n.notifications.CreateMany(ctx, batch); err != nil {
		n.log.Error("persist notifications",
			zap.String("type", template.Type),
			zap.Int("recipients", len(recipients)),
			zap.Error(err))
		return
	}

	for _, doc := range batch {
		n.hub.EmitToUser(doc.RecipientID.Hex(), realtime.EventNotification, doc)
	}
}

// recipientsExcept returns the project's people minus the actor.
func recipientsExcept(p models.Project, actor primitive.ObjectID) []primitive.ObjectID {
	all := p.MemberIDs()
	out := make([]primitive.ObjectID, 0, len(all))
	for _, id := range all {
		if id != actor {
			out = append(out, id)
		}
	}
	return out
}

func taskPayload(task models.Task, actor Actor) map[string]any {
	return map[string]any{
		"task":  task,
		"actor": actorPayload(actor),
	}
}

func actorPayload(actor Actor) map[string]string {
	return map[string]string{
		"id":   actor.ID.Hex(),
		"name": actor.Name,
	}
}
