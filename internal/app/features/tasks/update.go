// internal/app/features/tasks/update.go
package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/sanitize"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type updateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	// ClearDueDate removes an existing due date; a null due_date field
	// alone is indistinguishable from an absent one.
	ClearDueDate bool `json:"clear_due_date,omitempty"`
	// AssigneeID reassigns the task; an empty string unassigns it.
	AssigneeID *string `json:"assignee_id"`
}

// HandleUpdate applies a partial update to a task the caller can access.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("title cannot be empty"))
		return
	}
	if req.Status != nil && !models.ValidTaskStatus(*req.Status) {
		h.ErrLog.Respond(w, r, apierror.Validation("unknown task status"))
		return
	}
	if req.Priority != nil && !models.ValidPriority(*req.Priority) {
		h.ErrLog.Respond(w, r, apierror.Validation("unknown priority"))
		return
	}
	if req.Description != nil {
		clean := sanitize.Text(*req.Description)
		req.Description = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadAccessible(ctx, w, r, su)
	if !ok {
		return
	}

	upd := taskstore.Update{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}

	var project models.Project
	if task.ProjectID != nil {
		p, err := projectstore.New(h.DB).GetByID(ctx, *task.ProjectID)
		if err != nil && err != mongo.ErrNoDocuments {
			h.ErrLog.ServerError(w, r, "load project", err)
			return
		}
		project = p
	}

	var newAssignee *primitive.ObjectID
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			upd.ClearAssignee = true
		} else {
			id, err := primitive.ObjectIDFromHex(*req.AssigneeID)
			if err != nil {
				h.ErrLog.Respond(w, r, apierror.Validation("unknown assignee"))
				return
			}
			if task.ProjectID != nil && !project.HasMember(id) {
				h.ErrLog.Respond(w, r, apierror.Validation("assignee is not a member of the project"))
				return
			}
			upd.AssigneeID = &id
			if task.AssigneeID == nil || *task.AssigneeID != id {
				newAssignee = &id
			}
		}
	}

	store := taskstore.New(h.DB)
	if err := store.UpdateInfo(ctx, task.ID, upd); err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Task not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "update task", err)
		return
	}

	updated, err := store.GetByID(ctx, task.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload task", err)
		return
	}

	actor := actorFrom(su)
	if newAssignee != nil {
		h.Notifier.TaskAssigned(ctx, updated, actor, *newAssignee)
	}
	if task.ProjectID != nil && !project.ID.IsZero() {
		if err := projectstore.New(h.DB).Touch(ctx, project.ID); err != nil {
			h.Log.Warn("touch project", zap.Error(err))
		}
		h.Notifier.TaskUpdated(ctx, updated, project, actor)
	}

	httpjson.OK(w, updated)
}
