// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
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

type createRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   *string    `json:"project_id"`
	AssigneeID  *string    `json:"assignee_id"`
}

// HandleCreate creates a task. With a project_id the caller must be a
// member of that project and any assignee must be one too; without it the
// task is personal.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("title is required"))
		return
	}
	if req.Status != "" && !models.ValidTaskStatus(req.Status) {
		h.ErrLog.Respond(w, r, apierror.Validation("unknown task status"))
		return
	}
	if req.Priority != "" && !models.ValidPriority(req.Priority) {
		h.ErrLog.Respond(w, r, apierror.Validation("unknown priority"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var projectRef *primitive.ObjectID
	var project models.Project
	if req.ProjectID != nil && *req.ProjectID != "" {
		id, err := primitive.ObjectIDFromHex(*req.ProjectID)
		if err != nil {
			h.ErrLog.Respond(w, r, apierror.NotFound("Project not found."))
			return
		}
		project, err = projectstore.New(h.DB).GetByID(ctx, id)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				h.ErrLog.Respond(w, r, apierror.NotFound("Project not found."))
				return
			}
			h.ErrLog.ServerError(w, r, "load project", err)
			return
		}
		if !project.HasMember(uid) && su.Role != "admin" {
			h.ErrLog.Respond(w, r, apierror.NotFound("Project not found."))
			return
		}
		projectRef = &id
	}

	var assigneeRef *primitive.ObjectID
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		id, err := primitive.ObjectIDFromHex(*req.AssigneeID)
		if err != nil {
			h.ErrLog.Respond(w, r, apierror.Validation("unknown assignee"))
			return
		}
		if _, err := userstore.New(h.DB).GetByID(ctx, id); err != nil {
			if err == mongo.ErrNoDocuments {
				h.ErrLog.Respond(w, r, apierror.Validation("unknown assignee"))
				return
			}
			h.ErrLog.ServerError(w, r, "load assignee", err)
			return
		}
		if projectRef != nil && !project.HasMember(id) {
			h.ErrLog.Respond(w, r, apierror.Validation("assignee is not a member of the project"))
			return
		}
		assigneeRef = &id
	}

	task, err := taskstore.New(h.DB).Create(ctx, models.Task{
		Title:       req.Title,
		Description: sanitize.Text(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   projectRef,
		AssigneeID:  assigneeRef,
		CreatorID:   uid,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, "create task", err)
		return
	}

	if projectRef != nil {
		// Task churn counts as project activity.
		if err := projectstore.New(h.DB).Touch(ctx, *projectRef); err != nil {
			h.Log.Warn("touch project", zap.Error(err))
		}
	}
	if assigneeRef != nil {
		h.Notifier.TaskAssigned(ctx, task, actorFrom(su), *assigneeRef)
	}

	h.Log.Info("task created",
		zap.String("task_id", task.ID.Hex()),
		zap.String("creator_id", uid.Hex()))

	httpjson.Created(w, task)
}
