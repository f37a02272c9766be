// internal/app/features/tasks/subtasks.go
package tasks

import (
	"context"
	"net/http"

	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/sanitize"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type subtaskRequest struct {
	Text string `json:"text"`
}

// HandleAddSubtask appends a checklist entry to a task.
func (h *Handler) HandleAddSubtask(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	var req subtaskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	body := sanitize.Text(req.Text)
	if body == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("subtask text is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadAccessible(ctx, w, r, su)
	if !ok {
		return
	}

	subtask, err := taskstore.New(h.DB).AddSubtask(ctx, task.ID, body)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Task not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "add subtask", err)
		return
	}
	httpjson.Created(w, subtask)
}

// HandleToggleSubtask flips a checklist entry between done and not done.
func (h *Handler) HandleToggleSubtask(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	subtaskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "subtaskID"))
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Subtask not found."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadAccessible(ctx, w, r, su)
	if !ok {
		return
	}

	done, err := taskstore.New(h.DB).ToggleSubtask(ctx, task.ID, subtaskID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Subtask not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "toggle subtask", err)
		return
	}
	httpjson.OK(w, map[string]bool{"done": done})
}
