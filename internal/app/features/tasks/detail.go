// internal/app/features/tasks/detail.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/policy/taskpolicy"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// loadAccessible fetches the route's task and enforces access. Callers
// without access get the same 404 as a missing task. Writes the error
// response and returns false when the caller may not proceed.
func (h *Handler) loadAccessible(ctx context.Context, w http.ResponseWriter, r *http.Request, su *sysauth.SessionUser) (models.Task, bool) {
	id, err := taskID(r)
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Task not found."))
		return models.Task{}, false
	}

	task, err := taskstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Task not found."))
			return models.Task{}, false
		}
		h.ErrLog.ServerError(w, r, "load task", err)
		return models.Task{}, false
	}

	ok, err := taskpolicy.CanAccess(ctx, h.DB, task, su)
	if err != nil {
		h.ErrLog.ServerError(w, r, "check task access", err)
		return models.Task{}, false
	}
	if !ok {
		h.ErrLog.Respond(w, r, apierror.NotFound("Task not found."))
		return models.Task{}, false
	}
	return task, true
}

// ServeTask returns one task the caller can see.
func (h *Handler) ServeTask(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, ok := h.loadAccessible(ctx, w, r, su)
	if !ok {
		return
	}
	httpjson.OK(w, task)
}
