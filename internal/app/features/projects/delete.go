// internal/app/features/projects/delete.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/policy/projectpolicy"
	"github.com/dalemusser/taskhive/internal/app/store/notifications"
	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete removes a project along with its tasks and the
// notifications that reference it. Owner (or an admin) only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	project, ok := h.loadVisible(ctx, w, r, su)
	if !ok {
		return
	}
	if !projectpolicy.CanDelete(project, su) {
		h.ErrLog.Respond(w, r, apierror.Authorization("Only the owner can delete this project."))
		return
	}

	// Tasks and notifications go first so a failure part-way leaves the
	// project intact and the delete retriable.
	tasksGone, err := taskstore.New(h.DB).DeleteByProject(ctx, project.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "delete project tasks", err)
		return
	}
	if _, err := notifications.New(h.DB).DeleteByProject(ctx, project.ID); err != nil {
		h.ErrLog.ServerError(w, r, "delete project notifications", err)
		return
	}
	if _, err := projectstore.New(h.DB).Delete(ctx, project.ID); err != nil {
		h.ErrLog.ServerError(w, r, "delete project", err)
		return
	}

	h.Log.Info("project deleted",
		zap.String("project_id", project.ID.Hex()),
		zap.String("user_id", su.ID),
		zap.Int64("tasks_removed", tasksGone))

	httpjson.NoData(w)
}
