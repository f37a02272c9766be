// internal/app/features/tasks/delete.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/store/notifications"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete removes a task and the notifications that reference it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadAccessible(ctx, w, r, su)
	if !ok {
		return
	}

	if _, err := notifications.New(h.DB).DeleteByTask(ctx, task.ID); err != nil {
		h.ErrLog.ServerError(w, r, "delete task notifications", err)
		return
	}
	if _, err := taskstore.New(h.DB).Delete(ctx, task.ID); err != nil {
		h.ErrLog.ServerError(w, r, "delete task", err)
		return
	}

	h.Log.Info("task deleted",
		zap.String("task_id", task.ID.Hex()),
		zap.String("user_id", su.ID))

	httpjson.NoData(w)
}
