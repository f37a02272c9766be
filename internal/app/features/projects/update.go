// internal/app/features/projects/update.go
package projects

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/taskhive/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/sanitize"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
)

type updateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	// ClearDeadline removes an existing deadline; a null deadline field
	// alone is indistinguishable from an absent one.
	ClearDeadline bool `json:"clear_deadline,omitempty"`
}

// HandleUpdate applies a partial update. Owner and managers only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("name cannot be empty"))
		return
	}
	if req.Status != nil && !models.ValidProjectStatus(*req.Status) {
		h.ErrLog.Respond(w, r, apierror.Validation("unknown project status"))
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

	project, ok := h.loadVisible(ctx, w, r, su)
	if !ok {
		return
	}
	if !projectpolicy.CanManage(project, su) {
		h.ErrLog.Respond(w, r, apierror.Authorization("Only the owner or a manager can update this project."))
		return
	}

	store := projectstore.New(h.DB)
	if err := store.UpdateInfo(ctx, project.ID, projectstore.Update{
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	}); err != nil {
		h.ErrLog.ServerError(w, r, "update project", err)
		return
	}

	updated, err := store.GetByID(ctx, project.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload project", err)
		return
	}

	h.Notifier.ProjectUpdated(ctx, updated, actorFrom(su))
	httpjson.OK(w, updated)
}
