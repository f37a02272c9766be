// internal/app/features/projects/create.go
package projects

import (
	"context"
	"net/http"
	"strings"
	"time"

	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/sanitize"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.uber.org/zap"
)

type createRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
}

// HandleCreate creates a project owned by the caller.
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

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("name is required"))
		return
	}
	if req.Status != "" && !models.ValidProjectStatus(req.Status) {
		h.ErrLog.Respond(w, r, apierror.Validation("unknown project status"))
		return
	}
	if req.Priority != "" && !models.ValidPriority(req.Priority) {
		h.ErrLog.Respond(w, r, apierror.Validation("unknown priority"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	project, err := projectstore.New(h.DB).Create(ctx, models.Project{
		Name:        req.Name,
		Description: sanitize.Text(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		OwnerID:     uid,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, "create project", err)
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", project.ID.Hex()),
		zap.String("owner_id", uid.Hex()))

	httpjson.Created(w, project)
}
