// internal/app/features/projects/detail.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// loadVisible fetches the route's project and enforces view access.
// Non-members get the same 404 as a missing project, so project IDs
// cannot be probed. Writes the error response and returns false when the
// caller may not proceed.
func (h *Handler) loadVisible(ctx context.Context, w http.ResponseWriter, r *http.Request, su *sysauth.SessionUser) (models.Project, bool) {
	id, err := projectID(r)
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Project not found."))
		return models.Project{}, false
	}

	project, err := projectstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Project not found."))
			return models.Project{}, false
		}
		h.ErrLog.ServerError(w, r, "load project", err)
		return models.Project{}, false
	}

	if !projectpolicy.CanView(project, su) {
		h.ErrLog.Respond(w, r, apierror.NotFound("Project not found."))
		return models.Project{}, false
	}
	return project, true
}

// ServeProject returns one project the caller can see.
func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	project, ok := h.loadVisible(ctx, w, r, su)
	if !ok {
		return
	}
	httpjson.OK(w, project)
}
