// internal/app/features/projects/list.go
package projects

import (
	"context"
	"net/http"

	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/paging"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
)

type listResponse struct {
	Projects []models.Project `json:"projects"`
	Meta     paging.Meta      `json:"meta"`
}

// HandleList returns the caller's projects (owned and joined), filtered by
// the optional status, priority, and search query parameters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	q := r.URL.Query()
	filter := projectstore.Filter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
	}
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := projectstore.New(h.DB).ListForUser(ctx, uid, filter, page.Skip(), page.LookAhead())
	if err != nil {
		h.ErrLog.ServerError(w, r, "list projects", err)
		return
	}

	rows, hasNext := paging.Trim(rows, page.Limit)
	if rows == nil {
		rows = []models.Project{}
	}
	httpjson.OK(w, listResponse{Projects: rows, Meta: paging.MetaFor(page, hasNext)})
}
