// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"

	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/paging"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listResponse struct {
	Tasks []models.Task `json:"tasks"`
	Meta  paging.Meta   `json:"meta"`
}

// HandleList returns tasks the caller can see: tasks in their projects
// plus personal tasks they created or were assigned. Optional filters:
// status, priority, project, assignee, search.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	q := r.URL.Query()
	filter := taskstore.Filter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
	}
	if s := q.Get("project"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			h.ErrLog.Respond(w, r, apierror.Validation("invalid project filter"))
			return
		}
		filter.ProjectID = &id
	}
	if s := q.Get("assignee"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			h.ErrLog.Respond(w, r, apierror.Validation("invalid assignee filter"))
			return
		}
		filter.AssigneeID = &id
	}
	page := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projectIDs, err := projectstore.New(h.DB).IDsForUser(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "load project scope", err)
		return
	}

	rows, err := taskstore.New(h.DB).List(ctx, uid, projectIDs, filter, page.Skip(), page.LookAhead())
	if err != nil {
		h.ErrLog.ServerError(w, r, "list tasks", err)
		return
	}

	rows, hasNext := paging.Trim(rows, page.Limit)
	if rows == nil {
		rows = []models.Task{}
	}
	httpjson.OK(w, listResponse{Tasks: rows, Meta: paging.MetaFor(page, hasNext)})
}
