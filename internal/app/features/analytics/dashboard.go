// internal/app/features/analytics/dashboard.go
package analytics

import (
	"context"
	"net/http"

	metrics "github.com/dalemusser/taskhive/internal/app/store/metrics"
	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type dashboardResponse struct {
	metrics.Counts
	Productivity []metrics.ProductivityBucket `json:"productivity"`
}

// ServeDashboard returns headline counts plus the recent completion
// trend, scoped to what the caller can see. Aggregation hiccups degrade
// to zeroes rather than failing the whole dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projectIDs, err := projectstore.New(h.DB).IDsForUser(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "load project scope", err)
		return
	}

	counts := metrics.FetchDashboardCounts(ctx, h.DB, uid, projectIDs)

	productivity, err := metrics.FetchProductivity(ctx, h.DB, uid, projectIDs)
	if err != nil {
		h.Log.Error("productivity aggregation", zap.Error(err))
		productivity = []metrics.ProductivityBucket{}
	}

	httpjson.OK(w, dashboardResponse{Counts: counts, Productivity: productivity})
}

// ServeTaskBreakdown returns visible-task counts grouped by status and
// by priority.
func (h *Handler) ServeTaskBreakdown(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projectIDs, err := projectstore.New(h.DB).IDsForUser(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "load project scope", err)
		return
	}

	byStatus, err := metrics.CountTasksBy(ctx, h.DB, uid, projectIDs, "status")
	if err != nil {
		h.ErrLog.ServerError(w, r, "count tasks by status", err)
		return
	}
	byPriority, err := metrics.CountTasksBy(ctx, h.DB, uid, projectIDs, "priority")
	if err != nil {
		h.ErrLog.ServerError(w, r, "count tasks by priority", err)
		return
	}

	httpjson.OK(w, map[string]any{
		"byStatus":   byStatus,
		"byPriority": byPriority,
	})
}

// ServeProjectBreakdown returns the caller's project counts grouped by
// status.
func (h *Handler) ServeProjectBreakdown(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projectIDs, err := projectstore.New(h.DB).IDsForUser(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "load project scope", err)
		return
	}

	byStatus, err := metrics.CountProjectsByStatus(ctx, h.DB, projectIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "count projects by status", err)
		return
	}

	httpjson.OK(w, map[string]any{"byStatus": byStatus})
}
