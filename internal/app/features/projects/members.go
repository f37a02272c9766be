// internal/app/features/projects/members.go
package projects

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/taskhive/internal/app/policy/projectpolicy"
	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// memberEntry is one row in the member listing: the public profile plus
// the project role. The owner appears first with role "owner".
type memberEntry struct {
	User    models.PublicProfile `json:"user"`
	Role    string               `json:"role"`
	AddedAt time.Time            `json:"added_at"`
}

// ServeMembers returns the project's team, owner first.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	project, ok := h.loadVisible(ctx, w, r, su)
	if !ok {
		return
	}

	profiles, err := userstore.New(h.DB).GetManyPublic(ctx, project.MemberIDs())
	if err != nil {
		h.ErrLog.ServerError(w, r, "load member profiles", err)
		return
	}

	out := make([]memberEntry, 0, len(project.Members)+1)
	if p, found := profiles[project.OwnerID]; found {
		out = append(out, memberEntry{User: p, Role: "owner", AddedAt: project.CreatedAt})
	}
	for _, m := range project.Members {
		p, found := profiles[m.UserID]
		if !found {
			continue // deleted account still in the list
		}
		out = append(out, memberEntry{User: p, Role: m.Role, AddedAt: m.AddedAt})
	}

	httpjson.OK(w, map[string]any{"members": out})
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleAddMember invites a user to the project by email. Owner and
// managers only.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	var req addMemberRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}
	if req.Role != "member" && req.Role != "manager" {
		h.ErrLog.Respond(w, r, apierror.Validation(`role must be "member" or "manager"`))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	project, ok := h.loadVisible(ctx, w, r, su)
	if !ok {
		return
	}
	if !projectpolicy.CanManage(project, su) {
		h.ErrLog.Respond(w, r, apierror.Authorization("Only the owner or a manager can add members."))
		return
	}

	user, err := userstore.New(h.DB).GetByEmail(ctx, req.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("No account with that email."))
			return
		}
		h.ErrLog.ServerError(w, r, "look up member email", err)
		return
	}

	store := projectstore.New(h.DB)
	err = store.AddMember(ctx, project.ID, models.ProjectMember{UserID: user.ID, Role: req.Role})
	if err != nil {
		switch err {
		case projectstore.ErrAlreadyMember:
			h.ErrLog.Respond(w, r, apierror.Validation(err.Error()))
		case mongo.ErrNoDocuments:
			h.ErrLog.Respond(w, r, apierror.NotFound("Project not found."))
		default:
			h.ErrLog.ServerError(w, r, "add member", err)
		}
		return
	}

	updated, err := store.GetByID(ctx, project.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload project", err)
		return
	}

	h.Log.Info("member added",
		zap.String("project_id", project.ID.Hex()),
		zap.String("member_id", user.ID.Hex()),
		zap.String("role", req.Role))

	h.Notifier.MemberAdded(ctx, updated, actorFrom(su), user.ID)
	httpjson.Created(w, updated)
}

type memberRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateMemberRole switches a member between "member" and "manager".
func (h *Handler) HandleUpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)

	target, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Member not found."))
		return
	}

	var req memberRoleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if req.Role != "member" && req.Role != "manager" {
		h.ErrLog.Respond(w, r, apierror.Validation(`role must be "member" or "manager"`))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	project, ok := h.loadVisible(ctx, w, r, su)
	if !ok {
		return
	}
	if !projectpolicy.CanManage(project, su) {
		h.ErrLog.Respond(w, r, apierror.Authorization("Only the owner or a manager can change member roles."))
		return
	}

	store := projectstore.New(h.DB)
	if err := store.UpdateMemberRole(ctx, project.ID, target, req.Role); err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Member not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "update member role", err)
		return
	}

	updated, err := store.GetByID(ctx, project.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload project", err)
		return
	}
	httpjson.OK(w, updated)
}

// HandleRemoveMember takes a user off the project. Owner and managers can
// remove anyone; a member can remove themself (leave the project). The
// removed user's task assignments inside the project are cleared.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	callerID, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	target, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Member not found."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	project, ok := h.loadVisible(ctx, w, r, su)
	if !ok {
		return
	}

	if target == project.OwnerID {
		h.ErrLog.Respond(w, r, apierror.Validation("The owner cannot be removed from the project."))
		return
	}
	if target != callerID && !projectpolicy.CanManage(project, su) {
		h.ErrLog.Respond(w, r, apierror.Authorization("Only the owner or a manager can remove members."))
		return
	}

	store := projectstore.New(h.DB)
	if err := store.RemoveMember(ctx, project.ID, target); err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Member not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "remove member", err)
		return
	}

	// Dangling assignments would point at someone who can no longer see
	// the tasks.
	if _, err := taskstore.New(h.DB).UnassignUser(ctx, target, &project.ID); err != nil {
		h.ErrLog.ServerError(w, r, "unassign removed member", err)
		return
	}

	h.Log.Info("member removed",
		zap.String("project_id", project.ID.Hex()),
		zap.String("member_id", target.Hex()),
		zap.String("by", su.ID))

	h.Notifier.MemberRemoved(ctx, project, actorFrom(su), target)
	httpjson.NoData(w)
}
