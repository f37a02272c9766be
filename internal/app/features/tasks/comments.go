// internal/app/features/tasks/comments.go
package tasks

import (
	"context"
	"net/http"

	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/sanitize"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type commentRequest struct {
	Text string `json:"text"`
}

// HandleAddComment appends a comment to a task the caller can access.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	var req commentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	body := sanitize.Text(req.Text)
	if body == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("comment text is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadAccessible(ctx, w, r, su)
	if !ok {
		return
	}

	comment, err := taskstore.New(h.DB).AddComment(ctx, task.ID, uid, body)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("Task not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "add comment", err)
		return
	}

	if task.ProjectID != nil {
		project, err := projectstore.New(h.DB).GetByID(ctx, *task.ProjectID)
		if err == nil {
			h.Notifier.CommentAdded(ctx, task, project, comment, actorFrom(su))
		}
	}

	httpjson.Created(w, comment)
}

// HandleUpdateComment edits a comment. Author only.
func (h *Handler) HandleUpdateComment(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Comment not found."))
		return
	}

	var req commentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	body := sanitize.Text(req.Text)
	if body == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("comment text is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadAccessible(ctx, w, r, su)
	if !ok {
		return
	}

	if err := taskstore.New(h.DB).UpdateComment(ctx, task.ID, commentID, uid, body); err != nil {
		switch err {
		case taskstore.ErrNotCommentAuthor:
			h.ErrLog.Respond(w, r, apierror.Authorization("Only the comment author can edit it."))
		case mongo.ErrNoDocuments:
			h.ErrLog.Respond(w, r, apierror.NotFound("Comment not found."))
		default:
			h.ErrLog.ServerError(w, r, "update comment", err)
		}
		return
	}
	httpjson.NoData(w)
}

// HandleDeleteComment removes a comment. Author only.
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("Comment not found."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadAccessible(ctx, w, r, su)
	if !ok {
		return
	}

	if err := taskstore.New(h.DB).DeleteComment(ctx, task.ID, commentID, uid); err != nil {
		switch err {
		case taskstore.ErrNotCommentAuthor:
			h.ErrLog.Respond(w, r, apierror.Authorization("Only the comment author can delete it."))
		case mongo.ErrNoDocuments:
			h.ErrLog.Respond(w, r, apierror.NotFound("Comment not found."))
		default:
			h.ErrLog.ServerError(w, r, "delete comment", err)
		}
		return
	}
	httpjson.NoData(w)
}
