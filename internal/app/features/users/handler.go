// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/paging"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the user directory handlers. Only public profile fields
// ever leave these endpoints.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *apierror.ErrorLogger
}

// NewHandler constructs a Handler bound to the given dependencies.
func NewHandler(db *mongo.Database, errLog *apierror.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Get("/{userID}", h.ServeUser)

	return r
}

type listResponse struct {
	Users []models.PublicProfile `json:"users"`
	Meta  paging.Meta            `json:"meta"`
}

// HandleList returns the user directory, optionally narrowed by the
// search query parameter. Used by member and assignee pickers.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)
	search := r.URL.Query().Get("search")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := userstore.New(h.DB).ListPublic(ctx, search, page.Skip(), page.LookAhead())
	if err != nil {
		h.ErrLog.ServerError(w, r, "list users", err)
		return
	}

	rows, hasNext := paging.Trim(rows, page.Limit)
	if rows == nil {
		rows = []models.PublicProfile{}
	}
	httpjson.OK(w, listResponse{Users: rows, Meta: paging.MetaFor(page, hasNext)})
}

// ServeUser returns one user's public profile.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.NotFound("User not found."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.Respond(w, r, apierror.NotFound("User not found."))
			return
		}
		h.ErrLog.ServerError(w, r, "load user", err)
		return
	}
	httpjson.OK(w, user.Public())
}
