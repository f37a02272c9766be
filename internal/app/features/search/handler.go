// internal/app/features/search/handler.go
package search

import (
	"context"
	"net/http"
	"strings"

	projectstore "github.com/dalemusser/taskhive/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhive/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhive/internal/app/store/users"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/httpjson"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// groupLimit caps each result group; search is a jumping-off point, not
// a full listing.
const groupLimit = 5

// Handler owns the cross-entity search endpoint.
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
	r.Get("/", h.HandleSearch)
	return r
}

type searchResponse struct {
	Projects []models.Project       `json:"projects"`
	Tasks    []models.Task          `json:"tasks"`
	Users    []models.PublicProfile `json:"users"`
}

// HandleSearch matches q against the caller's projects and tasks plus
// the user directory, a few rows per group.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	su, _ := sysauth.CurrentUser(r)
	uid, err := su.ObjectID()
	if err != nil {
		h.ErrLog.Respond(w, r, apierror.Authentication("Authentication required."))
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		h.ErrLog.Respond(w, r, apierror.Validation("q is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out := searchResponse{
		Projects: []models.Project{},
		Tasks:    []models.Task{},
		Users:    []models.PublicProfile{},
	}

	projects, err := projectstore.New(h.DB).ListForUser(ctx, uid, projectstore.Filter{Search: q}, 0, groupLimit)
	if err != nil {
		h.ErrLog.ServerError(w, r, "search projects", err)
		return
	}
	if projects != nil {
		out.Projects = projects
	}

	projectIDs, err := projectstore.New(h.DB).IDsForUser(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "load project scope", err)
		return
	}
	tasks, err := taskstore.New(h.DB).List(ctx, uid, projectIDs, taskstore.Filter{Search: q}, 0, groupLimit)
	if err != nil {
		h.ErrLog.ServerError(w, r, "search tasks", err)
		return
	}
	if tasks != nil {
		out.Tasks = tasks
	}

	users, err := userstore.New(h.DB).ListPublic(ctx, q, 0, groupLimit)
	if err != nil {
		h.ErrLog.ServerError(w, r, "search users", err)
		return
	}
	if users != nil {
		out.Users = users
	}

	httpjson.OK(w, out)
}
