// internal/app/features/tasks/handler.go
package tasks

import (
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/notify"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the task CRUD, comment, and subtask handlers.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierror.ErrorLogger
	Notifier *notify.Notifier
}

// NewHandler constructs a Handler bound to the given dependencies.
func NewHandler(db *mongo.Database, errLog *apierror.ErrorLogger, logger *zap.Logger, notifier *notify.Notifier) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog, Notifier: notifier}
}

// taskID parses the {taskID} route parameter.
func taskID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
}

// actorFrom builds the notification actor for the signed-in user.
func actorFrom(su *sysauth.SessionUser) notify.Actor {
	id, _ := su.ObjectID()
	return notify.Actor{ID: id, Name: su.Name}
}
