// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"

	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the notification inbox handlers.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *apierror.ErrorLogger
}

// NewHandler constructs a Handler bound to the given dependencies.
func NewHandler(db *mongo.Database, errLog *apierror.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}

// notificationID parses the {notificationID} route parameter.
func notificationID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
}
