// internal/app/features/analytics/handler.go
package analytics

import (
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the aggregate reporting endpoints.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *apierror.ErrorLogger
}

// NewHandler constructs a Handler bound to the given dependencies.
func NewHandler(db *mongo.Database, errLog *apierror.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}
