// internal/app/features/auth/handler.go
package auth

import (
	"github.com/dalemusser/taskhive/internal/app/store/passwordresets"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	sysauth "github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/mailer"
	"github.com/dalemusser/taskhive/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all account and session handlers.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	ErrLog  *apierror.ErrorLogger
	Tokens  *sysauth.TokenManager
	Resets  *passwordresets.Store
	Mailer  *mailer.Mailer // nil when SMTP is not configured; reset links are then logged
	Limiter *ratelimit.AuthLimiter

	// BaseURL is the public origin used to build reset links,
	// e.g. https://taskhive.app.
	BaseURL string
	// SiteName appears in outbound email.
	SiteName string
}

// NewHandler constructs a Handler bound to the given dependencies.
func NewHandler(db *mongo.Database, errLog *apierror.ErrorLogger, logger *zap.Logger,
	tokens *sysauth.TokenManager, resets *passwordresets.Store, m *mailer.Mailer,
	limiter *ratelimit.AuthLimiter, baseURL, siteName string) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Tokens:   tokens,
		Resets:   resets,
		Mailer:   m,
		Limiter:  limiter,
		BaseURL:  baseURL,
		SiteName: siteName,
	}
}
