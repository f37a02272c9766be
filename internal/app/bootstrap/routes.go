// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	analyticsfeature "github.com/dalemusser/taskhive/internal/app/features/analytics"
	authfeature "github.com/dalemusser/taskhive/internal/app/features/auth"
	healthfeature "github.com/dalemusser/taskhive/internal/app/features/health"
	notificationsfeature "github.com/dalemusser/taskhive/internal/app/features/notifications"
	projectsfeature "github.com/dalemusser/taskhive/internal/app/features/projects"
	searchfeature "github.com/dalemusser/taskhive/internal/app/features/search"
	tasksfeature "github.com/dalemusser/taskhive/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/taskhive/internal/app/features/users"
	wsfeature "github.com/dalemusser/taskhive/internal/app/features/ws"
	notifstore "github.com/dalemusser/taskhive/internal/app/store/notifications"
	"github.com/dalemusser/taskhive/internal/app/store/passwordresets"
	"github.com/dalemusser/taskhive/internal/app/system/apierror"
	"github.com/dalemusser/taskhive/internal/app/system/auth"
	"github.com/dalemusser/taskhive/internal/app/system/mailer"
	"github.com/dalemusser/taskhive/internal/app/system/notify"
	"github.com/dalemusser/taskhive/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhive/internal/app/system/realtime"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// TaskHive builds the shared services first (token manager, mailer, rate
// limiter, realtime hub, notifier), applies the bearer-token middleware
// globally, then mounts one feature router per API area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.TaskHiveMongoDatabase

	tokens, err := auth.NewTokenManager(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	// Outbound mail is optional: with no SMTP host configured the auth
	// feature logs reset links instead of emailing them.
	var m *mailer.Mailer
	if appCfg.MailSMTPHost != "" {
		m, err = mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			Username: appCfg.MailSMTPUser,
			Password: appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		}, logger)
		if err != nil {
			logger.Error("mailer init failed", zap.Error(err))
			return nil, err
		}
	} else {
		logger.Warn("no SMTP host configured; outbound mail disabled")
	}

	errLog := apierror.NewErrorLogger(logger)
	limiter := ratelimit.NewAuthLimiter()
	resets := passwordresets.New(db, appCfg.ResetExpiry)

	hub := realtime.NewHub(logger)
	notifier := notify.New(notifstore.New(db), hub, logger)

	r := chi.NewRouter()

	// Global auth middleware: parses a Bearer token, if present, and loads
	// the SessionUser into the request context. Routes that require a
	// signed-in user additionally use auth.RequireSignedIn.
	r.Use(tokens.LoadTokenUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.TaskHiveMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication and account management
	authHandler := authfeature.NewHandler(db, errLog, logger, tokens, resets, m, limiter, appCfg.BaseURL, appCfg.SiteName)
	r.Mount("/api/auth", authfeature.Routes(authHandler))

	// Projects and membership
	projectsHandler := projectsfeature.NewHandler(db, errLog, logger, notifier)
	r.Mount("/api/projects", projectsfeature.Routes(projectsHandler))

	// Tasks, comments, and subtasks
	tasksHandler := tasksfeature.NewHandler(db, errLog, logger, notifier)
	r.Mount("/api/tasks", tasksfeature.Routes(tasksHandler))

	// Dashboard analytics
	analyticsHandler := analyticsfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/analytics", analyticsfeature.Routes(analyticsHandler))

	// Notification inbox
	notificationsHandler := notificationsfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler))

	// User directory
	usersHandler := usersfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler))

	// Cross-entity search
	searchHandler := searchfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/search", searchfeature.Routes(searchHandler))

	// Realtime WebSocket endpoint
	wsHandler := wsfeature.NewHandler(db, hub, logger, wsCheckOrigin(appCfg.WSAllowedOrigin))
	r.Mount("/ws", wsfeature.Routes(wsHandler))

	return r, nil
}

// wsCheckOrigin maps the ws_allowed_origin setting onto a gorilla/websocket
// CheckOrigin function. Blank keeps the library's same-origin default, "*"
// accepts any origin, and anything else must match the Origin header exactly.
func wsCheckOrigin(allowed string) func(r *http.Request) bool {
	switch allowed {
	case "":
		return nil
	case "*":
		return func(*http.Request) bool { return true }
	default:
		return func(r *http.Request) bool {
			return r.Header.Get("Origin") == allowed
		}
	}
}
