// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/taskhive/internal/app/store/notifications"
	"github.com/dalemusser/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/taskhive/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// notificationCleanup is retained here so Shutdown can stop it.
var notificationCleanup *workers.NotificationCleanup

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. TaskHive
// uses it to tune database timeouts from the environment and to start the
// background worker that purges stale read notifications.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("database timeouts configured from environment", zap.Int("overrides", n))
	}

	notificationCleanup = workers.NewNotificationCleanup(
		notifications.New(deps.TaskHiveMongoDatabase),
		logger,
		appCfg.NotificationSweep,
		appCfg.NotificationRetention,
	)
	notificationCleanup.Start()

	return nil
}
