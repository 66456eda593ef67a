// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It
// promotes the configured admin and starts the invitation expiry worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	svc := newServices(appCfg, deps, logger)

	actx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := svc.accounts.BootstrapAdmin(actx, appCfg.AdminEmail); err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}

	if supportsChangeStreams(actx, deps.MongoDatabase) {
		logger.Info("realtime updates enabled")
	} else {
		logger.Info("standalone MongoDB: realtime updates disabled, clients will poll")
	}

	if appCfg.InvitationSweepInterval > 0 && deps.background != nil {
		w := workers.NewInvitationExpiry(svc.invites, logger.Named("invitation-expiry"), appCfg.InvitationSweepInterval)
		w.Start()
		deps.background.invitationExpiry = w
	}
	return nil
}
