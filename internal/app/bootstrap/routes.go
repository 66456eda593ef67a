// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountfeature "github.com/dalemusser/campaignhub/internal/app/features/account"
	adminfeature "github.com/dalemusser/campaignhub/internal/app/features/admin"
	analyticsfeature "github.com/dalemusser/campaignhub/internal/app/features/analytics"
	campaignsfeature "github.com/dalemusser/campaignhub/internal/app/features/campaigns"
	campaigntypesfeature "github.com/dalemusser/campaignhub/internal/app/features/campaigntypes"
	channelsfeature "github.com/dalemusser/campaignhub/internal/app/features/channels"
	eventsfeature "github.com/dalemusser/campaignhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/campaignhub/internal/app/features/health"
	invitationsfeature "github.com/dalemusser/campaignhub/internal/app/features/invitations"
	membersfeature "github.com/dalemusser/campaignhub/internal/app/features/members"
	preferencesfeature "github.com/dalemusser/campaignhub/internal/app/features/preferences"
	projectsfeature "github.com/dalemusser/campaignhub/internal/app/features/projects"
	settingsfeature "github.com/dalemusser/campaignhub/internal/app/features/settings"
	timelinefeature "github.com/dalemusser/campaignhub/internal/app/features/timeline"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/store/watch"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The router applies metrics and session
// middleware, then mounts the account, invitation, preference, admin and
// project features. Per-project features hang off /projects/{projectID}
// behind the project access gate.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	svc := newServices(appCfg, deps, logger)

	// Fresh user data on each request, so bans and admin changes take effect
	// immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(svc.users))

	r := chi.NewRouter()
	if svc.metrics != nil {
		r.Use(svc.metrics.Middleware)
		r.Handle("/metrics", svc.metrics.Handler())
	}

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Group(func(r chi.Router) {
		// Loads SessionUser into context if signed in.
		r.Use(sessionMgr.LoadSessionUser)

		accountHandler := accountfeature.NewHandler(svc.accounts, svc.invites, sessionMgr, svc.limiter, svc.audit, svc.metrics, logger)
		r.Mount("/account", accountfeature.Routes(accountHandler))

		invitationsHandler := invitationsfeature.NewHandler(svc.invites, sessionMgr, svc.audit, logger)
		r.Mount("/invite", invitationsfeature.Routes(invitationsHandler))

		prefsHandler := preferencesfeature.NewHandler(sessionMgr, logger)
		r.Mount("/preferences", preferencesfeature.Routes(prefsHandler))

		adminHandler := adminfeature.NewHandler(svc.accounts, svc.project, sessionMgr, svc.audit, logger)
		r.Mount("/admin", adminfeature.Routes(adminHandler))

		membersHandler := membersfeature.NewHandler(svc.project, svc.audit, logger)
		channelsHandler := channelsfeature.NewHandler(svc.planning, logger)
		typesHandler := campaigntypesfeature.NewHandler(svc.planning, logger)
		campaignsHandler := campaignsfeature.NewHandler(svc.planning, logger)
		settingsHandler := settingsfeature.NewHandler(svc.planning, logger)
		timelineHandler := timelinefeature.NewHandler(svc.planning, logger)
		analyticsHandler := analyticsfeature.NewHandler(svc.planning, logger)
		eventsHandler := eventsfeature.NewHandler(watch.New(deps.MongoDatabase, logger), svc.snapshotLoaders(), logger)

		projectsHandler := projectsfeature.NewHandler(svc.project, svc.audit, logger)
		gate := authz.NewGate(svc.project, logger)
		r.With(sessionMgr.RequireSignedIn).Mount("/projects", projectsfeature.Routes(projectsHandler, gate, func(r chi.Router) {
			r.Mount("/members", membersfeature.Routes(membersHandler))
			r.Mount("/invitations", invitationsfeature.ProjectRoutes(invitationsHandler))
			r.Mount("/channels", channelsfeature.Routes(channelsHandler))
			r.Mount("/campaign-types", campaigntypesfeature.Routes(typesHandler))
			r.Mount("/campaigns", campaignsfeature.Routes(campaignsHandler))
			r.Mount("/settings", settingsfeature.Routes(settingsHandler))
			r.Mount("/timeline", timelinefeature.Routes(timelineHandler))
			r.Mount("/analytics", analyticsfeature.Routes(analyticsHandler))
			r.Mount("/events", eventsfeature.Routes(eventsHandler))
		}))
	})

	return r, nil
}
