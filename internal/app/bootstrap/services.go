// internal/app/bootstrap/services.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/features/events"
	"github.com/dalemusser/campaignhub/internal/app/services/accounts"
	invitationsvc "github.com/dalemusser/campaignhub/internal/app/services/invitations"
	"github.com/dalemusser/campaignhub/internal/app/services/planning"
	projectsvc "github.com/dalemusser/campaignhub/internal/app/services/projects"
	"github.com/dalemusser/campaignhub/internal/app/store/audit"
	brandingstore "github.com/dalemusser/campaignhub/internal/app/store/branding"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	campaigntypestore "github.com/dalemusser/campaignhub/internal/app/store/campaigntypes"
	channelstore "github.com/dalemusser/campaignhub/internal/app/store/channels"
	identitystore "github.com/dalemusser/campaignhub/internal/app/store/identities"
	invitationstore "github.com/dalemusser/campaignhub/internal/app/store/invitations"
	memberstore "github.com/dalemusser/campaignhub/internal/app/store/members"
	phasestore "github.com/dalemusser/campaignhub/internal/app/store/phases"
	projectstore "github.com/dalemusser/campaignhub/internal/app/store/projects"
	"github.com/dalemusser/campaignhub/internal/app/store/resettokens"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"github.com/dalemusser/campaignhub/internal/app/system/mailer"
	"github.com/dalemusser/campaignhub/internal/app/system/metrics"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	ipAttemptsPerMinute    = 10
	emailAttemptsPerWindow = 5
)

// services is the application's object graph, built once per hook from the
// shared backends.
type services struct {
	users    *userstore.Store
	projects *projectstore.Store

	mail     mailer.Mailer
	metrics  *metrics.Metrics
	audit    *auditlog.Logger
	limiter  *ratelimit.LoginLimiter
	runner   *txn.Runner
	accounts *accounts.Service
	project  *projectsvc.Service
	invites  *invitationsvc.Service
	planning *planning.Service
}

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	db := deps.MongoDatabase

	users := userstore.New(db)
	identities := identitystore.New(db)
	projects := projectstore.New(db)
	members := memberstore.New(db)
	invitations := invitationstore.New(db)
	channels := channelstore.New(db)
	types := campaigntypestore.New(db)
	campaigns := campaignstore.New(db)
	phases := phasestore.New(db)
	branding := brandingstore.New(db)
	auditStore := audit.New(db)

	s := &services{users: users, projects: projects}

	if appCfg.MailSMTPHost == "" {
		s.mail = mailer.NewLog(logger)
	} else {
		s.mail = mailer.NewSMTP(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
			Timeout:  timeouts.Long(),
		}, logger)
	}

	if appCfg.MetricsEnabled {
		s.metrics = metrics.NewDefault()
	}
	s.audit = auditlog.New(auditStore, logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Admin:   appCfg.AuditLogAdmin,
		Project: appCfg.AuditLogProject,
	})

	if deps.Redis != nil {
		s.limiter = ratelimit.NewLoginLimiterWith(
			ratelimit.NewRedisCounter(deps.Redis, "campaignhub:rl:ip:", ipAttemptsPerMinute, time.Minute, logger),
			ratelimit.NewRedisCounter(deps.Redis, "campaignhub:rl:email:", emailAttemptsPerWindow, 5*time.Minute, logger),
		)
	} else {
		s.limiter = ratelimit.NewLoginLimiter()
	}

	s.runner = txn.New(deps.MongoClient, logger)

	// Swept in this order on project delete; members always go last.
	owned := []projectsvc.Collection{
		{Name: indexes.Campaigns, Purger: campaigns},
		{Name: indexes.Channels, Purger: channels},
		{Name: indexes.CampaignTypes, Purger: types},
		{Name: indexes.Phases, Purger: phases},
		{Name: indexes.Branding, Purger: branding},
		{Name: indexes.Invitations, Purger: invitations},
	}
	s.project = projectsvc.New(projects, members, users, owned, s.runner, logger)
	s.accounts = accounts.New(users, identities, resettokens.New(db, appCfg.PasswordResetExpiry), s.project, members, s.mail, logger,
		accounts.Config{BaseURL: appCfg.BaseURL, SiteName: appCfg.MailFromName})
	s.invites = invitationsvc.New(invitations, members, projects, s.mail, s.runner, s.metrics, logger,
		invitationsvc.Config{BaseURL: appCfg.BaseURL, SiteName: appCfg.MailFromName, TTL: appCfg.InvitationTTL})
	s.planning = planning.New(channels, types, campaigns, phases, branding, logger)
	return s
}

// snapshotLoaders maps each watchable collection to the read the realtime
// stream sends with its change notices.
func (s *services) snapshotLoaders() map[string]events.Loader {
	return map[string]events.Loader{
		indexes.Channels: func(ctx context.Context, pid primitive.ObjectID) (any, error) {
			return s.planning.Channels(ctx, pid)
		},
		indexes.CampaignTypes: func(ctx context.Context, pid primitive.ObjectID) (any, error) {
			return s.planning.CampaignTypes(ctx, pid)
		},
		indexes.Campaigns: func(ctx context.Context, pid primitive.ObjectID) (any, error) {
			return s.planning.Campaigns(ctx, pid, planning.CampaignFilter{})
		},
		indexes.Phases: func(ctx context.Context, pid primitive.ObjectID) (any, error) {
			return s.planning.Phases(ctx, pid)
		},
		indexes.Branding: func(ctx context.Context, pid primitive.ObjectID) (any, error) {
			return s.planning.Branding(ctx, pid)
		},
		indexes.ProjectMembers: func(ctx context.Context, pid primitive.ObjectID) (any, error) {
			return s.project.Members(ctx, pid)
		},
		indexes.Invitations: func(ctx context.Context, pid primitive.ObjectID) (any, error) {
			return s.invites.List(ctx, pid, false)
		},
		indexes.Projects: func(ctx context.Context, pid primitive.ObjectID) (any, error) {
			return s.projects.GetByID(ctx, pid)
		},
	}
}
