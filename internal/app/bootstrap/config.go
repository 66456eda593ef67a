// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSessionKey is only acceptable outside production.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for CampaignHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CAMPAIGNHUB_MONGO_URI, CAMPAIGNHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "campaignhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "campaignhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},

	// Base URL for email links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for invitation and password reset links"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank logs mail instead of sending)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port (465 implicit TLS, otherwise STARTTLS)"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@campaignhub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "CampaignHub", Desc: "From display name"},

	// Invitations and password resets
	{Name: "invitation_ttl", Default: "168h", Desc: "How long an invitation link stays valid"},
	{Name: "invitation_sweep_interval", Default: "15m", Desc: "How often overdue invitations are marked expired (0 disables)"},
	{Name: "password_reset_expiry", Default: "1h", Desc: "How long a password reset link stays valid"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_project", Default: "all", Desc: "Project event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Login rate limiting
	{Name: "ratelimit_redis_addr", Default: "", Desc: "Redis address for shared login rate limits (blank keeps limits in memory)"},
	{Name: "ratelimit_redis_password", Default: "", Desc: "Redis password"},
	{Name: "ratelimit_redis_db", Default: 0, Desc: "Redis database number"},

	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics at /metrics"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of a user to promote to system admin on startup"},

	// Timeouts
	{Name: "timeout_ping", Default: timeouts.DefaultPing.String(), Desc: "Health check ping timeout"},
	{Name: "timeout_short", Default: timeouts.DefaultShort.String(), Desc: "Single-document operation timeout"},
	{Name: "timeout_medium", Default: timeouts.DefaultMedium.String(), Desc: "Multi-document operation timeout"},
	{Name: "timeout_long", Default: timeouts.DefaultLong.String(), Desc: "Report and snapshot timeout"},
	{Name: "timeout_batch", Default: timeouts.DefaultBatch.String(), Desc: "Cascade delete and sweep timeout"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig reads .env files, config files,
// CAMPAIGNHUB_* environment variables and command-line flags, merged with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CAMPAIGNHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 720*time.Hour),

		BaseURL: appValues.String("base_url"),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		InvitationTTL:           appValues.Duration("invitation_ttl", 7*24*time.Hour),
		InvitationSweepInterval: appValues.Duration("invitation_sweep_interval", 15*time.Minute),
		PasswordResetExpiry:     appValues.Duration("password_reset_expiry", time.Hour),

		// Audit logging
		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogAdmin:   appValues.String("audit_log_admin"),
		AuditLogProject: appValues.String("audit_log_project"),

		RateLimitRedisAddr:     appValues.String("ratelimit_redis_addr"),
		RateLimitRedisPassword: appValues.String("ratelimit_redis_password"),
		RateLimitRedisDB:       appValues.Int("ratelimit_redis_db"),

		MetricsEnabled: appValues.Bool("metrics_enabled"),
		AdminEmail:     appValues.String("admin_email"),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
		TimeoutBatch:  appValues.Duration("timeout_batch", timeouts.DefaultBatch),
	}

	// Zero durations keep the defaults.
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Batch:  appCfg.TimeoutBatch,
	})

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked before any connection attempt, and production
// refuses the development session key.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database must not be empty")
	}
	if len(appCfg.SessionKey) < 32 {
		return errors.New("session_key must be at least 32 characters")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return errors.New("session_key must be changed in production")
	}
	if appCfg.BaseURL == "" {
		return errors.New("base_url must not be empty")
	}
	for key, dest := range map[string]string{
		"audit_log_auth":    appCfg.AuditLogAuth,
		"audit_log_admin":   appCfg.AuditLogAdmin,
		"audit_log_project": appCfg.AuditLogProject,
	} {
		switch dest {
		case "", auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
		default:
			return fmt.Errorf("%s must be all, db, log or off (got %q)", key, dest)
		}
	}
	if appCfg.InvitationTTL <= 0 {
		return errors.New("invitation_ttl must be positive")
	}
	if appCfg.InvitationSweepInterval < 0 {
		return errors.New("invitation_sweep_interval must not be negative")
	}
	return nil
}
