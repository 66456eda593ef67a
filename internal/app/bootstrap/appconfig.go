// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework-level settings (ports, TLS, log level, CORS, body limits);
// everything specific to CampaignHub lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: campaignhub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Base URL for email links (invitations, password reset)
	BaseURL string

	// Email/SMTP configuration. An empty host logs mail instead of sending.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Invitations
	InvitationTTL           time.Duration
	InvitationSweepInterval time.Duration // 0 disables the expiry worker

	PasswordResetExpiry time.Duration

	// Audit logging destinations: all, db, log or off
	AuditLogAuth    string
	AuditLogAdmin   string
	AuditLogProject string

	// Redis-backed login limiter; in-memory when the address is empty
	RateLimitRedisAddr     string
	RateLimitRedisPassword string
	RateLimitRedisDB       int

	MetricsEnabled bool

	// Promoted to system admin at startup
	AdminEmail string

	// Operation timeouts
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration
}
