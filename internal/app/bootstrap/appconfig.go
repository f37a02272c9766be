// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: ports, TLS, logging, and
// CORS live in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session token configuration
	JWTSecret string        // Secret for signing session tokens (must be strong in production)
	JWTIssuer string        // Issuer claim stamped on tokens
	JWTTTL    time.Duration // Token lifetime

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (blank disables outbound mail; reset links are logged)
	MailSMTPPort int    // SMTP server port
	MailSMTPUser string // SMTP username
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// Base URL used to build password-reset links
	BaseURL string // e.g., "https://taskhive.app" or "http://localhost:3000"
	// SiteName appears in outbound email.
	SiteName string

	// Password reset token lifetime
	ResetExpiry time.Duration

	// Notification retention: read notifications older than this are
	// purged by the cleanup worker.
	NotificationRetention time.Duration
	NotificationSweep     time.Duration // how often the cleanup worker runs

	// WebSocket origin policy: blank means same-origin only; "*" accepts
	// any origin (development).
	WSAllowedOrigin string
}
