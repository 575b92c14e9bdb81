// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/mtt/mttdash/internal/app/system/timeouts"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (MTTDASH_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and request limits; everything the dashboard
// backend itself needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // secret for signing session cookies
	SessionName   string        // cookie name (default: mttdash-session)
	SessionDomain string        // cookie domain (blank means current host)
	SessionMaxAge time.Duration // cookie lifetime

	// Seed administrator, created on startup when no user has this email
	AdminEmail    string
	AdminPassword string

	// Object storage: "local", "s3" or "gcs"
	StorageType      string
	StorageLocalPath string // directory for local uploads
	StorageLocalURL  string // URL prefix local uploads are served from
	StoragePublicURL string // public base URL of the bucket (S3 and GCS)

	// S3 and S3-compatible (Supabase, MinIO) storage
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageS3Endpoint  string // empty for AWS
	StorageS3AccessKey string // empty to use the default credential chain
	StorageS3SecretKey string

	// Google Cloud Storage
	StorageGCSBucket      string
	StorageGCSCredentials string // path to a service account file

	// Email/SMTP configuration for one-time codes
	MailSMTPHost string // empty logs mail instead of sending it
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string
	OTPExpiry    time.Duration

	// Public website
	CORSAllowedOrigins []string
	ContactUserEmail   string // user whose profile backs GET /api/contact-us

	// Capacity limits
	SliderMaxVisible      int
	DakwahMaxHighlight    int
	CapacityAuditInterval time.Duration

	// Deadlines for database and storage calls; zero keeps the default
	Timeouts timeouts.Config

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth     string
	AuditLogAdmin    string
	AuditLogCapacity string
}
