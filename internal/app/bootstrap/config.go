// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/authutil"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the dashboard backend.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: MTTDASH_MONGO_URI, MTTDASH_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "mtt_dashboard", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "mttdash-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime (e.g., 12h, 168h)"},

	// Seed administrator
	{Name: "admin_email", Default: "", Desc: "Email of the administrator created on startup when missing"},
	{Name: "admin_password", Default: "", Desc: "Initial password for admin_email"},

	// Object storage
	{Name: "storage_type", Default: objectstore.BackendLocal, Desc: "Storage backend: 'local', 's3' or 'gcs'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Directory for local uploads"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "URL prefix for serving local uploads"},
	{Name: "storage_public_url", Default: "", Desc: "Public base URL of the bucket (derived when blank)"},
	{Name: "storage_s3_region", Default: "", Desc: "S3 region"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "S3-compatible endpoint (blank for AWS)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key (blank for the default credential chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_gcs_bucket", Default: "", Desc: "GCS bucket name"},
	{Name: "storage_gcs_credentials", Default: "", Desc: "Path to a GCS service account file (blank for default credentials)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank logs mail instead of sending)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@mtt.or.id", Desc: "From email address"},
	{Name: "mail_from_name", Default: "MTT", Desc: "From display name"},
	{Name: "otp_expiry", Default: "2m", Desc: "One-time code lifetime (e.g., 2m, 90s)"},

	// Public website
	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated origins allowed to call the public API"},
	{Name: "contact_user_email", Default: "", Desc: "User whose profile supplies the public contact details"},

	// Capacity limits
	{Name: "slider_max_visible", Default: 5, Desc: "Most home sliders that may be visible at once"},
	{Name: "dakwah_max_highlight", Default: 5, Desc: "Most daily dakwah posts that may be highlighted at once"},
	{Name: "capacity_audit_interval", Default: "10m", Desc: "How often visible counts are rechecked (0 disables)"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries and capacity checks"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for multi-collection operations"},
	{Name: "timeout_upload", Default: "60s", Desc: "Deadline for object storage calls"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: auditlog.All, Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: auditlog.All, Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_capacity", Default: "", Desc: "Visibility decision logging (blank follows audit_log_admin)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env > files > defaults, reading WAFFLE_* for core settings and
// MTTDASH_* for the keys above.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MTTDASH", appConfigKeys)
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
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),

		StorageType:           strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath:      appValues.String("storage_local_path"),
		StorageLocalURL:       appValues.String("storage_local_url"),
		StoragePublicURL:      appValues.String("storage_public_url"),
		StorageS3Region:       appValues.String("storage_s3_region"),
		StorageS3Bucket:       appValues.String("storage_s3_bucket"),
		StorageS3Prefix:       appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:     appValues.String("storage_s3_endpoint"),
		StorageS3AccessKey:    appValues.String("storage_s3_access_key"),
		StorageS3SecretKey:    appValues.String("storage_s3_secret_key"),
		StorageGCSBucket:      appValues.String("storage_gcs_bucket"),
		StorageGCSCredentials: appValues.String("storage_gcs_credentials"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),
		OTPExpiry:    appValues.Duration("otp_expiry", 2*time.Minute),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		ContactUserEmail:   appValues.String("contact_user_email"),

		SliderMaxVisible:      appValues.Int("slider_max_visible"),
		DakwahMaxHighlight:    appValues.Int("dakwah_max_highlight"),
		CapacityAuditInterval: appValues.Duration("capacity_audit_interval", 10*time.Minute),

		Timeouts: timeouts.Config{
			Short:  appValues.Duration("timeout_short", timeouts.DefaultShort),
			Medium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
			Long:   appValues.Duration("timeout_long", timeouts.DefaultLong),
			Upload: appValues.Duration("timeout_upload", timeouts.DefaultUpload),
		},

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogAdmin:    appValues.String("audit_log_admin"),
		AuditLogCapacity: appValues.String("audit_log_capacity"),
	}

	return coreCfg, appCfg, nil
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// It checks the MongoDB URI format, that the selected storage backend has
// the settings it needs, that capacity limits leave room for at least one
// active record, and that a configured seed admin has a usable password.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	var errs []error
	switch appCfg.StorageType {
	case objectstore.BackendLocal:
		if appCfg.StorageLocalPath == "" || appCfg.StorageLocalURL == "" {
			errs = append(errs, errors.New("local storage requires storage_local_path and storage_local_url"))
		}
	case objectstore.BackendS3:
		if appCfg.StorageS3Bucket == "" {
			errs = append(errs, errors.New("s3 storage requires storage_s3_bucket"))
		}
		if appCfg.StorageS3Region == "" && appCfg.StorageS3Endpoint == "" {
			errs = append(errs, errors.New("s3 storage requires storage_s3_region or storage_s3_endpoint"))
		}
		if (appCfg.StorageS3AccessKey == "") != (appCfg.StorageS3SecretKey == "") {
			errs = append(errs, errors.New("storage_s3_access_key and storage_s3_secret_key must be set together"))
		}
	case objectstore.BackendGCS:
		if appCfg.StorageGCSBucket == "" {
			errs = append(errs, errors.New("gcs storage requires storage_gcs_bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage_type %q (want local, s3 or gcs)", appCfg.StorageType))
	}

	if appCfg.SliderMaxVisible < 1 {
		errs = append(errs, fmt.Errorf("slider_max_visible must be at least 1, got %d", appCfg.SliderMaxVisible))
	}
	if appCfg.DakwahMaxHighlight < 1 {
		errs = append(errs, fmt.Errorf("dakwah_max_highlight must be at least 1, got %d", appCfg.DakwahMaxHighlight))
	}
	if appCfg.CapacityAuditInterval < 0 {
		errs = append(errs, errors.New("capacity_audit_interval must not be negative"))
	}

	for key, v := range map[string]string{
		"audit_log_auth":     appCfg.AuditLogAuth,
		"audit_log_admin":    appCfg.AuditLogAdmin,
		"audit_log_capacity": appCfg.AuditLogCapacity,
	} {
		switch v {
		case "", auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown value %q", key, v))
		}
	}

	if appCfg.AdminEmail != "" {
		if err := authutil.ValidatePassword(appCfg.AdminPassword); err != nil {
			errs = append(errs, fmt.Errorf("admin_password: %w", err))
		}
	}

	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		errs = append(errs, errors.New("session_key must be changed in production"))
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}
