// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/waffle/config"
	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	"github.com/mtt/mttdash/internal/app/store/audit"
	dakwahstore "github.com/mtt/mttdash/internal/app/store/dakwah"
	otpstore "github.com/mtt/mttdash/internal/app/store/otp"
	sliderstore "github.com/mtt/mttdash/internal/app/store/sliders"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/capacity"
	"github.com/mtt/mttdash/internal/app/system/mailer"
	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"github.com/mtt/mttdash/internal/app/system/ratelimit"
	"github.com/mtt/mttdash/internal/app/system/tasks"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/app/system/visibility"
	"github.com/mtt/mttdash/internal/app/system/workers"
	"go.uber.org/zap"
)

// services are the long-lived objects shared by handlers and background
// jobs. Startup builds them; BuildHandler and Shutdown use them.
type services struct {
	Metrics    *metrics.Metrics
	AuditLog   *auditlog.Logger
	Uploader   *objectstore.Uploader
	Guard      *capacity.Guard
	Sliders    *visibility.Sliders
	Highlights *visibility.Highlights
	OTPs       *otpstore.Store
	Mailer     *mailer.Mailer
	Limiter    *ratelimit.LoginLimiter
	Runner     *workers.Runner
}

var (
	svcMu sync.Mutex
	svc   *services
)

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	db := deps.MongoDatabase
	m := metrics.New()
	guard := capacity.NewGuard(db, logger, m)

	s := &services{
		Metrics: m,
		AuditLog: auditlog.New(audit.New(db), logger, auditlog.Config{
			Auth:     appCfg.AuditLogAuth,
			Admin:    appCfg.AuditLogAdmin,
			Capacity: appCfg.AuditLogCapacity,
		}),
		Uploader:   objectstore.NewUploader(deps.Bucket, m),
		Guard:      guard,
		Sliders:    visibility.NewSliders(sliderstore.New(db), guard, capacitypolicy.Sliders(appCfg.SliderMaxVisible), m),
		Highlights: visibility.NewHighlights(dakwahstore.New(db), guard, capacitypolicy.DakwahHighlights(appCfg.DakwahMaxHighlight), m),
		OTPs:       otpstore.New(db, appCfg.OTPExpiry),
		Mailer: mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		}, logger, m),
		Limiter: ratelimit.NewLoginLimiter(),
	}
	s.Runner = workers.NewRunner(logger,
		tasks.CapacityAuditJob([]tasks.Reporter{s.Sliders, s.Highlights}, m, logger, appCfg.CapacityAuditInterval),
		tasks.OTPCleanupJob(s.OTPs, logger),
	)
	return s
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It seeds
// the administrator account, builds the shared services and starts the
// background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return errors.New("startup: database is not connected")
	}
	timeouts.Configure(appCfg.Timeouts)

	seedCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := ensureAdmin(seedCtx, deps, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
		logger.Error("seed admin failed", zap.Error(err))
		return err
	}

	s := newServices(appCfg, deps, logger)
	s.Runner.Start(true)

	svcMu.Lock()
	svc = s
	svcMu.Unlock()
	return nil
}

// current returns the services built by Startup, building them on first use
// when Startup did not run.
func current(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	svcMu.Lock()
	defer svcMu.Unlock()
	if svc == nil {
		svc = newServices(appCfg, deps, logger)
	}
	return svc
}
