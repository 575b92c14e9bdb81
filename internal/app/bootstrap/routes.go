// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	auditlogfeature "github.com/mtt/mttdash/internal/app/features/auditlog"
	categoryfeature "github.com/mtt/mttdash/internal/app/features/category"
	contactfeature "github.com/mtt/mttdash/internal/app/features/contact"
	dakwahfeature "github.com/mtt/mttdash/internal/app/features/dakwah"
	dashboardfeature "github.com/mtt/mttdash/internal/app/features/dashboard"
	errorsfeature "github.com/mtt/mttdash/internal/app/features/errors"
	galleryfeature "github.com/mtt/mttdash/internal/app/features/gallery"
	healthfeature "github.com/mtt/mttdash/internal/app/features/health"
	loginfeature "github.com/mtt/mttdash/internal/app/features/login"
	logoutfeature "github.com/mtt/mttdash/internal/app/features/logout"
	newsfeature "github.com/mtt/mttdash/internal/app/features/news"
	otpfeature "github.com/mtt/mttdash/internal/app/features/otp"
	profilefeature "github.com/mtt/mttdash/internal/app/features/profile"
	proposalsfeature "github.com/mtt/mttdash/internal/app/features/proposals"
	slidersfeature "github.com/mtt/mttdash/internal/app/features/sliders"
	userstore "github.com/mtt/mttdash/internal/app/store/users"
	"github.com/mtt/mttdash/internal/app/system/auth"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the dashboard backend.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. Every feature is mounted under /api; public reads
// and submissions are open to the website through CORS, while content
// mutations sit behind the signed-in session gate.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser refetches the user on each request so disabled
	// accounts lose access immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	s := current(appCfg, deps, logger)
	db := deps.MongoDatabase
	errLog := errorsfeature.NewErrorLogger(logger)
	origins := auth.NewOriginGuard(appCfg.CORSAllowedOrigins, logger)
	requireAdmin := func(next http.Handler) http.Handler {
		return origins.Middleware(sessionMgr.RequireSignedIn(next))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(sessionMgr.LoadSessionUser)
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Operations
	healthHandler := healthfeature.NewHandler(deps.MongoClient, s.Guard, deps.Bucket.Backend(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", s.Metrics.Handler())

	// Local uploads are served by the app; S3 and GCS objects are served by
	// the bucket itself.
	if deps.Bucket.Backend() == objectstore.BackendLocal {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", uploadHeaders(fileserver.Handler(prefix, appCfg.StorageLocalPath)))
	}

	r.Route("/api", func(api chi.Router) {
		// Authentication
		loginHandler := loginfeature.NewHandler(db, sessionMgr, s.Limiter, s.AuditLog, errLog, logger)
		api.With(origins.Middleware).Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, s.AuditLog, logger)
		api.With(origins.Middleware).Mount("/logout", logoutfeature.Routes(logoutHandler))

		profileHandler := profilefeature.NewHandler(db, s.AuditLog, errLog, logger)
		api.With(requireAdmin).Mount("/profile", profilefeature.Routes(profileHandler))

		// Capacity-bounded content
		slidersHandler := slidersfeature.NewHandler(s.Sliders, s.AuditLog, errLog, logger)
		api.Mount("/home-sliders", slidersfeature.Routes(slidersHandler, requireAdmin))

		dakwahHandler := dakwahfeature.NewHandler(s.Highlights, s.AuditLog, errLog, logger)
		api.Mount("/daily-dakwah", dakwahfeature.Routes(dakwahHandler, requireAdmin))

		// News and reference data
		newsHandler := newsfeature.NewHandler(db, s.Uploader, s.AuditLog, errLog, logger)
		api.Mount("/news", newsfeature.Routes(newsHandler, requireAdmin))

		categoryHandler := categoryfeature.NewHandler(db, s.AuditLog, errLog, logger)
		api.Mount("/category", categoryfeature.Routes(categoryHandler, requireAdmin))

		contactHandler := contactfeature.NewHandler(db, appCfg.ContactUserEmail, errLog, logger)
		api.Mount("/contact-us", contactfeature.Routes(contactHandler))

		// Proposals and the email codes that confirm them
		proposalsHandler := proposalsfeature.NewHandler(db, s.Uploader, s.AuditLog, errLog, logger)
		api.Mount("/proposal", proposalsfeature.Routes(proposalsHandler, requireAdmin))

		otpHandler := otpfeature.NewHandler(s.OTPs, s.Mailer, appCfg.MailFromName, s.AuditLog, errLog, logger)
		otpfeature.Register(api, otpHandler)

		// Image pickers and raw uploads
		galleryHandler := galleryfeature.NewHandler(db, s.Uploader, s.AuditLog, errLog, logger)
		api.With(requireAdmin).Mount("/gallery", galleryfeature.Routes(galleryHandler))
		api.With(requireAdmin).Mount("/upload", galleryfeature.UploadRoutes(galleryHandler))

		dashboardHandler := dashboardfeature.NewHandler(db, s.Sliders, s.Highlights, logger)
		api.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, requireAdmin))

		auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
		api.Mount("/audit-log", auditlogfeature.Routes(auditHandler, requireAdmin))
	})

	return r, nil
}

// uploadHeaders stops browsers from sniffing or running stored uploads.
func uploadHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
		next.ServeHTTP(w, r)
	})
}
