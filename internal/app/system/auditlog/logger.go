// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	"github.com/mtt/mttdash/internal/app/store/audit"
	"github.com/mtt/mttdash/internal/app/system/auth"
	"github.com/mtt/mttdash/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for each event category.
const (
	All = "all" // MongoDB and zap
	DB  = "db"
	Log = "log"
	Off = "off"
)

// Config selects where each category of event goes.
type Config struct {
	// Auth covers logins, logouts, password changes and OTP checks.
	Auth string
	// Admin covers content changes made from the dashboard.
	Admin string
	// Capacity covers visibility and highlight decisions. Empty means Admin.
	Capacity string
}

// Logger writes audit events to the audit store and/or zap.
// A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	return ratelimit.ClientIP(r)
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

// actorID returns the signed-in user's id, if any.
func actorID(r *http.Request) *primitive.ObjectID {
	if r == nil {
		return nil
	}
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil
	}
	return &oid
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.Entity != "" {
		fields = append(fields, zap.String("entity", event.Entity))
	}
	if event.EntityID != nil {
		fields = append(fields, zap.String("entity_id", event.EntityID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryAdmin:
		return l.config.Admin
	case audit.CategoryCapacity:
		if l.config.Capacity != "" {
			return l.config.Capacity
		}
		return l.config.Admin
	default:
		return All
	}
}

// Log records event according to the category's setting.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == Off {
		return
	}
	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailedUserNotFound logs a login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_email": email},
	})
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	})
}

// LoginFailedUserDisabled logs a login to a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserDisabled,
		UserID:        &userID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: "user disabled",
		Details:       map[string]string{"email": email},
	})
}

// LoginFailedRateLimit logs a login refused by the limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: "rate limited",
		Details:       map[string]string{"email": email},
	})
}

// Logout logs a logout. userIDStr is the session's hex id and may be empty.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
	})
}

// PasswordChanged logs a password reset. r is nil when run from mttctl.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID, via string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordChanged,
		UserID:    &userID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"via": via},
	})
}

// OTPSent logs an emailed one-time code.
func (l *Logger) OTPSent(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventOTPSent,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// OTPVerified logs a successful code check.
func (l *Logger) OTPVerified(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventOTPVerified,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// OTPFailed logs a rejected code.
func (l *Logger) OTPFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventOTPFailed,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	})
}

// --- Admin Events ---

// Admin logs a dashboard change to one record of entity (a collection name).
func (l *Logger) Admin(ctx context.Context, r *http.Request, eventType, entity string, id primitive.ObjectID, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   actorID(r),
		Entity:    entity,
		EntityID:  &id,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   details,
	})
}

// ProfileUpdated logs a change to the signed-in user's contact details.
func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, userID primitive.ObjectID, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventProfileUpdated,
		UserID:    &userID,
		ActorID:   actorID(r),
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"fields_changed": fieldsChanged},
	})
}

// --- Capacity Events ---

// Visibility logs the outcome of a guarded visibility or highlight change.
// Denials caused by infrastructure errors are not logged here.
func (l *Logger) Visibility(ctx context.Context, r *http.Request, policy string, id primitive.ObjectID, requested, resolved bool, err error) {
	event := audit.Event{
		Category:  audit.CategoryCapacity,
		EventType: audit.EventVisibilityChanged,
		ActorID:   actorID(r),
		Entity:    policy,
		EntityID:  &id,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   err == nil,
		Details: map[string]string{
			"requested": strconv.FormatBool(requested),
			"resolved":  strconv.FormatBool(resolved),
			"outcome":   capacitypolicy.Outcome(requested, resolved, err),
		},
	}
	if err != nil {
		if !isPolicyError(err) {
			return
		}
		event.EventType = audit.EventVisibilityDenied
		event.FailureReason = err.Error()
	}
	l.Log(ctx, event)
}

// SliderPromoted logs a hidden slider made visible to keep the minimum.
func (l *Logger) SliderPromoted(ctx context.Context, r *http.Request, policy string, id primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryCapacity,
		EventType: audit.EventSliderPromoted,
		ActorID:   actorID(r),
		Entity:    policy,
		EntityID:  &id,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
	})
}

func isPolicyError(err error) bool {
	return errors.Is(err, capacitypolicy.ErrIneligible) ||
		errors.Is(err, capacitypolicy.ErrBelowMinimum) ||
		errors.Is(err, capacitypolicy.ErrCapacityExceeded)
}
