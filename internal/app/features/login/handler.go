// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	userstore "github.com/mtt/mttdash/internal/app/store/users"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/auth"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/ratelimit"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler signs dashboard administrators in.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
	ErrLog     *apierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler wires a login handler. limiter and audit may be nil.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	audit *auditlog.Logger,
	errLog *apierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type loginUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginResponse struct {
	Message string    `json:"message"`
	User    loginUser `json:"user"`
}

const badCredentials = "Invalid email or password"

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/login                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogin checks {email, password} and starts a session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: decode", err, err.Error())
		return
	}
	in.Email = normalize.Email(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, in.Email)
			apierrors.Error(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, in.Email, in.Password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		switch {
		case u.ID.IsZero():
			h.AuditLog.LoginFailedUserNotFound(ctx, r, in.Email)
		case u.Status == userstore.StatusDisabled:
			h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, in.Email)
		default:
			h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, in.Email)
		}
		apierrors.Error(w, http.StatusUnauthorized, badCredentials)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: authenticate", err, "Login failed")
		return
	}

	su := &auth.SessionUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
	if err := h.SessionMgr.Login(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Login failed")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)
	h.Log.Info("admin signed in", zap.String("user_id", su.ID))

	apierrors.JSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    loginUser{ID: su.ID, Name: su.Name, Email: su.Email},
	})
}
