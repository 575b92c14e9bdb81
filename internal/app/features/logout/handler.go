// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /api/logout. It always succeeds; a session that
// cannot be saved is logged and the client is told to forget it anyway.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
	}

	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if userID != "" {
		h.AuditLog.Logout(r.Context(), r, userID)
	}

	apierrors.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
