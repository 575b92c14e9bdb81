// internal/app/features/sliders/handler.go
package sliders

import (
	"fmt"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/visibility"
	"go.uber.org/zap"
)

// Handler serves the home slider endpoints. Every change to the visible
// flag goes through the visibility service.
type Handler struct {
	Sliders  *visibility.Sliders
	AuditLog *auditlog.Logger
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(svc *visibility.Sliders, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Sliders:  svc,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

func (h *Handler) policyMessages() map[error]string {
	return map[error]string{
		capacitypolicy.ErrCapacityExceeded: fmt.Sprintf("Maximum %d visible sliders allowed", h.Sliders.Policy.MaxActive),
		capacitypolicy.ErrBelowMinimum:     "At least one slider must remain visible",
	}
}
