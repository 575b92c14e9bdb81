// internal/app/features/dakwah/handler.go
package dakwah

import (
	"fmt"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/visibility"
	"go.uber.org/zap"
)

// Handler serves the daily dakwah endpoints. Highlight changes go through
// the visibility service.
type Handler struct {
	Highlights *visibility.Highlights
	AuditLog   *auditlog.Logger
	ErrLog     *apierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(svc *visibility.Highlights, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Highlights: svc,
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

func (h *Handler) policyMessages() map[error]string {
	return map[error]string{
		capacitypolicy.ErrCapacityExceeded: fmt.Sprintf("Maximum %d highlighted posts allowed", h.Highlights.Policy.MaxActive),
		capacitypolicy.ErrIneligible:       "Only published posts can be highlighted",
	}
}
