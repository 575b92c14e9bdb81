// internal/app/features/profile/handler.go
package profile

import (
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	userstore "github.com/mtt/mttdash/internal/app/store/users"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the signed-in administrator's profile endpoints.
type Handler struct {
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		AuditLog: audit,
		Log:      logger,
		ErrLog:   errLog,
	}
}
