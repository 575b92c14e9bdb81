// internal/app/features/auditlog/handler.go
package auditlog

import (
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/store/audit"
	userstore "github.com/mtt/mttdash/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the audit trail to signed-in administrators.
type Handler struct {
	Events *audit.Store
	Users  *userstore.Store
	ErrLog *apierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs an audit log handler bound to db.
func NewHandler(db *mongo.Database, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: audit.New(db),
		Users:  userstore.New(db),
		ErrLog: errLog,
		Log:    logger,
	}
}
