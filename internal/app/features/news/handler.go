// internal/app/features/news/handler.go
package news

import (
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	categorystore "github.com/mtt/mttdash/internal/app/store/categories"
	newsstore "github.com/mtt/mttdash/internal/app/store/news"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ImagePrefix is the bucket prefix of uploaded article images.
const ImagePrefix = "news"

// Handler serves the news endpoints.
type Handler struct {
	News       *newsstore.Store
	Categories *categorystore.Store
	Uploader   *objectstore.Uploader
	AuditLog   *auditlog.Logger
	ErrLog     *apierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, up *objectstore.Uploader, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		News:       newsstore.New(db),
		Categories: categorystore.New(db),
		Uploader:   up,
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}
