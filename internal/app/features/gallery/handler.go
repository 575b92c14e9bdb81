// internal/app/features/gallery/handler.go
package gallery

import (
	"github.com/go-chi/chi/v5"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	gallerystore "github.com/mtt/mttdash/internal/app/store/gallery"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RawUploadPrefix is where POST /api/upload stores files.
const RawUploadPrefix = "news"

// Handler serves the image pickers of the news, dakwah and slider editors.
type Handler struct {
	Images   *gallerystore.Store
	Uploader *objectstore.Uploader
	AuditLog *auditlog.Logger
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, up *objectstore.Uploader, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Images:   gallerystore.New(db),
		Uploader: up,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// Routes mounts under /api/gallery. Every route is admin only; the caller
// applies the gate when mounting.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Delete("/", h.HandleDeleteByPath)
	r.Route("/{kind}", func(r chi.Router) {
		r.Use(h.requireKind)
		r.Get("/", h.ServeList)
		r.Post("/", h.HandleUpload)
		r.Get("/{id}", h.ServeImage)
		r.Put("/{id}", h.HandleRename)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}

// UploadRoutes mounts under /api/upload.
func UploadRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleRawUpload)
	return r
}
