// internal/app/features/proposals/handler.go
package proposals

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	proposalstore "github.com/mtt/mttdash/internal/app/store/proposals"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// FilePrefix is the bucket prefix of uploaded proposal documents.
const FilePrefix = "proposal"

// Handler serves proposal submission and review.
type Handler struct {
	Proposals *proposalstore.Store
	Uploader  *objectstore.Uploader
	AuditLog  *auditlog.Logger
	ErrLog    *apierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, up *objectstore.Uploader, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Proposals: proposalstore.New(db),
		Uploader:  up,
		AuditLog:  audit,
		ErrLog:    errLog,
		Log:       logger,
	}
}

// Routes mounts under /api/proposal. Submitting and uploading are public;
// reviewing is admin only.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSubmit)
	r.Post("/upload", h.HandleUpload)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", h.ServeList)
		r.Patch("/", h.HandleMarkReadBody)
		r.Patch("/{id}/read", h.HandleMarkRead)
	})
	return r
}
