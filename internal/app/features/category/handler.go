// internal/app/features/category/handler.go
package category

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/store/audit"
	categorystore "github.com/mtt/mttdash/internal/app/store/categories"
	newsstore "github.com/mtt/mttdash/internal/app/store/news"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves news categories.
type Handler struct {
	Categories *categorystore.Store
	News       *newsstore.Store
	AuditLog   *auditlog.Logger
	ErrLog     *apierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Categories: categorystore.New(db),
		News:       newsstore.New(db),
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// Routes mounts under /api/category.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.HandleCreate)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}

// ServeList handles GET /api/category.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Categories.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "category: list", err, "Failed to load categories")
		return
	}
	apierrors.JSON(w, http.StatusOK, list)
}

type createRequest struct {
	Name string `json:"name" validate:"required,max=60" label:"Name"`
}

// HandleCreate handles POST /api/category {name}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "category: decode", err, err.Error())
		return
	}
	in.Name = normalize.Name(in.Name)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Categories.Create(ctx, in.Name)
	if errors.Is(err, categorystore.ErrDuplicate) {
		apierrors.Error(w, http.StatusConflict, "Category already exists")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "category: create", err, "Failed to create category")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventCategoryCreated, categorystore.Collection, c.ID, map[string]string{"name": c.Name})
	apierrors.JSON(w, http.StatusCreated, c)
}

// HandleDelete handles DELETE /api/category/{id}. Articles in the category
// are kept and become uncategorized.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Categories.Delete(ctx, id)
	if errors.Is(err, categorystore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "category: delete", err, "Failed to delete category")
		return
	}
	n, err := h.News.ClearCategory(ctx, id)
	if err != nil {
		h.Log.Warn("category: detach articles", zap.String("category_id", id.Hex()), zap.Error(err))
	}
	h.AuditLog.Admin(ctx, r, audit.EventCategoryDeleted, categorystore.Collection, id, nil)

	apierrors.JSON(w, http.StatusOK, map[string]any{"success": true, "detached": n})
}
