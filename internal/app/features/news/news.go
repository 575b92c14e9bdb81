// internal/app/features/news/news.go
package news

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/store/audit"
	newsstore "github.com/mtt/mttdash/internal/app/store/news"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listResponse struct {
	Data       []models.News `json:"data"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"total_pages"`
}

// ServeList handles GET /api/news?page&limit&search&category.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, paging.DefaultLimit)
	f := newsstore.ListFilter{Search: normalize.QueryParam(query.Get(r, "search"))}
	if c := query.Get(r, "category"); c != "" {
		oid, err := primitive.ObjectIDFromHex(c)
		if err != nil {
			apierrors.Error(w, http.StatusBadRequest, "Invalid category")
			return
		}
		f.CategoryID = &oid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.News.List(ctx, f, pg)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news: list", err, "Failed to load news")
		return
	}
	apierrors.JSON(w, http.StatusOK, listResponse{
		Data:       list,
		Page:       pg.Page,
		Limit:      pg.Limit,
		Total:      total,
		TotalPages: pg.TotalPages(total),
	})
}

// ServeArticle handles GET /api/news/{id}.
func (h *Handler) ServeArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.News.GetByID(ctx, id)
	if errors.Is(err, newsstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "News not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news: get", err, "Failed to load news")
		return
	}
	apierrors.JSON(w, http.StatusOK, n)
}

// patch turns validated input into a store patch. It checks the category,
// uploads a multipart image part and resolves storage keys to URLs. The
// returned key is the object uploaded by this request, if any, so the caller
// can remove it when the write fails.
func (h *Handler) patch(ctx context.Context, r *http.Request, in articleInput) (newsstore.Patch, string, error) {
	p := newsstore.Patch{Title: in.Title, Content: in.Content}

	if in.CategoryID != nil && *in.CategoryID != "" {
		oid, _ := primitive.ObjectIDFromHex(*in.CategoryID)
		ok, err := h.Categories.Exists(ctx, oid)
		if err != nil {
			return p, "", err
		}
		if !ok {
			return p, "", errUnknownCategory
		}
		p.CategoryID = &oid
	}

	if in.Image != nil {
		img, key := *in.Image, ""
		if isStorageKey(img) {
			key = img
			img = h.Uploader.Bucket.URL(key)
		}
		p.Image, p.ImagePath = &img, &key
	}

	if fh := apierrors.FormFile(r, "image"); fh != nil {
		obj, err := h.Uploader.UploadFile(ctx, ImagePrefix, fh, objectstore.AcceptImages)
		if err != nil {
			return p, "", err
		}
		p.Image, p.ImagePath = &obj.URL, &obj.Path
		return p, obj.Path, nil
	}
	return p, "", nil
}

var errUnknownCategory = errors.New("unknown category")

// writeError maps errors from patch and the store.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, errUnknownCategory):
		apierrors.Error(w, http.StatusBadRequest, "Category does not exist")
	case errors.Is(err, newsstore.ErrNotFound):
		apierrors.Error(w, http.StatusNotFound, "News not found")
	case apierrors.Upload(w, err):
	default:
		h.ErrLog.LogServerError(w, r, "news: "+op, err, "Failed to save news")
	}
}

// discard removes an object uploaded by a request that then failed.
func (h *Handler) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.Uploader.Remove(ctx, key); err != nil {
		h.Log.Warn("news: remove orphaned upload", zap.String("key", key), zap.Error(err))
	}
}

// HandleCreate handles POST /api/news as JSON or multipart with an optional
// "image" file part.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r)
	if err != nil {
		if !apierrors.Upload(w, err) {
			h.ErrLog.LogBadRequest(w, r, "news: read body", err, err.Error())
		}
		return
	}
	in.clean()
	if res := in.validate(true); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, uploaded, err := h.patch(ctx, r, in)
	if err != nil {
		h.writeError(w, r, "create", err)
		return
	}
	n := models.News{Title: *p.Title, Content: *p.Content, CategoryID: p.CategoryID}
	if p.Image != nil {
		n.Image, n.ImagePath = *p.Image, *p.ImagePath
	}

	n, err = h.News.Create(ctx, n)
	if err != nil {
		h.discard(ctx, uploaded)
		h.writeError(w, r, "create", err)
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventNewsCreated, newsstore.Collection, n.ID, map[string]string{"title": n.Title})

	apierrors.JSON(w, http.StatusCreated, n)
}

// HandlePatch handles PATCH /api/news/{id}. Absent fields are unchanged; a
// replaced uploaded image is removed from the bucket.
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}
	in, err := readInput(w, r)
	if err != nil {
		if !apierrors.Upload(w, err) {
			h.ErrLog.LogBadRequest(w, r, "news: read body", err, err.Error())
		}
		return
	}
	in.clean()
	if res := in.validate(false); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, uploaded, err := h.patch(ctx, r, in)
	if err != nil {
		h.writeError(w, r, "patch", err)
		return
	}
	before, err := h.News.Update(ctx, id, p)
	if err != nil {
		h.discard(ctx, uploaded)
		h.writeError(w, r, "patch", err)
		return
	}
	if p.ImagePath != nil && before.ImagePath != "" && before.ImagePath != *p.ImagePath {
		h.discard(ctx, before.ImagePath)
	}
	h.AuditLog.Admin(ctx, r, audit.EventNewsUpdated, newsstore.Collection, id, nil)

	n, err := h.News.GetByID(ctx, id)
	if err != nil {
		h.writeError(w, r, "patch", err)
		return
	}
	apierrors.JSON(w, http.StatusOK, n)
}

// HandleDelete handles DELETE /api/news/{id} and removes its uploaded image.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.News.Delete(ctx, id)
	if err != nil {
		h.writeError(w, r, "delete", err)
		return
	}
	h.discard(ctx, n.ImagePath)
	h.AuditLog.Admin(ctx, r, audit.EventNewsDeleted, newsstore.Collection, id, map[string]string{"title": n.Title})

	apierrors.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
