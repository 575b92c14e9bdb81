// internal/app/features/gallery/gallery.go
package gallery

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/store/audit"
	gallerystore "github.com/mtt/mttdash/internal/app/store/gallery"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.uber.org/zap"
)

type kindKey struct{}

// requireKind rejects unknown gallery kinds before any handler runs.
func (h *Handler) requireKind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		if !models.IsGalleryKind(kind) {
			apierrors.Error(w, http.StatusNotFound, "Unknown gallery")
			return
		}
		ctx := context.WithValue(r.Context(), kindKey{}, kind)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func kindOf(r *http.Request) string {
	k, _ := r.Context().Value(kindKey{}).(string)
	return k
}

type listResponse struct {
	Data  []models.GalleryImage `json:"data"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
	Total int64                 `json:"total"`
}

// ServeList handles GET /api/gallery/{kind}?page&limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, paging.GalleryLimit)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.Images.List(ctx, kindOf(r), pg)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "gallery: list", err, "Failed to load images")
		return
	}
	apierrors.JSON(w, http.StatusOK, listResponse{Data: list, Page: pg.Page, Limit: pg.Limit, Total: total})
}

// ServeImage handles GET /api/gallery/{kind}/{id}.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	img, err := h.Images.GetByID(ctx, kindOf(r), id)
	if err != nil {
		h.writeError(w, r, "get", err)
		return
	}
	apierrors.JSON(w, http.StatusOK, img)
}

// upload stores the "file" part under prefix. It writes the error response
// itself and reports whether the upload succeeded.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request, prefix string) (objectstore.Object, bool) {
	if err := apierrors.ParseMultipart(w, r); err != nil {
		if !apierrors.Upload(w, err) {
			h.ErrLog.LogBadRequest(w, r, "gallery: parse upload", err, "Invalid upload")
		}
		return objectstore.Object{}, false
	}
	fh := apierrors.FormFile(r, "file")
	if fh == nil {
		apierrors.Error(w, http.StatusBadRequest, "File is required")
		return objectstore.Object{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Upload())
	defer cancel()

	obj, err := h.Uploader.UploadFile(ctx, prefix, fh, objectstore.AcceptImages)
	if err != nil {
		if !apierrors.Upload(w, err) {
			h.ErrLog.LogServerError(w, r, "gallery: upload", err, "Upload failed")
		}
		return objectstore.Object{}, false
	}
	return obj, true
}

// HandleUpload handles POST /api/gallery/{kind} with a multipart "file" part.
// The object is stored under the kind's prefix and recorded in the gallery.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	kind := kindOf(r)
	obj, ok := h.upload(w, r, kind)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	img, err := h.Images.Create(ctx, models.GalleryImage{Kind: kind, Name: obj.Name, Path: obj.Path, URL: obj.URL})
	if err != nil {
		h.discard(ctx, obj.Path)
		h.ErrLog.LogServerError(w, r, "gallery: record upload", err, "Upload failed")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventGalleryUploaded, gallerystore.Collection, img.ID, map[string]string{"kind": kind, "path": img.Path})

	apierrors.JSON(w, http.StatusCreated, img)
}

// HandleRawUpload handles POST /api/upload. The file goes to the news prefix
// and is not recorded in a gallery.
func (h *Handler) HandleRawUpload(w http.ResponseWriter, r *http.Request) {
	obj, ok := h.upload(w, r, RawUploadPrefix)
	if !ok {
		return
	}
	h.Log.Info("file uploaded", zap.String("path", obj.Path))
	apierrors.JSON(w, http.StatusOK, map[string]string{"path": obj.Path, "url": obj.URL})
}

type renameRequest struct {
	Name string `json:"name" validate:"required,max=200" label:"Name"`
}

// HandleRename handles PUT /api/gallery/{kind}/{id} {name}.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}
	var in renameRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "gallery: decode", err, err.Error())
		return
	}
	in.Name = normalize.Name(in.Name)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	img, err := h.Images.Rename(ctx, kindOf(r), id, in.Name)
	if err != nil {
		h.writeError(w, r, "rename", err)
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventGalleryUpdated, gallerystore.Collection, id, map[string]string{"name": img.Name})
	apierrors.JSON(w, http.StatusOK, img)
}

// HandleDelete handles DELETE /api/gallery/{kind}/{id}. The object is
// removed from the bucket before the record so a failed removal leaves the
// image listed and retryable.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}
	kind := kindOf(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	img, err := h.Images.GetByID(ctx, kind, id)
	if err != nil {
		h.writeError(w, r, "delete", err)
		return
	}
	h.remove(ctx, w, r, img)
}

// HandleDeleteByPath handles DELETE /api/gallery {path}.
func (h *Handler) HandleDeleteByPath(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Path string `json:"path" validate:"required" label:"Path"`
	}
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "gallery: decode", err, err.Error())
		return
	}
	in.Path = strings.TrimSpace(in.Path)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}
	key, err := objectstore.CleanKey(in.Path)
	if err != nil {
		apierrors.Upload(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	img, err := h.Images.GetByPath(ctx, key)
	if err != nil {
		h.writeError(w, r, "delete", err)
		return
	}
	h.remove(ctx, w, r, img)
}

func (h *Handler) remove(ctx context.Context, w http.ResponseWriter, r *http.Request, img models.GalleryImage) {
	if err := h.Uploader.Remove(ctx, img.Path); err != nil {
		h.ErrLog.LogServerError(w, r, "gallery: remove object", err, "Failed to delete file from storage")
		return
	}
	if err := h.Images.Delete(ctx, img.Kind, img.ID); err != nil {
		h.writeError(w, r, "delete", err)
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventGalleryDeleted, gallerystore.Collection, img.ID, map[string]string{"kind": img.Kind, "path": img.Path})

	apierrors.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, gallerystore.ErrNotFound):
		apierrors.Error(w, http.StatusNotFound, "Image not found")
	case errors.Is(err, gallerystore.ErrUnknownKind):
		apierrors.Error(w, http.StatusNotFound, "Unknown gallery")
	default:
		h.ErrLog.LogServerError(w, r, "gallery: "+op, err, "Gallery request failed")
	}
}

// discard removes an object whose record could not be written.
func (h *Handler) discard(ctx context.Context, key string) {
	if err := h.Uploader.Remove(ctx, key); err != nil {
		h.Log.Warn("gallery: remove orphaned upload", zap.String("key", key), zap.Error(err))
	}
}
