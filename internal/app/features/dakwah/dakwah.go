// internal/app/features/dakwah/dakwah.go
package dakwah

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/store/audit"
	dakwahstore "github.com/mtt/mttdash/internal/app/store/dakwah"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

type postRequest struct {
	Title       string `json:"title" validate:"required,max=32,alnumspace" label:"Title"`
	Description string `json:"description" validate:"required,max=120,alnumspace" label:"Description"`
	ImageURL    string `json:"image_url" validate:"omitempty,linkurl,max=2048" label:"Image"`
	Published   bool   `json:"published"`
	Highlight   *bool  `json:"highlight"`
}

func (in *postRequest) normalize() {
	in.Title = normalize.Name(in.Title)
	in.Description = normalize.Name(in.Description)
}

func (in postRequest) model() models.Dakwah {
	return models.Dakwah{
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Published:   in.Published,
	}
}

type highlightRequest struct {
	Highlight *bool `json:"highlight" validate:"required" label:"Highlight"`
}

type mutationResponse struct {
	Success   bool           `json:"success"`
	Highlight bool           `json:"highlight"`
	Data      *models.Dakwah `json:"data,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Highlights.Store.List(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dakwah: list", err, "Failed to load posts")
		return
	}
	apierrors.JSON(w, http.StatusOK, list)
}

// ServeList handles GET /api/daily-dakwah[?published=true|false].
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if p := normalize.OptionalBool(query.Get(r, "published")); p != nil {
		filter["published"] = *p
	}
	h.list(w, r, filter)
}

// ServeHighlighted handles GET /api/daily-dakwah/highlight.
func (h *Handler) ServeHighlighted(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, bson.M{"highlight": true})
}

// ServePost handles GET /api/daily-dakwah/{id}.
func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Highlights.Store.GetByID(ctx, id)
	if errors.Is(err, dakwahstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dakwah: get", err, "Failed to load post")
		return
	}
	apierrors.JSON(w, http.StatusOK, d)
}

// HandleCreate handles POST /api/daily-dakwah. A missing highlight means
// not highlighted.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in postRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "dakwah: decode", err, err.Error())
		return
	}
	in.normalize()
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rec := in.model()
	rec.Highlight = in.Highlight != nil && *in.Highlight
	d, err := h.Highlights.Create(ctx, rec)
	if apierrors.Policy(w, err, h.policyMessages()) {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dakwah: create", err, "Failed to create post")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventDakwahCreated, dakwahstore.Collection, d.ID, map[string]string{
		"title":     d.Title,
		"published": strconv.FormatBool(d.Published),
	})
	if rec.Highlight {
		h.AuditLog.Visibility(ctx, r, h.Highlights.Policy.Name, d.ID, true, d.Highlight, nil)
	}

	apierrors.JSON(w, http.StatusCreated, mutationResponse{Success: true, Highlight: d.Highlight, Data: &d})
}

// HandleEdit handles PUT /api/daily-dakwah/{id}. Unpublishing a post clears
// its highlight.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}
	var in postRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "dakwah: decode", err, err.Error())
		return
	}
	in.normalize()
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Highlights.Edit(ctx, id, in.model(), in.Highlight)
	if errors.Is(err, dakwahstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Post not found")
		return
	}
	if in.Highlight != nil {
		h.AuditLog.Visibility(ctx, r, h.Highlights.Policy.Name, id, *in.Highlight, d.Highlight, err)
	}
	if apierrors.Policy(w, err, h.policyMessages()) {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dakwah: edit", err, "Failed to update post")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventDakwahUpdated, dakwahstore.Collection, id, map[string]string{
		"title":     d.Title,
		"published": strconv.FormatBool(d.Published),
	})

	apierrors.JSON(w, http.StatusOK, mutationResponse{Success: true, Highlight: d.Highlight, Data: &d})
}

// HandleHighlight handles PATCH /api/daily-dakwah/{id}/highlight with
// {"highlight": bool}.
func (h *Handler) HandleHighlight(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}
	var in highlightRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "dakwah: decode", err, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	highlight, err := h.Highlights.SetHighlight(ctx, id, *in.Highlight)
	if errors.Is(err, dakwahstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Post not found")
		return
	}
	h.AuditLog.Visibility(ctx, r, h.Highlights.Policy.Name, id, *in.Highlight, highlight, err)
	if apierrors.Policy(w, err, h.policyMessages()) {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dakwah: set highlight", err, "Failed to update highlight")
		return
	}

	apierrors.JSON(w, http.StatusOK, mutationResponse{Success: true, Highlight: highlight})
}

// HandleDelete handles DELETE /api/daily-dakwah/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Highlights.Delete(ctx, id)
	if errors.Is(err, dakwahstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dakwah: delete", err, "Failed to delete post")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventDakwahDeleted, dakwahstore.Collection, id, nil)

	apierrors.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
