// internal/app/features/sliders/sliders.go
package sliders

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/store/audit"
	sliderstore "github.com/mtt/mttdash/internal/app/store/sliders"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.uber.org/zap"
)

type sliderRequest struct {
	Image       string `json:"image" validate:"required,linkurl,max=2048" label:"Image"`
	Title       string `json:"title" validate:"required,max=200" label:"Title"`
	Subtitle    string `json:"subtitle" validate:"max=200" label:"Subtitle"`
	Description string `json:"description" validate:"max=1000" label:"Description"`
	ButtonText  string `json:"button_text" validate:"max=60" label:"Button text"`
	ButtonLink  string `json:"button_link" validate:"omitempty,linkurl,max=2048" label:"Button link"`
	BgGradient  string `json:"bg_gradient" validate:"max=200" label:"Background gradient"`
	Featured    bool   `json:"featured"`
	Visible     *bool  `json:"visible"`
}

func (in sliderRequest) model() models.HomeSlider {
	return models.HomeSlider{
		Image:       in.Image,
		Title:       normalize.Name(in.Title),
		Subtitle:    normalize.Name(in.Subtitle),
		Description: in.Description,
		ButtonText:  normalize.Name(in.ButtonText),
		ButtonLink:  in.ButtonLink,
		BgGradient:  in.BgGradient,
		Featured:    in.Featured,
	}
}

type visibilityRequest struct {
	Visible *bool `json:"visible" validate:"required" label:"Visible"`
}

type mutationResponse struct {
	Success bool               `json:"success"`
	Visible bool               `json:"visible"`
	Data    *models.HomeSlider `json:"data,omitempty"`
}

type deleteResponse struct {
	Success  bool               `json:"success"`
	Promoted *models.HomeSlider `json:"promoted"`
}

// ServeList handles GET /api/home-sliders[?visible=true|false].
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	visible := normalize.OptionalBool(query.Get(r, "visible"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Sliders.Store.List(ctx, visible)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sliders: list", err, "Failed to load sliders")
		return
	}
	apierrors.JSON(w, http.StatusOK, list)
}

// ServeSlider handles GET /api/home-sliders/{id}.
func (h *Handler) ServeSlider(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sl, err := h.Sliders.Store.GetByID(ctx, id)
	if errors.Is(err, sliderstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Slider not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sliders: get", err, "Failed to load slider")
		return
	}
	apierrors.JSON(w, http.StatusOK, sl)
}

// HandleCreate handles POST /api/home-sliders. A missing visible means
// visible; the first slider is always visible and the cap clamps.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in sliderRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "sliders: decode", err, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sl, err := h.Sliders.Create(ctx, in.model(), in.Visible)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sliders: create", err, "Failed to create slider")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventSliderCreated, sliderstore.Collection, sl.ID, map[string]string{"title": sl.Title})
	h.AuditLog.Visibility(ctx, r, h.Sliders.Policy.Name, sl.ID, in.Visible == nil || *in.Visible, sl.Visible, nil)

	apierrors.JSON(w, http.StatusCreated, mutationResponse{Success: true, Visible: sl.Visible, Data: &sl})
}

// HandleEdit handles PUT /api/home-sliders/{id}. Turning visible on past the
// cap is clamped, not refused.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}
	var in sliderRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "sliders: decode", err, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sl, err := h.Sliders.Edit(ctx, id, in.model(), in.Visible)
	if errors.Is(err, sliderstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Slider not found")
		return
	}
	if in.Visible != nil {
		h.AuditLog.Visibility(ctx, r, h.Sliders.Policy.Name, id, *in.Visible, sl.Visible, err)
	}
	if apierrors.Policy(w, err, h.policyMessages()) {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sliders: edit", err, "Failed to update slider")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventSliderUpdated, sliderstore.Collection, id, map[string]string{"title": sl.Title})

	apierrors.JSON(w, http.StatusOK, mutationResponse{Success: true, Visible: sl.Visible, Data: &sl})
}

// HandleVisibility handles PUT /api/home-sliders/{id}/visibility with
// {"visible": bool}. Turning visible on past the cap is refused.
func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}
	var in visibilityRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "sliders: decode", err, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	visible, err := h.Sliders.SetVisible(ctx, id, *in.Visible)
	if errors.Is(err, sliderstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Slider not found")
		return
	}
	h.AuditLog.Visibility(ctx, r, h.Sliders.Policy.Name, id, *in.Visible, visible, err)
	if apierrors.Policy(w, err, h.policyMessages()) {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sliders: set visible", err, "Failed to update visibility")
		return
	}

	apierrors.JSON(w, http.StatusOK, mutationResponse{Success: true, Visible: visible})
}

// HandleDelete handles DELETE /api/home-sliders/{id}. Removing the last
// visible slider promotes the newest hidden one.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	promoted, err := h.Sliders.Delete(ctx, id)
	if errors.Is(err, sliderstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Slider not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sliders: delete", err, "Failed to delete slider")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventSliderDeleted, sliderstore.Collection, id, nil)
	if promoted != nil {
		h.AuditLog.SliderPromoted(ctx, r, h.Sliders.Policy.Name, promoted.ID)
		h.Log.Info("slider promoted after delete",
			zap.String("deleted", id.Hex()),
			zap.String("promoted", promoted.ID.Hex()))
	}

	apierrors.JSON(w, http.StatusOK, deleteResponse{Success: true, Promoted: promoted})
}
