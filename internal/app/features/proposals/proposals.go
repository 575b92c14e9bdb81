// internal/app/features/proposals/proposals.go
package proposals

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/store/audit"
	proposalstore "github.com/mtt/mttdash/internal/app/store/proposals"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// submitRequest keeps the camelCase field names the public website posts.
type submitRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120" label:"Name"`
	Email       string `json:"email" validate:"required,email" label:"Email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone" label:"Phone number"`
	FileURL     string `json:"fileUrl" validate:"required,linkurl" label:"File URL"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| Public                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSubmit handles POST /api/proposal. One proposal is accepted per email.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in submitRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "proposal: decode", err, err.Error())
		return
	}
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)
	in.PhoneNumber = normalize.Phone(in.PhoneNumber)
	in.FileURL = normalize.QueryParam(in.FileURL)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Proposals.Create(ctx, models.Proposal{
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		FileURL:     in.FileURL,
	})
	if errors.Is(err, proposalstore.ErrDuplicateEmail) {
		apierrors.Error(w, http.StatusConflict, "A proposal with this email already exists")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "proposal: create", err, "Failed to submit proposal")
		return
	}
	h.Log.Info("proposal submitted", zap.String("proposal_id", p.ID.Hex()))

	apierrors.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

type uploadResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
	URL     string `json:"url"`
}

// HandleUpload handles POST /api/proposal/upload with a multipart "file"
// part. Only documents and images are accepted.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := apierrors.ParseMultipart(w, r); err != nil {
		if !apierrors.Upload(w, err) {
			h.ErrLog.LogBadRequest(w, r, "proposal: parse upload", err, "Invalid upload")
		}
		return
	}
	fh := apierrors.FormFile(r, "file")
	if fh == nil {
		apierrors.Error(w, http.StatusBadRequest, "File is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Upload())
	defer cancel()

	obj, err := h.Uploader.UploadFile(ctx, FilePrefix, fh, objectstore.AcceptDocuments)
	if err != nil {
		if !apierrors.Upload(w, err) {
			h.ErrLog.LogServerError(w, r, "proposal: upload", err, "Upload failed")
		}
		return
	}
	apierrors.JSON(w, http.StatusOK, uploadResponse{Message: "Upload successful", Path: obj.Path, URL: obj.URL})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Admin                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type listResponse struct {
	Data  []models.Proposal `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ServeList handles GET /api/proposal?page&limit&isRead&search.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r, paging.DefaultLimit)
	f := proposalstore.ListFilter{
		Search: normalize.QueryParam(query.Get(r, "search")),
		IsRead: normalize.OptionalBool(query.Get(r, "isRead")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.Proposals.List(ctx, f, pg)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "proposal: list", err, "Failed to load proposals")
		return
	}
	apierrors.JSON(w, http.StatusOK, listResponse{Data: list, Total: total, Page: pg.Page, Limit: pg.Limit})
}

// HandleMarkRead handles PATCH /api/proposal/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := apierrors.IDParam(w, r)
	if !ok {
		return
	}
	h.markRead(w, r, id)
}

// HandleMarkReadBody handles PATCH /api/proposal {id}, the older form the
// dashboard list still sends.
func (h *Handler) HandleMarkReadBody(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID string `json:"id" validate:"required,objectid" label:"ID"`
	}
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "proposal: decode", err, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}
	id, _ := primitive.ObjectIDFromHex(in.ID)
	h.markRead(w, r, id)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Proposals.MarkRead(ctx, id)
	if errors.Is(err, proposalstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "Proposal not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "proposal: mark read", err, "Failed to update proposal")
		return
	}
	h.AuditLog.Admin(ctx, r, audit.EventProposalRead, proposalstore.Collection, id, nil)

	apierrors.JSON(w, http.StatusOK, map[string]any{"success": true, "data": p})
}
