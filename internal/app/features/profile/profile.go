// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	userstore "github.com/mtt/mttdash/internal/app/store/users"
	"github.com/mtt/mttdash/internal/app/system/auth"
	"github.com/mtt/mttdash/internal/app/system/authutil"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type profileResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Location    string `json:"location"`
}

func toResponse(u models.User) profileResponse {
	return profileResponse{
		ID:          u.ID.Hex(),
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Location:    u.Location,
	}
}

type updateRequest struct {
	Email       string `json:"email" validate:"required,email,max=254" label:"Email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,phone" label:"Phone number"`
	Location    string `json:"location" validate:"max=200" label:"Location"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required" label:"Current password"`
	NewPassword     string `json:"new_password" validate:"required" label:"New password"`
	ConfirmPassword string `json:"confirm_password" label:"Confirm password"`
}

// currentUserID resolves the session user's ObjectID. It writes 401 and
// returns false when there is none.
func currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		apierrors.Unauthorized(w, r)
		return primitive.NilObjectID, false
	}
	uid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		apierrors.Unauthorized(w, r)
		return primitive.NilObjectID, false
	}
	return uid, true
}

// ServeProfile handles GET /api/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: load user", err, "Failed to load profile")
		return
	}
	apierrors.JSON(w, http.StatusOK, toResponse(u))
}

// HandleUpdateProfile handles PUT /api/profile. These fields double as the
// organization's public contact details.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var in updateRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: decode", err, err.Error())
		return
	}
	in.Email = normalize.Email(in.Email)
	in.PhoneNumber = normalize.Phone(in.PhoneNumber)
	in.Location = normalize.Name(in.Location)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	before, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		apierrors.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: load user", err, "Failed to update profile")
		return
	}

	err = h.Users.UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Location:    in.Location,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		apierrors.Error(w, http.StatusConflict, "Email is already in use")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: update", err, "Failed to update profile")
		return
	}

	var changed []string
	if !strings.EqualFold(before.Email, in.Email) {
		changed = append(changed, "email")
	}
	if before.PhoneNumber != in.PhoneNumber {
		changed = append(changed, "phone_number")
	}
	if before.Location != in.Location {
		changed = append(changed, "location")
	}
	if len(changed) > 0 {
		h.AuditLog.ProfileUpdated(ctx, r, uid, strings.Join(changed, ","))
	}

	after := before
	after.Email = in.Email
	after.PhoneNumber = in.PhoneNumber
	after.Location = in.Location
	apierrors.JSON(w, http.StatusOK, toResponse(after))
}

// HandleChangePassword handles PUT /api/profile/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var in passwordRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: decode", err, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}
	if err := authutil.ValidatePassword(in.NewPassword); err != nil {
		apierrors.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.ConfirmPassword != "" && in.NewPassword != in.ConfirmPassword {
		apierrors.Error(w, http.StatusBadRequest, "New passwords do not match")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: load user", err, "Failed to update password")
		return
	}
	if !authutil.CheckPassword(in.CurrentPassword, u.PasswordHash) {
		apierrors.Error(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if authutil.CheckPassword(in.NewPassword, u.PasswordHash) {
		apierrors.Error(w, http.StatusBadRequest, "New password cannot be the same as your current password")
		return
	}

	if err := h.Users.SetPassword(ctx, uid, in.NewPassword); err != nil {
		h.ErrLog.LogServerError(w, r, "profile: set password", err, "Failed to update password")
		return
	}
	h.AuditLog.PasswordChanged(ctx, r, uid, "profile")

	apierrors.JSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}
