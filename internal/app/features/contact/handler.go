// internal/app/features/contact/handler.go
package contact

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	userstore "github.com/mtt/mttdash/internal/app/store/users"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the organization's public contact details. They are the
// profile fields of the administrator named by ContactEmail.
type Handler struct {
	Users        *userstore.Store
	ContactEmail string
	ErrLog       *apierrors.ErrorLogger
	Log          *zap.Logger
}

func NewHandler(db *mongo.Database, contactEmail string, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        userstore.New(db),
		ContactEmail: contactEmail,
		ErrLog:       errLog,
		Log:          logger,
	}
}

type contactResponse struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Location    string `json:"location"`
}

// ServeContact handles GET /api/contact-us.
func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	if h.ContactEmail == "" {
		apierrors.Error(w, http.StatusNotFound, "Contact details are not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, h.ContactEmail)
	if errors.Is(err, userstore.ErrNotFound) {
		h.Log.Warn("contact user not found", zap.String("email", h.ContactEmail))
		apierrors.Error(w, http.StatusNotFound, "Contact details are not configured")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "contact: load user", err, "Failed to load contact details")
		return
	}

	apierrors.JSON(w, http.StatusOK, contactResponse{
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Location:    u.Location,
	})
}
