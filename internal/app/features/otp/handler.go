// internal/app/features/otp/handler.go
package otp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	otpstore "github.com/mtt/mttdash/internal/app/store/otp"
	"github.com/mtt/mttdash/internal/app/system/auditlog"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/mailer"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler emails and checks the one-time codes that confirm a proposal
// submitter owns their address.
type Handler struct {
	OTPs     *otpstore.Store
	Mail     mailer.Sender
	SiteName string
	AuditLog *auditlog.Logger
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(store *otpstore.Store, mail mailer.Sender, siteName string, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		OTPs:     store,
		Mail:     mail,
		SiteName: siteName,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// Register adds POST /send-otp and POST /verify-otp to r, which is mounted
// at /api.
func Register(r chi.Router, h *Handler) {
	r.Post("/send-otp", h.HandleSend)
	r.Post("/verify-otp", h.HandleVerify)
}

type sendRequest struct {
	Email string `json:"email" validate:"required,email" label:"Email"`
	Name  string `json:"name" validate:"required,max=120" label:"Name"`
}

// HandleSend handles POST /api/send-otp {email, name}.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var in sendRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "otp: decode", err, err.Error())
		return
	}
	in.Email = normalize.Email(in.Email)
	in.Name = normalize.Name(in.Name)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	code, err := h.OTPs.Issue(ctx, in.Email)
	if errors.Is(err, otpstore.ErrTooManyResends) {
		apierrors.Error(w, http.StatusTooManyRequests, "Too many codes requested. Try again later.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "otp: issue", err, "Failed to create code")
		return
	}

	msg := mailer.BuildOTPEmail(mailer.OTPEmailData{
		SiteName:  h.SiteName,
		Name:      in.Name,
		Code:      code,
		ExpiresIn: humanize(h.OTPs.Expiry()),
	})
	msg.To = in.Email
	if err := h.Mail.Send(msg); err != nil {
		h.ErrLog.LogServerError(w, r, "otp: send mail", err, "Failed to send email")
		return
	}
	h.AuditLog.OTPSent(ctx, r, in.Email)

	apierrors.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Code sent to email"})
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email" label:"Email"`
	Code  string `json:"otp" validate:"required,len=6,numeric" label:"OTP"`
}

// HandleVerify handles POST /api/verify-otp {email, otp}.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if err := apierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "otp: decode", err, err.Error())
		return
	}
	in.Email = normalize.Email(in.Email)
	in.Code = normalize.QueryParam(in.Code)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.Invalid(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.OTPs.Verify(ctx, in.Email, in.Code)
	switch {
	case err == nil:
		h.AuditLog.OTPVerified(ctx, r, in.Email)
		apierrors.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Code is valid"})
	case errors.Is(err, otpstore.ErrNotFound):
		h.AuditLog.OTPFailed(ctx, r, in.Email, "expired")
		apierrors.Error(w, http.StatusBadRequest, "Code is invalid or has expired")
	case errors.Is(err, otpstore.ErrInvalidCode):
		h.AuditLog.OTPFailed(ctx, r, in.Email, "mismatch")
		apierrors.Error(w, http.StatusBadRequest, "Code is invalid or has expired")
	case errors.Is(err, otpstore.ErrTooManyAttempts):
		h.AuditLog.OTPFailed(ctx, r, in.Email, "attempts")
		apierrors.Error(w, http.StatusBadRequest, "Too many attempts. Request a new code.")
	default:
		h.ErrLog.LogServerError(w, r, "otp: verify", err, "Failed to verify code")
	}
}

// humanize renders d for the email body, e.g. "2 minutes".
func humanize(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	m := int(d.Round(time.Minute).Minutes())
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
