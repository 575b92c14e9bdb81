package health

import (
	"context"
	"net/http"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/system/capacity"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Guard   *capacity.Guard
	Storage string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. guard may be nil.
func NewHandler(client *mongo.Client, guard *capacity.Guard, storage string, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Guard:   guard,
		Storage: storage,
		Log:     logger,
	}
}

type healthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	Transactions string `json:"transactions,omitempty"`
	Storage      string `json:"storage,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "transactions":"enabled", "storage":"s3" }
//
// "transactions" reads "fallback" once the capacity guard has found that the
// server cannot run transactions.
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Storage:  h.Storage,
	}
	if h.Guard != nil {
		resp.Transactions = "enabled"
		if !h.Guard.TransactionsEnabled() {
			resp.Transactions = "fallback"
		}
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		apierrors.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	apierrors.JSON(w, http.StatusOK, resp)
}
