// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	statsstore "github.com/mtt/mttdash/internal/app/store/stats"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/app/system/visibility"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the totals on the dashboard home.
type Handler struct {
	DB         *mongo.Database
	Sliders    *visibility.Sliders
	Highlights *visibility.Highlights
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sliders *visibility.Sliders, highlights *visibility.Highlights, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Sliders:    sliders,
		Highlights: highlights,
		Log:        logger,
	}
}

type limits struct {
	SlidersMaxVisible   int `json:"sliders_max_visible"`
	DakwahMaxHighlights int `json:"dakwah_max_highlights"`
}

type statsResponse struct {
	statsstore.Counts
	Limits limits `json:"limits"`
}

// ServeStats handles GET /api/dashboard/stats. Counters that fail to load
// read as zero.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	resp := statsResponse{Counts: statsstore.FetchDashboardCounts(ctx, h.DB)}
	if h.Sliders != nil {
		resp.Limits.SlidersMaxVisible = h.Sliders.Policy.MaxActive
	}
	if h.Highlights != nil {
		resp.Limits.DakwahMaxHighlights = h.Highlights.Policy.MaxActive
	}
	apierrors.JSON(w, http.StatusOK, resp)
}
