package server

import (
	"log/slog"
	"net/http"

	"github.com/petroldesk/pumplog/internal/metrics"
)

// DashboardHandlers serves the per-owner metrics rollup.
type DashboardHandlers struct {
	aggregator *metrics.Aggregator
	logger     *slog.Logger
}

func NewDashboardHandlers(aggregator *metrics.Aggregator, logger *slog.Logger) *DashboardHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandlers{aggregator: aggregator, logger: logger}
}

func (h *DashboardHandlers) Rollup(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	d, err := h.aggregator.Rollup(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
