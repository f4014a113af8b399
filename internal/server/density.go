package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/petroldesk/pumplog/internal/common"
	"github.com/petroldesk/pumplog/internal/density"
)

// DensityHandlers serves the standalone density calculator. It touches no
// storage; validation is strict because this is direct user entry.
type DensityHandlers struct {
	converter *density.Converter
	logger    *slog.Logger
}

func NewDensityHandlers(converter *density.Converter, logger *slog.Logger) *DensityHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &DensityHandlers{converter: converter, logger: logger}
}

type densityRequest struct {
	Density     float64 `json:"density"`
	Temperature float64 `json:"temperature"`
	FuelType    string  `json:"fuelType"`
}

type densityResponse struct {
	Success         bool    `json:"success"`
	StandardDensity float64 `json:"standardDensity"`
}

func (h *DensityHandlers) Standardize(w http.ResponseWriter, r *http.Request) {
	if _, ok := ownerFromRequest(w, r); !ok {
		return
	}

	var req densityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, common.Validationf("body", "invalid JSON"))
		return
	}

	std, err := h.converter.Standardize(req.Density, req.Temperature, req.FuelType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, densityResponse{Success: true, StandardDensity: std})
}
