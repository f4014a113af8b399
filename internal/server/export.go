package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/petroldesk/pumplog/internal/export"
)

// ExportHandlers serves XLSX downloads of an owner's receipts.
type ExportHandlers struct {
	exporter *export.Service
	logger   *slog.Logger
}

func NewExportHandlers(exporter *export.Service, logger *slog.Logger) *ExportHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandlers{exporter: exporter, logger: logger}
}

func (h *ExportHandlers) Receipts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	data, err := h.exporter.ExportReceiptsXLSX(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filename := fmt.Sprintf("receipts-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
