package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers aggregates the route handlers wired by NewRouter.
type Handlers struct {
	Receipts  *ReceiptHandlers
	Dashboard *DashboardHandlers
	Density   *DensityHandlers
	Export    *ExportHandlers
}

// NewRouter wires all HTTP routes. Everything under /api requires an
// authenticated owner; authMiddleware is applied to that subrouter only.
func NewRouter(h Handlers, authMiddleware func(http.Handler) http.Handler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/receipts/upload", h.Receipts.Upload).Methods(http.MethodPost)
	api.HandleFunc("/receipts/process", h.Receipts.Process).Methods(http.MethodPost)
	api.HandleFunc("/receipts/export", h.Export.Receipts).Methods(http.MethodGet)
	api.HandleFunc("/receipts", h.Receipts.List).Methods(http.MethodGet)
	api.HandleFunc("/receipts/{id}", h.Receipts.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/dashboard", h.Dashboard.Rollup).Methods(http.MethodGet)
	api.HandleFunc("/density", h.Density.Standardize).Methods(http.MethodPost)

	return r
}
