package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/petroldesk/pumplog/constants"
	"github.com/petroldesk/pumplog/internal/common"
	"github.com/petroldesk/pumplog/internal/entity"
	"github.com/petroldesk/pumplog/internal/repository"
)

// BlobPutter is the slice of the blob store the upload handler needs.
type BlobPutter interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}

// Processor runs the ingestion pipeline for one stored blob.
type Processor interface {
	ProcessBlob(ctx context.Context, ownerID, blobRef string) (*entity.Receipt, uuid.UUID, error)
}

// ReceiptHandlers serves the receipt ingestion and CRUD-adjacent routes.
type ReceiptHandlers struct {
	blobs          BlobPutter
	processor      Processor
	receipts       repository.ReceiptRepository
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewReceiptHandlers(blobs BlobPutter, processor Processor, receipts repository.ReceiptRepository, maxUploadBytes int64, logger *slog.Logger) *ReceiptHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ReceiptHandlers{
		blobs:          blobs,
		processor:      processor,
		receipts:       receipts,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type uploadResponse struct {
	Success bool   `json:"success"`
	BlobRef string `json:"blobRef"`
}

// Upload accepts a multipart image upload and stores it in the blob store.
// Non-image uploads are rejected before anything touches storage.
func (h *ReceiptHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, h.logger, common.Validationf("receipt", "invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, h.logger, common.Validationf("receipt", "no file uploaded"))
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if !constants.IsImageContentType(contentType) {
		writeError(w, h.logger, common.Validationf("receipt", "only image files are allowed"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, h.logger, common.WrapError(err, "read upload"))
		return
	}

	ref, err := h.blobs.Put(r.Context(), data, contentType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("receipt uploaded", "owner_id", ownerID, "blob_ref", ref, "bytes", len(data))
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, BlobRef: ref})
}

type processRequest struct {
	BlobRef string `json:"blobRef"`
}

type processResponse struct {
	Success   bool        `json:"success"`
	ReceiptID string      `json:"receiptId"`
	Data      receiptView `json:"data"`
}

// Process runs extraction and normalization for an uploaded blob and
// persists the resulting receipt.
func (h *ReceiptHandlers) Process(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.BlobRef) == "" {
		writeError(w, h.logger, common.Validationf("blobRef", "is required"))
		return
	}

	rec, id, err := h.processor.ProcessBlob(r.Context(), ownerID, strings.TrimSpace(req.BlobRef))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Success:   true,
		ReceiptID: id.String(),
		Data:      toReceiptView(rec),
	})
}

type listResponse struct {
	Success  bool          `json:"success"`
	Receipts []receiptView `json:"receipts"`
}

// List returns the owner's receipts, newest first.
func (h *ReceiptHandlers) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	recs, err := h.receipts.FindByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	views := make([]receiptView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, toReceiptView(rec))
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Receipts: views})
}

// Delete removes one of the owner's receipts. A valid id belonging to
// another owner deletes nothing and reports not found.
func (h *ReceiptHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, common.Validationf("id", "invalid receipt id format"))
		return
	}

	removed, err := h.receipts.DeleteByOwnerAndID(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if removed == 0 {
		writeError(w, h.logger, common.WrapError(common.ErrNotFound, "receipt"))
		return
	}

	h.logger.Info("receipt deleted", "owner_id", ownerID, "receipt_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "receipt deleted"})
}

// receiptView is the reporting shape of a receipt. Volume is rounded to two
// decimals here, at the edge; stored records keep full precision.
type receiptView struct {
	ID                 string                 `json:"id"`
	Date               string                 `json:"date"`
	PumpSerial         string                 `json:"pumpSerial"`
	TotalSales         int64                  `json:"totalSales"`
	Volume             float64                `json:"volume"`
	BlobRef            string                 `json:"blobRef"`
	ExtractionDegraded bool                   `json:"extractionDegraded"`
	ProcessedAt        time.Time              `json:"processedAt"`
	Nozzles            []entity.NozzleReading `json:"nozzles"`
}

func toReceiptView(rec *entity.Receipt) receiptView {
	return receiptView{
		ID:                 rec.ID.String(),
		Date:               rec.PrintDate,
		PumpSerial:         rec.PumpSerial,
		TotalSales:         rec.TotalSales(),
		Volume:             entity.RoundVolume(rec.TotalVolume()),
		BlobRef:            rec.BlobRef,
		ExtractionDegraded: rec.ExtractionDegraded,
		ProcessedAt:        rec.ProcessedAt,
		Nozzles:            rec.Nozzles,
	}
}
