package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petroldesk/pumplog/internal/entity"
	"github.com/petroldesk/pumplog/internal/normalize"
	"github.com/petroldesk/pumplog/internal/recognize"
	"github.com/petroldesk/pumplog/internal/repository"
)

// PathResolver is the slice of the blob store the processor needs.
type PathResolver interface {
	ResolvePath(ctx context.Context, ref string) (string, error)
}

// Processor coordinates one ingestion unit of work: resolve the blob,
// run recognition, normalize, persist. Each call is independent; the only
// shared state is the repository and the blob store.
type Processor struct {
	blobs      PathResolver
	extractor  recognize.Extractor
	normalizer *normalize.Normalizer
	receipts   repository.ReceiptRepository
	logger     *slog.Logger
	now        func() time.Time
}

func NewProcessor(blobs PathResolver, extractor recognize.Extractor, normalizer *normalize.Normalizer, receipts repository.ReceiptRepository, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		blobs:      blobs,
		extractor:  extractor,
		normalizer: normalizer,
		receipts:   receipts,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessBlob runs the pipeline for one uploaded image. On success the
// returned receipt carries its assigned id; on persistence failure no record
// exists at all.
func (p *Processor) ProcessBlob(ctx context.Context, ownerID, blobRef string) (*entity.Receipt, uuid.UUID, error) {
	path, err := p.blobs.ResolvePath(ctx, blobRef)
	if err != nil {
		p.logger.Error("processor.resolve.failed", "owner_id", ownerID, "blob_ref", blobRef, "err", err)
		return nil, uuid.Nil, err
	}

	raw, err := p.extractor.Extract(ctx, path)
	if err != nil {
		p.logger.Error("processor.extract.failed", "owner_id", ownerID, "blob_ref", blobRef, "err", err)
		return nil, uuid.Nil, err
	}
	p.logger.Info("processor.extract.ok",
		"owner_id", ownerID,
		"blob_ref", blobRef,
		"nozzles", len(raw.Nozzles),
		"degraded", raw.Degraded,
	)

	rec := p.normalizer.Normalize(raw, ownerID, blobRef, p.now().UTC())

	id, err := p.receipts.Insert(ctx, &rec)
	if err != nil {
		p.logger.Error("processor.persist.failed", "owner_id", ownerID, "blob_ref", blobRef, "err", err)
		return nil, uuid.Nil, err
	}
	p.logger.Info("processor.persist.ok", "owner_id", ownerID, "receipt_id", id)
	return &rec, id, nil
}
