package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petroldesk/pumplog/internal/common"
	"github.com/petroldesk/pumplog/internal/entity"
)

// ReceiptRepository is the owner-scoped document store for receipts. Every
// read and delete filters by owner at this boundary; callers never get the
// chance to cross tenants with a well-formed id alone.
type ReceiptRepository interface {
	Insert(ctx context.Context, rec *entity.Receipt) (uuid.UUID, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*entity.Receipt, error)
	DeleteByOwnerAndID(ctx context.Context, ownerID string, id uuid.UUID) (int64, error)
}

type receiptRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReceiptRepository(pool *pgxpool.Pool, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{pool: pool, logger: logger}
}

// Insert writes one receipt and returns its assigned id. The receipt is
// stored whole in a single statement; there is no partial persist.
func (r *receiptRepository) Insert(ctx context.Context, rec *entity.Receipt) (uuid.UUID, error) {
	id := uuid.New()

	nozzles, err := json.Marshal(rec.Nozzles)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode nozzles: %w", common.ErrPersistence)
	}

	_, err = r.pool.Exec(ctx, `
INSERT INTO receipts (id, owner_id, blob_ref, print_date, pump_serial, nozzles, extraction_degraded, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, rec.OwnerID, rec.BlobRef, rec.PrintDate, rec.PumpSerial, nozzles, rec.ExtractionDegraded, rec.ProcessedAt)
	if err != nil {
		r.logger.Error("failed to insert receipt", "owner_id", rec.OwnerID, "error", err)
		return uuid.Nil, fmt.Errorf("insert receipt: %w", common.ErrPersistence)
	}

	rec.ID = id
	return id, nil
}

// FindByOwner returns all of an owner's receipts, newest first.
func (r *receiptRepository) FindByOwner(ctx context.Context, ownerID string) ([]*entity.Receipt, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, owner_id, blob_ref, print_date, pump_serial, nozzles, extraction_degraded, processed_at
FROM receipts
WHERE owner_id = $1
ORDER BY processed_at DESC`, ownerID)
	if err != nil {
		r.logger.Error("failed to list receipts", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("list receipts: %w", common.ErrPersistence)
	}
	defer rows.Close()

	var out []*entity.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			r.logger.Error("failed to scan receipt", "owner_id", ownerID, "error", err)
			return nil, fmt.Errorf("scan receipt: %w", common.ErrPersistence)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list receipts: %w", common.ErrPersistence)
	}
	return out, nil
}

// DeleteByOwnerAndID removes one receipt if it belongs to the owner, and
// reports how many rows went away (0 or 1).
func (r *receiptRepository) DeleteByOwnerAndID(ctx context.Context, ownerID string, id uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM receipts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		r.logger.Error("failed to delete receipt", "owner_id", ownerID, "receipt_id", id, "error", err)
		return 0, fmt.Errorf("delete receipt: %w", common.ErrPersistence)
	}
	return tag.RowsAffected(), nil
}

func scanReceipt(rows pgx.Rows) (*entity.Receipt, error) {
	var (
		rec     entity.Receipt
		nozzles []byte
		at      time.Time
	)
	if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.BlobRef, &rec.PrintDate, &rec.PumpSerial,
		&nozzles, &rec.ExtractionDegraded, &at); err != nil {
		return nil, err
	}
	if len(nozzles) > 0 {
		if err := json.Unmarshal(nozzles, &rec.Nozzles); err != nil {
			return nil, err
		}
	}
	rec.ProcessedAt = at
	return &rec, nil
}
