package repository

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petroldesk/pumplog/internal/common"
)

// Open creates a pgx pool from config.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("invalid database DSN", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "pumplog"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// EnsureSchema creates the receipts table when it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS receipts (
	id                  UUID PRIMARY KEY,
	owner_id            TEXT NOT NULL,
	blob_ref            TEXT NOT NULL,
	print_date          TEXT NOT NULL,
	pump_serial         TEXT NOT NULL,
	nozzles             JSONB NOT NULL DEFAULT '[]',
	extraction_degraded BOOLEAN NOT NULL DEFAULT FALSE,
	processed_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS receipts_owner_processed_idx
	ON receipts (owner_id, processed_at DESC);
`)
	return err
}
