package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/petroldesk/pumplog/internal/auth"
	"github.com/petroldesk/pumplog/internal/blob"
	"github.com/petroldesk/pumplog/internal/common"
	"github.com/petroldesk/pumplog/internal/density"
	"github.com/petroldesk/pumplog/internal/export"
	"github.com/petroldesk/pumplog/internal/metrics"
	"github.com/petroldesk/pumplog/internal/normalize"
	"github.com/petroldesk/pumplog/internal/pipeline"
	"github.com/petroldesk/pumplog/internal/recognize"
	"github.com/petroldesk/pumplog/internal/repository"
	"github.com/petroldesk/pumplog/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL env var is required")
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Error("JWT_SECRET env var is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.HealthCheck(ctx, pool, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		logger.Error("ensuring database schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	blobs, err := blob.NewStore(cfg.Blob.Dir, logger)
	if err != nil {
		logger.Error("initializing blob store", "dir", cfg.Blob.Dir, "error", err)
		os.Exit(1)
	}

	receipts := repository.NewReceiptRepository(pool, logger)
	engine := recognize.NewEngine(cfg.Recognizer, logger)
	processor := pipeline.NewProcessor(blobs, engine, normalize.NewNormalizer(logger), receipts, logger)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	router := server.NewRouter(server.Handlers{
		Receipts:  server.NewReceiptHandlers(blobs, processor, receipts, cfg.Server.MaxUploadBytes, logger),
		Dashboard: server.NewDashboardHandlers(metrics.NewAggregator(receipts, logger), logger),
		Density:   server.NewDensityHandlers(density.NewConverter(nil), logger),
		Export:    server.NewExportHandlers(export.NewService(receipts, logger), logger),
	}, auth.Middleware(tokens, cfg.Auth.CookieName))

	srv := server.NewServer(cfg.Server.Addr, router, cfg.Server.ShutdownTimeout, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("http server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
