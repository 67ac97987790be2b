package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-backoffice/meridian/internal/app"
	"github.com/meridian-backoffice/meridian/internal/finance"
	"github.com/meridian-backoffice/meridian/internal/inventory"
	"github.com/meridian-backoffice/meridian/internal/ledger"
	"github.com/meridian-backoffice/meridian/internal/masterdata/accounts"
	"github.com/meridian-backoffice/meridian/internal/platform/cache"
	"github.com/meridian-backoffice/meridian/internal/platform/db"
	"github.com/meridian-backoffice/meridian/internal/procurement"
	"github.com/meridian-backoffice/meridian/internal/sales"
	"github.com/meridian-backoffice/meridian/internal/shared"
	"github.com/meridian-backoffice/meridian/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	idempotency := shared.NewIdempotencyStore(pool)
	inventoryService := inventory.NewService(inventory.NewRepository(pool))
	accountsService := accounts.NewService(accounts.NewRepository(pool))
	procurementService := procurement.NewService(
		procurement.NewRepository(pool), accountsService, nil, idempotency, nil, logger)
	salesService := sales.NewService(sales.NewRepository(pool), logger)
	financeService := finance.NewService(finance.NewRepository(pool), logger)
	ledgerService := ledger.NewService(
		salesService, procurementService, financeService, accountsService, cfg.BankModeList(), logger)

	cleanupJob := jobs.NewIdempotencyCleanupJob(idempotency, logger, nil)
	lowStockJob := jobs.NewLowStockScanJob(inventoryService, logger, nil)
	var snapshotCache redis.UniversalClient
	if redisClient != nil {
		snapshotCache = redisClient
	}
	snapshotJob := jobs.NewBookSnapshotJob(ledgerService, snapshotCache, logger, nil)

	cleanupTask, err := jobs.NewIdempotencyCleanupTask(24 * time.Hour)
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}
	lowStockTask, err := jobs.NewLowStockScanTask()
	if err != nil {
		logger.Error("build low stock task", slog.Any("error", err))
		os.Exit(1)
	}
	snapshotTask, err := jobs.NewBookSnapshotTask("cash", "bank")
	if err != nil {
		logger.Error("build snapshot task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
			{Type: jobs.TaskLowStockScan, Handler: lowStockJob.Handle},
			{Type: jobs.TaskBookSnapshot, Handler: snapshotJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: lowStockTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: snapshotTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
