package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-backoffice/meridian/internal/app"
	"github.com/meridian-backoffice/meridian/internal/finance"
	"github.com/meridian-backoffice/meridian/internal/inventory"
	"github.com/meridian-backoffice/meridian/internal/ledger"
	"github.com/meridian-backoffice/meridian/internal/masterdata/accounts"
	"github.com/meridian-backoffice/meridian/internal/observability"
	"github.com/meridian-backoffice/meridian/internal/platform/cache"
	"github.com/meridian-backoffice/meridian/internal/platform/db"
	"github.com/meridian-backoffice/meridian/internal/procurement"
	"github.com/meridian-backoffice/meridian/internal/sales"
	"github.com/meridian-backoffice/meridian/internal/shared"
	"github.com/meridian-backoffice/meridian/jobs"
	"github.com/meridian-backoffice/meridian/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, continuing without locks", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idempotency := shared.NewIdempotencyStore(pool)
	var locker *shared.IdentityLocker
	if redisClient != nil {
		locker = shared.NewIdentityLocker(redisClient)
	}

	inventoryService := inventory.NewService(inventory.NewRepository(pool))
	accountsService := accounts.NewService(accounts.NewRepository(pool))
	procurementService := procurement.NewService(
		procurement.NewRepository(pool), accountsService, auditLogger, idempotency, locker, logger)
	salesService := sales.NewService(sales.NewRepository(pool), logger)
	financeService := finance.NewService(finance.NewRepository(pool), logger)
	ledgerService := ledger.NewService(
		salesService, procurementService, financeService, accountsService, cfg.BankModeList(), logger)

	jobInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobInspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		InventoryHandler:   inventory.NewHandler(logger, inventoryService),
		AccountsHandler:    accounts.NewHandler(logger, accountsService),
		ProcurementHandler: procurement.NewHandler(logger, procurementService),
		SalesHandler:       sales.NewHandler(logger, salesService),
		FinanceHandler:     finance.NewHandler(logger, financeService),
		LedgerHandler:      ledger.NewHandler(logger, ledgerService),
		ReportHandler:      report.NewHandler(logger, ledgerService),
		JobHandler:         jobs.NewHandler(jobInspector, logger),
		Pool:               pool,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
