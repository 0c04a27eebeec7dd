package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/config"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
	"github.com/ricetradesolutions/riceledger/internal/repository/sheets"
	"github.com/ricetradesolutions/riceledger/internal/scheduler"
	"github.com/ricetradesolutions/riceledger/internal/server/handlers"
	"github.com/ricetradesolutions/riceledger/internal/server/router"
	exportsvc "github.com/ricetradesolutions/riceledger/internal/service/export"
	loadsvc "github.com/ricetradesolutions/riceledger/internal/service/loads"
	paymentsvc "github.com/ricetradesolutions/riceledger/internal/service/payments"
	reportingsvc "github.com/ricetradesolutions/riceledger/internal/service/reporting"
	"github.com/ricetradesolutions/riceledger/pkg/clients/webhook"
	"github.com/ricetradesolutions/riceledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.New(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	if cfg.Seed.Enable {
		if _, err := repo.SeedSettings(context.Background()); err != nil {
			baseLogger.Fatal("failed to seed default settings", zap.Error(err))
		}
	}

	var sheetRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetRepo, err = sheets.New(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("sheet mirror enabled")
	}

	var notifier webhook.Client
	if cfg.Notifier.Enabled() {
		notifier = webhook.NewClient(cfg.Notifier)
		baseLogger.Info("reminder webhook enabled")
	}

	loadsSvc := loadsvc.NewService(repo, baseLogger.Named("svc.loads"), nil, nil)
	paymentsSvc := paymentsvc.NewService(repo, baseLogger.Named("svc.payments"), nil)
	reportingSvc := reportingsvc.NewService(repo, baseLogger.Named("svc.reporting"), nil)
	exportSvc := exportsvc.NewService(repo, sheetRepo, baseLogger.Named("svc.export"), nil)

	engine := router.New(router.Handlers{
		Settings: handlers.NewSettingsHandler(repo, baseLogger.Named("handlers.settings")),
		Masters:  handlers.NewMastersHandler(repo, baseLogger.Named("handlers.masters")),
		Loads:    handlers.NewLoadsHandler(loadsSvc, repo, baseLogger.Named("handlers.loads")),
		Payments: handlers.NewPaymentsHandler(paymentsSvc, baseLogger.Named("handlers.payments")),
		Reports:  handlers.NewReportsHandler(reportingSvc, baseLogger.Named("handlers.reports"), nil),
		Export:   handlers.NewExportHandler(exportSvc, baseLogger.Named("handlers.export")),
	}, baseLogger.Named("router"))

	var mirror scheduler.LedgerMirror
	if sheetRepo != nil {
		mirror = exportSvc
	}

	sched := scheduler.NewScheduler(cfg.Reporting, reportingSvc, repo, mirror, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
