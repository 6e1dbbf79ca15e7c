package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/config"
	"github.com/mamadbah2/fieldops/internal/inventory"
	"github.com/mamadbah2/fieldops/internal/repository/filestore"
	"github.com/mamadbah2/fieldops/internal/repository/kv"
	"github.com/mamadbah2/fieldops/internal/repository/mongodb"
	"github.com/mamadbah2/fieldops/internal/repository/redisstore"
	"github.com/mamadbah2/fieldops/internal/repository/sheets"
	"github.com/mamadbah2/fieldops/internal/repository/sqlstore"
	"github.com/mamadbah2/fieldops/internal/scheduler"
	"github.com/mamadbah2/fieldops/internal/server/handlers"
	"github.com/mamadbah2/fieldops/internal/server/router"
	alertsvc "github.com/mamadbah2/fieldops/internal/service/alerts"
	"github.com/mamadbah2/fieldops/internal/service/mapbridge"
	reportingsvc "github.com/mamadbah2/fieldops/internal/service/reporting"
	transfersvc "github.com/mamadbah2/fieldops/internal/service/transfer"
	"github.com/mamadbah2/fieldops/pkg/clients/weather"
	whatsappclient "github.com/mamadbah2/fieldops/pkg/clients/whatsapp"
	"github.com/mamadbah2/fieldops/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Server.LogLevel, Format: cfg.Server.LogFormat}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	store, err := openStore(startCtx, cfg.Store, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open snapshot store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close snapshot store", zap.Error(err))
		}
	}()

	ledger, err := inventory.Open(startCtx, inventory.NewKVSnapshot(store, cfg.Store.Key), logger.Named(baseLogger, "inventory"))
	if err != nil {
		baseLogger.Fatal("failed to load inventory", zap.Error(err))
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(startCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("google sheets not configured, sheet import/export disabled")
	}
	transferSvc := transfersvc.NewService(ledger, sheetsRepo, cfg.Sheets.Range, logger.Named(baseLogger, "svc.transfer"))

	h := router.Handlers{
		Inventory: handlers.NewInventoryHandler(ledger, transferSvc, logger.Named(baseLogger, "handlers.inventory")),
	}

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(startCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(baseLogger, "repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()

		reportingSvc := reportingsvc.NewService(mongoRepo, mongoRepo, cfg.Server.PublicBaseURL, logger.Named(baseLogger, "svc.reporting"))
		h.Reports = handlers.NewReportHandler(reportingSvc, logger.Named(baseLogger, "handlers.reports"))
	} else {
		baseLogger.Warn("mongodb uri missing, field reports disabled")
	}

	if cfg.Weather.APIKey == "" {
		baseLogger.Warn("weather api key missing, map clicks will carry an error")
	}
	bridge := mapbridge.NewService(weather.NewClient(cfg.Weather), logger.Named(baseLogger, "svc.mapbridge"))
	h.Map = handlers.NewMapHandler(bridge, logger.Named(baseLogger, "handlers.map"))

	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		alerter := alertsvc.NewService(ledger, whatsClient, cfg.WhatsApp.AlertRecipient, logger.Named(baseLogger, "svc.alerts"))

		sched, err := scheduler.NewScheduler(cfg.Alerts, alerter, logger.Named(baseLogger, "scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Warn("whatsapp not configured, low stock alerts disabled")
	}

	engine := router.New(h, logger.Named(baseLogger, "router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
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

func openStore(ctx context.Context, cfg config.StoreConfig, base *zap.Logger) (kv.Store, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return filestore.New(cfg.FileDir, logger.Named(base, "store.file"))
	case config.DriverRedis:
		return redisstore.New(ctx, cfg.Redis, logger.Named(base, "store.redis"))
	case config.DriverSQLite, config.DriverPostgres:
		return sqlstore.Open(cfg.Driver, cfg.DSN, logger.Named(base, "store.sql"))
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
