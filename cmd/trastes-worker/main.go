package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trastes/internal/amqp"
	"trastes/internal/cli"
	"trastes/internal/config"
	applog "trastes/internal/log"
	gsheet "trastes/internal/sheets/google"
	"trastes/internal/storage"
	"trastes/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting trastes-worker")

	cfg := cli.LoadAndValidateConfig(logger.Logger, (*config.Config).ValidateWorker)

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	sheetsClient, err := gsheet.New(initCtx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		CredentialsFile: cfg.GoogleCredentialsFile,
	})
	cancelInit()
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var metricsSrv *http.Server
	if cfg.WorkerMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err, "addr", cfg.WorkerMetricsAddr)
			}
		}()
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		logger.Info("Shutting down worker...")
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(ctx); err != nil {
				logger.Error("Metrics server shutdown error", "error", err)
			}
		}
	})

	syncWorker := worker.NewSyncWorker(sqliteRepo, sheetsClient, cfg.SyncBatchSize)

	// Records stored while the worker was down have no pending message.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.LogError(ctx, "Failed startup sync check", err, applog.OpSync, nil)
	}

	go func() {
		if err := amqpClient.ConsumeRecordSync(ctx, syncWorker.HandleSyncMessage); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := syncWorker.ProcessPendingRecords(ctx); err != nil {
					logger.LogError(ctx, "Periodic sync failed", err, applog.OpSync, nil)
				}
			}
		}
	}()

	logger.Info("Worker running", "queue", cfg.AMQPQueue, "interval", cfg.SyncInterval, "batch_size", cfg.SyncBatchSize)
	<-done
	logger.Info("Worker stopped")
}
