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

	"github.com/vasii/catalog/internal/bootstrap"
	"github.com/vasii/catalog/internal/config"
	"github.com/vasii/catalog/internal/observability/logging"
	"github.com/vasii/catalog/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	logging.Install(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject, "queue_group", cfg.NATSQueueGroup)
	err = app.Queue.SubscribeInventoryUploaded(ctx, func(handlerCtx context.Context, uploadID string) error {
		if upload, err := app.Uploads.GetByID(handlerCtx, uploadID); err == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(upload.CreatedAt))
		}

		workerMetrics.StartUpload()
		start := time.Now()
		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.WorkerProcessTimeout)
		defer cancel()

		err := app.ProcessUC.ProcessByID(processCtx, uploadID)
		workerMetrics.FinishUpload(serviceName, time.Since(start), err)
		if err != nil {
			return err
		}

		upload, err := app.Uploads.GetByID(handlerCtx, uploadID)
		if err != nil {
			return err
		}
		workerMetrics.RecordLines(serviceName, upload.ParsedCount, upload.SkippedCount)
		slog.Info("upload_processed",
			"upload_id", uploadID,
			"parsed", upload.ParsedCount,
			"skipped", upload.SkippedCount,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
