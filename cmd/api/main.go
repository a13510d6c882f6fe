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

	httpadapter "github.com/vasii/catalog/internal/adapters/http"
	"github.com/vasii/catalog/internal/bootstrap"
	"github.com/vasii/catalog/internal/config"
	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/observability/logging"
	"github.com/vasii/catalog/internal/observability/metrics"
)

const serviceName = "api"

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

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	app.ReviewUC.SetCommitObserver(func(counts map[domain.Collection]int) {
		httpMetrics.RecordCommitted(serviceName, counts)
	})

	router := httpadapter.NewRouter(
		cfg,
		app.IngestUC,
		app.Uploads,
		app.ReviewUC,
		app.CatalogUC,
		app.Collections,
	).WithMetrics(httpMetrics).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
