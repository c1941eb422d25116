// Worker is the long-running deployment: it consumes upload events from
// NATS and runs the receipt pipeline for each one.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmaksimov/expense-pipeline/internal/bootstrap"
	"github.com/dmaksimov/expense-pipeline/internal/config"
	"github.com/dmaksimov/expense-pipeline/internal/logger"
	"github.com/dmaksimov/expense-pipeline/internal/metrics"
	"github.com/dmaksimov/expense-pipeline/internal/queue"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer app.Close()

	uploads, err := queue.NewNATSQueue(cfg.NATSURL, cfg.NATSSubject, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect upload queue")
	}
	defer uploads.Close()

	pipelineMetrics := metrics.NewPipelineMetrics()
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: pipelineMetrics.Handler(),
	}
	go func() {
		log.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	handler := func(ctx context.Context, evt queue.UploadEvent) error {
		pipelineMetrics.StartRun()
		start := time.Now()
		err := app.HandleUpload(ctx, evt.Bucket, evt.ObjectPath)
		pipelineMetrics.FinishRun(time.Since(start), err)
		return err
	}

	subDone := make(chan error, 1)
	go func() {
		subDone <- uploads.Subscribe(ctx, handler)
	}()

	log.Info().
		Str("subject", cfg.NATSSubject).
		Msg("worker started, waiting for upload events")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := <-subDone; err != nil {
		log.Error().Err(err).Msg("subscription did not drain cleanly")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server shutdown")
	}

	log.Info().Msg("worker stopped")
}
