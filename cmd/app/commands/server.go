package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/allisson/parceltrack/internal/app"
	"github.com/allisson/parceltrack/internal/config"
	orderUsecase "github.com/allisson/parceltrack/internal/order/usecase"
	"github.com/allisson/parceltrack/internal/tracking/domain"
	trackingUsecase "github.com/allisson/parceltrack/internal/tracking/usecase"
)

// RunServer starts the HTTP server, the metrics server, the notification worker and,
// when enabled, the polling scheduler. Blocks until receiving SIGINT/SIGTERM or a fatal
// server error, then stops everything within DBConnMaxLifetime.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Get HTTP server from container (this initializes all dependencies)
	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox worker: %w", err)
	}

	orderUseCase, err := container.OrderUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize order use case: %w", err)
	}
	reclassifyCritical(ctx, orderUseCase, logger)

	var scheduler *trackingUsecase.PollingScheduler
	if cfg.TrackingPollEnabled {
		scheduler, err = container.Scheduler()
		if err != nil {
			return fmt.Errorf("failed to initialize polling scheduler: %w", err)
		}

		stop, err := scheduler.Start(ctx, orderUseCase.ListTrackedRefs, applyResults(orderUseCase))
		if err != nil {
			return fmt.Errorf("failed to start polling scheduler: %w", err)
		}
		defer stop()
	}

	serverErr := make(chan error, 3)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("api server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := outboxUseCase.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErr <- fmt.Errorf("outbox worker error: %w", err)
		}
	}()

	var shutdownErrors []error

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		shutdownErrors = append(shutdownErrors, err)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Both write to the database, which closes with the container.
	<-workerDone
	if scheduler != nil {
		scheduler.Wait()
	}

	return errors.Join(shutdownErrors...)
}

// reclassifyCritical realigns stored critical flags with the configured keywords, which
// may have changed since the flags were written. A failure is logged and startup goes on.
func reclassifyCritical(ctx context.Context, orderUseCase orderUsecase.OrderUseCase, logger *slog.Logger) {
	if _, err := orderUseCase.ReclassifyCritical(ctx); err != nil {
		logger.Warn("failed to reclassify critical tracking statuses", slog.Any("error", err))
	}
}

// applyResults adapts OrderUseCase.ApplyStatusChanges to the scheduler's result sink.
func applyResults(orderUseCase orderUsecase.OrderUseCase) trackingUsecase.ResultSink {
	return func(ctx context.Context, changes []domain.StatusChangeResult) error {
		_, err := orderUseCase.ApplyStatusChanges(ctx, changes)
		return err
	}
}
