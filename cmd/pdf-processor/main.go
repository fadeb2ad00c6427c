package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/pdf-processor/internal/api/handlers/operations"
	"github.com/aliskhannn/pdf-processor/internal/api/router"
	"github.com/aliskhannn/pdf-processor/internal/api/server"
	"github.com/aliskhannn/pdf-processor/internal/config"
	"github.com/aliskhannn/pdf-processor/internal/pdf"
	operationssvc "github.com/aliskhannn/pdf-processor/internal/service/operations"
	"github.com/aliskhannn/pdf-processor/internal/storage/staging"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config")

	// Retry strategy for outbound HTTP fetches (html-to-pdf from URL).
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Initialize the staging store (inbound and outbound zones).
	store, err := staging.New(cfg.Staging.BaseDir, cfg.Staging.InboundDir, cfg.Staging.OutboundDir)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to initialize staging store")
	}

	// Initialize the transform facade and the pipeline service.
	processor := pdf.New(store, pdf.Options{
		OCRLanguage:   cfg.OCR.Language,
		FetchStrategy: strategy,
	})
	service := operationssvc.NewService(store, processor, cfg.Retention.MaxAge)

	// HTTP handler for the operation routes.
	opsHandler := operations.NewHandler(service, cfg.Staging.MaxUploadSize)

	// Start the retention sweeper in a separate goroutine.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweep(ctx, store, cfg.Retention)
	}()

	// Start HTTP server in a separate goroutine.
	r := router.Setup(opsHandler)
	s := server.New(cfg.Server.HTTPPort, r)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for the sweeper goroutine to finish.
	wg.Wait()

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}
}

// sweep periodically reclaims staged files older than the retention window
// until the context is canceled.
func sweep(ctx context.Context, store *staging.Store, cfg config.Retention) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	zlog.Logger.Info().
		Dur("interval", cfg.SweepInterval).
		Dur("max_age", cfg.MaxAge).
		Msg("starting retention sweeper")

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Msg("shutdown signal received, stopping sweeper")
			return
		case <-ticker.C:
			deleted := store.Sweep(cfg.MaxAge)
			if deleted > 0 {
				zlog.Logger.Info().Int("deleted", deleted).Msg("retention sweep completed")
			}
		}
	}
}
