package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/fars-accidents/internal/adapter/http"
	"github.com/couchcryptid/fars-accidents/internal/config"
	"github.com/couchcryptid/fars-accidents/internal/fars"
	"github.com/couchcryptid/fars-accidents/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := fars.NewReader(cfg.DataDir, logger, metrics)
	svc := fars.NewService(reader, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, httpadapter.MapSize{Width: cfg.MapWidth, Height: cfg.MapHeight}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("serving FARS archives", "data_dir", cfg.DataDir)
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
