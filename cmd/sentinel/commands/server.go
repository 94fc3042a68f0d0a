// Package commands implements the sentinel CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/sentinel/internal/app"
	"github.com/layer-3/sentinel/internal/config"
)

// RunServer serves HTTP until SIGINT or SIGTERM, then shuts down within the configured timeout.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	logger := app.NewLogger(cfg, os.Stdout)
	logger.Info("starting server", slog.String("version", version))

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer closeCancel()

		if err := a.Close(closeCtx); err != nil {
			logger.Error("failed to close resources", slog.Any("error", err))
		}
	}()

	if err := a.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
