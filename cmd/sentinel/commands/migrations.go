package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/layer-3/sentinel/internal/app"
	"github.com/layer-3/sentinel/internal/config"
)

// DefaultMigrationsPath is relative to the repository root
const DefaultMigrationsPath = "file://migrations/postgresql"

// RunMigrations applies all pending migrations to DB_CONNECTION_STRING.
func RunMigrations(sourceURL string) error {
	cfg := config.Load()
	logger := app.NewLogger(cfg, os.Stdout)

	logger.Info("running database migrations", slog.String("source", sourceURL))

	m, err := migrate.New(sourceURL, cfg.DBConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Error("failed to close migration source", slog.Any("error", srcErr))
		}
		if dbErr != nil {
			logger.Error("failed to close migration database", slog.Any("error", dbErr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
