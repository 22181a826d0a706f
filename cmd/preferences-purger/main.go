package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-adoption-filters/internal/app/storage"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/persistence/postgres"
	"github.com/Apurer/go-adoption-filters/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-adoption-filters/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	code := run(ctx, slog.New(slog.NewTextHandler(os.Stdout, nil)), storage.PreferenceTTLFromEnv())
	cancel()
	os.Exit(code)
}

// run purges filter queries untouched for ttl and returns the process exit code. Deferred
// cleanups run before main exits.
func run(ctx context.Context, logger *slog.Logger, ttl time.Duration) int {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		logger.Error("POSTGRES_DSN not set or connection failed; cannot purge filter preferences")
		return 1
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("failed to migrate schema", slog.String("error", err.Error()))
		return 1
	}

	removed, err := postgres.NewPreferenceStore(db).PurgeOlderThan(ctx, time.Now().Add(-ttl))
	if err != nil {
		logger.Error("failed to purge filter preferences", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("filter preference purge completed", slog.Int64("removed", removed), slog.Duration("ttl", ttl))
	return 0
}
