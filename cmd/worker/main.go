package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-adoption-filters/internal/app/storage"
	filteractivities "github.com/Apurer/go-adoption-filters/internal/durable/temporal/activities/filters"
	filterworkflows "github.com/Apurer/go-adoption-filters/internal/durable/temporal/workflows/filters"
	platformobservability "github.com/Apurer/go-adoption-filters/internal/platform/observability"
	platformredis "github.com/Apurer/go-adoption-filters/internal/platform/redis"
)

func main() {
	ctx := context.Background()
	const serviceName = "adoption-filters-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	prefs := storage.Open(ctx, storage.Options{
		PostgresDSN: strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		Redis:       platformredis.ConfigFromEnv(),
		RedisTTL:    storage.PreferenceTTLFromEnv(),
	}, logger)
	defer prefs.Close()
	if prefs.Kind == storage.KindMemory {
		logger.Warn("worker preference store is in-memory, persisted queries will not be visible to the API")
	}
	activities := filteractivities.NewActivities(prefs.Store)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, filterworkflows.QueryPersistenceTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(filterworkflows.QueryPersistenceWorkflow, workflow.RegisterOptions{Name: filterworkflows.QueryPersistenceWorkflowName})
	w.RegisterActivityWithOptions(activities.PersistQuery, activity.RegisterOptions{Name: filteractivities.PersistQueryActivityName})

	logger.Info("worker listening",
		slog.String("taskQueue", filterworkflows.QueryPersistenceTaskQueue),
		slog.String("namespace", clientOptions.Namespace),
		slog.String("store", prefs.Kind),
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
