package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"

	filterserver "github.com/Apurer/go-adoption-filters/go"
	"github.com/Apurer/go-adoption-filters/internal/app/storage"
	"github.com/Apurer/go-adoption-filters/internal/clients/http/catalog"
	filtersmemory "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/memory"
	filtersobs "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/observability"
	filtersworkflows "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/workflows"
	filtersapp "github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	platformobservability "github.com/Apurer/go-adoption-filters/internal/platform/observability"
)

const serviceName = "adoption-filters-api"

// Run boots the filter sessions HTTP API with observability, stores, and workflows wired. It
// returns when ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	catalogClient, seeded, err := buildCatalog(cfg, logger)
	if err != nil {
		return err
	}
	prefs := storage.Open(ctx, storage.Options{
		PostgresDSN: cfg.PostgresDSN,
		Redis:       cfg.Redis,
		RedisTTL:    cfg.PreferenceTTL,
	}, logger)
	defer prefs.Close()
	if userID, ok := deviceUser(cfg, seeded); ok {
		if err := prefs.SetUserID(ctx, userID); err != nil {
			logger.Warn("failed to record device user", slog.Int64("user.id", userID), slog.String("error", err.Error()))
		}
	}

	publisher, closePublisher := selectPublisher(cfg, prefs, func() (client.Client, error) {
		return connectTemporalClient(cfg, instruments)
	}, logger)
	defer closePublisher()

	manager := filtersapp.NewManager(
		catalogClient,
		prefs.Store,
		filtersapp.WithLogger(logger),
		filtersapp.WithPublisher(publisher),
		filtersapp.WithUserResolver(prefs.Users),
		filtersapp.WithOrdering(cfg.Ordering),
		filtersapp.WithSearchStatusID(cfg.SearchStatusID),
		filtersapp.WithIdleTimeout(cfg.SessionIdle),
	)
	service := filtersobs.New(
		manager,
		filtersobs.WithLogger(logger),
		filtersobs.WithTracer(instruments.Tracer("internal.filters.application")),
		filtersobs.WithMeter(instruments.Meter("internal.filters.application")),
	)

	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router := filterserver.NewRouterWithGinEngine(engine, filterserver.ApiHandleFunctions{
		FilterSessionAPI: filterserver.NewFilterSessionAPI(service),
	})
	server := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		manager.RunSweeper(gctx, cfg.SessionIdle/2)
		return nil
	})
	g.Go(func() error {
		logger.Info("filter sessions API listening", slog.String("addr", server.Addr), slog.String("store", prefs.Kind))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("filter sessions API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildCatalog(cfg Config, logger *slog.Logger) (ports.CatalogClient, bool, error) {
	if cfg.CatalogBaseURL == "" {
		logger.Warn("CATALOG_BASE_URL not set, serving the seeded in-memory catalog")
		return filtersmemory.NewCatalog(filtersmemory.SeedData()), true, nil
	}
	c, err := catalog.NewClient(
		cfg.CatalogBaseURL,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.CatalogTimeout}),
		catalog.WithRequestEditorFn(propagateTrace),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build catalog client: %w", err)
	}
	logger.Info("catalog client configured", slog.String("baseUrl", cfg.CatalogBaseURL))
	return c, false, nil
}

func propagateTrace(ctx context.Context, req *http.Request) error {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return nil
}

// selectPublisher hands commits to Temporal only when the worker can reach the same preference
// store as the API. An in-memory store is private to this process, so commits stay inline.
func selectPublisher(
	cfg Config,
	prefs *storage.Preferences,
	dial func() (client.Client, error),
	logger *slog.Logger,
) (ports.QueryPublisher, func()) {
	inline := filtersworkflows.NewInlinePublisher(prefs.Store)
	if prefs.Kind == storage.KindMemory {
		if !cfg.TemporalDisabled {
			logger.Warn("in-memory preference store is not shared with the worker, persisting filter queries inline")
		}
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, persisting filter queries inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	var opts []filtersworkflows.PublisherOption
	if cfg.TemporalAwait {
		opts = append(opts, filtersworkflows.WithAwaitCompletion())
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace), slog.String("store", prefs.Kind))
	return filtersworkflows.NewTemporalPublisher(temporalClient, opts...), temporalClient.Close
}

func deviceUser(cfg Config, seeded bool) (int64, bool) {
	if cfg.DeviceUserID != nil {
		return *cfg.DeviceUserID, true
	}
	if seeded {
		return filtersmemory.DemoUserID, true
	}
	return 0, false
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
