// Package main is the entry point for the service. It wires all dependencies
// using samber/do v2, starts the HTTP server, and handles graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	adapthttp "github.com/workstackhq/workstack/internal/adapters/http"
	"github.com/workstackhq/workstack/internal/adapters/http/handlers"
	"github.com/workstackhq/workstack/internal/adapters/http/middleware"

	"github.com/workstackhq/workstack/internal/adapters/storage/rediscache"
	"github.com/workstackhq/workstack/internal/adapters/storage/sqlite"
	"github.com/workstackhq/workstack/internal/app"
	"github.com/workstackhq/workstack/internal/events"
	"github.com/workstackhq/workstack/internal/platform/config"
	"github.com/workstackhq/workstack/internal/platform/health"
	"github.com/workstackhq/workstack/internal/platform/httpclient"
	"github.com/workstackhq/workstack/internal/platform/logging"
	"github.com/workstackhq/workstack/internal/platform/telemetry"
	"github.com/workstackhq/workstack/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	store := do.MustInvoke[*sqlite.Store](injector)
	registry.Register(store)
	if cfg.Cache.Enabled {
		client := do.MustInvoke[*redis.Client](injector)
		registry.Register(&redisChecker{client: client})
	}
	if cfg.Webhook.Enabled {
		registry.Register(do.MustInvoke[*httpclient.Client](injector))
	}

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Release storage handles.
	if cfg.Cache.Enabled {
		if err := do.MustInvoke[*redis.Client](injector).Close(); err != nil {
			logger.Error("redis close error", slog.Any("error", err))
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("store close error", slog.Any("error", err))
	}

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// redisChecker adapts a redis client to the health registry.
type redisChecker struct {
	client *redis.Client
}

func (c *redisChecker) Name() string { return "redis" }

func (c *redisChecker) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	// Storage.
	do.Provide(injector, func(_ do.Injector) (*sqlite.Store, error) {
		return sqlite.Open(cfg.Store.Path)
	})

	do.Provide(injector, func(_ do.Injector) (*redis.Client, error) {
		return redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		}), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.TaskRepository, error) {
		store := do.MustInvoke[*sqlite.Store](i)
		repo := ports.TaskRepository(sqlite.NewTaskRepo(store))
		if cfg.Cache.Enabled {
			client := do.MustInvoke[*redis.Client](i)
			repo = rediscache.NewTaskCache(repo, client, cfg.Cache.TTL)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ProjectRepository, error) {
		store := do.MustInvoke[*sqlite.Store](i)
		repo := ports.ProjectRepository(sqlite.NewProjectRepo(store))
		if cfg.Cache.Enabled {
			client := do.MustInvoke[*redis.Client](i)
			repo = rediscache.NewProjectCache(repo, client, cfg.Cache.TTL)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ActivityLog, error) {
		store := do.MustInvoke[*sqlite.Store](i)
		return sqlite.NewActivity(store), nil
	})

	// Outbound webhook client.
	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Webhook.Client, "webhooks", metrics, logger), nil
	})

	// Event dispatch.
	do.Provide(injector, func(i do.Injector) (ports.Dispatcher, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		dispatcher := events.NewDispatcher(metrics)

		activity := events.NewActivitySubscriber(do.MustInvoke[ports.ActivityLog](i))
		for _, name := range events.EventNames() {
			dispatcher.Register(name, activity)
		}

		if cfg.Webhook.Enabled {
			client := do.MustInvoke[*httpclient.Client](i)
			notifier := events.NewWebhookNotifier(client, cfg.Webhook.Path)
			for _, name := range events.EventNames() {
				dispatcher.Register(name, notifier)
			}
		}

		return dispatcher, nil
	})

	// Application services.
	do.Provide(injector, func(i do.Injector) (ports.TaskService, error) {
		return app.NewTaskService(
			do.MustInvoke[ports.TaskRepository](i),
			do.MustInvoke[ports.ProjectRepository](i),
			do.MustInvoke[ports.Dispatcher](i),
			cfg.Pipeline.SlowThreshold,
		), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ProjectService, error) {
		return app.NewProjectService(
			do.MustInvoke[ports.ProjectRepository](i),
			do.MustInvoke[ports.TaskRepository](i),
			do.MustInvoke[ports.Dispatcher](i),
			cfg.Pipeline.SlowThreshold,
		), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ActivityService, error) {
		return app.NewActivityService(do.MustInvoke[ports.ActivityLog](i)), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	// HTTP layer.
	do.Provide(injector, func(i do.Injector) (*handlers.ProjectHandler, error) {
		return handlers.NewProjectHandler(do.MustInvoke[ports.ProjectService](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.TaskHandler, error) {
		return handlers.NewTaskHandler(do.MustInvoke[ports.TaskService](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.ActivityHandler, error) {
		return handlers.NewActivityHandler(do.MustInvoke[ports.ActivityService](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		return handlers.NewHealthHandler(do.MustInvoke[ports.HealthRegistry](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		projH := do.MustInvoke[*handlers.ProjectHandler](i)
		taskH := do.MustInvoke[*handlers.TaskHandler](i)
		activityH := do.MustInvoke[*handlers.ActivityHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(projH, taskH, activityH, healthH,
			middleware.Chain(
				middleware.Recovery(logger),
				middleware.RequestID(),
				middleware.CorrelationID(),
				middleware.OpenTelemetry(metrics),
				middleware.Logging(logger),
				middleware.Timeout(cfg.Server.WriteTimeout),
			),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
