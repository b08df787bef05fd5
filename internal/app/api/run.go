// Package api wires the HTTP process: observability, repositories,
// services, realtime hub, and the router.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	inventorymemory "github.com/broasteria/broasteria/internal/domains/inventory/adapters/memory"
	inventoryapp "github.com/broasteria/broasteria/internal/domains/inventory/application"
	locationsmemory "github.com/broasteria/broasteria/internal/domains/locations/adapters/memory"
	locationsapp "github.com/broasteria/broasteria/internal/domains/locations/application"
	menumemory "github.com/broasteria/broasteria/internal/domains/menu/adapters/memory"
	menuorders "github.com/broasteria/broasteria/internal/domains/menu/adapters/orders"
	menupostgres "github.com/broasteria/broasteria/internal/domains/menu/adapters/persistence/postgres"
	menuapp "github.com/broasteria/broasteria/internal/domains/menu/application"
	menuports "github.com/broasteria/broasteria/internal/domains/menu/ports"
	ordersmemory "github.com/broasteria/broasteria/internal/domains/orders/adapters/memory"
	ordersobs "github.com/broasteria/broasteria/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/broasteria/broasteria/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/broasteria/broasteria/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/broasteria/broasteria/internal/domains/orders/application"
	ordersports "github.com/broasteria/broasteria/internal/domains/orders/ports"
	promosmemory "github.com/broasteria/broasteria/internal/domains/promotions/adapters/memory"
	promosapp "github.com/broasteria/broasteria/internal/domains/promotions/application"
	reportingapp "github.com/broasteria/broasteria/internal/domains/reporting/application"
	usersmemory "github.com/broasteria/broasteria/internal/domains/users/adapters/memory"
	usersapp "github.com/broasteria/broasteria/internal/domains/users/application"
	"github.com/broasteria/broasteria/internal/platform/events"
	"github.com/broasteria/broasteria/internal/platform/migrations"
	platformobservability "github.com/broasteria/broasteria/internal/platform/observability"
	platformpostgres "github.com/broasteria/broasteria/internal/platform/postgres"
	"github.com/broasteria/broasteria/internal/realtime"
	transport "github.com/broasteria/broasteria/internal/transport/http"
)

const serviceName = "broasteria-api"

// Run boots the API with observability, repositories, the realtime hub,
// and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

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

	orderRepo, menuRepo, cleanupDB := buildRepositories(ctx, cfg, logger)
	defer cleanupDB()

	hub := realtime.NewHub(logger)
	gateway := realtime.NewGateway(hub, logger)

	publisher, cleanupBus := buildPublisher(cfg, logger)
	defer cleanupBus()

	menuService := menuapp.NewService(menuRepo, menuapp.WithLogger(logger))

	orderOptions := []ordersapp.Option{
		ordersapp.WithLogger(logger),
		ordersapp.WithBroadcaster(hub),
		ordersapp.WithEventPublisher(publisher),
		ordersapp.WithMenuChecker(menuorders.NewChecker(menuService)),
		ordersapp.WithOptimisticLocking(cfg.OptimisticLocking),
	}

	inline := ordersworkflows.NewInlineFulfillment(nil)
	var orchestrator ordersports.FulfillmentOrchestrator = inline
	temporalClient, err := connectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Warn("Temporal unavailable, fulfillment runs inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orchestrator = ordersworkflows.NewTemporalFulfillment(temporalClient)
		logger.Info("Temporal fulfillment enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	orderOptions = append(orderOptions, ordersapp.WithOrchestrator(orchestrator))

	orderService := ordersobs.New(
		ordersapp.NewService(orderRepo, orderOptions...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	inline.Bind(orderService)

	userService := usersapp.NewService(usersmemory.NewRepository(), []byte(cfg.AuthSecret), usersapp.WithLogger(logger))
	promoService := promosapp.NewService(promosmemory.NewRepository(), promosapp.WithLogger(logger))
	locationService := locationsapp.NewService(locationsmemory.NewRepository(), locationsapp.WithLogger(logger))
	inventoryService := inventoryapp.NewService(inventorymemory.NewRepository(), inventoryapp.WithLogger(logger))
	reportService := reportingapp.NewService(orderRepo, reportingapp.WithLogger(logger))

	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(transport.Handlers{
		Orders:      transport.NewOrdersHandler(orderService, logger),
		Menu:        transport.NewMenuHandler(menuService, logger),
		Promotions:  transport.NewPromotionsHandler(promoService, logger),
		Locations:   transport.NewLocationsHandler(locationService, logger),
		Inventory:   transport.NewInventoryHandler(inventoryService, logger),
		Users:       transport.NewUsersHandler(userService, logger),
		Reports:     transport.NewReportsHandler(reportService, logger),
		Gateway:     gateway,
		UserService: userService,
		Middleware:  []gin.HandlerFunc{otelgin.Middleware(serviceName)},
	})

	addr := ":" + cfg.Port
	logger.Info("API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// buildRepositories connects postgres when a DSN is configured and
// falls back to memory otherwise. Orders and menu are the durable
// aggregates; the rest run in memory.
func buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.Repository, menuports.Repository, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return ordersmemory.NewRepository(), menumemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), menumemory.NewRepository(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), menumemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), menumemory.NewRepository(), func() {}
	}
	logger.Info("order and menu repositories configured with postgres")
	return orderspostgres.NewRepository(db), menupostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

func buildPublisher(cfg Config, logger *slog.Logger) (ordersports.EventPublisher, func()) {
	if cfg.RabbitMQURL == "" {
		logger.Warn("RABBITMQ_URL not set, order events are not published")
		return ordersports.NoopPublisher{}, func() {}
	}
	publisher, err := events.Connect(cfg.RabbitMQURL, events.WithLogger(logger))
	if err != nil {
		logger.Warn("failed to connect to rabbitmq, order events are not published", slog.String("error", err.Error()))
		return ordersports.NoopPublisher{}, func() {}
	}
	return publisher, publisher.Close
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
