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

	ordersmemory "github.com/broasteria/broasteria/internal/domains/orders/adapters/memory"
	ordersobs "github.com/broasteria/broasteria/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/broasteria/broasteria/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/broasteria/broasteria/internal/domains/orders/application"
	ordersports "github.com/broasteria/broasteria/internal/domains/orders/ports"
	orderactivities "github.com/broasteria/broasteria/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/broasteria/broasteria/internal/durable/temporal/workflows/orders"
	"github.com/broasteria/broasteria/internal/platform/events"
	platformobservability "github.com/broasteria/broasteria/internal/platform/observability"
	platformpostgres "github.com/broasteria/broasteria/internal/platform/postgres"
)

func main() {
	ctx := context.Background()
	const serviceName = "broasteria-worker"
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

	orderRepo, cleanupRepo := buildOrderRepository(ctx, logger)
	defer cleanupRepo()
	publisher, cleanupBus := buildPublisher(logger)
	defer cleanupBus()
	orderService := ordersobs.New(
		ordersapp.NewService(orderRepo,
			ordersapp.WithLogger(logger),
			ordersapp.WithEventPublisher(publisher)),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	activities := orderactivities.NewActivities(orderService)

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

	w := worker.New(temporalClient, orderworkflows.FulfillmentTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.FulfillmentWorkflow, workflow.RegisterOptions{Name: orderworkflows.FulfillmentWorkflowName})
	w.RegisterActivityWithOptions(activities.ValidateOrder, activity.RegisterOptions{Name: orderactivities.ValidateOrderActivityName})
	w.RegisterActivityWithOptions(activities.ReceiveOrder, activity.RegisterOptions{Name: orderactivities.ReceiveOrderActivityName})
	w.RegisterActivityWithOptions(activities.CookOrder, activity.RegisterOptions{Name: orderactivities.CookOrderActivityName})
	w.RegisterActivityWithOptions(activities.PackOrder, activity.RegisterOptions{Name: orderactivities.PackOrderActivityName})
	w.RegisterActivityWithOptions(activities.DeliverOrder, activity.RegisterOptions{Name: orderactivities.DeliverOrderActivityName})
	w.RegisterActivityWithOptions(activities.CompleteOrder, activity.RegisterOptions{Name: orderactivities.CompleteOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.FulfillmentTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildOrderRepository(ctx context.Context, logger *slog.Logger) (ordersports.Repository, func()) {
	dsn := os.Getenv("POSTGRES_DSN")
	if strings.TrimSpace(dsn) == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory order repository")
		return ordersmemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("worker failed to connect to postgres (falling back to memory)", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection (falling back to memory)", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), func() {}
	}
	logger.Info("worker order repository configured with postgres")
	return orderspostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

func buildPublisher(logger *slog.Logger) (ordersports.EventPublisher, func()) {
	url := strings.TrimSpace(os.Getenv("RABBITMQ_URL"))
	if url == "" {
		logger.Warn("RABBITMQ_URL not set, worker does not publish order events")
		return ordersports.NoopPublisher{}, func() {}
	}
	publisher, err := events.Connect(url, events.WithLogger(logger))
	if err != nil {
		logger.Warn("worker failed to connect to rabbitmq, order events are not published", slog.String("error", err.Error()))
		return ordersports.NoopPublisher{}, func() {}
	}
	return publisher, publisher.Close
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
