package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/sellerdesk/backoffice/internal/app/api"
	catalogmemory "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/memory"
	ordersmemory "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/sellerdesk/backoffice/internal/domains/orders/application"
	ordersports "github.com/sellerdesk/backoffice/internal/domains/orders/ports"
	sellersapp "github.com/sellerdesk/backoffice/internal/domains/sellers/application"
	sellersports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
	orderactivities "github.com/sellerdesk/backoffice/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/sellerdesk/backoffice/internal/durable/temporal/workflows/orders"
	"github.com/sellerdesk/backoffice/internal/platform/migrations"
	platformobservability "github.com/sellerdesk/backoffice/internal/platform/observability"
	platformpostgres "github.com/sellerdesk/backoffice/internal/platform/postgres"
)

func main() {
	ctx := context.Background()
	const serviceName = "sellerdesk-worker"

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
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

	orderRepo, cleanupRepo := buildOrderRepository(ctx, cfg, logger)
	defer cleanupRepo()
	orderService := ordersapp.NewService(orderRepo, buildIdentity(cfg))
	activities := orderactivities.NewActivities(orderService)

	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-worker"),
	})
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderCreationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderCreationWorkflowName})
	w.RegisterActivityWithOptions(activities.PersistOrder, activity.RegisterOptions{Name: orderactivities.PersistOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderCreationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildOrderRepository(ctx context.Context, cfg api.Config, logger *slog.Logger) (ordersports.Repository, func()) {
	db, cleanup := platformpostgres.MaybeConnect(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		logger.Warn("worker running against in-memory order repository, orders will not be durable")
		return ordersmemory.NewRepository(catalogmemory.NewRepository()), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("worker failed to run migrations", slog.String("error", err.Error()))
		cleanup()
		os.Exit(1)
	}
	logger.Info("worker order repository configured with postgres")
	return orderspostgres.NewRepository(db), cleanup
}

// buildIdentity mirrors the API's ownership enforcement mode. Seller ids
// reach the worker inside workflow payloads, so only EnforceOwnership is
// consulted here.
func buildIdentity(cfg api.Config) sellersports.Identity {
	if cfg.UseSharedSeller {
		return sellersapp.NewSharedSellerIdentity(cfg.SharedSellerID)
	}
	return sellersapp.NewTokenIdentity()
}
