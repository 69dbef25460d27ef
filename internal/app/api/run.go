// Package api boots the back office HTTP process: configuration,
// observability, storage, domain services, and the router.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	catalogexcel "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/excel"
	catalogmemory "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/sellerdesk/backoffice/internal/domains/catalog/application"
	catalogports "github.com/sellerdesk/backoffice/internal/domains/catalog/ports"
	dashboardmemory "github.com/sellerdesk/backoffice/internal/domains/dashboard/adapters/memory"
	dashboardredis "github.com/sellerdesk/backoffice/internal/domains/dashboard/adapters/rediscache"
	dashboardapp "github.com/sellerdesk/backoffice/internal/domains/dashboard/application"
	dashboardports "github.com/sellerdesk/backoffice/internal/domains/dashboard/ports"
	ordersmemory "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/sellerdesk/backoffice/internal/domains/orders/application"
	ordersports "github.com/sellerdesk/backoffice/internal/domains/orders/ports"
	sellersmemory "github.com/sellerdesk/backoffice/internal/domains/sellers/adapters/memory"
	sellerspostgres "github.com/sellerdesk/backoffice/internal/domains/sellers/adapters/persistence/postgres"
	sellersapp "github.com/sellerdesk/backoffice/internal/domains/sellers/application"
	sellersports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
	shippingmemory "github.com/sellerdesk/backoffice/internal/domains/shipping/adapters/memory"
	shippingpostgres "github.com/sellerdesk/backoffice/internal/domains/shipping/adapters/persistence/postgres"
	shippingapp "github.com/sellerdesk/backoffice/internal/domains/shipping/application"
	shippingports "github.com/sellerdesk/backoffice/internal/domains/shipping/ports"
	"github.com/sellerdesk/backoffice/internal/platform/migrations"
	platformobservability "github.com/sellerdesk/backoffice/internal/platform/observability"
	platformpostgres "github.com/sellerdesk/backoffice/internal/platform/postgres"
	platformredis "github.com/sellerdesk/backoffice/internal/platform/redis"
	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
	"github.com/sellerdesk/backoffice/internal/shared/ratelimit"
)

const serviceName = "sellerdesk-api"

// ProblemBaseURI prefixes the machine-readable problem type URIs.
const ProblemBaseURI = "https://sellerdesk.dev/problems"

// Run boots the HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
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

	db, cleanupDB := platformpostgres.MaybeConnect(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	redisClient, cleanupRedis := platformredis.MaybeConnect(ctx, cfg.RedisAddr, logger)
	defer cleanupRedis()

	deps := BuildDependencies(cfg, db, redisClient, logger)

	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, creating orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		deps.OrderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := NewRouter(cfg, deps, logger)
	addr := ":" + cfg.Port
	logger.Info("sellerdesk API listening", slog.String("addr", addr), slog.Bool("sharedSeller", cfg.UseSharedSeller))
	if err := router.Run(addr); err != nil {
		logger.Error("sellerdesk API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Dependencies bundles everything the router needs.
type Dependencies struct {
	Responder *sharederrors.Responder
	Identity  sellersports.Identity
	Tokens    *sellersapp.TokenIssuer
	Limiter   ratelimit.Limiter

	SellerService    *sellersapp.Service
	CatalogService   *catalogapp.Service
	OrderService     *ordersapp.Service
	OrderWorkflows   ordersports.WorkflowOrchestrator
	ShippingService  *shippingapp.Service
	DashboardService *dashboardapp.Service
}

// BuildDependencies wires repositories and services over the configured
// stores, falling back to in-memory adapters where a store is absent.
// The worker binary reuses it for its activity services.
func BuildDependencies(cfg Config, db *gorm.DB, redisClient *redis.Client, logger *slog.Logger) Dependencies {
	identity := buildIdentity(cfg)
	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set, issuing tokens with an ephemeral development secret")
		secret = fmt.Sprintf("dev-secret-%d", time.Now().UnixNano())
	}
	tokens := sellersapp.NewTokenIssuer(secret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)

	var (
		sellerRepo   sellersports.Repository
		productRepo  catalogports.Repository
		orderRepo    ordersports.Repository
		shippingRepo shippingports.Repository
	)
	if db != nil {
		sellerRepo = sellerspostgres.NewRepository(db)
		productRepo = catalogpostgres.NewRepository(db)
		orderRepo = orderspostgres.NewRepository(db)
		shippingRepo = shippingpostgres.NewRepository(db)
		logger.Info("repositories configured with postgres")
	} else {
		catalogMem := catalogmemory.NewRepository()
		sellerRepo = sellersmemory.NewRepository()
		productRepo = catalogMem
		orderRepo = ordersmemory.NewRepository(catalogMem)
		shippingRepo = shippingmemory.NewRepository()
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
	}

	var cache dashboardports.Cache
	var limiter ratelimit.Limiter
	limits := ratelimit.Limits{PerSecond: cfg.RateLimitPerSecond, PerMinute: cfg.RateLimitPerMinute}
	if redisClient != nil {
		cache = dashboardredis.NewCache(redisClient)
		limiter = ratelimit.NewRedisLimiter(redisClient, limits)
		logger.Info("dashboard cache and rate limiter configured with redis")
	} else {
		cache = dashboardmemory.NewCache()
		limiter = ratelimit.NewMemoryLimiter(limits)
		logger.Warn("REDIS_ADDR not set, falling back to in-process cache and rate limiter")
	}

	orderService := ordersapp.NewService(orderRepo, identity)
	return Dependencies{
		Responder:        sharederrors.NewResponder(ProblemBaseURI),
		Identity:         identity,
		Tokens:           tokens,
		Limiter:          limiter,
		SellerService:    sellersapp.NewService(sellerRepo),
		CatalogService:   catalogapp.NewService(productRepo, identity, catalogexcel.NewCodec()),
		OrderService:     orderService,
		OrderWorkflows:   ordersworkflows.NewInlineOrderWorkflows(orderService),
		ShippingService:  shippingapp.NewService(shippingRepo, identity),
		DashboardService: dashboardapp.NewService(productRepo, orderRepo, identity, cache, cfg.DashboardCacheTTL, logger),
	}
}

func buildIdentity(cfg Config) sellersports.Identity {
	if cfg.UseSharedSeller {
		return sellersapp.NewSharedSellerIdentity(cfg.SharedSellerID)
	}
	return sellersapp.NewTokenIdentity()
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
	return slog.Default()
}
