package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	cataloghttp "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/http"
	dashboardhttp "github.com/sellerdesk/backoffice/internal/domains/dashboard/adapters/http"
	ordershttp "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/http"
	sellershttp "github.com/sellerdesk/backoffice/internal/domains/sellers/adapters/http"
	shippinghttp "github.com/sellerdesk/backoffice/internal/domains/shipping/adapters/http"
	"github.com/sellerdesk/backoffice/internal/shared/ratelimit"
)

// NewRouter assembles the gin engine: tracing and throttling middleware,
// the auth surface, and one route group per bounded context. With shared
// seller mode on, bearer auth is skipped entirely.
func NewRouter(cfg Config, deps Dependencies, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sellers := sellershttp.NewHandler(deps.SellerService, deps.Tokens, deps.Responder)
	catalog := cataloghttp.NewHandler(deps.CatalogService, deps.Responder)
	orders := ordershttp.NewHandler(deps.OrderService, deps.OrderWorkflows, deps.Identity, deps.Responder)
	shipping := shippinghttp.NewHandler(deps.ShippingService, deps.Responder)
	dashboard := dashboardhttp.NewHandler(deps.DashboardService, deps.Responder)

	api := router.Group("/api")
	api.Use(ratelimit.Middleware(deps.Limiter, deps.Responder, logger))

	auth := api.Group("/auth")
	{
		auth.POST("/register", sellers.Register)
		auth.POST("/verify-token", sellers.VerifyToken)
	}

	protected := api.Group("")
	if !cfg.UseSharedSeller {
		protected.Use(sellershttp.RequireAuth(deps.Tokens, deps.Responder))
	}

	products := protected.Group("/products")
	{
		products.GET("", catalog.ListProducts)
		products.GET("/export", catalog.ExportProducts)
		products.GET("/template", catalog.Template)
		products.GET("/:id", catalog.GetProduct)
		products.POST("", catalog.CreateProduct)
		products.POST("/import", catalog.ImportProducts)
		products.PUT("/:id", catalog.UpdateProduct)
		products.DELETE("/:id", catalog.DeleteProduct)
	}

	orderRoutes := protected.Group("/orders")
	{
		orderRoutes.GET("", orders.ListOrders)
		orderRoutes.GET("/:id", orders.GetOrder)
		orderRoutes.POST("", orders.CreateOrder)
		orderRoutes.PUT("/:id/status", orders.UpdateStatus)
	}

	shippingRoutes := protected.Group("/shipping")
	{
		shippingRoutes.GET("", shipping.ListShipping)
		shippingRoutes.GET("/tracking/:trackingNumber", shipping.GetByTrackingNumber)
		shippingRoutes.GET("/order/:orderId", shipping.GetByOrderID)
		shippingRoutes.GET("/:id", shipping.GetShipping)
		shippingRoutes.POST("", shipping.CreateShipping)
		shippingRoutes.POST("/:id/events", shipping.AddEvent)
		shippingRoutes.DELETE("/:id", shipping.DeleteShipping)
	}

	protected.GET("/dashboard", dashboard.Stats)

	return router
}
