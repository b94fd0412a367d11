package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/infrastructure/config"
	"github.com/storefront/inventory/internal/infrastructure/logger"
	"github.com/storefront/inventory/internal/interfaces/http/handler"
	"github.com/storefront/inventory/internal/interfaces/http/middleware"
)

// EngineDeps are the collaborators of the HTTP engine
type EngineDeps struct {
	Config       config.HTTPConfig
	ServiceName  string
	Tracing      bool
	Meter        metric.Meter
	Service      *appinventory.Service
	HealthChecks map[string]handler.HealthCheck
	Logger       *zap.Logger
}

// NewEngine builds the gin engine with the middleware chain, the health and
// swagger endpoints and the versioned API. ctx bounds background work such as
// rate limiter eviction.
func NewEngine(ctx context.Context, deps EngineDeps) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.Config.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
			return nil, err
		}
	}

	engine.Use(
		logger.Recovery(deps.Logger),
		middleware.Tracing(middleware.TracingConfig{ServiceName: deps.ServiceName, Enabled: deps.Tracing}),
		middleware.RequestID(deps.Logger),
		middleware.Actor(),
		middleware.TraceAttributes(),
		logger.GinMiddleware(deps.Logger),
		middleware.HTTPMetrics(deps.Meter),
		middleware.Secure(),
		middleware.BodyLimit(deps.Config.MaxBodySize),
	)
	if deps.Config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(deps.Config.RateLimit, deps.Config.RateWindow)
		go limiter.Run(ctx)
		engine.Use(middleware.RateLimit(limiter))
		deps.Logger.Info("Rate limiting enabled",
			zap.Int("requests", deps.Config.RateLimit),
			zap.Duration("window", deps.Config.RateWindow))
	}

	engine.GET("/health", handler.NewHealthHandler(deps.HealthChecks, 2*time.Second).Health)
	if deps.Config.SwaggerEnabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	NewRouter(engine).
		Register(LocationRoutes(handler.NewLocationHandler(deps.Service.Locations))).
		Register(InventoryRoutes(handler.NewInventoryHandler(deps.Service))).
		Setup()

	return engine, nil
}
