package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the endpoints mounted by NewEngine
type Handlers struct {
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Health   *handler.HealthHandler
}

// EngineConfig carries the cross-cutting parts of the HTTP stack
type EngineConfig struct {
	HTTP        config.HTTPConfig
	ServiceName string
	Tracing     bool
	// Meter enables request metrics when set
	Meter     metric.Meter
	Validator middleware.TokenValidator
	// CheckoutLimiter throttles POST /checkout per buyer when set
	CheckoutLimiter *middleware.RateLimiter
	Logger          *zap.Logger
}

// NewEngine builds the gin engine with the full middleware stack and all routes.
//
// Middleware order: request id, recovery, tracing, access log, security
// headers, CORS, body limit, metrics, span error marking.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter))
	}
	engine.Use(middleware.SpanErrorMarker())

	engine.GET("/health", h.Health.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuthMiddleware(cfg.Validator, log),
		middleware.TracingAttributeInjector(),
	)

	checkoutRoutes := NewDomainGroup("/checkout")
	placeOrder := []gin.HandlerFunc{h.Checkout.PlaceOrder}
	if cfg.CheckoutLimiter != nil {
		placeOrder = append([]gin.HandlerFunc{
			middleware.RateLimitByKey(cfg.CheckoutLimiter, middleware.BuyerOrIPKey),
		}, placeOrder...)
	}
	checkoutRoutes.POST("", placeOrder...)

	productRoutes := NewDomainGroup("/products")
	productRoutes.GET("/:id/quote", h.Checkout.QuotePrice)

	orderRoutes := NewDomainGroup("/orders")
	orderRoutes.GET("", h.Orders.List)
	orderRoutes.GET("/:id", h.Orders.GetByID)

	r.Register(checkoutRoutes).Register(productRoutes).Register(orderRoutes)
	r.Setup()

	return engine
}
