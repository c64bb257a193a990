package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/messaging/kafka"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		Level:             logger.ParseLevel(cfg.Telemetry.LogsLevel),
	})
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log)

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithZapLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:           cfg.Database.DBName,
		IncludeVariables: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if err := migrateSchema(ctx, db, log); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}
	log.Info("Database ready", zap.String("driver", db.Driver()))

	idemStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer closeQuietly(idemStore, log)

	var publisher checkout.MessagePublisher
	if cfg.Kafka.Enabled {
		kp := kafka.NewPublisher(cfg.Kafka, log)
		defer closeQuietly(kp, log)
		publisher = kp
	} else {
		publisher = kafka.NewLogPublisher(log)
	}

	bus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	orderPlaced := event.NewIdempotentHandler(
		checkout.NewOrderPlacedHandler(publisher, cfg.Kafka.OrderPlacedTopic, log),
		idemStore, 24*time.Hour, log,
	)
	bus.Subscribe(orderPlaced, orderPlaced.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var meter metric.Meter
	if cfg.Telemetry.MetricsEnabled {
		meter = mp.Meter("storefront")
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	checkoutOpts := []checkout.Option{
		checkout.WithEventPublisher(bus),
		checkout.WithTotalTolerance(cfg.Checkout.TotalTolerance),
		checkout.WithLogger(log),
	}
	if cfg.Checkout.IdempotencyEnabled {
		checkoutOpts = append(checkoutOpts, checkout.WithIdempotencyStore(idemStore, cfg.Checkout.IdempotencyTTL))
	}
	checkoutService := checkout.NewService(productRepo, persistence.NewGormTransactionScope(db.DB), checkoutOpts...)
	if meter != nil {
		m, err := telemetry.NewCheckoutMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create checkout metrics", zap.Error(err))
		}
		checkoutService.SetCheckoutMetrics(m)
	}
	orderQueries := checkout.NewOrderQueryService(orderRepo, log)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var limiter *middleware.RateLimiter
	if cfg.HTTP.CheckoutRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.CheckoutRateLimit, cfg.HTTP.CheckoutRateWindow)
		defer limiter.Stop()
		log.Info("Checkout rate limiting enabled",
			zap.Int("requests", cfg.HTTP.CheckoutRateLimit),
			zap.Duration("window", cfg.HTTP.CheckoutRateWindow),
		)
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:            cfg.HTTP,
		ServiceName:     cfg.Telemetry.ServiceName,
		Tracing:         tp.IsEnabled(),
		Meter:           meter,
		Validator:       auth.NewJWTService(cfg.JWT),
		CheckoutLimiter: limiter,
		Logger:          log,
	}, router.Handlers{
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Orders:   handler.NewOrderHandler(orderQueries),
		Health:   handler.NewHealthHandler(db, version),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	// Drain in-flight OrderPlaced deliveries before closing the publisher
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tp.Shutdown,
		"meter":  mp.Shutdown,
		"logger": lp.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully", zap.Any("order_placed_deliveries", orderPlaced.Stats()))
}

// migrateSchema applies the SQL migrations on postgres. The sqlite driver is
// for local single-node runs and uses gorm's auto-migration instead.
func migrateSchema(ctx context.Context, db *persistence.Database, log *zap.Logger) error {
	if db.Driver() != "postgres" {
		return db.AutoMigrate(ctx)
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool; the driver instance is
	// released with the database at shutdown.
	return m.Up()
}

type closer interface {
	Close() error
}

func closeQuietly(c closer, log *zap.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("Close failed", zap.Error(err))
	}
}
