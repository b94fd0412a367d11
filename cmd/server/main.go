package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/storefront/inventory/docs"
	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/infrastructure/cache"
	"github.com/storefront/inventory/internal/infrastructure/config"
	"github.com/storefront/inventory/internal/infrastructure/event"
	"github.com/storefront/inventory/internal/infrastructure/logger"
	"github.com/storefront/inventory/internal/infrastructure/migration"
	"github.com/storefront/inventory/internal/infrastructure/persistence"
	"github.com/storefront/inventory/internal/infrastructure/persistence/memory"
	"github.com/storefront/inventory/internal/infrastructure/scheduler"
	"github.com/storefront/inventory/internal/infrastructure/telemetry"
	"github.com/storefront/inventory/internal/interfaces/http/handler"
	"github.com/storefront/inventory/internal/interfaces/http/router"
	"github.com/storefront/inventory/migrations"
)

//	@title			Inventory API
//	@version		1.0
//	@description	Multi-location inventory ledger, reservations, allocation, alerts and forecasts

//	@BasePath	/api/v1

const locationCacheKey = "inventory:locations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = tel.Logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting inventory service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("addr", cfg.HTTP.Addr()),
		zap.String("store", cfg.Inventory.Store),
	)

	healthChecks := map[string]handler.HealthCheck{}
	var closers []func(context.Context) error

	repos, scope, closeStore := openStore(cfg, tel, log, healthChecks)
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	locationCache, closeCache := openLocationCache(ctx, cfg, log, healthChecks)
	if closeCache != nil {
		closers = append(closers, closeCache)
	}

	bus := event.NewInMemoryEventBus(log.Named("events"))
	alertLog := event.NewAlertLogHandler(log.Named("alerts"))
	bus.Subscribe(alertLog, alertLog.EventTypes()...)
	inventoryMetrics, err := telemetry.NewInventoryMetrics(tel.Meter.Meter("inventory"))
	if err != nil {
		log.Fatal("Failed to create inventory metrics", zap.Error(err))
	}
	bus.Subscribe(inventoryMetrics, inventoryMetrics.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	closers = append(closers, bus.Stop)

	svc := appinventory.NewService(repos, scope, appinventory.Options{
		LocationCache:       locationCache,
		ForecastWindowWeeks: cfg.Inventory.ForecastHistoryWeeks,
		ReorderLeadTime:     cfg.Inventory.ReorderLeadTime,
		EventPublisher:      bus,
	}, log)
	svc.Alerts.OnFailure(inventoryMetrics.AlertEvaluationFailed)

	if cfg.Inventory.ReorderJobEnabled {
		trigger, err := scheduler.NewReorderTrigger(scheduler.ReorderTriggerConfig{
			Interval:   cfg.Inventory.ReorderInterval,
			RunOnStart: true,
		}, svc.Forecasts, log)
		if err != nil {
			log.Fatal("Failed to create reorder trigger", zap.Error(err))
		}
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start reorder trigger", zap.Error(err))
		}
		closers = append(closers, trigger.Stop)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(ctx, router.EngineDeps{
		Config:       cfg.HTTP,
		ServiceName:  cfg.Telemetry.ServiceName,
		Tracing:      cfg.Telemetry.Enabled,
		Meter:        tel.Meter.Meter("inventory.http"),
		Service:      svc,
		HealthChecks: healthChecks,
		Logger:       log,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](shutdownCtx); err != nil {
			log.Warn("Shutdown step failed", zap.Error(err))
		}
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openStore returns the repositories and stock scope for the configured
// backend. The database backend also registers a health check and returns a
// closer.
func openStore(
	cfg *config.Config,
	tel *telemetry.Telemetry,
	log *zap.Logger,
	checks map[string]handler.HealthCheck,
) (appinventory.Repositories, appinventory.StockScope, func(context.Context) error) {
	if cfg.Inventory.Store != config.StoreDatabase {
		store := memory.NewStore()
		log.Info("Using in-memory inventory store")
		return appinventory.Repositories{
			Locations: store.Locations(),
			Items:     store.Items(),
			Movements: store.Movements(),
			Alerts:    store.Alerts(),
		}, store.Scope(), nil
	}

	dbMetrics, err := telemetry.NewDBMetricsPlugin(tel.Meter.Meter("inventory.db"), log)
	if err != nil {
		log.Fatal("Failed to create database metrics", zap.Error(err))
	}
	plugins := []gorm.Plugin{dbMetrics}
	if cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if cfg.Database.Driver == config.DriverSQLite {
			dbSystem = "sqlite"
		}
		plugins = append(plugins, telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			DBSystem:       dbSystem,
			SlowThreshold:  cfg.Database.SlowThreshold,
			LogFullSQL:     cfg.Database.LogFullSQL,
			TracerProvider: otel.GetTracerProvider(),
		}, log))
	}

	db, err := persistence.NewDatabase(cfg.Database, log, plugins...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	if err := migrate(db, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	checks["database"] = db.Ping
	repos := appinventory.Repositories{
		Locations: persistence.NewGormLocationRepository(db.DB),
		Items:     persistence.NewGormInventoryItemRepository(db.DB),
		Movements: persistence.NewGormMovementRepository(db.DB),
		Alerts:    persistence.NewGormStockAlertRepository(db.DB),
	}
	closeDB := func(context.Context) error {
		if err := dbMetrics.Close(); err != nil {
			log.Warn("Failed to unregister database metrics", zap.Error(err))
		}
		return db.Close()
	}
	return repos, persistence.NewGormStockScope(db), closeDB
}

// migrate runs the embedded SQL migrations on postgres. SQLite has no
// golang-migrate driver wired here, so its schema comes from the models.
func migrate(db *persistence.Database, log *zap.Logger) error {
	if !db.IsPostgres() {
		return db.AutoMigrate()
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log.Named("migrate"))
	if err != nil {
		return err
	}
	return m.Up()
}

func openLocationCache(
	ctx context.Context,
	cfg *config.Config,
	log *zap.Logger,
	checks map[string]handler.HealthCheck,
) (appinventory.LocationCache, func(context.Context) error) {
	if cfg.Inventory.LocationCache != config.CacheRedis {
		return cache.NewInMemoryLocationCache(cfg.Inventory.LocationCacheTTL), nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis location cache enabled", zap.String("addr", cfg.Redis.Addr))
	checks["redis"] = func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
	return cache.NewRedisLocationCache(client, locationCacheKey, cfg.Inventory.LocationCacheTTL),
		func(context.Context) error { return client.Close() }
}
