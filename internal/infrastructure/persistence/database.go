package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront/inventory/internal/infrastructure/config"
	"github.com/storefront/inventory/internal/infrastructure/logger"
	"github.com/storefront/inventory/internal/infrastructure/persistence/models"
)

// Database holds the GORM handle and the driver it was opened with
type Database struct {
	DB     *gorm.DB
	Driver string
}

// NewDatabase opens the configured database, applies pool settings and
// registers plugins (tracing). SQLite runs with a single connection since it
// allows one writer at a time.
func NewDatabase(cfg config.DatabaseConfig, log *zap.Logger, plugins ...gorm.Plugin) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath + "?_busy_timeout=5000&_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormLogger := logger.NewGormLogger(log, logger.GormLevel("warn"), cfg.SlowThreshold, cfg.LogFullSQL)
	db, err := Open(dialector, cfg.Driver, gormLogger, plugins...)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Open wraps an existing dialector. Tests use it with sqlite :memory: and
// sqlmock connections.
func Open(dialector gorm.Dialector, driver string, gormLogger *logger.GormLogger, plugins ...gorm.Plugin) (*Database, error) {
	gormCfg := &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
	if gormLogger != nil {
		gormCfg.Logger = gormLogger
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			return nil, fmt.Errorf("failed to register gorm plugin %s: %w", p.Name(), err)
		}
	}
	return &Database{DB: db, Driver: driver}, nil
}

// IsPostgres reports whether row and advisory locks are available
func (d *Database) IsPostgres() bool {
	return d.Driver == config.DriverPostgres
}

// AutoMigrate creates the schema from the models. Postgres deployments use
// the SQL migrations instead.
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// Stats returns connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	s := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration,
	}, nil
}
