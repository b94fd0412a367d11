// Package integration runs the inventory service against real PostgreSQL and
// Redis instances started with testcontainers.
package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefront/inventory/internal/infrastructure/config"
	"github.com/storefront/inventory/internal/infrastructure/logger"
	"github.com/storefront/inventory/internal/infrastructure/migration"
	"github.com/storefront/inventory/internal/infrastructure/persistence"
	"github.com/storefront/inventory/migrations"
)

// NewTestDB starts a PostgreSQL container and applies the embedded
// migrations. The container is terminated when the test ends.
func NewTestDB(t *testing.T) *persistence.Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("inventory_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	log := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	database, err := persistence.Open(
		gormpostgres.Open(dsn),
		config.DriverPostgres,
		logger.NewGormLogger(log, level, 200*time.Millisecond, false),
	)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)

	migrator, err := migration.New(sqlDB, migrations.FS, log)
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, migrator.Up(), "Failed to run migrations")

	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestRedis starts a Redis container and returns its address
func NewTestRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}
