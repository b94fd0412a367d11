package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"

	"github.com/storefront/inventory/internal/infrastructure/config"
)

// newSQLiteDatabase opens a migrated sqlite database in a temp dir
func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "inventory.db"),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newMockDatabase creates a postgres Database backed by sqlmock
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := Open(dialector, config.DriverPostgres, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return db, mock, mockDB
}
