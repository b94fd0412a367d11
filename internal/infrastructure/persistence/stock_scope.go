package persistence

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"gorm.io/gorm"

	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
)

// GormStockScope implements appinventory.StockScope with a database
// transaction per unit of work. On postgres every key is serialized with a
// transaction-scoped advisory lock, which also covers keys whose item row
// does not exist yet, and item reads take FOR UPDATE row locks. SQLite
// serializes writers on its own.
type GormStockScope struct {
	db        *gorm.DB
	advisory  bool
	forUpdate bool
}

// NewGormStockScope creates a scope over database
func NewGormStockScope(database *Database) *GormStockScope {
	pg := database.IsPostgres()
	return &GormStockScope{db: database.DB, advisory: pg, forUpdate: pg}
}

// Execute runs fn in a transaction holding every key's lock
func (s *GormStockScope) Execute(ctx context.Context, keys []inventory.StockKey, fn func(repos appinventory.StockRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ordered := inventory.SortedKeys(keys...)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.advisory {
			for _, key := range ordered {
				if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", AdvisoryLockID(key)).Error; err != nil {
					return fmt.Errorf("failed to lock stock key %s: %w", key, err)
				}
			}
		}
		return fn(&gormUnitOfWork{tx: tx, forUpdate: s.forUpdate})
	})
}

// AdvisoryLockID maps a stock key to a 64-bit advisory lock id
func AdvisoryLockID(key inventory.StockKey) int64 {
	h := fnv.New64a()
	_, _ = h.Write(key.ProductID[:])
	_, _ = h.Write(key.LocationID[:])
	return int64(binary.BigEndian.Uint64(h.Sum(nil)))
}

type gormUnitOfWork struct {
	tx        *gorm.DB
	forUpdate bool
}

func (u *gormUnitOfWork) ItemRepo() inventory.InventoryItemRepository {
	return &GormInventoryItemRepository{db: u.tx, forUpdate: u.forUpdate}
}

func (u *gormUnitOfWork) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(u.tx)
}

func (u *gormUnitOfWork) AlertRepo() inventory.StockAlertRepository {
	return NewGormStockAlertRepository(u.tx)
}

// Nested runs fn inside a savepoint
func (u *gormUnitOfWork) Nested(ctx context.Context, fn func(repos appinventory.StockRepositories) error) error {
	return u.tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormUnitOfWork{tx: tx, forUpdate: u.forUpdate})
	})
}

var (
	_ appinventory.StockScope        = (*GormStockScope)(nil)
	_ appinventory.StockRepositories = (*gormUnitOfWork)(nil)
)
