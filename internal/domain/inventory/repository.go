package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LocationRepository stores locations. FindAll returns creation order.
type LocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)
	FindAll(ctx context.Context) ([]Location, error)
	// NextSequence returns the creation sequence for a new location
	NextSequence(ctx context.Context) (int64, error)
	Save(ctx context.Context, location *Location) error
}

// InventoryItemRepository stores the materialized ledger state
type InventoryItemRepository interface {
	// FindByKey returns shared.ErrNotFound when the key has no entry
	FindByKey(ctx context.Context, key StockKey) (*InventoryItem, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryItem, error)
	FindByLocation(ctx context.Context, locationID uuid.UUID) ([]InventoryItem, error)
	Save(ctx context.Context, item *InventoryItem) error
}

// MovementRepository is the append-only movement log
type MovementRepository interface {
	Append(ctx context.Context, movements ...*Movement) error
	// FindByKey returns the movements of a key in sequence order
	FindByKey(ctx context.Context, key StockKey) ([]Movement, error)
	// FindByKeySince returns movements of a key created at or after since
	FindByKeySince(ctx context.Context, key StockKey, since time.Time) ([]Movement, error)
}

// StockAlertRepository stores alerts
type StockAlertRepository interface {
	// FindActiveByKey returns the active alerts of one key
	FindActiveByKey(ctx context.Context, key StockKey) ([]StockAlert, error)
	// FindActive returns active alerts, optionally limited to one location
	FindActive(ctx context.Context, locationID *uuid.UUID) ([]StockAlert, error)
	Save(ctx context.Context, alert *StockAlert) error
}
