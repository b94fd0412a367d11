package inventory

import (
	"context"

	"github.com/storefront/inventory/internal/domain/inventory"
)

// StockScope serializes work on stock keys. Execute runs fn with exclusive
// access to every key in keys; all writes made through the repositories handed
// to fn commit together when fn returns nil and are discarded otherwise.
// Implementations lock keys in inventory.SortedKeys order.
type StockScope interface {
	Execute(ctx context.Context, keys []inventory.StockKey, fn func(repos StockRepositories) error) error
}

// StockRepositories gives access to the repositories bound to one unit of work.
type StockRepositories interface {
	ItemRepo() inventory.InventoryItemRepository
	MovementRepo() inventory.MovementRepository
	AlertRepo() inventory.StockAlertRepository
	// Nested runs fn as a nested unit of work. When fn fails its writes are
	// rolled back and the error is returned, while the enclosing unit stays
	// usable.
	Nested(ctx context.Context, fn func(repos StockRepositories) error) error
}
