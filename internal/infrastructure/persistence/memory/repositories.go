package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
)

var (
	_ inventory.LocationRepository      = (*LocationRepository)(nil)
	_ inventory.InventoryItemRepository = (*ItemRepository)(nil)
	_ inventory.MovementRepository      = (*MovementRepository)(nil)
	_ inventory.StockAlertRepository    = (*AlertRepository)(nil)
)

// LocationRepository implements inventory.LocationRepository
type LocationRepository struct {
	store *Store
}

// FindByID returns a location or shared.ErrNotFound
func (r *LocationRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.Location, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	loc, ok := r.store.locations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &loc, nil
}

// FindAll returns all locations in creation order
func (r *LocationRepository) FindAll(_ context.Context) ([]inventory.Location, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]inventory.Location, 0, len(r.store.locations))
	for _, loc := range r.store.locations {
		out = append(out, loc)
	}
	sortLocations(out)
	return out, nil
}

// NextSequence returns one past the highest sequence in use
func (r *LocationRepository) NextSequence(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var maxSeq int64
	for _, loc := range r.store.locations {
		maxSeq = max(maxSeq, loc.Sequence)
	}
	return maxSeq + 1, nil
}

// Save inserts or replaces a location
func (r *LocationRepository) Save(_ context.Context, location *inventory.Location) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.locations[location.ID] = *location
	return nil
}

// ItemRepository reads and writes committed items. Writes outside a unit of
// work bypass key serialization and are meant for seeding.
type ItemRepository struct {
	store *Store
}

// FindByKey returns an item or shared.ErrNotFound
func (r *ItemRepository) FindByKey(_ context.Context, key inventory.StockKey) (*inventory.InventoryItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.items[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

// FindByProduct returns the items of a product
func (r *ItemRepository) FindByProduct(_ context.Context, productID uuid.UUID) ([]inventory.InventoryItem, error) {
	return r.filter(func(item *inventory.InventoryItem) bool { return item.ProductID == productID }), nil
}

// FindByLocation returns the items at a location
func (r *ItemRepository) FindByLocation(_ context.Context, locationID uuid.UUID) ([]inventory.InventoryItem, error) {
	return r.filter(func(item *inventory.InventoryItem) bool { return item.LocationID == locationID }), nil
}

// Save stores an item
func (r *ItemRepository) Save(_ context.Context, item *inventory.InventoryItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.items[item.Key()] = storedItem(item)
	return nil
}

func (r *ItemRepository) filter(match func(*inventory.InventoryItem) bool) []inventory.InventoryItem {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]inventory.InventoryItem, 0)
	for _, item := range r.store.items {
		if match(&item) {
			out = append(out, item)
		}
	}
	sortItems(out)
	return out
}

// MovementRepository reads and appends committed movements
type MovementRepository struct {
	store *Store
}

// Append adds movements to the log
func (r *MovementRepository) Append(_ context.Context, movements ...*inventory.Movement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, m := range movements {
		r.store.movements[m.Key()] = append(r.store.movements[m.Key()], *m)
	}
	return nil
}

// FindByKey returns the movements of a key in sequence order
func (r *MovementRepository) FindByKey(_ context.Context, key inventory.StockKey) ([]inventory.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]inventory.Movement(nil), r.store.movements[key]...), nil
}

// FindByKeySince returns the movements of a key created at or after since
func (r *MovementRepository) FindByKeySince(_ context.Context, key inventory.StockKey, since time.Time) ([]inventory.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]inventory.Movement, 0)
	for _, m := range r.store.movements[key] {
		if !m.CreatedAt.Before(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

// AlertRepository reads and writes committed alerts
type AlertRepository struct {
	store *Store
}

// FindActiveByKey returns the active alerts of a key
func (r *AlertRepository) FindActiveByKey(_ context.Context, key inventory.StockKey) ([]inventory.StockAlert, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return activeAlerts(r.store.alerts, func(a *inventory.StockAlert) bool { return a.Key() == key }), nil
}

// FindActive returns active alerts, optionally for one location
func (r *AlertRepository) FindActive(_ context.Context, locationID *uuid.UUID) ([]inventory.StockAlert, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return activeAlerts(r.store.alerts, func(a *inventory.StockAlert) bool {
		return locationID == nil || a.LocationID == *locationID
	}), nil
}

// Save inserts or replaces an alert
func (r *AlertRepository) Save(_ context.Context, alert *inventory.StockAlert) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.alerts[alert.ID] = *alert
	return nil
}

func activeAlerts(alerts map[uuid.UUID]inventory.StockAlert, match func(*inventory.StockAlert) bool) []inventory.StockAlert {
	out := make([]inventory.StockAlert, 0)
	for _, a := range alerts {
		if a.Active && match(&a) {
			out = append(out, a)
		}
	}
	sortAlerts(out)
	return out
}
