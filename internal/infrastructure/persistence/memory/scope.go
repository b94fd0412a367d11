package memory

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
)

var (
	_ appinventory.StockScope        = (*StockScope)(nil)
	_ appinventory.StockRepositories = (*unitOfWork)(nil)
)

// StockScope implements appinventory.StockScope with a mutex per stock key
type StockScope struct {
	store *Store
}

// Execute locks keys in order, runs fn against a buffered unit of work and
// commits the buffer when fn succeeds.
func (s *StockScope) Execute(ctx context.Context, keys []inventory.StockKey, fn func(repos appinventory.StockRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ordered := inventory.SortedKeys(keys...)
	for _, key := range ordered {
		s.store.locks.lock(key)
	}
	defer func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			s.store.locks.unlock(ordered[i])
		}
	}()

	uow := newUnitOfWork(s.store)
	if err := fn(uow); err != nil {
		return err
	}
	uow.commit()
	return nil
}

// unitOfWork buffers writes over the committed store. Reads see the buffer
// first.
type unitOfWork struct {
	store     *Store
	items     map[inventory.StockKey]inventory.InventoryItem
	movements []inventory.Movement
	alerts    map[uuid.UUID]inventory.StockAlert
}

func newUnitOfWork(store *Store) *unitOfWork {
	return &unitOfWork{
		store:  store,
		items:  make(map[inventory.StockKey]inventory.InventoryItem),
		alerts: make(map[uuid.UUID]inventory.StockAlert),
	}
}

func (u *unitOfWork) ItemRepo() inventory.InventoryItemRepository {
	return (*uowItems)(u)
}

func (u *unitOfWork) MovementRepo() inventory.MovementRepository {
	return (*uowMovements)(u)
}

func (u *unitOfWork) AlertRepo() inventory.StockAlertRepository {
	return (*uowAlerts)(u)
}

// Nested snapshots the buffer and restores it when fn fails
func (u *unitOfWork) Nested(_ context.Context, fn func(repos appinventory.StockRepositories) error) error {
	items := maps.Clone(u.items)
	alerts := maps.Clone(u.alerts)
	movements := len(u.movements)

	if err := fn(u); err != nil {
		u.items = items
		u.alerts = alerts
		u.movements = u.movements[:movements]
		return err
	}
	return nil
}

func (u *unitOfWork) commit() {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	for key, item := range u.items {
		u.store.items[key] = item
	}
	for _, m := range u.movements {
		u.store.movements[m.Key()] = append(u.store.movements[m.Key()], m)
	}
	for id, alert := range u.alerts {
		u.store.alerts[id] = alert
	}
}

type uowItems unitOfWork

func (r *uowItems) FindByKey(ctx context.Context, key inventory.StockKey) (*inventory.InventoryItem, error) {
	if item, ok := r.items[key]; ok {
		return &item, nil
	}
	return r.store.Items().FindByKey(ctx, key)
}

func (r *uowItems) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.InventoryItem, error) {
	committed, err := r.store.Items().FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return r.overlay(committed, func(item *inventory.InventoryItem) bool { return item.ProductID == productID }), nil
}

func (r *uowItems) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]inventory.InventoryItem, error) {
	committed, err := r.store.Items().FindByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return r.overlay(committed, func(item *inventory.InventoryItem) bool { return item.LocationID == locationID }), nil
}

func (r *uowItems) Save(_ context.Context, item *inventory.InventoryItem) error {
	r.items[item.Key()] = storedItem(item)
	return nil
}

func (r *uowItems) overlay(committed []inventory.InventoryItem, match func(*inventory.InventoryItem) bool) []inventory.InventoryItem {
	byKey := make(map[inventory.StockKey]inventory.InventoryItem, len(committed))
	for _, item := range committed {
		byKey[item.Key()] = item
	}
	for key, item := range r.items {
		if match(&item) {
			byKey[key] = item
		}
	}
	out := make([]inventory.InventoryItem, 0, len(byKey))
	for _, item := range byKey {
		out = append(out, item)
	}
	sortItems(out)
	return out
}

type uowMovements unitOfWork

func (r *uowMovements) Append(_ context.Context, movements ...*inventory.Movement) error {
	for _, m := range movements {
		r.movements = append(r.movements, *m)
	}
	return nil
}

func (r *uowMovements) FindByKey(ctx context.Context, key inventory.StockKey) ([]inventory.Movement, error) {
	return r.FindByKeySince(ctx, key, time.Time{})
}

func (r *uowMovements) FindByKeySince(ctx context.Context, key inventory.StockKey, since time.Time) ([]inventory.Movement, error) {
	out, err := r.store.Movements().FindByKeySince(ctx, key, since)
	if err != nil {
		return nil, err
	}
	for _, m := range r.movements {
		if m.Key() == key && !m.CreatedAt.Before(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

type uowAlerts unitOfWork

func (r *uowAlerts) FindActiveByKey(ctx context.Context, key inventory.StockKey) ([]inventory.StockAlert, error) {
	return r.active(func(a *inventory.StockAlert) bool { return a.Key() == key }), nil
}

func (r *uowAlerts) FindActive(_ context.Context, locationID *uuid.UUID) ([]inventory.StockAlert, error) {
	return r.active(func(a *inventory.StockAlert) bool {
		return locationID == nil || a.LocationID == *locationID
	}), nil
}

func (r *uowAlerts) Save(_ context.Context, alert *inventory.StockAlert) error {
	if alert.ID == uuid.Nil {
		return shared.ErrInvalidInput
	}
	r.alerts[alert.ID] = *alert
	return nil
}

// active filters committed alerts under the read lock, skipping any the
// buffer has rewritten, then adds matching buffered alerts.
func (r *uowAlerts) active(match func(*inventory.StockAlert) bool) []inventory.StockAlert {
	r.store.mu.RLock()
	out := make([]inventory.StockAlert, 0)
	for id, a := range r.store.alerts {
		if _, buffered := r.alerts[id]; buffered {
			continue
		}
		if a.Active && match(&a) {
			out = append(out, a)
		}
	}
	r.store.mu.RUnlock()

	for _, a := range r.alerts {
		if a.Active && match(&a) {
			out = append(out, a)
		}
	}
	sortAlerts(out)
	return out
}
