package inventory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	svc   *appinventory.Service
}

func newFixture(t *testing.T, opts appinventory.Options) *fixture {
	t.Helper()
	store := memory.NewStore()
	return newFixtureWith(t, store, repositoriesOf(store), store.Scope(), opts)
}

func newFixtureWith(t *testing.T, store *memory.Store, repos appinventory.Repositories, scope appinventory.StockScope, opts appinventory.Options) *fixture {
	t.Helper()
	svc := appinventory.NewService(repos, scope, opts, zaptest.NewLogger(t))
	return &fixture{t: t, ctx: context.Background(), store: store, svc: svc}
}

func repositoriesOf(store *memory.Store) appinventory.Repositories {
	return appinventory.Repositories{
		Locations: store.Locations(),
		Items:     store.Items(),
		Movements: store.Movements(),
		Alerts:    store.Alerts(),
	}
}

func (f *fixture) addLocation(name string, priority int) uuid.UUID {
	f.t.Helper()
	loc, err := f.svc.Locations.AddLocation(f.ctx, inventory.LocationSpec{
		Name:     name,
		Type:     inventory.LocationTypeWarehouse,
		Priority: priority,
	})
	require.NoError(f.t, err)
	return loc.ID
}

func (f *fixture) receive(productID, locationID uuid.UUID, quantity int64) {
	f.t.Helper()
	_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
		ProductID:  productID,
		LocationID: locationID,
		Type:       inventory.MovementTypePurchase,
		Quantity:   quantity,
		Reference:  "PO-TEST",
	})
	require.NoError(f.t, err)
}

func (f *fixture) item(productID, locationID uuid.UUID) *inventory.InventoryItem {
	f.t.Helper()
	item, err := f.svc.Ledger.GetItem(f.ctx, productID, locationID)
	require.NoError(f.t, err)
	require.NotNil(f.t, item)
	return item
}

func (f *fixture) assertConsistent(productID, locationID uuid.UUID) {
	f.t.Helper()
	item := f.item(productID, locationID)
	require.GreaterOrEqual(f.t, item.Reserved, int64(0))
	require.GreaterOrEqual(f.t, item.Available(), int64(0))
	require.Equal(f.t, item.OnHand-item.Reserved, item.Available())

	rec, err := f.svc.Ledger.Reconcile(f.ctx, productID, locationID)
	require.NoError(f.t, err)
	require.True(f.t, rec.Consistent, rec.Problem)

	outstanding, err := f.svc.Reservations.OutstandingReserved(f.ctx, productID, locationID)
	require.NoError(f.t, err)
	require.Equal(f.t, item.Reserved, outstanding)
}

func ptr[T any](v T) *T {
	return &v
}

// failingScope wraps a scope and swaps the alert repository for one that
// fails, or makes item saves for one key fail.
type failingScope struct {
	inner        appinventory.StockScope
	failAlerts   bool
	failSaveFor  *inventory.StockKey
	failingError error
}

func (s *failingScope) Execute(ctx context.Context, keys []inventory.StockKey, fn func(appinventory.StockRepositories) error) error {
	return s.inner.Execute(ctx, keys, func(repos appinventory.StockRepositories) error {
		return fn(&failingRepos{StockRepositories: repos, scope: s})
	})
}

type failingRepos struct {
	appinventory.StockRepositories
	scope *failingScope
}

func (r *failingRepos) ItemRepo() inventory.InventoryItemRepository {
	return &failingItems{InventoryItemRepository: r.StockRepositories.ItemRepo(), scope: r.scope}
}

func (r *failingRepos) AlertRepo() inventory.StockAlertRepository {
	if r.scope.failAlerts {
		return &failingAlerts{err: r.scope.failingError}
	}
	return r.StockRepositories.AlertRepo()
}

func (r *failingRepos) Nested(ctx context.Context, fn func(appinventory.StockRepositories) error) error {
	return r.StockRepositories.Nested(ctx, func(nested appinventory.StockRepositories) error {
		return fn(&failingRepos{StockRepositories: nested, scope: r.scope})
	})
}

type failingItems struct {
	inventory.InventoryItemRepository
	scope *failingScope
}

func (r *failingItems) Save(ctx context.Context, item *inventory.InventoryItem) error {
	if r.scope.failSaveFor != nil && *r.scope.failSaveFor == item.Key() {
		return r.scope.failingError
	}
	return r.InventoryItemRepository.Save(ctx, item)
}

type failingAlerts struct {
	err error
}

func (r *failingAlerts) FindActiveByKey(context.Context, inventory.StockKey) ([]inventory.StockAlert, error) {
	return nil, r.err
}

func (r *failingAlerts) FindActive(context.Context, *uuid.UUID) ([]inventory.StockAlert, error) {
	return nil, r.err
}

func (r *failingAlerts) Save(context.Context, *inventory.StockAlert) error {
	return r.err
}
