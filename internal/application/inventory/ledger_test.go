package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_RecordMovement(t *testing.T) {
	t.Run("first purchase creates the item", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()

		item, err := f.svc.Ledger.GetItem(f.ctx, product, loc)
		require.NoError(t, err)
		assert.Nil(t, item)

		f.receive(product, loc, 10)
		item = f.item(product, loc)
		assert.Equal(t, int64(10), item.OnHand)
		assert.Equal(t, int64(1), item.GetVersion())
		f.assertConsistent(product, loc)
	})

	t.Run("sale to zero raises a critical out of stock alert", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 3)

		m, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: loc, Type: inventory.MovementTypeSale, Quantity: 3, Reference: "order-1",
		})
		require.NoError(t, err)
		assert.Zero(t, m.ResultingOnHand)

		alerts, err := f.svc.Alerts.ActiveAlerts(f.ctx, &loc)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, inventory.AlertTypeOutOfStock, alerts[0].Type)
		assert.Equal(t, inventory.SeverityCritical, alerts[0].Severity)
	})

	t.Run("overdrawing sale fails without effect", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 2)

		_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: loc, Type: inventory.MovementTypeSale, Quantity: 5,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))
		assert.Equal(t, int64(2), f.item(product, loc).OnHand)
		history, _ := f.svc.Ledger.History(f.ctx, product, loc)
		assert.Len(t, history, 1)
	})

	t.Run("sale at untracked key", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)

		_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: uuid.New(), LocationID: loc, Type: inventory.MovementTypeSale, Quantity: 1,
		})
		assert.True(t, errors.Is(err, inventory.ErrProductNotTracked))
	})

	t.Run("unknown location", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})

		_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: uuid.New(), LocationID: uuid.New(), Type: inventory.MovementTypePurchase, Quantity: 1,
		})
		assert.True(t, errors.Is(err, inventory.ErrLocationNotFound))
	})

	t.Run("adjustment needs a reason", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)

		_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: uuid.New(), LocationID: loc, Type: inventory.MovementTypeAdjustment, CountedQuantity: ptr(int64(4)),
		})
		assert.True(t, errors.Is(err, inventory.ErrValidation))
	})

	t.Run("alert failure does not block the mutation", func(t *testing.T) {
		store := memory.NewStore()
		boom := errors.New("alert store down")
		scope := &failingScope{inner: store.Scope(), failAlerts: true, failingError: boom}
		f := newFixtureWith(t, store, repositoriesOf(store), scope, appinventory.Options{})

		var reported error
		f.svc.Alerts.OnFailure(func(_ context.Context, _ inventory.StockKey, err error) { reported = err })

		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 1)

		_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: loc, Type: inventory.MovementTypeSale, Quantity: 1,
		})
		require.NoError(t, err)
		assert.Zero(t, f.item(product, loc).OnHand)
		assert.ErrorIs(t, reported, boom)

		alerts, _ := store.Alerts().FindActive(f.ctx, nil)
		assert.Empty(t, alerts)
	})
}

func TestLedger_Transfer(t *testing.T) {
	t.Run("moves stock as a pair", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		src := f.addLocation("Source", 1)
		dst := f.addLocation("Destination", 2)
		product := uuid.New()
		f.receive(product, src, 10)

		legs, err := f.svc.Ledger.Transfer(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: src, DestinationLocationID: dst, Quantity: 4, Reason: "rebalance",
		})
		require.NoError(t, err)
		require.Len(t, legs, 2)
		assert.Equal(t, int64(-4), legs[0].Delta)
		assert.Equal(t, int64(4), legs[1].Delta)
		assert.Equal(t, legs[0].CorrelationID, legs[1].CorrelationID)

		assert.Equal(t, int64(6), f.item(product, src).OnHand)
		assert.Equal(t, int64(4), f.item(product, dst).OnHand)
		f.assertConsistent(product, src)
		f.assertConsistent(product, dst)

		total, err := f.svc.Ledger.TotalAvailable(f.ctx, product)
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)
	})

	t.Run("record movement dispatches transfers", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		src := f.addLocation("Source", 1)
		dst := f.addLocation("Destination", 2)
		product := uuid.New()
		f.receive(product, src, 3)

		m, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: src, DestinationLocationID: dst, Type: inventory.MovementTypeTransfer, Quantity: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, src, m.LocationID)
		assert.Equal(t, int64(3), f.item(product, dst).OnHand)
	})

	t.Run("failed credit rolls back the debit", func(t *testing.T) {
		store := memory.NewStore()
		scope := &failingScope{inner: store.Scope(), failingError: errors.New("disk full")}
		f := newFixtureWith(t, store, repositoriesOf(store), scope, appinventory.Options{})
		src := f.addLocation("Source", 1)
		dst := f.addLocation("Destination", 2)
		product := uuid.New()
		f.receive(product, src, 10)

		scope.failSaveFor = ptr(inventory.NewStockKey(product, dst))
		_, err := f.svc.Ledger.Transfer(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: src, DestinationLocationID: dst, Quantity: 4,
		})
		require.Error(t, err)

		assert.Equal(t, int64(10), f.item(product, src).OnHand)
		missing, err := f.svc.Ledger.GetItem(f.ctx, product, dst)
		require.NoError(t, err)
		assert.Nil(t, missing)
		history, _ := f.svc.Ledger.History(f.ctx, product, src)
		assert.Len(t, history, 1)
	})

	t.Run("insufficient source stock", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		src := f.addLocation("Source", 1)
		dst := f.addLocation("Destination", 2)
		product := uuid.New()
		f.receive(product, src, 1)

		_, err := f.svc.Ledger.Transfer(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: src, DestinationLocationID: dst, Quantity: 2,
		})
		assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))
	})
}

func TestLedger_Queries(t *testing.T) {
	f := newFixture(t, appinventory.Options{})
	a := f.addLocation("A", 1)
	b := f.addLocation("B", 2)
	product := uuid.New()
	other := uuid.New()
	f.receive(product, a, 5)
	f.receive(product, b, 7)
	f.receive(other, a, 1)

	_, err := f.svc.Locations.SetActive(f.ctx, b, false)
	require.NoError(t, err)

	total, err := f.svc.Ledger.TotalAvailable(f.ctx, product)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total, "inactive locations still count")

	byProduct, err := f.svc.Ledger.ItemsForProduct(f.ctx, product)
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	byLocation, err := f.svc.Ledger.ItemsForLocation(f.ctx, a)
	require.NoError(t, err)
	assert.Len(t, byLocation, 2)
}

func TestLedger_UpdateThresholds(t *testing.T) {
	f := newFixture(t, appinventory.Options{})
	loc := f.addLocation("Main", 1)
	product := uuid.New()

	_, err := f.svc.Ledger.UpdateThresholds(f.ctx, product, loc, inventory.Thresholds{LowStockThreshold: 5})
	assert.True(t, errors.Is(err, inventory.ErrProductNotTracked))

	f.receive(product, loc, 4)
	item, err := f.svc.Ledger.UpdateThresholds(f.ctx, product, loc, inventory.Thresholds{LowStockThreshold: 5, ReorderPoint: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.LowStockThreshold)

	alerts, err := f.svc.Alerts.ActiveAlerts(f.ctx, &loc)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, inventory.AlertTypeLowStock, alerts[0].Type)
}
