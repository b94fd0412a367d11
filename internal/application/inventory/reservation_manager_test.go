package inventory_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationManager_Reserve(t *testing.T) {
	t.Run("insufficient stock returns false and changes nothing", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 3)

		ok, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 5})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, f.item(product, loc).Reserved)
	})

	t.Run("uses the first location that covers the whole quantity", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		small := f.addLocation("Small", 1)
		large := f.addLocation("Large", 2)
		product := uuid.New()
		f.receive(product, small, 2)
		f.receive(product, large, 10)

		ok, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 4, Reference: "order-9"})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, f.item(product, small).Reserved)
		assert.Equal(t, int64(4), f.item(product, large).Reserved)
		assert.Equal(t, int64(10), f.item(product, large).OnHand)
	})

	t.Run("equal priorities go in creation order", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		first := f.addLocation("First", 5)
		second := f.addLocation("Second", 5)
		product := uuid.New()
		f.receive(product, second, 10)
		f.receive(product, first, 10)

		ok, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 1})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(1), f.item(product, first).Reserved)
	})

	t.Run("explicit location", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		a := f.addLocation("A", 1)
		b := f.addLocation("B", 2)
		product := uuid.New()
		f.receive(product, a, 10)
		f.receive(product, b, 10)

		ok, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 3, LocationID: &b})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(3), f.item(product, b).Reserved)
		assert.Zero(t, f.item(product, a).Reserved)
	})

	t.Run("inactive locations are skipped", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Closed", 1)
		product := uuid.New()
		f.receive(product, loc, 10)
		_, err := f.svc.Locations.SetActive(f.ctx, loc, false)
		require.NoError(t, err)

		ok, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 1})
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 1, LocationID: &loc})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown location is an error", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})

		_, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: uuid.New(), Quantity: 1, LocationID: ptr(uuid.New())})
		assert.True(t, errors.Is(err, inventory.ErrLocationNotFound))
	})

	t.Run("invalid quantity", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})

		_, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: uuid.New(), Quantity: 0})
		assert.True(t, errors.Is(err, inventory.ErrValidation))
	})
}

func TestReservationManager_Release(t *testing.T) {
	t.Run("reserve then release restores state", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 8)
		before := *f.item(product, loc)

		ok, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 5, LocationID: &loc})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(3), f.item(product, loc).Available())

		err = f.svc.Reservations.Release(f.ctx, appinventory.ReleaseRequest{ProductID: product, Quantity: 5, LocationID: &loc})
		require.NoError(t, err)

		after := f.item(product, loc)
		assert.Equal(t, before.Available(), after.Available())
		assert.Equal(t, before.Reserved, after.Reserved)
		assert.Equal(t, before.OnHand, after.OnHand)
		f.assertConsistent(product, loc)

		history, _ := f.svc.Ledger.History(f.ctx, product, loc)
		require.Len(t, history, 3)
		assert.Equal(t, inventory.MovementTypeReservation, history[1].Type)
		assert.Equal(t, inventory.MovementTypeRelease, history[2].Type)
	})

	t.Run("over-release fails and leaves state unchanged", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 8)
		_, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 3, LocationID: &loc})
		require.NoError(t, err)

		err = f.svc.Reservations.Release(f.ctx, appinventory.ReleaseRequest{ProductID: product, Quantity: 5, LocationID: &loc})
		require.Error(t, err)
		assert.True(t, errors.Is(err, inventory.ErrInvalidRelease))
		assert.Equal(t, int64(3), f.item(product, loc).Reserved)
	})

	t.Run("release at untracked key is invalid", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)

		err := f.svc.Reservations.Release(f.ctx, appinventory.ReleaseRequest{ProductID: uuid.New(), Quantity: 1, LocationID: &loc})
		assert.True(t, errors.Is(err, inventory.ErrInvalidRelease))
	})

	t.Run("release without location finds the holder", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		a := f.addLocation("A", 1)
		b := f.addLocation("B", 2)
		product := uuid.New()
		f.receive(product, a, 1)
		f.receive(product, b, 10)
		ok, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 6})
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, f.svc.Reservations.Release(f.ctx, appinventory.ReleaseRequest{ProductID: product, Quantity: 6}))
		assert.Zero(t, f.item(product, b).Reserved)

		err = f.svc.Reservations.Release(f.ctx, appinventory.ReleaseRequest{ProductID: product, Quantity: 1})
		assert.True(t, errors.Is(err, inventory.ErrInvalidRelease))
	})
}

func TestReservationManager_ConcurrentReserve(t *testing.T) {
	f := newFixture(t, appinventory.Options{})
	loc := f.addLocation("Main", 1)
	product := uuid.New()
	f.receive(product, loc, 25)

	var wg sync.WaitGroup
	var granted atomic.Int64
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.svc.Reservations.Reserve(f.ctx, appinventory.ReserveRequest{ProductID: product, Quantity: 1})
			assert.NoError(t, err)
			if ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(25), granted.Load())
	item := f.item(product, loc)
	assert.Equal(t, int64(25), item.Reserved)
	assert.Zero(t, item.Available())
	f.assertConsistent(product, loc)
}
