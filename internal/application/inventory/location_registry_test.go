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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockLocationCache is a mock implementation of LocationCache
type MockLocationCache struct {
	mock.Mock
}

func (m *MockLocationCache) Get(ctx context.Context) ([]inventory.Location, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]inventory.Location), args.Bool(1), args.Error(2)
}

func (m *MockLocationCache) Set(ctx context.Context, locations []inventory.Location) error {
	args := m.Called(ctx, locations)
	return args.Error(0)
}

func (m *MockLocationCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestLocationRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("lists by priority then creation order", func(t *testing.T) {
		registry := appinventory.NewLocationRegistry(memory.NewStore().Locations(), nil, zaptest.NewLogger(t))
		for _, spec := range []inventory.LocationSpec{
			{Name: "late", Type: inventory.LocationTypeStore, Priority: 3},
			{Name: "tie-1", Type: inventory.LocationTypeWarehouse, Priority: 1},
			{Name: "tie-2", Type: inventory.LocationTypeDropship, Priority: 1},
			{Name: "first", Type: inventory.LocationTypeSupplier, Priority: 0},
		} {
			_, err := registry.AddLocation(ctx, spec)
			require.NoError(t, err)
		}

		list, err := registry.ListLocations(ctx)
		require.NoError(t, err)
		names := make([]string, 0, len(list))
		for _, l := range list {
			names = append(names, l.Name)
		}
		assert.Equal(t, []string{"first", "tie-1", "tie-2", "late"}, names)

		again, err := registry.ListLocations(ctx)
		require.NoError(t, err)
		assert.Equal(t, list, again)
	})

	t.Run("rejects missing name or type", func(t *testing.T) {
		registry := appinventory.NewLocationRegistry(memory.NewStore().Locations(), nil, zaptest.NewLogger(t))

		_, err := registry.AddLocation(ctx, inventory.LocationSpec{Type: inventory.LocationTypeStore})
		assert.True(t, errors.Is(err, inventory.ErrValidation))
		_, err = registry.AddLocation(ctx, inventory.LocationSpec{Name: "x"})
		assert.True(t, errors.Is(err, inventory.ErrValidation))
	})

	t.Run("rejects duplicate codes", func(t *testing.T) {
		registry := appinventory.NewLocationRegistry(memory.NewStore().Locations(), nil, zaptest.NewLogger(t))

		_, err := registry.AddLocation(ctx, inventory.LocationSpec{Code: "WH1", Name: "a", Type: inventory.LocationTypeWarehouse})
		require.NoError(t, err)
		_, err = registry.AddLocation(ctx, inventory.LocationSpec{Code: "wh1", Name: "b", Type: inventory.LocationTypeWarehouse})
		assert.Error(t, err)
	})

	t.Run("unknown location", func(t *testing.T) {
		registry := appinventory.NewLocationRegistry(memory.NewStore().Locations(), nil, zaptest.NewLogger(t))

		_, err := registry.GetLocation(ctx, uuid.New())
		assert.True(t, errors.Is(err, inventory.ErrLocationNotFound))
		_, err = registry.SetPriority(ctx, uuid.New(), 1)
		assert.True(t, errors.Is(err, inventory.ErrLocationNotFound))
	})

	t.Run("serves from cache and invalidates on change", func(t *testing.T) {
		cache := new(MockLocationCache)
		registry := appinventory.NewLocationRegistry(memory.NewStore().Locations(), cache, zaptest.NewLogger(t))

		cache.On("Invalidate", mock.Anything).Return(nil)
		loc, err := registry.AddLocation(ctx, inventory.LocationSpec{Name: "Main", Type: inventory.LocationTypeWarehouse})
		require.NoError(t, err)

		cache.On("Get", mock.Anything).Return(nil, false, nil).Once()
		cache.On("Set", mock.Anything, mock.Anything).Return(nil).Once()
		list, err := registry.ListLocations(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)

		cache.On("Get", mock.Anything).Return(list, true, nil).Once()
		cached, err := registry.ActiveLocations(ctx)
		require.NoError(t, err)
		assert.Equal(t, list, cached)

		_, err = registry.SetActive(ctx, loc.ID, false)
		require.NoError(t, err)
		cache.AssertNumberOfCalls(t, "Invalidate", 2)
		cache.AssertExpectations(t)
	})

	t.Run("cache failures fall back to the repository", func(t *testing.T) {
		cache := new(MockLocationCache)
		registry := appinventory.NewLocationRegistry(memory.NewStore().Locations(), cache, zaptest.NewLogger(t))
		cache.On("Invalidate", mock.Anything).Return(errors.New("redis down"))
		cache.On("Get", mock.Anything).Return(nil, false, errors.New("redis down"))
		cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		_, err := registry.AddLocation(ctx, inventory.LocationSpec{Name: "Main", Type: inventory.LocationTypeWarehouse})
		require.NoError(t, err)
		list, err := registry.ListLocations(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}
