package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/infrastructure/cache"
)

func TestRedisLocationCache_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := NewTestDB(t)
	client, err := cache.NewRedisClient(ctx, NewTestRedis(t), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	locations := cache.NewRedisLocationCache(client, "inventory:test:locations", time.Minute)
	svc := newService(t, db, locations)

	first, err := svc.Locations.AddLocation(ctx, inventory.LocationSpec{
		Code: "a", Name: "A", Type: inventory.LocationTypeStore, Priority: 5,
	})
	require.NoError(t, err)

	listed, err := svc.Locations.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	cached, ok, err := locations.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, first.ID, cached[0].ID)

	_, err = svc.Locations.AddLocation(ctx, inventory.LocationSpec{
		Code: "b", Name: "B", Type: inventory.LocationTypeStore, Priority: 1,
	})
	require.NoError(t, err)

	active, err := svc.Locations.ActiveLocations(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "B", active[0].Code)
}
