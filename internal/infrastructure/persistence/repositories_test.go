package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
)

func newLocation(t *testing.T, name string, priority int, seq int64) *inventory.Location {
	t.Helper()
	loc, err := inventory.NewLocation(inventory.LocationSpec{Code: name, Name: name, Type: inventory.LocationTypeWarehouse, Priority: priority})
	require.NoError(t, err)
	loc.Sequence = seq
	return loc
}

func TestGormLocationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save, update and list in creation order", func(t *testing.T) {
		repo := NewGormLocationRepository(newSQLiteDatabase(t).DB)

		seq, err := repo.NextSequence(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, seq)

		north := newLocation(t, "north", 5, 1)
		south := newLocation(t, "south", 1, 2)
		require.NoError(t, repo.Save(ctx, north))
		require.NoError(t, repo.Save(ctx, south))

		north.Deactivate()
		require.NoError(t, repo.Save(ctx, north))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "NORTH", all[0].Code)
		assert.False(t, all[0].Active)
		assert.True(t, all[1].Active)

		seq, err = repo.NextSequence(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, seq)
	})

	t.Run("missing location is ErrNotFound", func(t *testing.T) {
		repo := NewGormLocationRepository(newSQLiteDatabase(t).DB)
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("driver errors are wrapped", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)
		repo := NewGormLocationRepository(db.DB)
		mock.ExpectQuery(`SELECT \* FROM "locations"`).WillReturnError(errors.New("connection reset"))

		_, err := repo.FindAll(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list locations")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInventoryItemRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips quantities and thresholds", func(t *testing.T) {
		repo := NewGormInventoryItemRepository(newSQLiteDatabase(t).DB)
		key := inventory.NewStockKey(uuid.New(), uuid.New())
		item := inventory.NewInventoryItem(key)
		item.SKU = "SKU-1"
		item.OnHand = 10
		item.Reserved = 4
		item.ReorderPoint = 3
		item.UnitCost = decimal.RequireFromString("12.5")
		item.Version = 2
		counted := time.Now().UTC().Truncate(time.Second)
		item.LastCountedAt = &counted
		require.NoError(t, repo.Save(ctx, item))

		item.OnHand = 8
		item.Version = 3
		require.NoError(t, repo.Save(ctx, item))

		got, err := repo.FindByKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ID)
		assert.EqualValues(t, 8, got.OnHand)
		assert.EqualValues(t, 4, got.Reserved)
		assert.EqualValues(t, 4, got.Available())
		assert.EqualValues(t, 3, got.GetVersion())
		assert.True(t, got.UnitCost.Equal(decimal.RequireFromString("12.5")))
		require.NotNil(t, got.LastCountedAt)
		assert.True(t, got.LastCountedAt.Equal(counted))
	})

	t.Run("lists by product and location", func(t *testing.T) {
		repo := NewGormInventoryItemRepository(newSQLiteDatabase(t).DB)
		product, locA, locB := uuid.New(), uuid.New(), uuid.New()
		require.NoError(t, repo.Save(ctx, inventory.NewInventoryItem(inventory.NewStockKey(product, locA))))
		require.NoError(t, repo.Save(ctx, inventory.NewInventoryItem(inventory.NewStockKey(product, locB))))
		require.NoError(t, repo.Save(ctx, inventory.NewInventoryItem(inventory.NewStockKey(uuid.New(), locA))))

		byProduct, err := repo.FindByProduct(ctx, product)
		require.NoError(t, err)
		assert.Len(t, byProduct, 2)

		byLocation, err := repo.FindByLocation(ctx, locA)
		require.NoError(t, err)
		assert.Len(t, byLocation, 2)
	})

	t.Run("missing key is ErrNotFound", func(t *testing.T) {
		repo := NewGormInventoryItemRepository(newSQLiteDatabase(t).DB)
		_, err := repo.FindByKey(ctx, inventory.NewStockKey(uuid.New(), uuid.New()))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("locked read issues FOR UPDATE on postgres", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)
		repo := &GormInventoryItemRepository{db: db.DB, forUpdate: true}
		key := inventory.NewStockKey(uuid.New(), uuid.New())
		mock.ExpectQuery(`SELECT \* FROM "inventory_items" WHERE product_id = \$1 AND location_id = \$2 ORDER BY .* LIMIT \$3 FOR UPDATE`).
			WithArgs(key.ProductID, key.LocationID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByKey(ctx, key)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMovementRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMovementRepository(newSQLiteDatabase(t).DB)
	key := inventory.NewStockKey(uuid.New(), uuid.New())
	base := time.Now().UTC().Add(-time.Hour)
	correlation := uuid.New()

	var batch []*inventory.Movement
	for seq := int64(1); seq <= 3; seq++ {
		batch = append(batch, &inventory.Movement{
			ID:              uuid.New(),
			ProductID:       key.ProductID,
			LocationID:      key.LocationID,
			Sequence:        seq,
			Type:            inventory.MovementTypePurchase,
			Delta:           5,
			ResultingOnHand: 5 * seq,
			Reference:       "PO-1",
			CreatedAt:       base.Add(time.Duration(seq) * time.Minute),
		})
	}
	batch[2].Type = inventory.MovementTypeTransfer
	batch[2].CorrelationID = &correlation
	// appended out of order on purpose
	require.NoError(t, repo.Append(ctx, batch[2], batch[0]))
	require.NoError(t, repo.Append(ctx, batch[1]))
	require.NoError(t, repo.Append(ctx))

	t.Run("history is in sequence order", func(t *testing.T) {
		history, err := repo.FindByKey(ctx, key)
		require.NoError(t, err)
		require.Len(t, history, 3)
		for i, m := range history {
			assert.EqualValues(t, i+1, m.Sequence)
		}
		require.NotNil(t, history[2].CorrelationID)
		assert.Equal(t, correlation, *history[2].CorrelationID)

		replayed, err := inventory.Replay(history)
		require.NoError(t, err)
		assert.EqualValues(t, 15, replayed.OnHand)
	})

	t.Run("since filters by creation time", func(t *testing.T) {
		recent, err := repo.FindByKeySince(ctx, key, base.Add(2*time.Minute))
		require.NoError(t, err)
		assert.Len(t, recent, 2)
	})

	t.Run("duplicate sequence is rejected", func(t *testing.T) {
		dup := *batch[0]
		dup.ID = uuid.New()
		assert.Error(t, repo.Append(ctx, &dup))
	})
}

func TestGormStockAlertRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStockAlertRepository(newSQLiteDatabase(t).DB)
	locA, locB := uuid.New(), uuid.New()
	keyA := inventory.NewStockKey(uuid.New(), locA)

	out := inventory.NewStockAlert(keyA, inventory.AlertRule{Type: inventory.AlertTypeOutOfStock, Severity: inventory.SeverityCritical, Message: "out"})
	low := inventory.NewStockAlert(inventory.NewStockKey(uuid.New(), locB), inventory.AlertRule{Type: inventory.AlertTypeLowStock, Severity: inventory.SeverityMedium, Message: "low"})
	require.NoError(t, repo.Save(ctx, out))
	require.NoError(t, repo.Save(ctx, low))

	t.Run("filters active by key and location", func(t *testing.T) {
		byKey, err := repo.FindActiveByKey(ctx, keyA)
		require.NoError(t, err)
		require.Len(t, byKey, 1)
		assert.Equal(t, inventory.AlertTypeOutOfStock, byKey[0].Type)

		all, err := repo.FindActive(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		atB, err := repo.FindActive(ctx, &locB)
		require.NoError(t, err)
		require.Len(t, atB, 1)
		assert.Equal(t, low.ID, atB[0].ID)
	})

	t.Run("resolved alerts drop out and free the key", func(t *testing.T) {
		require.True(t, out.Resolve(time.Now().UTC()))
		require.NoError(t, repo.Save(ctx, out))

		byKey, err := repo.FindActiveByKey(ctx, keyA)
		require.NoError(t, err)
		assert.Empty(t, byKey)

		again := inventory.NewStockAlert(keyA, inventory.AlertRule{Type: inventory.AlertTypeOutOfStock, Severity: inventory.SeverityCritical, Message: "out again"})
		require.NoError(t, repo.Save(ctx, again))
	})

	t.Run("second active alert for the same key and type violates the index", func(t *testing.T) {
		dup := inventory.NewStockAlert(inventory.NewStockKey(low.ProductID, locB), inventory.AlertRule{Type: inventory.AlertTypeLowStock, Severity: inventory.SeverityMedium})
		assert.Error(t, repo.Save(ctx, dup))
	})
}
