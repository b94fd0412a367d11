package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraftPurchaseOrder(t *testing.T) {
	loc, err := NewLocation(LocationSpec{Code: "wh1", Name: "Main", Type: LocationTypeWarehouse})
	require.NoError(t, err)
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	mk := func(sku string, onHand, reorderPoint, reorderQty int64, cost string) InventoryItem {
		item := NewInventoryItem(NewStockKey(uuid.New(), loc.ID))
		item.SKU = sku
		item.OnHand = onHand
		item.ReorderPoint = reorderPoint
		item.ReorderQuantity = reorderQty
		item.UnitCost = decimal.RequireFromString(cost)
		return *item
	}

	items := []InventoryItem{
		mk("B-2", 1, 5, 10, "2.50"),
		mk("A-1", 5, 5, 4, "10"),
		mk("C-3", 50, 5, 10, "1"), // above reorder point
		mk("D-4", 0, 5, 0, "1"),   // no reorder quantity
	}

	po := NewDraftPurchaseOrder(*loc, items, now, 72*time.Hour)
	require.NotNil(t, po)
	assert.Equal(t, PurchaseOrderStatusDraft, po.Status)
	assert.Equal(t, "PO-WH1-20260504", po.Number)
	assert.Equal(t, now.Add(72*time.Hour), po.ExpectedDate)
	require.Len(t, po.Lines, 2)
	assert.Equal(t, "A-1", po.Lines[0].SKU)
	assert.True(t, decimal.NewFromInt(40).Equal(po.Lines[0].LineTotal))
	assert.True(t, decimal.NewFromInt(25).Equal(po.Lines[1].LineTotal))
	assert.True(t, decimal.NewFromInt(65).Equal(po.TotalAmount))
	assert.Zero(t, po.Lines[0].QuantityReceived)

	t.Run("nothing to reorder", func(t *testing.T) {
		assert.Nil(t, NewDraftPurchaseOrder(*loc, items[2:], now, 0))
	})
}
