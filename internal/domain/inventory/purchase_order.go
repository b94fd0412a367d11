package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/inventory/internal/domain/shared"
)

// PurchaseOrderStatus is the lifecycle state of a purchase order. This module
// only produces drafts.
type PurchaseOrderStatus string

const PurchaseOrderStatusDraft PurchaseOrderStatus = "draft"

// PurchaseOrderLine is one product on a purchase order
type PurchaseOrderLine struct {
	ProductID        uuid.UUID
	SKU              string
	QuantityOrdered  int64
	QuantityReceived int64
	UnitCost         decimal.Decimal
	LineTotal        decimal.Decimal
}

// PurchaseOrder is a replenishment order suggestion for one location
type PurchaseOrder struct {
	shared.BaseEntity
	Number       string
	SupplierID   string
	LocationID   uuid.UUID
	Status       PurchaseOrderStatus
	Lines        []PurchaseOrderLine
	TotalAmount  decimal.Decimal
	OrderDate    time.Time
	ExpectedDate time.Time
	ReceivedDate *time.Time
}

// NeedsReorder reports whether the item qualifies for a reorder suggestion
func NeedsReorder(item *InventoryItem) bool {
	return item.ReorderQuantity > 0 && item.Available() <= item.ReorderPoint
}

// NewDraftPurchaseOrder groups reorder candidates of one location into a
// draft order. Items that do not qualify are skipped; nil is returned when
// nothing qualifies.
func NewDraftPurchaseOrder(location Location, items []InventoryItem, orderDate time.Time, leadTime time.Duration) *PurchaseOrder {
	lines := make([]PurchaseOrderLine, 0, len(items))
	total := decimal.Zero
	for idx := range items {
		item := &items[idx]
		if item.LocationID != location.ID || !NeedsReorder(item) {
			continue
		}
		lineTotal := item.UnitCost.Mul(decimal.NewFromInt(item.ReorderQuantity))
		lines = append(lines, PurchaseOrderLine{
			ProductID:       item.ProductID,
			SKU:             item.SKU,
			QuantityOrdered: item.ReorderQuantity,
			UnitCost:        item.UnitCost,
			LineTotal:       lineTotal,
		})
		total = total.Add(lineTotal)
	}
	if len(lines) == 0 {
		return nil
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].SKU != lines[j].SKU {
			return lines[i].SKU < lines[j].SKU
		}
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})

	return &PurchaseOrder{
		BaseEntity:   shared.NewBaseEntity(),
		Number:       draftNumber(location, orderDate),
		LocationID:   location.ID,
		Status:       PurchaseOrderStatusDraft,
		Lines:        lines,
		TotalAmount:  total,
		OrderDate:    orderDate,
		ExpectedDate: orderDate.Add(leadTime),
	}
}

func draftNumber(location Location, at time.Time) string {
	code := location.Code
	if code == "" {
		code = strings.ToUpper(location.ID.String()[:8])
	}
	return fmt.Sprintf("PO-%s-%s", code, at.Format("20060102"))
}
