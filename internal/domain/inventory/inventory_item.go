package inventory

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/inventory/internal/domain/shared"
)

// AggregateTypeInventoryItem is the aggregate type name used in events
const AggregateTypeInventoryItem = "InventoryItem"

// InventoryItem is the ledger entry for one product at one location.
// Invariants: 0 <= Reserved <= OnHand, Available() == OnHand - Reserved.
type InventoryItem struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID
	LocationID        uuid.UUID
	SKU               string
	OnHand            int64
	Reserved          int64
	LowStockThreshold int64
	ReorderPoint      int64
	ReorderQuantity   int64
	// MaxStock enables the overstock alert when positive.
	MaxStock      int64
	UnitCost      decimal.Decimal
	LastCountedAt *time.Time
}

// NewInventoryItem creates an empty ledger entry. Items are created on the
// first movement into a location.
func NewInventoryItem(key StockKey) *InventoryItem {
	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         key.ProductID,
		LocationID:        key.LocationID,
		UnitCost:          decimal.Zero,
	}
}

// Key returns the stock key of the item
func (i *InventoryItem) Key() StockKey {
	return NewStockKey(i.ProductID, i.LocationID)
}

// Available returns the quantity that can still be reserved
func (i *InventoryItem) Available() int64 {
	return i.OnHand - i.Reserved
}

// Apply applies a non-transfer movement spec and returns the movement to
// append. On error the item is unchanged.
func (i *InventoryItem) Apply(spec MovementSpec) (*Movement, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Key() != i.Key() {
		return nil, NewValidationError("movement targets %s but item is %s", spec.Key(), i.Key())
	}

	q := spec.Quantity
	var delta, reservedDelta int64

	switch spec.Type {
	case MovementTypePurchase, MovementTypeReturn:
		if err := i.checkIncrease(q); err != nil {
			return nil, err
		}
		delta = q
	case MovementTypeSale:
		if spec.FromReserved {
			if i.Reserved < q {
				return nil, NewInsufficientStockError(i.Key(), q, i.Reserved)
			}
			reservedDelta = -q
		} else if i.Available() < q {
			return nil, NewInsufficientStockError(i.Key(), q, i.Available())
		}
		delta = -q
	case MovementTypeLoss:
		if i.Available() < q {
			return nil, NewInsufficientStockError(i.Key(), q, i.Available())
		}
		delta = -q
	case MovementTypeAdjustment:
		var target int64
		if spec.CountedQuantity != nil {
			target = *spec.CountedQuantity
		} else {
			if spec.Delta > 0 {
				if err := i.checkIncrease(spec.Delta); err != nil {
					return nil, err
				}
			}
			target = i.OnHand + spec.Delta
		}
		if target < 0 || target < i.Reserved {
			return nil, NewInsufficientStockError(i.Key(), i.OnHand-target, i.Available())
		}
		delta = target - i.OnHand
	case MovementTypeReservation:
		if i.Available() < q {
			return nil, NewInsufficientStockError(i.Key(), q, i.Available())
		}
		reservedDelta = q
	case MovementTypeRelease:
		if i.Reserved < q {
			return nil, NewInvalidReleaseError(i.Key(), q, i.Reserved)
		}
		reservedDelta = -q
	case MovementTypeTransfer:
		return nil, NewValidationError("transfers are applied as paired legs")
	}

	if spec.Type == MovementTypePurchase && spec.UnitCost.IsPositive() {
		i.blendUnitCost(q, spec.UnitCost)
	}
	m := i.commit(spec, delta, reservedDelta, nil)
	if spec.Type == MovementTypeAdjustment && spec.CountedQuantity != nil {
		counted := m.CreatedAt
		i.LastCountedAt = &counted
	}
	return m, nil
}

// ApplyTransferOut applies the debit leg of a transfer at this (source) item.
func (i *InventoryItem) ApplyTransferOut(spec MovementSpec, correlationID uuid.UUID) (*Movement, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Type != MovementTypeTransfer || spec.Key() != i.Key() {
		return nil, NewValidationError("transfer debit must target the source item")
	}
	if i.Available() < spec.Quantity {
		return nil, NewInsufficientStockError(i.Key(), spec.Quantity, i.Available())
	}
	return i.commit(spec, -spec.Quantity, 0, &correlationID), nil
}

// ApplyTransferIn applies the credit leg of a transfer at this (destination)
// item. The unit cost of the source travels with the stock.
func (i *InventoryItem) ApplyTransferIn(spec MovementSpec, correlationID uuid.UUID, sourceCost decimal.Decimal) (*Movement, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Type != MovementTypeTransfer || i.ProductID != spec.ProductID || i.LocationID != spec.DestinationLocationID {
		return nil, NewValidationError("transfer credit must target the destination item")
	}
	if err := i.checkIncrease(spec.Quantity); err != nil {
		return nil, err
	}
	if sourceCost.IsPositive() {
		i.blendUnitCost(spec.Quantity, sourceCost)
	}
	return i.commit(spec, spec.Quantity, 0, &correlationID), nil
}

// checkIncrease rejects an on-hand increase that does not fit in int64
func (i *InventoryItem) checkIncrease(q int64) error {
	if q > math.MaxInt64-i.OnHand {
		return NewValidationError("quantity %d would overflow on-hand %d", q, i.OnHand)
	}
	return nil
}

// Thresholds are the alerting and replenishment settings of an item
type Thresholds struct {
	LowStockThreshold int64
	ReorderPoint      int64
	ReorderQuantity   int64
	MaxStock          int64
	UnitCost          *decimal.Decimal
	SKU               string
}

// Validate checks that no setting is negative
func (t Thresholds) Validate() error {
	if t.LowStockThreshold < 0 || t.ReorderPoint < 0 || t.ReorderQuantity < 0 || t.MaxStock < 0 {
		return NewValidationError("thresholds cannot be negative")
	}
	if t.UnitCost != nil && t.UnitCost.IsNegative() {
		return NewValidationError("unit cost cannot be negative")
	}
	return nil
}

// SetThresholds replaces the item settings. Quantities are untouched.
func (i *InventoryItem) SetThresholds(t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	i.LowStockThreshold = t.LowStockThreshold
	i.ReorderPoint = t.ReorderPoint
	i.ReorderQuantity = t.ReorderQuantity
	i.MaxStock = t.MaxStock
	if t.UnitCost != nil {
		i.UnitCost = *t.UnitCost
	}
	if t.SKU != "" {
		i.SKU = t.SKU
	}
	i.Touch(time.Now().UTC())
	return nil
}

// blendUnitCost folds incoming stock into a weighted average cost
func (i *InventoryItem) blendUnitCost(quantity int64, cost decimal.Decimal) {
	if i.OnHand <= 0 || i.UnitCost.IsZero() {
		i.UnitCost = cost
		return
	}
	current := decimal.NewFromInt(i.OnHand)
	incoming := decimal.NewFromInt(quantity)
	total := i.UnitCost.Mul(current).Add(cost.Mul(incoming))
	i.UnitCost = total.Div(current.Add(incoming)).Round(4)
}

func (i *InventoryItem) commit(spec MovementSpec, delta, reservedDelta int64, correlationID *uuid.UUID) *Movement {
	now := time.Now().UTC()
	i.OnHand += delta
	i.Reserved += reservedDelta
	seq := i.IncrementVersion()
	i.Touch(now)
	if i.SKU == "" && spec.SKU != "" {
		i.SKU = spec.SKU
	}

	m := &Movement{
		ID:                uuid.New(),
		ProductID:         i.ProductID,
		LocationID:        i.LocationID,
		Sequence:          seq,
		Type:              spec.Type,
		Delta:             delta,
		ReservedDelta:     reservedDelta,
		ResultingOnHand:   i.OnHand,
		ResultingReserved: i.Reserved,
		Reason:            spec.Reason,
		Reference:         spec.Reference,
		Actor:             spec.Actor,
		CorrelationID:     correlationID,
		CreatedAt:         now,
	}
	i.AddDomainEvent(NewStockMovementRecordedEvent(i, m))
	return m
}
