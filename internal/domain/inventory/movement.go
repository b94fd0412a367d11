package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType is the kind of ledger mutation a movement records
type MovementType string

const (
	MovementTypePurchase    MovementType = "purchase"
	MovementTypeSale        MovementType = "sale"
	MovementTypeTransfer    MovementType = "transfer"
	MovementTypeAdjustment  MovementType = "adjustment"
	MovementTypeReservation MovementType = "reservation"
	MovementTypeRelease     MovementType = "release"
	MovementTypeLoss        MovementType = "loss"
	MovementTypeReturn      MovementType = "return"
)

// IsValid reports whether the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeTransfer, MovementTypeAdjustment,
		MovementTypeReservation, MovementTypeRelease, MovementTypeLoss, MovementTypeReturn:
		return true
	}
	return false
}

// CreatesItem reports whether the movement may start a ledger entry at a key
// that has none. Only movements that bring stock in do.
func (t MovementType) CreatesItem() bool {
	switch t {
	case MovementTypePurchase, MovementTypeReturn, MovementTypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation
func (t MovementType) String() string {
	return string(t)
}

const maxReasonLength = 500

// StockKey identifies one ledger entry
type StockKey struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
}

// NewStockKey builds a key
func NewStockKey(productID, locationID uuid.UUID) StockKey {
	return StockKey{ProductID: productID, LocationID: locationID}
}

// String returns "product/location"
func (k StockKey) String() string {
	return k.ProductID.String() + "/" + k.LocationID.String()
}

// Less gives keys a total order so multi-key locks are always taken in the
// same sequence.
func (k StockKey) Less(other StockKey) bool {
	if k.ProductID != other.ProductID {
		return k.ProductID.String() < other.ProductID.String()
	}
	return k.LocationID.String() < other.LocationID.String()
}

// SortedKeys returns the distinct keys in lock order
func SortedKeys(keys ...StockKey) []StockKey {
	seen := make(map[StockKey]struct{}, len(keys))
	out := make([]StockKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// MovementSpec describes a mutation before it is applied. Quantity is always a
// positive magnitude; the movement type decides the direction.
type MovementSpec struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Type       MovementType
	Quantity   int64

	// CountedQuantity is the physical count for an adjustment. When set the
	// on-hand quantity is overwritten with it.
	CountedQuantity *int64
	// Delta is the signed on-hand change for an adjustment without a count.
	Delta int64
	// DestinationLocationID is the receiving location of a transfer.
	DestinationLocationID uuid.UUID
	// FromReserved makes a sale consume an existing reservation.
	FromReserved bool

	SKU       string
	UnitCost  decimal.Decimal
	Reason    string
	Reference string
	Actor     string
}

// Key returns the stock key the spec targets
func (s MovementSpec) Key() StockKey {
	return NewStockKey(s.ProductID, s.LocationID)
}

// Validate checks the spec shape. Quantity availability is checked when the
// spec is applied to an item.
func (s MovementSpec) Validate() error {
	if s.ProductID == uuid.Nil {
		return NewValidationError("product id is required")
	}
	if s.LocationID == uuid.Nil {
		return NewValidationError("location id is required")
	}
	if !s.Type.IsValid() {
		return NewValidationError("invalid movement type %q", s.Type)
	}
	if len(s.Reason) > maxReasonLength {
		return NewValidationError("reason cannot exceed %d characters", maxReasonLength)
	}
	if s.UnitCost.IsNegative() {
		return NewValidationError("unit cost cannot be negative")
	}
	if s.FromReserved && s.Type != MovementTypeSale {
		return NewValidationError("only sales can consume a reservation")
	}

	switch s.Type {
	case MovementTypeAdjustment:
		if strings.TrimSpace(s.Reason) == "" {
			return NewValidationError("adjustment requires a reason")
		}
		if s.CountedQuantity != nil {
			if *s.CountedQuantity < 0 {
				return NewValidationError("counted quantity cannot be negative")
			}
			if s.Delta != 0 {
				return NewValidationError("adjustment takes either a counted quantity or a delta, not both")
			}
		} else if s.Delta == 0 {
			return NewValidationError("adjustment requires a counted quantity or a non-zero delta")
		}
	case MovementTypeTransfer:
		if s.Quantity <= 0 {
			return NewValidationError("quantity must be positive")
		}
		if s.DestinationLocationID == uuid.Nil {
			return NewValidationError("transfer requires a destination location")
		}
		if s.DestinationLocationID == s.LocationID {
			return NewValidationError("transfer source and destination must differ")
		}
	default:
		if s.Quantity <= 0 {
			return NewValidationError("quantity must be positive")
		}
	}
	return nil
}

// Movement is the immutable record of one applied ledger mutation
type Movement struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	LocationID uuid.UUID
	// Sequence is monotonic per stock key and equals the item version after
	// the movement was applied.
	Sequence          int64
	Type              MovementType
	Delta             int64
	ReservedDelta     int64
	ResultingOnHand   int64
	ResultingReserved int64
	Reason            string
	Reference         string
	Actor             string
	// CorrelationID links the two legs of a transfer.
	CorrelationID *uuid.UUID
	CreatedAt     time.Time
}

// Key returns the stock key of the movement
func (m *Movement) Key() StockKey {
	return NewStockKey(m.ProductID, m.LocationID)
}

// ReplayResult is the ledger state reconstructed from movements
type ReplayResult struct {
	OnHand       int64
	Reserved     int64
	LastSequence int64
	Count        int
}

// Available returns OnHand - Reserved
func (r ReplayResult) Available() int64 {
	return r.OnHand - r.Reserved
}

// Replay folds movements of a single key from zero. Movements must be in
// sequence order.
func Replay(movements []Movement) (ReplayResult, error) {
	var res ReplayResult
	for i := range movements {
		m := &movements[i]
		if m.Sequence <= res.LastSequence {
			return res, fmt.Errorf("movement %s out of order: sequence %d after %d", m.ID, m.Sequence, res.LastSequence)
		}
		res.OnHand += m.Delta
		res.Reserved += m.ReservedDelta
		res.LastSequence = m.Sequence
		res.Count++
		if res.OnHand != m.ResultingOnHand || res.Reserved != m.ResultingReserved {
			return res, fmt.Errorf("movement %s does not match replayed state: on-hand %d/%d reserved %d/%d",
				m.ID, res.OnHand, m.ResultingOnHand, res.Reserved, m.ResultingReserved)
		}
	}
	return res, nil
}

// OutstandingReserved sums the reservation and release movements, which is
// the quantity still held by reservations.
func OutstandingReserved(movements []Movement) int64 {
	var total int64
	for _, m := range movements {
		total += m.ReservedDelta
	}
	return total
}
