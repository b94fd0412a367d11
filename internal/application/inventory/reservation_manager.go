package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/inventory"
	"go.uber.org/zap"
)

// ReserveRequest asks for Quantity units of a product. With a LocationID the
// reservation is attempted only there.
type ReserveRequest struct {
	ProductID  uuid.UUID
	Quantity   int64
	LocationID *uuid.UUID
	Reference  string
	Actor      string
}

// ReleaseRequest gives back reserved units
type ReleaseRequest struct {
	ProductID  uuid.UUID
	Quantity   int64
	LocationID *uuid.UUID
	Reference  string
	Actor      string
}

func validateQuantityRequest(productID uuid.UUID, quantity int64) error {
	if productID == uuid.Nil {
		return inventory.NewValidationError("product id is required")
	}
	if quantity <= 0 {
		return inventory.NewValidationError("quantity must be positive")
	}
	return nil
}

// ReservationManager claims and releases stock on behalf of orders. A
// reservation is always taken whole from a single location.
type ReservationManager struct {
	locations *LocationRegistry
	ledger    *Ledger
	logger    *zap.Logger
}

// NewReservationManager creates a reservation manager
func NewReservationManager(locations *LocationRegistry, ledger *Ledger, logger *zap.Logger) *ReservationManager {
	return &ReservationManager{
		locations: locations,
		ledger:    ledger,
		logger:    logger,
	}
}

// Reserve reserves the full quantity at one location. Without a location the
// active locations are tried in priority order. It returns false, with no
// effect, when no single location can satisfy the request.
func (m *ReservationManager) Reserve(ctx context.Context, req ReserveRequest) (bool, error) {
	if err := validateQuantityRequest(req.ProductID, req.Quantity); err != nil {
		return false, err
	}
	if req.LocationID != nil {
		return m.ReserveAt(ctx, req.ProductID, *req.LocationID, req.Quantity, req.Reference, req.Actor)
	}

	locations, err := m.locations.ActiveLocations(ctx)
	if err != nil {
		return false, err
	}
	for _, loc := range locations {
		item, err := m.ledger.GetItem(ctx, req.ProductID, loc.ID)
		if err != nil {
			return false, err
		}
		if item == nil || item.Available() < req.Quantity {
			continue
		}
		ok, err := m.ReserveAt(ctx, req.ProductID, loc.ID, req.Quantity, req.Reference, req.Actor)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	m.logger.Info("reservation not satisfiable",
		zap.String("product_id", req.ProductID.String()),
		zap.Int64("quantity", req.Quantity),
		zap.String("reference", req.Reference))
	return false, nil
}

// ReserveAt reserves exactly at one location. Inactive locations and
// insufficient stock give false.
func (m *ReservationManager) ReserveAt(ctx context.Context, productID, locationID uuid.UUID, quantity int64, reference, actor string) (bool, error) {
	if err := validateQuantityRequest(productID, quantity); err != nil {
		return false, err
	}
	loc, err := m.locations.GetLocation(ctx, locationID)
	if err != nil {
		return false, err
	}
	if !loc.Active {
		return false, nil
	}

	_, err = m.ledger.RecordMovement(ctx, inventory.MovementSpec{
		ProductID:  productID,
		LocationID: locationID,
		Type:       inventory.MovementTypeReservation,
		Quantity:   quantity,
		Reference:  reference,
		Actor:      actor,
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, inventory.ErrProductNotTracked):
		return false, nil
	default:
		return false, err
	}
}

// Release returns reserved units. Without a location the first location in
// priority order holding enough reserved units is used. Releasing more than
// is reserved is an InvalidReleaseError.
func (m *ReservationManager) Release(ctx context.Context, req ReleaseRequest) error {
	if err := validateQuantityRequest(req.ProductID, req.Quantity); err != nil {
		return err
	}
	if req.LocationID != nil {
		return m.releaseAt(ctx, req, *req.LocationID)
	}

	// Reservations outlive deactivation, so inactive locations count here.
	locations, err := m.locations.ListLocations(ctx)
	if err != nil {
		return err
	}
	for _, loc := range locations {
		item, err := m.ledger.GetItem(ctx, req.ProductID, loc.ID)
		if err != nil {
			return err
		}
		if item == nil || item.Reserved < req.Quantity {
			continue
		}
		err = m.releaseAt(ctx, req, loc.ID)
		if errors.Is(err, inventory.ErrInvalidRelease) {
			continue
		}
		return err
	}
	return inventory.NewUnlocatedReleaseError(req.ProductID, req.Quantity)
}

func (m *ReservationManager) releaseAt(ctx context.Context, req ReleaseRequest, locationID uuid.UUID) error {
	_, err := m.ledger.RecordMovement(ctx, inventory.MovementSpec{
		ProductID:  req.ProductID,
		LocationID: locationID,
		Type:       inventory.MovementTypeRelease,
		Quantity:   req.Quantity,
		Reference:  req.Reference,
		Actor:      req.Actor,
	})
	if errors.Is(err, inventory.ErrProductNotTracked) {
		return inventory.NewInvalidReleaseError(inventory.NewStockKey(req.ProductID, locationID), req.Quantity, 0)
	}
	return err
}

// OutstandingReserved folds the reservation history of a key. It always
// equals the item's reserved quantity.
func (m *ReservationManager) OutstandingReserved(ctx context.Context, productID, locationID uuid.UUID) (int64, error) {
	history, err := m.ledger.History(ctx, productID, locationID)
	if err != nil {
		return 0, err
	}
	return inventory.OutstandingReserved(history), nil
}
