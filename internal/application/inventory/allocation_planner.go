package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllocateRequest asks for Quantity units of a product across locations
type AllocateRequest struct {
	ProductID uuid.UUID
	Quantity  int64
	Reference string
	Actor     string
}

// AllocationLine is the quantity reserved at one location
type AllocationLine struct {
	LocationID uuid.UUID
	Quantity   int64
}

// AllocationResult lists what was reserved. Allocated never exceeds Requested.
type AllocationResult struct {
	ProductID uuid.UUID
	Requested int64
	Allocated int64
	Lines     []AllocationLine
}

// IsComplete reports whether the full quantity was allocated
func (r *AllocationResult) IsComplete() bool {
	return r.Allocated == r.Requested
}

// Shortfall returns the quantity that could not be allocated
func (r *AllocationResult) Shortfall() int64 {
	return r.Requested - r.Allocated
}

// AllocationPlanner splits a quantity across active locations in priority
// order, reserving as it goes.
type AllocationPlanner struct {
	locations    *LocationRegistry
	ledger       *Ledger
	reservations *ReservationManager
	logger       *zap.Logger
}

// NewAllocationPlanner creates an allocation planner
func NewAllocationPlanner(locations *LocationRegistry, ledger *Ledger, reservations *ReservationManager, logger *zap.Logger) *AllocationPlanner {
	return &AllocationPlanner{
		locations:    locations,
		ledger:       ledger,
		reservations: reservations,
		logger:       logger,
	}
}

// Allocate reserves up to the requested quantity. The result may be partial;
// the caller decides whether to keep it or hand it to ReleaseAllocation.
// On a storage error the reservations already made are released.
func (p *AllocationPlanner) Allocate(ctx context.Context, req AllocateRequest) (*AllocationResult, error) {
	if err := validateQuantityRequest(req.ProductID, req.Quantity); err != nil {
		return nil, err
	}
	locations, err := p.locations.ActiveLocations(ctx)
	if err != nil {
		return nil, err
	}

	result := &AllocationResult{
		ProductID: req.ProductID,
		Requested: req.Quantity,
		Lines:     make([]AllocationLine, 0, len(locations)),
	}
	for _, loc := range locations {
		remaining := result.Shortfall()
		if remaining == 0 {
			break
		}
		taken, err := p.takeFrom(ctx, req, loc.ID, remaining)
		if err != nil {
			if relErr := p.ReleaseAllocation(ctx, result, req.Reference, req.Actor); relErr != nil {
				p.logger.Error("failed to release partial allocation",
					zap.String("product_id", req.ProductID.String()),
					zap.Error(relErr))
			}
			return nil, fmt.Errorf("allocate at location %s: %w", loc.ID, err)
		}
		if taken > 0 {
			result.Lines = append(result.Lines, AllocationLine{LocationID: loc.ID, Quantity: taken})
			result.Allocated += taken
		}
	}

	if !result.IsComplete() {
		p.logger.Warn("partial allocation",
			zap.String("product_id", req.ProductID.String()),
			zap.Int64("requested", result.Requested),
			zap.Int64("allocated", result.Allocated),
			zap.String("reference", req.Reference))
	}
	return result, nil
}

// takeFrom reserves min(available, remaining) at one location. If the
// reservation loses a race the current availability is read and tried once
// more before giving up on the location.
func (p *AllocationPlanner) takeFrom(ctx context.Context, req AllocateRequest, locationID uuid.UUID, remaining int64) (int64, error) {
	for attempt := 0; attempt < 2; attempt++ {
		item, err := p.ledger.GetItem(ctx, req.ProductID, locationID)
		if err != nil {
			return 0, err
		}
		if item == nil {
			return 0, nil
		}
		take := min(item.Available(), remaining)
		if take <= 0 {
			return 0, nil
		}
		ok, err := p.reservations.ReserveAt(ctx, req.ProductID, locationID, take, req.Reference, req.Actor)
		if err != nil {
			return 0, err
		}
		if ok {
			return take, nil
		}
		p.logger.Debug("allocation reserve lost a race",
			zap.String("product_id", req.ProductID.String()),
			zap.String("location_id", locationID.String()),
			zap.Int("attempt", attempt+1))
	}
	return 0, nil
}

// ReleaseAllocation releases every line of an allocation
func (p *AllocationPlanner) ReleaseAllocation(ctx context.Context, result *AllocationResult, reference, actor string) error {
	var errs []error
	for _, line := range result.Lines {
		locationID := line.LocationID
		err := p.reservations.Release(ctx, ReleaseRequest{
			ProductID:  result.ProductID,
			Quantity:   line.Quantity,
			LocationID: &locationID,
			Reference:  reference,
			Actor:      actor,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
