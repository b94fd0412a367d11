package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/inventory/internal/domain/inventory"
)

// ErrNoDemandHistory is returned by estimators that have nothing to go on
var ErrNoDemandHistory = errors.New("no demand history")

// DemandEstimator estimates weekly unit demand for a product at a location
type DemandEstimator interface {
	EstimateWeeklyDemand(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error)
}

// DemandEstimatorFunc adapts a function to DemandEstimator
type DemandEstimatorFunc func(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error)

// EstimateWeeklyDemand calls f
func (f DemandEstimatorFunc) EstimateWeeklyDemand(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	return f(ctx, productID, locationID)
}

// MovingAverageDemand averages sales over a trailing window of whole weeks
type MovingAverageDemand struct {
	movements inventory.MovementRepository
	weeks     int
	now       func() time.Time
}

// NewMovingAverageDemand creates the estimator over the last weeks weeks
func NewMovingAverageDemand(movements inventory.MovementRepository, weeks int) *MovingAverageDemand {
	if weeks <= 0 {
		weeks = 8
	}
	return &MovingAverageDemand{
		movements: movements,
		weeks:     weeks,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// EstimateWeeklyDemand returns sold units in the window divided by its weeks.
// A key with no movements at all in the window has no estimate.
func (d *MovingAverageDemand) EstimateWeeklyDemand(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	since := d.now().AddDate(0, 0, -7*d.weeks)
	history, err := d.movements.FindByKeySince(ctx, inventory.NewStockKey(productID, locationID), since)
	if err != nil {
		return decimal.Zero, err
	}
	if len(history) == 0 {
		return decimal.Zero, ErrNoDemandHistory
	}

	var sold int64
	for _, m := range history {
		if m.Type == inventory.MovementTypeSale {
			sold -= m.Delta
		}
	}
	return decimal.NewFromInt(sold).Div(decimal.NewFromInt(int64(d.weeks))), nil
}
