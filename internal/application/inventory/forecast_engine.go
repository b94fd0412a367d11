package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// ForecastEngine turns ledger state and estimated demand into forecasts and
// draft purchase orders. Its output is advisory.
type ForecastEngine struct {
	locations *LocationRegistry
	ledger    *Ledger
	estimator DemandEstimator
	leadTime  time.Duration
	events    eventSink
	logger    *zap.Logger
	now       func() time.Time
}

// NewForecastEngine creates a forecast engine. leadTime sets the expected
// date of generated purchase orders.
func NewForecastEngine(locations *LocationRegistry, ledger *Ledger, estimator DemandEstimator, leadTime time.Duration, logger *zap.Logger) *ForecastEngine {
	return &ForecastEngine{
		locations: locations,
		ledger:    ledger,
		estimator: estimator,
		leadTime:  leadTime,
		events:    eventSink{logger: logger},
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the publisher for reorder events
func (f *ForecastEngine) SetEventPublisher(publisher shared.EventPublisher) {
	f.events.publisher = publisher
}

// Forecast projects demand for a key over period. Estimator failures give an
// unavailable forecast instead of an error.
func (f *ForecastEngine) Forecast(ctx context.Context, productID, locationID uuid.UUID, period inventory.ForecastPeriod) (*inventory.InventoryForecast, error) {
	if _, err := period.Weeks(); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, inventory.NewValidationError("product id is required")
	}
	if _, err := f.locations.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}

	key := inventory.NewStockKey(productID, locationID)
	item, err := f.ledger.GetItem(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	var available int64
	if item != nil {
		available = item.Available()
	}

	weekly, err := f.estimator.EstimateWeeklyDemand(ctx, productID, locationID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug("no forecast available",
			zap.String("product_id", productID.String()),
			zap.String("location_id", locationID.String()),
			zap.Error(err))
		return inventory.UnavailableForecast(key, period, available, err.Error(), f.now()), nil
	}

	return inventory.ComputeForecast(key, item, weekly, period, f.now())
}

// GenerateReorderSuggestions builds one draft purchase order per active
// location holding items at or below their reorder point. The ledger is not
// touched.
func (f *ForecastEngine) GenerateReorderSuggestions(ctx context.Context) ([]inventory.PurchaseOrder, error) {
	locations, err := f.locations.ActiveLocations(ctx)
	if err != nil {
		return nil, err
	}

	now := f.now()
	orders := make([]inventory.PurchaseOrder, 0)
	events := make([]shared.DomainEvent, 0)
	for _, loc := range locations {
		items, err := f.ledger.ItemsForLocation(ctx, loc.ID)
		if err != nil {
			return nil, err
		}
		po := inventory.NewDraftPurchaseOrder(loc, items, now, f.leadTime)
		if po == nil {
			continue
		}
		orders = append(orders, *po)
		events = append(events, inventory.NewReorderSuggestedEvent(po))
	}

	f.logger.Info("reorder suggestions generated", zap.Int("orders", len(orders)))
	f.events.publish(ctx, events)
	return orders, nil
}
