package inventory

import (
	"time"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// Repositories are the stores the inventory components read from outside a
// unit of work.
type Repositories struct {
	Locations inventory.LocationRepository
	Items     inventory.InventoryItemRepository
	Movements inventory.MovementRepository
	Alerts    inventory.StockAlertRepository
}

// Options tune the service
type Options struct {
	LocationCache LocationCache
	// DemandEstimator overrides the moving average estimator
	DemandEstimator     DemandEstimator
	ForecastWindowWeeks int
	ReorderLeadTime     time.Duration
	EventPublisher      shared.EventPublisher
}

// Service wires the inventory components together. It is created once at
// process start and shared by injection.
type Service struct {
	Locations    *LocationRegistry
	Ledger       *Ledger
	Reservations *ReservationManager
	Allocator    *AllocationPlanner
	Alerts       *AlertEngine
	Forecasts    *ForecastEngine
}

// NewService builds every component over the given repositories and scope
func NewService(repos Repositories, scope StockScope, opts Options, logger *zap.Logger) *Service {
	registry := NewLocationRegistry(repos.Locations, opts.LocationCache, logger.Named("locations"))
	alerts := NewAlertEngine(repos.Items, repos.Alerts, scope, logger.Named("alerts"))
	ledger := NewLedger(registry, repos.Items, repos.Movements, scope, alerts, logger.Named("ledger"))
	reservations := NewReservationManager(registry, ledger, logger.Named("reservations"))
	allocator := NewAllocationPlanner(registry, ledger, reservations, logger.Named("allocation"))

	estimator := opts.DemandEstimator
	if estimator == nil {
		estimator = NewMovingAverageDemand(repos.Movements, opts.ForecastWindowWeeks)
	}
	forecasts := NewForecastEngine(registry, ledger, estimator, opts.ReorderLeadTime, logger.Named("forecast"))

	if opts.EventPublisher != nil {
		ledger.SetEventPublisher(opts.EventPublisher)
		alerts.SetEventPublisher(opts.EventPublisher)
		forecasts.SetEventPublisher(opts.EventPublisher)
	}

	return &Service{
		Locations:    registry,
		Ledger:       ledger,
		Reservations: reservations,
		Allocator:    allocator,
		Alerts:       alerts,
		Forecasts:    forecasts,
	}
}
