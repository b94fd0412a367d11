package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// Ledger is the authoritative per-(product, location) stock record.
// Every quantity change goes through RecordMovement or Transfer, which
// serialize on the stock key, append the movement and re-evaluate alerts
// in the same unit of work.
type Ledger struct {
	locations *LocationRegistry
	items     inventory.InventoryItemRepository
	movements inventory.MovementRepository
	scope     StockScope
	alerts    *AlertEngine
	events    eventSink
	logger    *zap.Logger
}

// NewLedger creates a ledger. items and movements serve reads outside a
// unit of work.
func NewLedger(
	locations *LocationRegistry,
	items inventory.InventoryItemRepository,
	movements inventory.MovementRepository,
	scope StockScope,
	alerts *AlertEngine,
	logger *zap.Logger,
) *Ledger {
	return &Ledger{
		locations: locations,
		items:     items,
		movements: movements,
		scope:     scope,
		alerts:    alerts,
		events:    eventSink{logger: logger},
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher used after each committed mutation
func (l *Ledger) SetEventPublisher(publisher shared.EventPublisher) {
	l.events.publisher = publisher
}

// GetItem returns the current state of a key, or nil if no movement has ever
// touched it.
func (l *Ledger) GetItem(ctx context.Context, productID, locationID uuid.UUID) (*inventory.InventoryItem, error) {
	item, err := l.items.FindByKey(ctx, inventory.NewStockKey(productID, locationID))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// ItemsForProduct returns the entries of a product at every location
func (l *Ledger) ItemsForProduct(ctx context.Context, productID uuid.UUID) ([]inventory.InventoryItem, error) {
	return l.items.FindByProduct(ctx, productID)
}

// ItemsForLocation returns the entries held at a location
func (l *Ledger) ItemsForLocation(ctx context.Context, locationID uuid.UUID) ([]inventory.InventoryItem, error) {
	return l.items.FindByLocation(ctx, locationID)
}

// TotalAvailable sums available quantity over all locations, active or not
func (l *Ledger) TotalAvailable(ctx context.Context, productID uuid.UUID) (int64, error) {
	items, err := l.items.FindByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range items {
		total += items[i].Available()
	}
	return total, nil
}

// History returns the movements of a key in sequence order
func (l *Ledger) History(ctx context.Context, productID, locationID uuid.UUID) ([]inventory.Movement, error) {
	return l.movements.FindByKey(ctx, inventory.NewStockKey(productID, locationID))
}

// RecordMovement applies one movement. Transfers are dispatched to Transfer
// and the source leg is returned.
func (l *Ledger) RecordMovement(ctx context.Context, spec inventory.MovementSpec) (*inventory.Movement, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Type == inventory.MovementTypeTransfer {
		legs, err := l.Transfer(ctx, spec)
		if err != nil {
			return nil, err
		}
		return &legs[0], nil
	}
	if _, err := l.locations.GetLocation(ctx, spec.LocationID); err != nil {
		return nil, err
	}

	key := spec.Key()
	var (
		movement *inventory.Movement
		pending  []shared.DomainEvent
	)
	err := l.scope.Execute(ctx, []inventory.StockKey{key}, func(repos StockRepositories) error {
		pending = nil
		item, err := l.loadItem(ctx, repos, key, spec.Type.CreatesItem())
		if err != nil {
			return err
		}
		m, err := item.Apply(spec)
		if err != nil {
			return err
		}
		if err := l.persist(ctx, repos, item, m); err != nil {
			return err
		}
		movement = m
		pending = append(pending, item.GetDomainEvents()...)
		pending = append(pending, l.evaluateAlerts(ctx, repos, item)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("movement recorded",
		zap.String("product_id", key.ProductID.String()),
		zap.String("location_id", key.LocationID.String()),
		zap.String("type", movement.Type.String()),
		zap.Int64("delta", movement.Delta),
		zap.Int64("reserved_delta", movement.ReservedDelta),
		zap.Int64("sequence", movement.Sequence))
	l.events.publish(ctx, pending)
	return movement, nil
}

// Transfer moves stock between two locations of the same product as a pair
// of movements committed together. The first returned movement is the debit
// at the source, the second the credit at the destination.
func (l *Ledger) Transfer(ctx context.Context, spec inventory.MovementSpec) ([]inventory.Movement, error) {
	spec.Type = inventory.MovementTypeTransfer
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if _, err := l.locations.GetLocation(ctx, spec.LocationID); err != nil {
		return nil, err
	}
	if _, err := l.locations.GetLocation(ctx, spec.DestinationLocationID); err != nil {
		return nil, err
	}

	srcKey := spec.Key()
	dstKey := inventory.NewStockKey(spec.ProductID, spec.DestinationLocationID)
	var (
		legs    []inventory.Movement
		pending []shared.DomainEvent
	)
	err := l.scope.Execute(ctx, inventory.SortedKeys(srcKey, dstKey), func(repos StockRepositories) error {
		pending = nil
		source, err := l.loadItem(ctx, repos, srcKey, false)
		if err != nil {
			return err
		}
		dest, err := l.loadItem(ctx, repos, dstKey, true)
		if err != nil {
			return err
		}

		correlationID := uuid.New()
		out, err := source.ApplyTransferOut(spec, correlationID)
		if err != nil {
			return err
		}
		in, err := dest.ApplyTransferIn(spec, correlationID, source.UnitCost)
		if err != nil {
			return err
		}
		if dest.SKU == "" {
			dest.SKU = source.SKU
		}
		if err := l.persist(ctx, repos, source, out); err != nil {
			return err
		}
		if err := l.persist(ctx, repos, dest, in); err != nil {
			return err
		}

		legs = []inventory.Movement{*out, *in}
		pending = append(pending, source.GetDomainEvents()...)
		pending = append(pending, dest.GetDomainEvents()...)
		pending = append(pending, l.evaluateAlerts(ctx, repos, source)...)
		pending = append(pending, l.evaluateAlerts(ctx, repos, dest)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("stock transferred",
		zap.String("product_id", spec.ProductID.String()),
		zap.String("from_location_id", spec.LocationID.String()),
		zap.String("to_location_id", spec.DestinationLocationID.String()),
		zap.Int64("quantity", spec.Quantity))
	l.events.publish(ctx, pending)
	return legs, nil
}

// UpdateThresholds changes the alerting and replenishment settings of an
// existing item and re-evaluates its alerts.
func (l *Ledger) UpdateThresholds(ctx context.Context, productID, locationID uuid.UUID, thresholds inventory.Thresholds) (*inventory.InventoryItem, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	key := inventory.NewStockKey(productID, locationID)
	var (
		updated *inventory.InventoryItem
		pending []shared.DomainEvent
	)
	err := l.scope.Execute(ctx, []inventory.StockKey{key}, func(repos StockRepositories) error {
		item, err := l.loadItem(ctx, repos, key, false)
		if err != nil {
			return err
		}
		if err := item.SetThresholds(thresholds); err != nil {
			return err
		}
		if err := repos.ItemRepo().Save(ctx, item); err != nil {
			return err
		}
		updated = item
		pending = l.evaluateAlerts(ctx, repos, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.events.publish(ctx, pending)
	return updated, nil
}

// Reconciliation compares an item with the fold of its movement history
type Reconciliation struct {
	Key              inventory.StockKey
	OnHand           int64
	Reserved         int64
	ReplayedOnHand   int64
	ReplayedReserved int64
	Movements        int
	Consistent       bool
	Problem          string
}

// Reconcile replays the history of a key and checks it against the
// materialized item.
func (l *Ledger) Reconcile(ctx context.Context, productID, locationID uuid.UUID) (*Reconciliation, error) {
	key := inventory.NewStockKey(productID, locationID)
	var result *Reconciliation
	err := l.scope.Execute(ctx, []inventory.StockKey{key}, func(repos StockRepositories) error {
		item, err := repos.ItemRepo().FindByKey(ctx, key)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return inventory.NewProductNotTrackedError(key)
			}
			return err
		}
		history, err := repos.MovementRepo().FindByKey(ctx, key)
		if err != nil {
			return err
		}

		result = &Reconciliation{Key: key, OnHand: item.OnHand, Reserved: item.Reserved}
		replayed, replayErr := inventory.Replay(history)
		result.ReplayedOnHand = replayed.OnHand
		result.ReplayedReserved = replayed.Reserved
		result.Movements = replayed.Count
		switch {
		case replayErr != nil:
			result.Problem = replayErr.Error()
		case replayed.OnHand != item.OnHand || replayed.Reserved != item.Reserved:
			result.Problem = "materialized quantities differ from movement history"
		case replayed.LastSequence != item.GetVersion():
			result.Problem = "item version differs from last movement sequence"
		default:
			result.Consistent = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Consistent {
		l.logger.Error("ledger reconciliation failed",
			zap.String("product_id", productID.String()),
			zap.String("location_id", locationID.String()),
			zap.String("problem", result.Problem))
	}
	return result, nil
}

// loadItem returns the item for key. When create is set a missing entry is
// started empty, otherwise it is a ProductNotTrackedError.
func (l *Ledger) loadItem(ctx context.Context, repos StockRepositories, key inventory.StockKey, create bool) (*inventory.InventoryItem, error) {
	item, err := repos.ItemRepo().FindByKey(ctx, key)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if create {
		return inventory.NewInventoryItem(key), nil
	}
	return nil, inventory.NewProductNotTrackedError(key)
}

func (l *Ledger) persist(ctx context.Context, repos StockRepositories, item *inventory.InventoryItem, m *inventory.Movement) error {
	if err := repos.ItemRepo().Save(ctx, item); err != nil {
		return err
	}
	return repos.MovementRepo().Append(ctx, m)
}

// evaluateAlerts re-evaluates alerts of item in a nested unit of work. A
// failure is logged and dropped; the enclosing mutation still commits.
func (l *Ledger) evaluateAlerts(ctx context.Context, repos StockRepositories, item *inventory.InventoryItem) []shared.DomainEvent {
	if l.alerts == nil {
		return nil
	}
	var events []shared.DomainEvent
	err := repos.Nested(ctx, func(nested StockRepositories) error {
		evs, err := l.alerts.evaluateItem(ctx, nested, item)
		if err != nil {
			return err
		}
		events = evs
		return nil
	})
	if err != nil {
		l.alerts.reportFailure(ctx, item.Key(), err)
		return nil
	}
	return events
}
