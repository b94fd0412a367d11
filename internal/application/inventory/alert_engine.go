package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// AlertFailureHandler is told about alert evaluations that failed after the
// triggering mutation committed.
type AlertFailureHandler func(ctx context.Context, key inventory.StockKey, err error)

// AlertEngine derives stock alerts from ledger state. Active alerts are
// unique per (product, location, type).
type AlertEngine struct {
	items     inventory.InventoryItemRepository
	alerts    inventory.StockAlertRepository
	scope     StockScope
	events    eventSink
	onFailure AlertFailureHandler
	logger    *zap.Logger
}

// NewAlertEngine creates an alert engine
func NewAlertEngine(
	items inventory.InventoryItemRepository,
	alerts inventory.StockAlertRepository,
	scope StockScope,
	logger *zap.Logger,
) *AlertEngine {
	return &AlertEngine{
		items:  items,
		alerts: alerts,
		scope:  scope,
		events: eventSink{logger: logger},
		logger: logger,
	}
}

// SetEventPublisher sets the publisher for alert events
func (e *AlertEngine) SetEventPublisher(publisher shared.EventPublisher) {
	e.events.publisher = publisher
}

// OnFailure registers a handler for evaluation failures
func (e *AlertEngine) OnFailure(handler AlertFailureHandler) {
	e.onFailure = handler
}

// Evaluate re-evaluates the alerts of one key and returns its active alerts
func (e *AlertEngine) Evaluate(ctx context.Context, productID, locationID uuid.UUID) ([]inventory.StockAlert, error) {
	key := inventory.NewStockKey(productID, locationID)
	var (
		active  []inventory.StockAlert
		pending []shared.DomainEvent
	)
	err := e.scope.Execute(ctx, []inventory.StockKey{key}, func(repos StockRepositories) error {
		item, err := repos.ItemRepo().FindByKey(ctx, key)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return inventory.NewProductNotTrackedError(key)
			}
			return err
		}
		pending, err = e.evaluateItem(ctx, repos, item)
		if err != nil {
			return err
		}
		active, err = repos.AlertRepo().FindActiveByKey(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.events.publish(ctx, pending)
	return active, nil
}

// ResolveStaleAlerts resolves the active alerts of a key whose rule no longer
// matches, and returns them.
func (e *AlertEngine) ResolveStaleAlerts(ctx context.Context, productID, locationID uuid.UUID) ([]inventory.StockAlert, error) {
	key := inventory.NewStockKey(productID, locationID)
	var (
		resolved []inventory.StockAlert
		pending  []shared.DomainEvent
	)
	err := e.scope.Execute(ctx, []inventory.StockKey{key}, func(repos StockRepositories) error {
		item, err := repos.ItemRepo().FindByKey(ctx, key)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		var rules []inventory.AlertRule
		if item != nil {
			rules = inventory.EvaluateRules(item)
		}
		resolved, pending, err = e.resolveStale(ctx, repos, key, rules)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.events.publish(ctx, pending)
	return resolved, nil
}

// ActiveAlerts lists active alerts, optionally for one location
func (e *AlertEngine) ActiveAlerts(ctx context.Context, locationID *uuid.UUID) ([]inventory.StockAlert, error) {
	return e.alerts.FindActive(ctx, locationID)
}

// evaluateItem raises alerts for matched rules that are not active yet and
// resolves the stale ones. It must run inside a unit of work holding the
// item's key.
func (e *AlertEngine) evaluateItem(ctx context.Context, repos StockRepositories, item *inventory.InventoryItem) ([]shared.DomainEvent, error) {
	key := item.Key()
	rules := inventory.EvaluateRules(item)

	active, err := repos.AlertRepo().FindActiveByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	activeTypes := make(map[inventory.AlertType]struct{}, len(active))
	for _, a := range active {
		activeTypes[a.Type] = struct{}{}
	}

	var events []shared.DomainEvent
	for _, rule := range rules {
		if _, ok := activeTypes[rule.Type]; ok {
			continue
		}
		alert := inventory.NewStockAlert(key, rule)
		if err := repos.AlertRepo().Save(ctx, alert); err != nil {
			return nil, err
		}
		activeTypes[rule.Type] = struct{}{}
		events = append(events, inventory.NewStockAlertRaisedEvent(alert))
		e.logger.Info("stock alert raised",
			zap.String("product_id", key.ProductID.String()),
			zap.String("location_id", key.LocationID.String()),
			zap.String("alert_type", string(rule.Type)),
			zap.String("severity", string(rule.Severity)))
	}

	_, resolvedEvents, err := e.resolveStale(ctx, repos, key, rules)
	if err != nil {
		return nil, err
	}
	return append(events, resolvedEvents...), nil
}

func (e *AlertEngine) resolveStale(ctx context.Context, repos StockRepositories, key inventory.StockKey, rules []inventory.AlertRule) ([]inventory.StockAlert, []shared.DomainEvent, error) {
	matched := make(map[inventory.AlertType]struct{}, len(rules))
	for _, r := range rules {
		matched[r.Type] = struct{}{}
	}

	active, err := repos.AlertRepo().FindActiveByKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	var (
		resolved []inventory.StockAlert
		events   []shared.DomainEvent
	)
	for i := range active {
		alert := &active[i]
		if _, ok := matched[alert.Type]; ok || !alert.Type.IsDerived() {
			continue
		}
		if !alert.Resolve(now) {
			continue
		}
		if err := repos.AlertRepo().Save(ctx, alert); err != nil {
			return nil, nil, err
		}
		resolved = append(resolved, *alert)
		events = append(events, inventory.NewStockAlertResolvedEvent(alert))
	}
	return resolved, events, nil
}

func (e *AlertEngine) reportFailure(ctx context.Context, key inventory.StockKey, err error) {
	e.logger.Warn("alert evaluation failed; mutation kept",
		zap.String("product_id", key.ProductID.String()),
		zap.String("location_id", key.LocationID.String()),
		zap.Error(err))
	if e.onFailure != nil {
		e.onFailure(ctx, key, err)
	}
}
