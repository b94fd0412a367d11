package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
)

// InventoryMetrics turns committed inventory events into counters. It is
// subscribed to the event bus like any other handler.
type InventoryMetrics struct {
	movements      *Counter
	movementUnits  *Counter
	alertsRaised   *Counter
	alertsResolved *Counter
	alertsActive   metric.Int64UpDownCounter
	alertFailures  *Counter
	reorders       *Counter
	reorderLines   *Counter
}

// NewInventoryMetrics creates the instruments on meter
func NewInventoryMetrics(meter metric.Meter) (*InventoryMetrics, error) {
	m := &InventoryMetrics{}
	var err error

	if m.movements, err = NewCounter(meter, "inventory_movements_total",
		"Ledger movements applied", "{movements}"); err != nil {
		return nil, err
	}
	if m.movementUnits, err = NewCounter(meter, "inventory_movement_units_total",
		"Units moved by ledger movements", "{units}"); err != nil {
		return nil, err
	}
	if m.alertsRaised, err = NewCounter(meter, "inventory_alerts_raised_total",
		"Stock alerts raised", "{alerts}"); err != nil {
		return nil, err
	}
	if m.alertsResolved, err = NewCounter(meter, "inventory_alerts_resolved_total",
		"Stock alerts resolved", "{alerts}"); err != nil {
		return nil, err
	}
	if m.alertsActive, err = meter.Int64UpDownCounter("inventory_alerts_active",
		metric.WithDescription("Stock alerts currently active"),
		metric.WithUnit("{alerts}")); err != nil {
		return nil, err
	}
	if m.alertFailures, err = NewCounter(meter, "inventory_alert_evaluation_failures_total",
		"Alert evaluations that failed after the mutation committed", "{failures}"); err != nil {
		return nil, err
	}
	if m.reorders, err = NewCounter(meter, "inventory_reorder_suggestions_total",
		"Draft purchase orders suggested", "{orders}"); err != nil {
		return nil, err
	}
	if m.reorderLines, err = NewCounter(meter, "inventory_reorder_lines_total",
		"Lines on suggested purchase orders", "{lines}"); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *InventoryMetrics) EventTypes() []string {
	return []string{
		inventory.EventTypeStockMovementRecorded,
		inventory.EventTypeStockAlertRaised,
		inventory.EventTypeStockAlertResolved,
		inventory.EventTypeReorderSuggested,
	}
}

// Handle implements shared.EventHandler
func (m *InventoryMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockMovementRecordedEvent:
		kind := AttrMovementType.String(string(e.MovementType))
		m.movements.Inc(ctx, kind)
		m.movementUnits.Add(ctx, movedUnits(e), kind)
	case *inventory.StockAlertRaisedEvent:
		m.alertsRaised.Inc(ctx, AttrAlertType.String(string(e.AlertType)), AttrSeverity.String(string(e.Severity)))
		m.alertsActive.Add(ctx, 1, metric.WithAttributes(AttrAlertType.String(string(e.AlertType))))
	case *inventory.StockAlertResolvedEvent:
		m.alertsResolved.Inc(ctx, AttrAlertType.String(string(e.AlertType)))
		m.alertsActive.Add(ctx, -1, metric.WithAttributes(AttrAlertType.String(string(e.AlertType))))
	case *inventory.ReorderSuggestedEvent:
		m.reorders.Inc(ctx, AttrLocationID.String(e.LocationID.String()))
		m.reorderLines.Add(ctx, int64(e.LineCount), AttrLocationID.String(e.LocationID.String()))
	}
	return nil
}

// AlertEvaluationFailed counts an alert evaluation that failed for key. Its
// signature matches the alert engine's failure hook.
func (m *InventoryMetrics) AlertEvaluationFailed(ctx context.Context, key inventory.StockKey, _ error) {
	m.alertFailures.Inc(ctx, AttrLocationID.String(key.LocationID.String()))
}

// movedUnits is the on-hand change, or the reserved change for movements
// that only touch reservations.
func movedUnits(e *inventory.StockMovementRecordedEvent) int64 {
	units := e.Delta
	if units == 0 {
		units = e.ReservedDelta
	}
	if units < 0 {
		return -units
	}
	return units
}

var _ shared.EventHandler = (*InventoryMetrics)(nil)
