package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// sumFor adds up the int64 sum points whose attributes include attrs
func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	m, ok := findMetric(rm, name)
	require.True(t, ok, "metric %s not collected", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, kv := range attrs {
			v, found := dp.Attributes.Value(kv.Key)
			if !found || v != kv.Value {
				match = false
				break
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

func TestInventoryMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewInventoryMetrics(provider.Meter("inventory-test"))
	require.NoError(t, err)

	locationID := uuid.New()
	events := []shared.DomainEvent{
		&inventory.StockMovementRecordedEvent{MovementType: inventory.MovementTypePurchase, Delta: 10},
		&inventory.StockMovementRecordedEvent{MovementType: inventory.MovementTypeSale, Delta: -4},
		&inventory.StockMovementRecordedEvent{MovementType: inventory.MovementTypeReservation, ReservedDelta: 3},
		&inventory.StockAlertRaisedEvent{AlertType: inventory.AlertTypeLowStock, Severity: inventory.SeverityMedium},
		&inventory.StockAlertRaisedEvent{AlertType: inventory.AlertTypeOutOfStock, Severity: inventory.SeverityCritical},
		&inventory.StockAlertResolvedEvent{AlertType: inventory.AlertTypeLowStock},
		&inventory.ReorderSuggestedEvent{LocationID: locationID, LineCount: 3},
	}
	for _, e := range events {
		require.NoError(t, m.Handle(ctx, e))
	}

	failedKey := inventory.NewStockKey(uuid.New(), locationID)
	m.AlertEvaluationFailed(ctx, failedKey, errors.New("alert store unavailable"))
	m.AlertEvaluationFailed(ctx, failedKey, errors.New("alert store unavailable"))

	rm := collect(t, reader)

	t.Run("movements by type", func(t *testing.T) {
		assert.Equal(t, int64(3), sumFor(t, rm, "inventory_movements_total"))
		assert.Equal(t, int64(1), sumFor(t, rm, "inventory_movements_total", AttrMovementType.String("sale")))
		assert.Equal(t, int64(17), sumFor(t, rm, "inventory_movement_units_total"))
		assert.Equal(t, int64(3), sumFor(t, rm, "inventory_movement_units_total", AttrMovementType.String("reservation")))
	})

	t.Run("alerts", func(t *testing.T) {
		assert.Equal(t, int64(2), sumFor(t, rm, "inventory_alerts_raised_total"))
		assert.Equal(t, int64(1), sumFor(t, rm, "inventory_alerts_raised_total", AttrSeverity.String("critical")))
		assert.Equal(t, int64(1), sumFor(t, rm, "inventory_alerts_resolved_total"))
		assert.Equal(t, int64(0), sumFor(t, rm, "inventory_alerts_active", AttrAlertType.String("low_stock")))
		assert.Equal(t, int64(1), sumFor(t, rm, "inventory_alerts_active", AttrAlertType.String("out_of_stock")))
	})

	t.Run("reorders", func(t *testing.T) {
		assert.Equal(t, int64(1), sumFor(t, rm, "inventory_reorder_suggestions_total", AttrLocationID.String(locationID.String())))
		assert.Equal(t, int64(3), sumFor(t, rm, "inventory_reorder_lines_total"))
	})

	t.Run("alert evaluation failures", func(t *testing.T) {
		assert.Equal(t, int64(2), sumFor(t, rm, "inventory_alert_evaluation_failures_total",
			AttrLocationID.String(locationID.String())))
	})
}
