package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func eventTypes(events []shared.DomainEvent) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType())
	}
	return types
}

func TestAlertEngine_Evaluate(t *testing.T) {
	t.Run("low stock without reorder point", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 4)
		_, err := f.svc.Ledger.UpdateThresholds(f.ctx, product, loc, inventory.Thresholds{LowStockThreshold: 5, ReorderPoint: 2})
		require.NoError(t, err)

		alerts, err := f.svc.Alerts.Evaluate(f.ctx, product, loc)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, inventory.AlertTypeLowStock, alerts[0].Type)
		assert.Equal(t, inventory.SeverityMedium, alerts[0].Severity)
	})

	t.Run("evaluating twice creates no duplicates", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 1)
		_, err := f.svc.Ledger.UpdateThresholds(f.ctx, product, loc, inventory.Thresholds{LowStockThreshold: 5, ReorderPoint: 3})
		require.NoError(t, err)

		first, err := f.svc.Alerts.Evaluate(f.ctx, product, loc)
		require.NoError(t, err)
		second, err := f.svc.Alerts.Evaluate(f.ctx, product, loc)
		require.NoError(t, err)

		assert.Len(t, first, 2)
		assert.ElementsMatch(t, first, second)
		all, err := f.svc.Alerts.ActiveAlerts(f.ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("untracked key", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})

		_, err := f.svc.Alerts.Evaluate(f.ctx, uuid.New(), uuid.New())
		assert.True(t, errors.Is(err, inventory.ErrProductNotTracked))
	})

	t.Run("restock resolves stale alerts", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 2)
		_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: loc, Type: inventory.MovementTypeSale, Quantity: 2,
		})
		require.NoError(t, err)
		active, _ := f.svc.Alerts.ActiveAlerts(f.ctx, &loc)
		require.Len(t, active, 1)

		f.receive(product, loc, 20)

		active, err = f.svc.Alerts.ActiveAlerts(f.ctx, &loc)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("publishes raised and resolved events", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		var published []shared.DomainEvent
		publisher.On("Publish", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				published = append(published, args.Get(1).([]shared.DomainEvent)...)
			}).
			Return(nil)

		f := newFixture(t, appinventory.Options{EventPublisher: publisher})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 1)
		_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
			ProductID: product, LocationID: loc, Type: inventory.MovementTypeLoss, Quantity: 1, Reason: "broken",
		})
		require.NoError(t, err)
		f.receive(product, loc, 1)

		types := eventTypes(published)
		assert.Contains(t, types, inventory.EventTypeStockAlertRaised)
		assert.Contains(t, types, inventory.EventTypeStockAlertResolved)
		assert.Contains(t, types, inventory.EventTypeStockMovementRecorded)
		publisher.AssertExpectations(t)
	})
}

func TestAlertEngine_ResolveStaleAlerts(t *testing.T) {
	f := newFixture(t, appinventory.Options{})
	loc := f.addLocation("Main", 1)
	product := uuid.New()
	f.receive(product, loc, 1)
	key := inventory.NewStockKey(product, loc)

	// An out-of-stock alert left behind by a crashed evaluation.
	stale := inventory.NewStockAlert(key, inventory.AlertRule{Type: inventory.AlertTypeOutOfStock, Severity: inventory.SeverityCritical})
	require.NoError(t, f.store.Alerts().Save(f.ctx, stale))
	manual := inventory.NewStockAlert(key, inventory.AlertRule{Type: inventory.AlertTypeDiscrepancy, Severity: inventory.SeverityHigh})
	require.NoError(t, f.store.Alerts().Save(f.ctx, manual))

	resolved, err := f.svc.Alerts.ResolveStaleAlerts(f.ctx, product, loc)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, stale.ID, resolved[0].ID)
	assert.NotNil(t, resolved[0].ResolvedAt)

	active, err := f.svc.Alerts.ActiveAlerts(f.ctx, &loc)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, inventory.AlertTypeDiscrepancy, active[0].Type)
}
