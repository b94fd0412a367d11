package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDemandEstimator is a mock implementation of DemandEstimator
type MockDemandEstimator struct {
	mock.Mock
}

func (m *MockDemandEstimator) EstimateWeeklyDemand(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, productID, locationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestForecastEngine_Forecast(t *testing.T) {
	t.Run("uses the injected estimator", func(t *testing.T) {
		estimator := new(MockDemandEstimator)
		f := newFixture(t, appinventory.Options{DemandEstimator: estimator})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 20)
		estimator.On("EstimateWeeklyDemand", mock.Anything, product, loc).Return(decimal.NewFromInt(10), nil)

		fc, err := f.svc.Forecasts.Forecast(f.ctx, product, loc, inventory.ForecastPeriodMonth)
		require.NoError(t, err)
		assert.Equal(t, inventory.ForecastStatusAvailable, fc.Status)
		assert.Equal(t, int64(20), fc.Available)
		assert.True(t, decimal.RequireFromString("43.33").Equal(fc.DemandForecast), fc.DemandForecast.String())
		assert.InDelta(t, (43.33-20)/43.33, fc.StockOutRisk, 1e-6)
		assert.Equal(t, int64(24), fc.ReorderSuggestion)
		require.NotNil(t, fc.SuggestedReorderDate)
		estimator.AssertExpectations(t)
	})

	t.Run("estimator failure degrades to no forecast", func(t *testing.T) {
		estimator := appinventory.DemandEstimatorFunc(func(context.Context, uuid.UUID, uuid.UUID) (decimal.Decimal, error) {
			return decimal.Zero, errors.New("demand source offline")
		})
		f := newFixture(t, appinventory.Options{DemandEstimator: estimator})
		loc := f.addLocation("Main", 1)

		fc, err := f.svc.Forecasts.Forecast(f.ctx, uuid.New(), loc, inventory.ForecastPeriodWeek)
		require.NoError(t, err)
		assert.Equal(t, inventory.ForecastStatusUnavailable, fc.Status)
		assert.Equal(t, "demand source offline", fc.Reason)
	})

	t.Run("moving average over sales history", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{ForecastWindowWeeks: 2})
		loc := f.addLocation("Main", 1)
		product := uuid.New()
		f.receive(product, loc, 30)
		for _, q := range []int64{4, 6} {
			_, err := f.svc.Ledger.RecordMovement(f.ctx, inventory.MovementSpec{
				ProductID: product, LocationID: loc, Type: inventory.MovementTypeSale, Quantity: q,
			})
			require.NoError(t, err)
		}

		fc, err := f.svc.Forecasts.Forecast(f.ctx, product, loc, inventory.ForecastPeriodWeek)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(5).Equal(fc.WeeklyDemand), fc.WeeklyDemand.String())
		assert.Equal(t, int64(20), fc.Available)
		assert.Zero(t, fc.StockOutRisk)
	})

	t.Run("no history means no forecast", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)

		fc, err := f.svc.Forecasts.Forecast(f.ctx, uuid.New(), loc, inventory.ForecastPeriodQuarter)
		require.NoError(t, err)
		assert.Equal(t, inventory.ForecastStatusUnavailable, fc.Status)
	})

	t.Run("invalid period and unknown location are errors", func(t *testing.T) {
		f := newFixture(t, appinventory.Options{})
		loc := f.addLocation("Main", 1)

		_, err := f.svc.Forecasts.Forecast(f.ctx, uuid.New(), loc, "fortnight")
		assert.Error(t, err)

		_, err = f.svc.Forecasts.Forecast(f.ctx, uuid.New(), uuid.New(), inventory.ForecastPeriodWeek)
		assert.True(t, errors.Is(err, inventory.ErrLocationNotFound))
	})
}

func TestForecastEngine_GenerateReorderSuggestions(t *testing.T) {
	f := newFixture(t, appinventory.Options{ReorderLeadTime: 5 * 24 * time.Hour})
	main := f.addLocation("Main", 1)
	store := f.addLocation("Store", 2)
	quiet := f.addLocation("Quiet", 3)

	setup := func(loc uuid.UUID, onHand, reorderPoint, reorderQty int64, cost string) uuid.UUID {
		product := uuid.New()
		f.receive(product, loc, onHand)
		unitCost := decimal.RequireFromString(cost)
		_, err := f.svc.Ledger.UpdateThresholds(f.ctx, product, loc, inventory.Thresholds{
			ReorderPoint:    reorderPoint,
			ReorderQuantity: reorderQty,
			UnitCost:        &unitCost,
		})
		require.NoError(t, err)
		return product
	}
	setup(main, 2, 5, 10, "3.00")
	setup(main, 4, 5, 5, "1.50")
	setup(main, 40, 5, 10, "1.00")
	setup(store, 1, 1, 6, "2.00")
	setup(store, 1, 1, 0, "2.00")
	setup(quiet, 100, 5, 10, "1.00")

	before, err := f.svc.Ledger.ItemsForLocation(f.ctx, main)
	require.NoError(t, err)

	orders, err := f.svc.Forecasts.GenerateReorderSuggestions(f.ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, main, orders[0].LocationID)
	assert.Len(t, orders[0].Lines, 2)
	assert.True(t, decimal.RequireFromString("37.50").Equal(orders[0].TotalAmount), orders[0].TotalAmount.String())
	assert.Equal(t, inventory.PurchaseOrderStatusDraft, orders[0].Status)
	assert.Equal(t, orders[0].OrderDate.Add(5*24*time.Hour), orders[0].ExpectedDate)

	assert.Equal(t, store, orders[1].LocationID)
	require.Len(t, orders[1].Lines, 1)
	assert.True(t, decimal.NewFromInt(12).Equal(orders[1].TotalAmount))

	after, err := f.svc.Ledger.ItemsForLocation(f.ctx, main)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	t.Run("inactive locations get no draft", func(t *testing.T) {
		_, err := f.svc.Locations.SetActive(f.ctx, store, false)
		require.NoError(t, err)

		orders, err := f.svc.Forecasts.GenerateReorderSuggestions(f.ctx)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, main, orders[0].LocationID)
	})
}
