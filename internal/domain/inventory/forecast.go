package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/inventory/internal/domain/shared"
)

// ForecastPeriod is the horizon of a forecast
type ForecastPeriod string

const (
	ForecastPeriodWeek    ForecastPeriod = "week"
	ForecastPeriodMonth   ForecastPeriod = "month"
	ForecastPeriodQuarter ForecastPeriod = "quarter"
)

// Weeks returns the number of weeks in the period
func (p ForecastPeriod) Weeks() (decimal.Decimal, error) {
	switch p {
	case ForecastPeriodWeek:
		return decimal.NewFromInt(1), nil
	case ForecastPeriodMonth:
		return decimal.NewFromInt(52).Div(decimal.NewFromInt(12)), nil
	case ForecastPeriodQuarter:
		return decimal.NewFromInt(13), nil
	}
	return decimal.Zero, shared.NewDomainErrorf(CodeForecastInvalid, "invalid forecast period %q", p)
}

// maxReorderHorizon bounds how far ahead a suggested reorder date may land
const maxReorderHorizon = 10 * 365 * 24 * time.Hour

// ForecastStatus tells whether a forecast could be computed
type ForecastStatus string

const (
	ForecastStatusAvailable   ForecastStatus = "available"
	ForecastStatusUnavailable ForecastStatus = "unavailable"
)

// InventoryForecast is an advisory, computed-on-demand projection
type InventoryForecast struct {
	ProductID            uuid.UUID
	LocationID           uuid.UUID
	Period               ForecastPeriod
	Available            int64
	WeeklyDemand         decimal.Decimal
	DemandForecast       decimal.Decimal
	ReorderSuggestion    int64
	StockOutRisk         float64
	SuggestedReorderDate *time.Time
	Status               ForecastStatus
	Reason               string
	GeneratedAt          time.Time
}

// UnavailableForecast is returned when demand cannot be estimated
func UnavailableForecast(key StockKey, period ForecastPeriod, available int64, reason string, now time.Time) *InventoryForecast {
	return &InventoryForecast{
		ProductID:      key.ProductID,
		LocationID:     key.LocationID,
		Period:         period,
		Available:      available,
		WeeklyDemand:   decimal.Zero,
		DemandForecast: decimal.Zero,
		Status:         ForecastStatusUnavailable,
		Reason:         reason,
		GeneratedAt:    now,
	}
}

// ComputeForecast projects demand over the period against the item state.
// item may be nil for an untracked key, which is treated as empty stock.
func ComputeForecast(key StockKey, item *InventoryItem, weeklyDemand decimal.Decimal, period ForecastPeriod, now time.Time) (*InventoryForecast, error) {
	weeks, err := period.Weeks()
	if err != nil {
		return nil, err
	}
	if weeklyDemand.IsNegative() {
		weeklyDemand = decimal.Zero
	}

	var available, reorderPoint, reorderQuantity int64
	if item != nil {
		available = item.Available()
		reorderPoint = item.ReorderPoint
		reorderQuantity = item.ReorderQuantity
	}

	demand := weeklyDemand.Mul(weeks).Round(2)
	stock := decimal.NewFromInt(available)

	risk := 0.0
	if demand.IsPositive() {
		risk = demand.Sub(stock).Div(demand).InexactFloat64()
		risk = min(max(risk, 0), 1)
	}

	var suggestion int64
	if risk > 0 || available <= reorderPoint {
		shortfall := demand.Add(decimal.NewFromInt(reorderPoint)).Sub(stock).Ceil().IntPart()
		suggestion = max(reorderQuantity, shortfall, 0)
	}

	var reorderDate *time.Time
	daily := weeklyDemand.Div(decimal.NewFromInt(7))
	if daily.IsPositive() {
		date := now
		headroom := decimal.NewFromInt(available - reorderPoint)
		if headroom.IsPositive() {
			hours := headroom.Div(daily).Mul(decimal.NewFromInt(24))
			limit := decimal.NewFromInt(int64(maxReorderHorizon / time.Hour))
			if hours.GreaterThan(limit) {
				hours = limit
			}
			date = now.Add(time.Duration(hours.IntPart()) * time.Hour)
		}
		reorderDate = &date
	}

	return &InventoryForecast{
		ProductID:            key.ProductID,
		LocationID:           key.LocationID,
		Period:               period,
		Available:            available,
		WeeklyDemand:         weeklyDemand,
		DemandForecast:       demand,
		ReorderSuggestion:    suggestion,
		StockOutRisk:         risk,
		SuggestedReorderDate: reorderDate,
		Status:               ForecastStatusAvailable,
		GeneratedAt:          now,
	}, nil
}
