package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/shared"
)

// AggregateTypeStockAlert is the aggregate type name used in alert events
const AggregateTypeStockAlert = "StockAlert"

// AlertType classifies a stock alert
type AlertType string

const (
	AlertTypeLowStock     AlertType = "low_stock"
	AlertTypeOutOfStock   AlertType = "out_of_stock"
	AlertTypeOverstock    AlertType = "overstock"
	AlertTypeReorderPoint AlertType = "reorder_point"
	AlertTypeExpired      AlertType = "expired"
	AlertTypeDiscrepancy  AlertType = "discrepancy"
)

// IsValid reports whether the alert type is known
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeLowStock, AlertTypeOutOfStock, AlertTypeOverstock,
		AlertTypeReorderPoint, AlertTypeExpired, AlertTypeDiscrepancy:
		return true
	}
	return false
}

// AlertSeverity ranks alerts
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// StockAlert is a condition raised against one stock key. At most one alert
// per (product, location, type) is active at a time.
type StockAlert struct {
	shared.BaseEntity
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Type       AlertType
	Severity   AlertSeverity
	Message    string
	Active     bool
	ResolvedAt *time.Time
}

// Key returns the stock key of the alert
func (a *StockAlert) Key() StockKey {
	return NewStockKey(a.ProductID, a.LocationID)
}

// Resolve deactivates the alert. Resolving twice keeps the first timestamp.
func (a *StockAlert) Resolve(at time.Time) bool {
	if !a.Active {
		return false
	}
	a.Active = false
	a.ResolvedAt = &at
	a.Touch(at)
	return true
}

// AlertRule is a rule that matched the current state of an item
type AlertRule struct {
	Type     AlertType
	Severity AlertSeverity
	Message  string
}

// NewStockAlert creates an active alert from a matched rule
func NewStockAlert(key StockKey, rule AlertRule) *StockAlert {
	return &StockAlert{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  key.ProductID,
		LocationID: key.LocationID,
		Type:       rule.Type,
		Severity:   rule.Severity,
		Message:    rule.Message,
		Active:     true,
	}
}

// EvaluateRules returns every alert rule the item currently matches. Rules are
// independent; several may match at once. A zero reorder point or max stock
// means the setting is not configured.
func EvaluateRules(item *InventoryItem) []AlertRule {
	available := item.Available()
	rules := make([]AlertRule, 0, 2)

	if available == 0 {
		rules = append(rules, AlertRule{
			Type:     AlertTypeOutOfStock,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("%s is out of stock", itemLabel(item)),
		})
	}
	if available > 0 && available <= item.LowStockThreshold {
		rules = append(rules, AlertRule{
			Type:     AlertTypeLowStock,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("%s is low on stock: %d available, threshold %d", itemLabel(item), available, item.LowStockThreshold),
		})
	}
	if item.ReorderPoint > 0 && available <= item.ReorderPoint {
		rules = append(rules, AlertRule{
			Type:     AlertTypeReorderPoint,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("%s reached its reorder point: %d available, reorder point %d", itemLabel(item), available, item.ReorderPoint),
		})
	}
	if item.MaxStock > 0 && item.OnHand > item.MaxStock {
		rules = append(rules, AlertRule{
			Type:     AlertTypeOverstock,
			Severity: SeverityLow,
			Message:  fmt.Sprintf("%s is overstocked: %d on hand, maximum %d", itemLabel(item), item.OnHand, item.MaxStock),
		})
	}
	return rules
}

// IsDerived reports whether the alert type is computed from quantities.
// Only derived alerts are resolved automatically.
func (t AlertType) IsDerived() bool {
	switch t {
	case AlertTypeOutOfStock, AlertTypeLowStock, AlertTypeReorderPoint, AlertTypeOverstock:
		return true
	}
	return false
}

func itemLabel(item *InventoryItem) string {
	if item.SKU != "" {
		return "SKU " + item.SKU
	}
	return "product " + item.ProductID.String()
}
