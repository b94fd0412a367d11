package inventory

import (
	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/shared"
)

// Event type constants
const (
	EventTypeStockMovementRecorded = "StockMovementRecorded"
	EventTypeStockAlertRaised      = "StockAlertRaised"
	EventTypeStockAlertResolved    = "StockAlertResolved"
	EventTypeReorderSuggested      = "ReorderSuggested"
)

// StockMovementRecordedEvent is raised for every applied movement
type StockMovementRecordedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID    `json:"product_id"`
	LocationID    uuid.UUID    `json:"location_id"`
	MovementID    uuid.UUID    `json:"movement_id"`
	MovementType  MovementType `json:"movement_type"`
	Sequence      int64        `json:"sequence"`
	Delta         int64        `json:"delta"`
	ReservedDelta int64        `json:"reserved_delta"`
	OnHand        int64        `json:"on_hand"`
	Reserved      int64        `json:"reserved"`
	Reference     string       `json:"reference,omitempty"`
}

// NewStockMovementRecordedEvent creates the event for a movement of item
func NewStockMovementRecordedEvent(item *InventoryItem, m *Movement) *StockMovementRecordedEvent {
	return &StockMovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementRecorded, AggregateTypeInventoryItem, item.ID),
		ProductID:       m.ProductID,
		LocationID:      m.LocationID,
		MovementID:      m.ID,
		MovementType:    m.Type,
		Sequence:        m.Sequence,
		Delta:           m.Delta,
		ReservedDelta:   m.ReservedDelta,
		OnHand:          m.ResultingOnHand,
		Reserved:        m.ResultingReserved,
		Reference:       m.Reference,
	}
}

// Available returns the available quantity after the movement
func (e *StockMovementRecordedEvent) Available() int64 {
	return e.OnHand - e.Reserved
}

// StockAlertRaisedEvent is raised when a new active alert is created
type StockAlertRaisedEvent struct {
	shared.BaseDomainEvent
	AlertID    uuid.UUID     `json:"alert_id"`
	ProductID  uuid.UUID     `json:"product_id"`
	LocationID uuid.UUID     `json:"location_id"`
	AlertType  AlertType     `json:"alert_type"`
	Severity   AlertSeverity `json:"severity"`
	Message    string        `json:"message"`
}

// NewStockAlertRaisedEvent creates the event
func NewStockAlertRaisedEvent(alert *StockAlert) *StockAlertRaisedEvent {
	return &StockAlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAlertRaised, AggregateTypeStockAlert, alert.ID),
		AlertID:         alert.ID,
		ProductID:       alert.ProductID,
		LocationID:      alert.LocationID,
		AlertType:       alert.Type,
		Severity:        alert.Severity,
		Message:         alert.Message,
	}
}

// StockAlertResolvedEvent is raised when an active alert stops matching
type StockAlertResolvedEvent struct {
	shared.BaseDomainEvent
	AlertID    uuid.UUID `json:"alert_id"`
	ProductID  uuid.UUID `json:"product_id"`
	LocationID uuid.UUID `json:"location_id"`
	AlertType  AlertType `json:"alert_type"`
}

// NewStockAlertResolvedEvent creates the event
func NewStockAlertResolvedEvent(alert *StockAlert) *StockAlertResolvedEvent {
	return &StockAlertResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAlertResolved, AggregateTypeStockAlert, alert.ID),
		AlertID:         alert.ID,
		ProductID:       alert.ProductID,
		LocationID:      alert.LocationID,
		AlertType:       alert.Type,
	}
}

// ReorderSuggestedEvent is raised for each generated draft purchase order
type ReorderSuggestedEvent struct {
	shared.BaseDomainEvent
	LocationID  uuid.UUID `json:"location_id"`
	Number      string    `json:"number"`
	LineCount   int       `json:"line_count"`
	TotalAmount string    `json:"total_amount"`
}

// NewReorderSuggestedEvent creates the event
func NewReorderSuggestedEvent(po *PurchaseOrder) *ReorderSuggestedEvent {
	return &ReorderSuggestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReorderSuggested, "PurchaseOrder", po.ID),
		LocationID:      po.LocationID,
		Number:          po.Number,
		LineCount:       len(po.Lines),
		TotalAmount:     po.TotalAmount.StringFixed(2),
	}
}
