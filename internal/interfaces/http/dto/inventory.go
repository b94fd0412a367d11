package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/storefront/inventory/internal/application/inventory"
	"github.com/storefront/inventory/internal/domain/inventory"
)

// CreateLocationRequest is the body of POST /locations
type CreateLocationRequest struct {
	Code     string `json:"code" binding:"omitempty,max=32"`
	Name     string `json:"name" binding:"required,max=100"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	Type     string `json:"type" binding:"required,oneof=warehouse store dropship supplier"`
	Priority int    `json:"priority" binding:"min=0"`
}

// UpdateLocationRequest is the body of PATCH /locations/:id
type UpdateLocationRequest struct {
	Active   *bool `json:"active"`
	Priority *int  `json:"priority" binding:"omitempty,min=0"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code,omitempty"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Type      string    `json:"type"`
	Active    bool      `json:"active"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToLocationResponse converts a domain location
func ToLocationResponse(l *inventory.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Code:      l.Code,
		Name:      l.Name,
		Address:   l.Address,
		Type:      string(l.Type),
		Active:    l.Active,
		Priority:  l.Priority,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// ToLocationResponses converts a list of locations
func ToLocationResponses(locations []inventory.Location) []LocationResponse {
	out := make([]LocationResponse, len(locations))
	for i := range locations {
		out[i] = ToLocationResponse(&locations[i])
	}
	return out
}

// InventoryItemResponse represents a ledger entry in API responses
type InventoryItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	LocationID        uuid.UUID       `json:"location_id"`
	SKU               string          `json:"sku,omitempty"`
	OnHand            int64           `json:"on_hand"`
	Reserved          int64           `json:"reserved"`
	Available         int64           `json:"available"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	ReorderPoint      int64           `json:"reorder_point"`
	ReorderQuantity   int64           `json:"reorder_quantity"`
	MaxStock          int64           `json:"max_stock"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	LastCountedAt     *time.Time      `json:"last_counted_at,omitempty"`
	Version           int64           `json:"version"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToInventoryItemResponse converts a domain item
func ToInventoryItemResponse(i *inventory.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:                i.ID,
		ProductID:         i.ProductID,
		LocationID:        i.LocationID,
		SKU:               i.SKU,
		OnHand:            i.OnHand,
		Reserved:          i.Reserved,
		Available:         i.Available(),
		LowStockThreshold: i.LowStockThreshold,
		ReorderPoint:      i.ReorderPoint,
		ReorderQuantity:   i.ReorderQuantity,
		MaxStock:          i.MaxStock,
		UnitCost:          i.UnitCost,
		LastCountedAt:     i.LastCountedAt,
		Version:           i.GetVersion(),
		UpdatedAt:         i.UpdatedAt,
	}
}

// ToInventoryItemResponses converts a list of items
func ToInventoryItemResponses(items []inventory.InventoryItem) []InventoryItemResponse {
	out := make([]InventoryItemResponse, len(items))
	for i := range items {
		out[i] = ToInventoryItemResponse(&items[i])
	}
	return out
}

// UpdateThresholdsRequest is the body of PUT .../thresholds
type UpdateThresholdsRequest struct {
	LowStockThreshold int64            `json:"low_stock_threshold" binding:"min=0"`
	ReorderPoint      int64            `json:"reorder_point" binding:"min=0"`
	ReorderQuantity   int64            `json:"reorder_quantity" binding:"min=0"`
	MaxStock          int64            `json:"max_stock" binding:"min=0"`
	UnitCost          *decimal.Decimal `json:"unit_cost"`
	SKU               string           `json:"sku" binding:"omitempty,max=64"`
}

// ToThresholds converts the request to domain thresholds
func (r UpdateThresholdsRequest) ToThresholds() inventory.Thresholds {
	return inventory.Thresholds{
		LowStockThreshold: r.LowStockThreshold,
		ReorderPoint:      r.ReorderPoint,
		ReorderQuantity:   r.ReorderQuantity,
		MaxStock:          r.MaxStock,
		UnitCost:          r.UnitCost,
		SKU:               r.SKU,
	}
}

// RecordMovementRequest is the body of POST /inventory/movements
type RecordMovementRequest struct {
	ProductID       string          `json:"product_id" binding:"required,uuid"`
	LocationID      string          `json:"location_id" binding:"required,uuid"`
	Type            string          `json:"type" binding:"required,oneof=purchase sale adjustment loss return"`
	Quantity        int64           `json:"quantity" binding:"min=0"`
	CountedQuantity *int64          `json:"counted_quantity" binding:"omitempty,min=0"`
	Delta           int64           `json:"delta"`
	FromReserved    bool            `json:"from_reserved"`
	SKU             string          `json:"sku" binding:"omitempty,max=64"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Reason          string          `json:"reason" binding:"omitempty,max=255"`
	Reference       string          `json:"reference" binding:"omitempty,max=100"`
}

// ToSpec converts the request to a movement spec. IDs are already validated
// by binding.
func (r RecordMovementRequest) ToSpec(actor string) inventory.MovementSpec {
	return inventory.MovementSpec{
		ProductID:       uuid.MustParse(r.ProductID),
		LocationID:      uuid.MustParse(r.LocationID),
		Type:            inventory.MovementType(r.Type),
		Quantity:        r.Quantity,
		CountedQuantity: r.CountedQuantity,
		Delta:           r.Delta,
		FromReserved:    r.FromReserved,
		SKU:             r.SKU,
		UnitCost:        r.UnitCost,
		Reason:          r.Reason,
		Reference:       r.Reference,
		Actor:           actor,
	}
}

// TransferRequest is the body of POST /inventory/transfers
type TransferRequest struct {
	ProductID      string `json:"product_id" binding:"required,uuid"`
	FromLocationID string `json:"from_location_id" binding:"required,uuid"`
	ToLocationID   string `json:"to_location_id" binding:"required,uuid,nefield=FromLocationID"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
	Reason         string `json:"reason" binding:"omitempty,max=255"`
	Reference      string `json:"reference" binding:"omitempty,max=100"`
}

// ToSpec converts the request to a transfer movement spec
func (r TransferRequest) ToSpec(actor string) inventory.MovementSpec {
	return inventory.MovementSpec{
		ProductID:             uuid.MustParse(r.ProductID),
		LocationID:            uuid.MustParse(r.FromLocationID),
		DestinationLocationID: uuid.MustParse(r.ToLocationID),
		Type:                  inventory.MovementTypeTransfer,
		Quantity:              r.Quantity,
		Reason:                r.Reason,
		Reference:             r.Reference,
		Actor:                 actor,
	}
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	LocationID        uuid.UUID  `json:"location_id"`
	Sequence          int64      `json:"sequence"`
	Type              string     `json:"type"`
	Delta             int64      `json:"delta"`
	ReservedDelta     int64      `json:"reserved_delta"`
	ResultingOnHand   int64      `json:"resulting_on_hand"`
	ResultingReserved int64      `json:"resulting_reserved"`
	Reason            string     `json:"reason,omitempty"`
	Reference         string     `json:"reference,omitempty"`
	Actor             string     `json:"actor,omitempty"`
	CorrelationID     *uuid.UUID `json:"correlation_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToMovementResponse converts a domain movement
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:                m.ID,
		ProductID:         m.ProductID,
		LocationID:        m.LocationID,
		Sequence:          m.Sequence,
		Type:              string(m.Type),
		Delta:             m.Delta,
		ReservedDelta:     m.ReservedDelta,
		ResultingOnHand:   m.ResultingOnHand,
		ResultingReserved: m.ResultingReserved,
		Reason:            m.Reason,
		Reference:         m.Reference,
		Actor:             m.Actor,
		CorrelationID:     m.CorrelationID,
		CreatedAt:         m.CreatedAt,
	}
}

// ToMovementResponses converts a list of movements
func ToMovementResponses(movements []inventory.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out
}

// ReservationRequest is the body of the reserve and release endpoints
type ReservationRequest struct {
	ProductID  string `json:"product_id" binding:"required,uuid"`
	LocationID string `json:"location_id" binding:"omitempty,uuid"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
	Reference  string `json:"reference" binding:"omitempty,max=100"`
}

func (r ReservationRequest) locationID() *uuid.UUID {
	if r.LocationID == "" {
		return nil
	}
	id := uuid.MustParse(r.LocationID)
	return &id
}

// ToReserveRequest converts to an application reserve request
func (r ReservationRequest) ToReserveRequest(actor string) appinventory.ReserveRequest {
	return appinventory.ReserveRequest{
		ProductID:  uuid.MustParse(r.ProductID),
		Quantity:   r.Quantity,
		LocationID: r.locationID(),
		Reference:  r.Reference,
		Actor:      actor,
	}
}

// ToReleaseRequest converts to an application release request
func (r ReservationRequest) ToReleaseRequest(actor string) appinventory.ReleaseRequest {
	return appinventory.ReleaseRequest{
		ProductID:  uuid.MustParse(r.ProductID),
		Quantity:   r.Quantity,
		LocationID: r.locationID(),
		Reference:  r.Reference,
		Actor:      actor,
	}
}

// ReservationResponse reports whether a reservation succeeded
type ReservationResponse struct {
	Reserved bool `json:"reserved"`
}

// AllocateRequest is the body of POST /inventory/allocations
type AllocateRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"omitempty,max=100"`
}

// ToAllocateRequest converts to an application allocate request
func (r AllocateRequest) ToAllocateRequest(actor string) appinventory.AllocateRequest {
	return appinventory.AllocateRequest{
		ProductID: uuid.MustParse(r.ProductID),
		Quantity:  r.Quantity,
		Reference: r.Reference,
		Actor:     actor,
	}
}

// AllocationLineResponse is the quantity taken from one location
type AllocationLineResponse struct {
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int64     `json:"quantity"`
}

// AllocationResponse represents an allocation result
type AllocationResponse struct {
	ProductID uuid.UUID                `json:"product_id"`
	Requested int64                    `json:"requested"`
	Allocated int64                    `json:"allocated"`
	Shortfall int64                    `json:"shortfall"`
	Complete  bool                     `json:"complete"`
	Lines     []AllocationLineResponse `json:"lines"`
}

// ToAllocationResponse converts an allocation result
func ToAllocationResponse(r *appinventory.AllocationResult) AllocationResponse {
	lines := make([]AllocationLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = AllocationLineResponse{LocationID: l.LocationID, Quantity: l.Quantity}
	}
	return AllocationResponse{
		ProductID: r.ProductID,
		Requested: r.Requested,
		Allocated: r.Allocated,
		Shortfall: r.Shortfall(),
		Complete:  r.IsComplete(),
		Lines:     lines,
	}
}

// AvailabilityResponse is the total available quantity of a product
type AvailabilityResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Available int64     `json:"available"`
}

// ReconciliationResponse represents a ledger reconciliation
type ReconciliationResponse struct {
	ProductID        uuid.UUID `json:"product_id"`
	LocationID       uuid.UUID `json:"location_id"`
	OnHand           int64     `json:"on_hand"`
	Reserved         int64     `json:"reserved"`
	ReplayedOnHand   int64     `json:"replayed_on_hand"`
	ReplayedReserved int64     `json:"replayed_reserved"`
	Movements        int       `json:"movements"`
	Consistent       bool      `json:"consistent"`
	Problem          string    `json:"problem,omitempty"`
}

// ToReconciliationResponse converts a reconciliation
func ToReconciliationResponse(r *appinventory.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ProductID:        r.Key.ProductID,
		LocationID:       r.Key.LocationID,
		OnHand:           r.OnHand,
		Reserved:         r.Reserved,
		ReplayedOnHand:   r.ReplayedOnHand,
		ReplayedReserved: r.ReplayedReserved,
		Movements:        r.Movements,
		Consistent:       r.Consistent,
		Problem:          r.Problem,
	}
}

// StockAlertResponse represents an alert in API responses
type StockAlertResponse struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  uuid.UUID  `json:"product_id"`
	LocationID uuid.UUID  `json:"location_id"`
	Type       string     `json:"type"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// ToStockAlertResponses converts a list of alerts
func ToStockAlertResponses(alerts []inventory.StockAlert) []StockAlertResponse {
	out := make([]StockAlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = StockAlertResponse{
			ID:         a.ID,
			ProductID:  a.ProductID,
			LocationID: a.LocationID,
			Type:       string(a.Type),
			Severity:   string(a.Severity),
			Message:    a.Message,
			Active:     a.Active,
			CreatedAt:  a.CreatedAt,
			ResolvedAt: a.ResolvedAt,
		}
	}
	return out
}

// ForecastResponse represents an inventory forecast
type ForecastResponse struct {
	ProductID            uuid.UUID       `json:"product_id"`
	LocationID           uuid.UUID       `json:"location_id"`
	Period               string          `json:"period"`
	Status               string          `json:"status"`
	Reason               string          `json:"reason,omitempty"`
	Available            int64           `json:"available"`
	WeeklyDemand         decimal.Decimal `json:"weekly_demand"`
	DemandForecast       decimal.Decimal `json:"demand_forecast"`
	ReorderSuggestion    int64           `json:"reorder_suggestion"`
	StockOutRisk         float64         `json:"stock_out_risk"`
	SuggestedReorderDate *time.Time      `json:"suggested_reorder_date,omitempty"`
	GeneratedAt          time.Time       `json:"generated_at"`
}

// ToForecastResponse converts a forecast
func ToForecastResponse(f *inventory.InventoryForecast) ForecastResponse {
	return ForecastResponse{
		ProductID:            f.ProductID,
		LocationID:           f.LocationID,
		Period:               string(f.Period),
		Status:               string(f.Status),
		Reason:               f.Reason,
		Available:            f.Available,
		WeeklyDemand:         f.WeeklyDemand.Round(2),
		DemandForecast:       f.DemandForecast.Round(2),
		ReorderSuggestion:    f.ReorderSuggestion,
		StockOutRisk:         f.StockOutRisk,
		SuggestedReorderDate: f.SuggestedReorderDate,
		GeneratedAt:          f.GeneratedAt,
	}
}

// PurchaseOrderLineResponse is one line of a suggested purchase order
type PurchaseOrderLineResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	SKU             string          `json:"sku,omitempty"`
	QuantityOrdered int64           `json:"quantity_ordered"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse represents a draft purchase order
type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	Number       string                      `json:"number"`
	SupplierID   string                      `json:"supplier_id,omitempty"`
	LocationID   uuid.UUID                   `json:"location_id"`
	Status       string                      `json:"status"`
	Lines        []PurchaseOrderLineResponse `json:"lines"`
	TotalAmount  decimal.Decimal             `json:"total_amount"`
	OrderDate    time.Time                   `json:"order_date"`
	ExpectedDate time.Time                   `json:"expected_date"`
}

// ToPurchaseOrderResponses converts suggested purchase orders
func ToPurchaseOrderResponses(orders []inventory.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, len(orders))
	for i, o := range orders {
		lines := make([]PurchaseOrderLineResponse, len(o.Lines))
		for j, l := range o.Lines {
			lines[j] = PurchaseOrderLineResponse{
				ProductID:       l.ProductID,
				SKU:             l.SKU,
				QuantityOrdered: l.QuantityOrdered,
				UnitCost:        l.UnitCost,
				LineTotal:       l.LineTotal,
			}
		}
		out[i] = PurchaseOrderResponse{
			ID:           o.ID,
			Number:       o.Number,
			SupplierID:   o.SupplierID,
			LocationID:   o.LocationID,
			Status:       string(o.Status),
			Lines:        lines,
			TotalAmount:  o.TotalAmount,
			OrderDate:    o.OrderDate,
			ExpectedDate: o.ExpectedDate,
		}
	}
	return out
}
