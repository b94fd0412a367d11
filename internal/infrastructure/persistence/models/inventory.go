package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
)

// LocationModel is the persistence model for a stock-keeping location.
type LocationModel struct {
	BaseModel
	Code     string `gorm:"type:varchar(32);not null;default:''"`
	Name     string `gorm:"type:varchar(100);not null"`
	Address  string `gorm:"type:varchar(255);not null;default:''"`
	Type     string `gorm:"type:varchar(20);not null"`
	Active   bool   `gorm:"not null;index"`
	Priority int    `gorm:"not null;default:0"`
	Sequence int64  `gorm:"not null;uniqueIndex:idx_locations_sequence"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the model to a domain Location
func (m *LocationModel) ToDomain() *inventory.Location {
	return &inventory.Location{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Address:    m.Address,
		Type:       inventory.LocationType(m.Type),
		Active:     m.Active,
		Priority:   m.Priority,
		Sequence:   m.Sequence,
	}
}

// LocationModelFromDomain creates a model from a domain Location
func LocationModelFromDomain(l *inventory.Location) *LocationModel {
	m := &LocationModel{
		Code:     l.Code,
		Name:     l.Name,
		Address:  l.Address,
		Type:     string(l.Type),
		Active:   l.Active,
		Priority: l.Priority,
		Sequence: l.Sequence,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// InventoryItemModel is the materialized ledger row of one stock key.
type InventoryItemModel struct {
	BaseModel
	Version           int64           `gorm:"not null;default:0"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_items_key,priority:1"`
	LocationID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_items_key,priority:2;index"`
	SKU               string          `gorm:"type:varchar(64);not null;default:''"`
	OnHand            int64           `gorm:"not null;default:0"`
	Reserved          int64           `gorm:"not null;default:0"`
	LowStockThreshold int64           `gorm:"not null;default:0"`
	ReorderPoint      int64           `gorm:"not null;default:0"`
	ReorderQuantity   int64           `gorm:"not null;default:0"`
	MaxStock          int64           `gorm:"not null;default:0"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LastCountedAt     *time.Time
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the model to a domain InventoryItem
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	item := &inventory.InventoryItem{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		ProductID:         m.ProductID,
		LocationID:        m.LocationID,
		SKU:               m.SKU,
		OnHand:            m.OnHand,
		Reserved:          m.Reserved,
		LowStockThreshold: m.LowStockThreshold,
		ReorderPoint:      m.ReorderPoint,
		ReorderQuantity:   m.ReorderQuantity,
		MaxStock:          m.MaxStock,
		UnitCost:          m.UnitCost,
	}
	if m.LastCountedAt != nil {
		at := m.LastCountedAt.UTC()
		item.LastCountedAt = &at
	}
	return item
}

// InventoryItemModelFromDomain creates a model from a domain InventoryItem
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{
		Version:           i.Version,
		ProductID:         i.ProductID,
		LocationID:        i.LocationID,
		SKU:               i.SKU,
		OnHand:            i.OnHand,
		Reserved:          i.Reserved,
		LowStockThreshold: i.LowStockThreshold,
		ReorderPoint:      i.ReorderPoint,
		ReorderQuantity:   i.ReorderQuantity,
		MaxStock:          i.MaxStock,
		UnitCost:          i.UnitCost,
		LastCountedAt:     i.LastCountedAt,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// MovementModel is one row of the append-only movement log.
type MovementModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_movements_key_seq,priority:1"`
	LocationID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_movements_key_seq,priority:2"`
	Sequence          int64      `gorm:"not null;uniqueIndex:idx_inventory_movements_key_seq,priority:3"`
	Type              string     `gorm:"type:varchar(20);not null"`
	Delta             int64      `gorm:"not null"`
	ReservedDelta     int64      `gorm:"not null"`
	ResultingOnHand   int64      `gorm:"not null"`
	ResultingReserved int64      `gorm:"not null"`
	Reason            string     `gorm:"type:text;not null;default:''"`
	Reference         string     `gorm:"type:varchar(128);not null;default:'';index"`
	Actor             string     `gorm:"type:varchar(128);not null;default:''"`
	CorrelationID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt         time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "inventory_movements"
}

// ToDomain converts the model to a domain Movement
func (m *MovementModel) ToDomain() inventory.Movement {
	return inventory.Movement{
		ID:                m.ID,
		ProductID:         m.ProductID,
		LocationID:        m.LocationID,
		Sequence:          m.Sequence,
		Type:              inventory.MovementType(m.Type),
		Delta:             m.Delta,
		ReservedDelta:     m.ReservedDelta,
		ResultingOnHand:   m.ResultingOnHand,
		ResultingReserved: m.ResultingReserved,
		Reason:            m.Reason,
		Reference:         m.Reference,
		Actor:             m.Actor,
		CorrelationID:     m.CorrelationID,
		CreatedAt:         m.CreatedAt.UTC(),
	}
}

// MovementModelFromDomain creates a model from a domain Movement
func MovementModelFromDomain(mv *inventory.Movement) *MovementModel {
	return &MovementModel{
		ID:                mv.ID,
		ProductID:         mv.ProductID,
		LocationID:        mv.LocationID,
		Sequence:          mv.Sequence,
		Type:              string(mv.Type),
		Delta:             mv.Delta,
		ReservedDelta:     mv.ReservedDelta,
		ResultingOnHand:   mv.ResultingOnHand,
		ResultingReserved: mv.ResultingReserved,
		Reason:            mv.Reason,
		Reference:         mv.Reference,
		Actor:             mv.Actor,
		CorrelationID:     mv.CorrelationID,
		CreatedAt:         mv.CreatedAt,
	}
}

// StockAlertModel is the persistence model for a stock alert. The partial
// unique index keeps one active alert per key and type.
type StockAlertModel struct {
	BaseModel
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_alerts_active_key,priority:1,where:active"`
	LocationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_alerts_active_key,priority:2;index"`
	Type       string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_stock_alerts_active_key,priority:3"`
	Severity   string     `gorm:"type:varchar(10);not null"`
	Message    string     `gorm:"type:text;not null;default:''"`
	Active     bool       `gorm:"not null"`
	ResolvedAt *time.Time
}

// TableName returns the table name for GORM
func (StockAlertModel) TableName() string {
	return "stock_alerts"
}

// ToDomain converts the model to a domain StockAlert
func (m *StockAlertModel) ToDomain() *inventory.StockAlert {
	alert := &inventory.StockAlert{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		LocationID: m.LocationID,
		Type:       inventory.AlertType(m.Type),
		Severity:   inventory.AlertSeverity(m.Severity),
		Message:    m.Message,
		Active:     m.Active,
	}
	if m.ResolvedAt != nil {
		at := m.ResolvedAt.UTC()
		alert.ResolvedAt = &at
	}
	return alert
}

// StockAlertModelFromDomain creates a model from a domain StockAlert
func StockAlertModelFromDomain(a *inventory.StockAlert) *StockAlertModel {
	m := &StockAlertModel{
		ProductID:  a.ProductID,
		LocationID: a.LocationID,
		Type:       string(a.Type),
		Severity:   string(a.Severity),
		Message:    a.Message,
		Active:     a.Active,
		ResolvedAt: a.ResolvedAt,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}
