package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
	"github.com/storefront/inventory/internal/infrastructure/persistence/models"
)

// GormInventoryItemRepository implements inventory.InventoryItemRepository
// using GORM. Inside a postgres stock scope FindByKey takes a row lock.
type GormInventoryItemRepository struct {
	db        *gorm.DB
	forUpdate bool
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByKey returns the item of a stock key or shared.ErrNotFound
func (r *GormInventoryItemRepository) FindByKey(ctx context.Context, key inventory.StockKey) (*inventory.InventoryItem, error) {
	q := r.db.WithContext(ctx)
	if r.forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m models.InventoryItemModel
	if err := q.Where("product_id = ? AND location_id = ?", key.ProductID, key.LocationID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find inventory item: %w", err)
	}
	return m.ToDomain(), nil
}

// FindByProduct returns the items of a product at every location
func (r *GormInventoryItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.InventoryItem, error) {
	return r.find(ctx, "product_id = ?", productID)
}

// FindByLocation returns the items held at a location
func (r *GormInventoryItemRepository) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]inventory.InventoryItem, error) {
	return r.find(ctx, "location_id = ?", locationID)
}

func (r *GormInventoryItemRepository) find(ctx context.Context, query string, arg any) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at ASC, product_id ASC, location_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}
	out := make([]inventory.InventoryItem, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save inserts or updates an item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	m := models.InventoryItemModelFromDomain(item)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(m).Error; err != nil {
		return fmt.Errorf("failed to save inventory item: %w", err)
	}
	return nil
}

var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
