package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/infrastructure/persistence/models"
)

// GormStockAlertRepository implements inventory.StockAlertRepository
type GormStockAlertRepository struct {
	db *gorm.DB
}

// NewGormStockAlertRepository creates a new GormStockAlertRepository
func NewGormStockAlertRepository(db *gorm.DB) *GormStockAlertRepository {
	return &GormStockAlertRepository{db: db}
}

// FindActiveByKey returns the active alerts of one key
func (r *GormStockAlertRepository) FindActiveByKey(ctx context.Context, key inventory.StockKey) ([]inventory.StockAlert, error) {
	return r.find(r.db.WithContext(ctx).
		Where("active = ? AND product_id = ? AND location_id = ?", true, key.ProductID, key.LocationID))
}

// FindActive returns active alerts, optionally limited to one location
func (r *GormStockAlertRepository) FindActive(ctx context.Context, locationID *uuid.UUID) ([]inventory.StockAlert, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	return r.find(q)
}

func (r *GormStockAlertRepository) find(q *gorm.DB) ([]inventory.StockAlert, error) {
	var rows []models.StockAlertModel
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock alerts: %w", err)
	}
	out := make([]inventory.StockAlert, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save inserts or updates an alert
func (r *GormStockAlertRepository) Save(ctx context.Context, alert *inventory.StockAlert) error {
	m := models.StockAlertModelFromDomain(alert)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"severity", "message", "active", "resolved_at", "updated_at"}),
		}).
		Create(m).Error; err != nil {
		return fmt.Errorf("failed to save stock alert: %w", err)
	}
	return nil
}

var _ inventory.StockAlertRepository = (*GormStockAlertRepository)(nil)
