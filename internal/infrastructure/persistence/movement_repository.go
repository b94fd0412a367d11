package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/infrastructure/persistence/models"
)

// GormMovementRepository implements inventory.MovementRepository. Rows are
// only ever inserted.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts movements
func (r *GormMovementRepository) Append(ctx context.Context, movements ...*inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.MovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.MovementModelFromDomain(m)
	}
	if err := r.db.WithContext(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("failed to append movements: %w", err)
	}
	return nil
}

// FindByKey returns the movements of a key in sequence order
func (r *GormMovementRepository) FindByKey(ctx context.Context, key inventory.StockKey) ([]inventory.Movement, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", key.ProductID, key.LocationID))
}

// FindByKeySince returns movements of a key created at or after since
func (r *GormMovementRepository) FindByKeySince(ctx context.Context, key inventory.StockKey, since time.Time) ([]inventory.Movement, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ? AND created_at >= ?", key.ProductID, key.LocationID, since.UTC()))
}

func (r *GormMovementRepository) find(_ context.Context, q *gorm.DB) ([]inventory.Movement, error) {
	var rows []models.MovementModel
	if err := q.Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	out := make([]inventory.Movement, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
