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

// GormLocationRepository implements inventory.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID returns a location or shared.ErrNotFound
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Location, error) {
	var m models.LocationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find location: %w", err)
	}
	return m.ToDomain(), nil
}

// FindAll returns all locations in creation order
func (r *GormLocationRepository) FindAll(ctx context.Context) ([]inventory.Location, error) {
	var rows []models.LocationModel
	if err := r.db.WithContext(ctx).Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	out := make([]inventory.Location, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// NextSequence returns one past the highest sequence in use
func (r *GormLocationRepository) NextSequence(ctx context.Context) (int64, error) {
	var maxSeq int64
	if err := r.db.WithContext(ctx).
		Model(&models.LocationModel{}).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&maxSeq).Error; err != nil {
		return 0, fmt.Errorf("failed to read location sequence: %w", err)
	}
	return maxSeq + 1, nil
}

// Save inserts or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, location *inventory.Location) error {
	m := models.LocationModelFromDomain(location)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "address", "active", "priority", "updated_at"}),
		}).
		Create(m).Error; err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

var _ inventory.LocationRepository = (*GormLocationRepository)(nil)
