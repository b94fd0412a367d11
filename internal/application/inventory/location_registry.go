package inventory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// LocationCache caches the full location list. The registry is read on every
// reservation and allocation but changes rarely.
type LocationCache interface {
	// Get returns the cached list; found is false on a miss
	Get(ctx context.Context) (locations []inventory.Location, found bool, err error)
	Set(ctx context.Context, locations []inventory.Location) error
	Invalidate(ctx context.Context) error
}

// LocationRegistry manages stock-keeping locations
type LocationRegistry struct {
	repo   inventory.LocationRepository
	cache  LocationCache
	logger *zap.Logger

	// mu serializes creation so sequences are assigned in order
	mu sync.Mutex
}

// NewLocationRegistry creates a registry. cache may be nil.
func NewLocationRegistry(repo inventory.LocationRepository, cache LocationCache, logger *zap.Logger) *LocationRegistry {
	return &LocationRegistry{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ListLocations returns every location ordered by priority, ties in creation
// order.
func (r *LocationRegistry) ListLocations(ctx context.Context) ([]inventory.Location, error) {
	if r.cache != nil {
		cached, found, err := r.cache.Get(ctx)
		if err != nil {
			r.logger.Warn("location cache read failed", zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	locations, err := r.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	inventory.SortByPriority(locations)

	if r.cache != nil {
		if err := r.cache.Set(ctx, locations); err != nil {
			r.logger.Warn("location cache write failed", zap.Error(err))
		}
	}
	return locations, nil
}

// ActiveLocations returns the active locations in allocation order
func (r *LocationRegistry) ActiveLocations(ctx context.Context) ([]inventory.Location, error) {
	locations, err := r.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.FilterActive(locations), nil
}

// GetLocation returns a location or a LocationNotFoundError
func (r *LocationRegistry) GetLocation(ctx context.Context, id uuid.UUID) (*inventory.Location, error) {
	loc, err := r.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, inventory.NewLocationNotFoundError(id)
		}
		return nil, err
	}
	return loc, nil
}

// AddLocation creates a location with a new identity
func (r *LocationRegistry) AddLocation(ctx context.Context, spec inventory.LocationSpec) (*inventory.Location, error) {
	loc, err := inventory.NewLocation(spec)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if loc.Code != "" {
		existing, err := r.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, other := range existing {
			if other.Code == loc.Code {
				return nil, shared.NewDomainErrorf(inventory.CodeLocationDuplicated, "location code %s already exists", loc.Code)
			}
		}
	}

	seq, err := r.repo.NextSequence(ctx)
	if err != nil {
		return nil, err
	}
	loc.Sequence = seq

	if err := r.repo.Save(ctx, loc); err != nil {
		return nil, err
	}
	r.invalidate(ctx)

	r.logger.Info("location added",
		zap.String("location_id", loc.ID.String()),
		zap.String("name", loc.Name),
		zap.String("type", string(loc.Type)),
		zap.Int("priority", loc.Priority))
	return loc, nil
}

// SetActive activates or deactivates a location
func (r *LocationRegistry) SetActive(ctx context.Context, id uuid.UUID, active bool) (*inventory.Location, error) {
	return r.mutate(ctx, id, func(loc *inventory.Location) error {
		if active {
			loc.Activate()
		} else {
			loc.Deactivate()
		}
		return nil
	})
}

// SetPriority changes the allocation priority of a location
func (r *LocationRegistry) SetPriority(ctx context.Context, id uuid.UUID, priority int) (*inventory.Location, error) {
	return r.mutate(ctx, id, func(loc *inventory.Location) error {
		return loc.SetPriority(priority)
	})
}

func (r *LocationRegistry) mutate(ctx context.Context, id uuid.UUID, fn func(*inventory.Location) error) (*inventory.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, err := r.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(loc); err != nil {
		return nil, err
	}
	if err := r.repo.Save(ctx, loc); err != nil {
		return nil, err
	}
	r.invalidate(ctx)

	r.logger.Info("location updated",
		zap.String("location_id", loc.ID.String()),
		zap.Bool("active", loc.Active),
		zap.Int("priority", loc.Priority))
	return loc, nil
}

func (r *LocationRegistry) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		r.logger.Warn("location cache invalidation failed", zap.Error(err))
	}
}
