package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/storefront/inventory/internal/domain/shared"
)

// LocationType classifies a stock-keeping location
type LocationType string

const (
	LocationTypeWarehouse LocationType = "warehouse"
	LocationTypeStore     LocationType = "store"
	LocationTypeDropship  LocationType = "dropship"
	LocationTypeSupplier  LocationType = "supplier"
)

// IsValid reports whether the type is one of the known location types
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeStore, LocationTypeDropship, LocationTypeSupplier:
		return true
	}
	return false
}

const maxLocationNameLength = 100

// Location is a place that holds stock. Identity and type are fixed at
// creation; Active and Priority are administrative settings. Locations are
// never deleted once created, only deactivated.
type Location struct {
	shared.BaseEntity
	Code     string
	Name     string
	Address  string
	Type     LocationType
	Active   bool
	Priority int
	// Sequence is the creation order, used to break priority ties.
	Sequence int64
}

// LocationSpec carries the fields needed to create a location
type LocationSpec struct {
	Code     string
	Name     string
	Address  string
	Type     LocationType
	Priority int
}

// NewLocation validates spec and returns an active location.
// Sequence is assigned by the registry.
func NewLocation(spec LocationSpec) (*Location, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, NewValidationError("location name cannot be empty")
	}
	if len(name) > maxLocationNameLength {
		return nil, NewValidationError("location name cannot exceed %d characters", maxLocationNameLength)
	}
	if spec.Type == "" {
		return nil, NewValidationError("location type is required")
	}
	if !spec.Type.IsValid() {
		return nil, NewValidationError("invalid location type %q", spec.Type)
	}
	if spec.Priority < 0 {
		return nil, NewValidationError("location priority cannot be negative")
	}

	return &Location{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(strings.TrimSpace(spec.Code)),
		Name:       name,
		Address:    strings.TrimSpace(spec.Address),
		Type:       spec.Type,
		Active:     true,
		Priority:   spec.Priority,
	}, nil
}

// Activate marks the location as eligible for allocation
func (l *Location) Activate() {
	if l.Active {
		return
	}
	l.Active = true
	l.Touch(time.Now().UTC())
}

// Deactivate removes the location from allocation. Its ledger history stays.
func (l *Location) Deactivate() {
	if !l.Active {
		return
	}
	l.Active = false
	l.Touch(time.Now().UTC())
}

// SetPriority changes the allocation priority; lower is preferred
func (l *Location) SetPriority(priority int) error {
	if priority < 0 {
		return NewValidationError("location priority cannot be negative")
	}
	l.Priority = priority
	l.Touch(time.Now().UTC())
	return nil
}

// SortByPriority orders locations by ascending priority. Equal priorities keep
// creation order.
func SortByPriority(locations []Location) {
	sort.SliceStable(locations, func(i, j int) bool {
		if locations[i].Priority != locations[j].Priority {
			return locations[i].Priority < locations[j].Priority
		}
		return locations[i].Sequence < locations[j].Sequence
	})
}

// FilterActive returns the active locations, preserving order
func FilterActive(locations []Location) []Location {
	active := make([]Location, 0, len(locations))
	for _, loc := range locations {
		if loc.Active {
			active = append(active, loc)
		}
	}
	return active
}
