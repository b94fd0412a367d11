// Package memory keeps the inventory ledger in process memory. Mutations are
// serialized per stock key and buffered in a unit of work that commits as a
// whole.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/inventory/internal/domain/inventory"
)

// Store holds committed state. All maps are guarded by mu; per-key exclusion
// for units of work is provided separately by locks.
type Store struct {
	mu        sync.RWMutex
	locations map[uuid.UUID]inventory.Location
	items     map[inventory.StockKey]inventory.InventoryItem
	movements map[inventory.StockKey][]inventory.Movement
	alerts    map[uuid.UUID]inventory.StockAlert

	locks *keyLocks
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		locations: make(map[uuid.UUID]inventory.Location),
		items:     make(map[inventory.StockKey]inventory.InventoryItem),
		movements: make(map[inventory.StockKey][]inventory.Movement),
		alerts:    make(map[uuid.UUID]inventory.StockAlert),
		locks:     newKeyLocks(),
	}
}

// Locations returns the location repository
func (s *Store) Locations() *LocationRepository {
	return &LocationRepository{store: s}
}

// Items returns a repository over committed items
func (s *Store) Items() *ItemRepository {
	return &ItemRepository{store: s}
}

// Movements returns a repository over committed movements
func (s *Store) Movements() *MovementRepository {
	return &MovementRepository{store: s}
}

// Alerts returns a repository over committed alerts
func (s *Store) Alerts() *AlertRepository {
	return &AlertRepository{store: s}
}

// Scope returns the stock scope serializing work on this store
func (s *Store) Scope() *StockScope {
	return &StockScope{store: s}
}

// storedItem copies an item for storage without its pending events
func storedItem(item *inventory.InventoryItem) inventory.InventoryItem {
	cp := *item
	cp.ClearDomainEvents()
	return cp
}

func sortItems(items []inventory.InventoryItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].Key().Less(items[j].Key())
	})
}

func sortLocations(locations []inventory.Location) {
	sort.Slice(locations, func(i, j int) bool { return locations[i].Sequence < locations[j].Sequence })
}

func sortAlerts(alerts []inventory.StockAlert) {
	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].CreatedAt.Equal(alerts[j].CreatedAt) {
			return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
		}
		return alerts[i].ID.String() < alerts[j].ID.String()
	})
}

// keyLocks hands out one mutex per stock key and drops it when unused
type keyLocks struct {
	mu    sync.Mutex
	locks map[inventory.StockKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[inventory.StockKey]*keyLock)}
}

func (k *keyLocks) lock(key inventory.StockKey) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
}

func (k *keyLocks) unlock(key inventory.StockKey) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l := k.locks[key]
	l.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}
