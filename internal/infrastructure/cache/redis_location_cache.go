package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/domain/shared"
)

const defaultLocationKey = "inventory:locations"

// RedisLocationCache shares the location list between service instances.
type RedisLocationCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisLocationCache wraps an existing client. An empty key uses the
// default; a non-positive ttl uses the default TTL.
func NewRedisLocationCache(client *redis.Client, key string, ttl time.Duration) *RedisLocationCache {
	if key == "" {
		key = defaultLocationKey
	}
	if ttl <= 0 {
		ttl = defaultLocationTTL
	}
	return &RedisLocationCache{client: client, key: key, ttl: ttl}
}

type locationRecord struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code,omitempty"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Type      string    `json:"type"`
	Active    bool      `json:"active"`
	Priority  int       `json:"priority"`
	Sequence  int64     `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Get implements LocationCache
func (c *RedisLocationCache) Get(ctx context.Context) ([]inventory.Location, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read location cache: %w", err)
	}

	var records []locationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("failed to decode location cache: %w", err)
	}
	locations := make([]inventory.Location, len(records))
	for i, r := range records {
		locations[i] = inventory.Location{
			BaseEntity: shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
			Code:       r.Code,
			Name:       r.Name,
			Address:    r.Address,
			Type:       inventory.LocationType(r.Type),
			Active:     r.Active,
			Priority:   r.Priority,
			Sequence:   r.Sequence,
		}
	}
	return locations, true, nil
}

// Set implements LocationCache
func (c *RedisLocationCache) Set(ctx context.Context, locations []inventory.Location) error {
	records := make([]locationRecord, len(locations))
	for i, l := range locations {
		records[i] = locationRecord{
			ID:        l.ID,
			Code:      l.Code,
			Name:      l.Name,
			Address:   l.Address,
			Type:      string(l.Type),
			Active:    l.Active,
			Priority:  l.Priority,
			Sequence:  l.Sequence,
			CreatedAt: l.CreatedAt,
			UpdatedAt: l.UpdatedAt,
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode location cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write location cache: %w", err)
	}
	return nil
}

// Invalidate implements LocationCache
func (c *RedisLocationCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate location cache: %w", err)
	}
	return nil
}
