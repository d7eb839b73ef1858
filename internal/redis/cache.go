package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client    *redis.Client
	schemeTTL time.Duration
}

// NewCacheStore creates a new CacheStore. schemeTTL of zero uses
// DefaultSchemeCacheTTL.
func NewCacheStore(client *redis.Client, schemeTTL time.Duration) *CacheStore {
	if schemeTTL <= 0 {
		schemeTTL = DefaultSchemeCacheTTL
	}
	return &CacheStore{client: client, schemeTTL: schemeTTL}
}

// Cache TTL constants
const (
	DefaultSchemeCacheTTL = 10 * time.Minute // Schemes change rarely and are invalidated on update
	DriverCacheTTL        = 30 * time.Second // Driver status changes on approval/deactivation
)

// Key prefixes
const (
	schemeCachePrefix = "cache:scheme:"
	driverCachePrefix = "cache:driver:"
)

// CachedScheme represents a cached compensation scheme.
type CachedScheme struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	SchemeType         string         `json:"scheme_type"`
	MinimumGuarantee   float64        `json:"minimum_guarantee"`
	Config             map[string]any `json:"config"`
	CalculationFormula string         `json:"calculation_formula"`
	IsActive           bool           `json:"is_active"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// CachedDriver represents a cached driver entity.
type CachedDriver struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	Status        string `json:"status"`
}

func (s *CacheStore) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // Cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheStore) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// GetScheme retrieves a scheme from cache. Returns nil on a miss.
func (s *CacheStore) GetScheme(ctx context.Context, schemeID string) (*CachedScheme, error) {
	var scheme CachedScheme
	ok, err := s.get(ctx, schemeCachePrefix+schemeID, &scheme)
	if err != nil || !ok {
		return nil, err
	}
	return &scheme, nil
}

// SetScheme stores a scheme in cache.
func (s *CacheStore) SetScheme(ctx context.Context, scheme *CachedScheme) error {
	return s.set(ctx, schemeCachePrefix+scheme.ID, scheme, s.schemeTTL)
}

// InvalidateScheme removes a scheme from cache.
func (s *CacheStore) InvalidateScheme(ctx context.Context, schemeID string) error {
	return s.client.Del(ctx, schemeCachePrefix+schemeID).Err()
}

// GetDriver retrieves a driver from cache. Returns nil on a miss.
func (s *CacheStore) GetDriver(ctx context.Context, driverID string) (*CachedDriver, error) {
	var driver CachedDriver
	ok, err := s.get(ctx, driverCachePrefix+driverID, &driver)
	if err != nil || !ok {
		return nil, err
	}
	return &driver, nil
}

// SetDriver stores a driver in cache.
func (s *CacheStore) SetDriver(ctx context.Context, driver *CachedDriver) error {
	return s.set(ctx, driverCachePrefix+driver.ID, driver, DriverCacheTTL)
}

// InvalidateDriver removes a driver from cache.
func (s *CacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, driverCachePrefix+driverID).Err()
}
