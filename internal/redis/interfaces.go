package redis

import (
	"context"
	"time"
)

// LocationStoreInterface defines the interface for driver location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error
	GetLocation(ctx context.Context, driverID string) (*DriverLocation, error)
	FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]DriverLocation, error)
	RemoveLocation(ctx context.Context, driverID string) error
}

// LockStoreInterface defines the interface for distributed locking. An empty
// token from Acquire means the lock is held elsewhere.
type LockStoreInterface interface {
	AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (string, error)
	ReleaseDriverLock(ctx context.Context, driverID, token string) error
	AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (string, error)
	ReleaseVehicleLock(ctx context.Context, vehicleID, token string) error
}

// SchemeCacheInterface defines the interface for the compensation scheme cache.
type SchemeCacheInterface interface {
	GetScheme(ctx context.Context, schemeID string) (*CachedScheme, error)
	SetScheme(ctx context.Context, scheme *CachedScheme) error
	InvalidateScheme(ctx context.Context, schemeID string) error
}

// DriverCacheInterface defines the interface for the driver cache.
type DriverCacheInterface interface {
	GetDriver(ctx context.Context, driverID string) (*CachedDriver, error)
	SetDriver(ctx context.Context, driver *CachedDriver) error
	InvalidateDriver(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ SchemeCacheInterface   = (*CacheStore)(nil)
	_ DriverCacheInterface   = (*CacheStore)(nil)
)
