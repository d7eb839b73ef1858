package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis. Assignment writes take one
// lock per driver and one per vehicle so two requests touching the same
// driver or vehicle are serialized across server instances.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func driverLockKey(driverID string) string {
	return fmt.Sprintf("lock:assign:driver:%s", driverID)
}

func vehicleLockKey(vehicleID string) string {
	return fmt.Sprintf("lock:assign:vehicle:%s", vehicleID)
}

// acquire stores a fresh owner token under key. It returns "" when the lock
// is already held.
func (s *LockStore) acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (s *LockStore) release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, s.client, []string{key}, token).Err()
}

// AcquireDriverLock attempts to acquire the assignment lock for a driver.
// It returns the owner token, or "" if the lock is already held.
func (s *LockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (string, error) {
	return s.acquire(ctx, driverLockKey(driverID), ttl)
}

// ReleaseDriverLock releases the driver lock if token still owns it.
func (s *LockStore) ReleaseDriverLock(ctx context.Context, driverID, token string) error {
	return s.release(ctx, driverLockKey(driverID), token)
}

// AcquireVehicleLock attempts to acquire the assignment lock for a vehicle.
func (s *LockStore) AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (string, error) {
	return s.acquire(ctx, vehicleLockKey(vehicleID), ttl)
}

// ReleaseVehicleLock releases the vehicle lock if token still owns it.
func (s *LockStore) ReleaseVehicleLock(ctx context.Context, vehicleID, token string) error {
	return s.release(ctx, vehicleLockKey(vehicleID), token)
}
