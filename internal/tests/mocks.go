package tests

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"fleet/internal/domain"
	"fleet/internal/redis"
	"fleet/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32
	ForUpdateCallCount    int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	atomic.AddInt32(&m.ForUpdateCallCount, 1)
	return m.GetByID(ctx, id)
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	return m.list(func(*domain.Driver) bool { return true }), nil
}

func (m *MockDriverRepository) ListActive(ctx context.Context) ([]*domain.Driver, error) {
	return m.list((*domain.Driver).IsActive), nil
}

// list returns matching drivers ordered by ID so tests see a stable order.
func (m *MockDriverRepository) list(keep func(*domain.Driver) bool) []*domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if keep(d) {
			copy := *d
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Error injection
	CreateError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vehicles {
		if v.RegistrationNumber == vehicle.RegistrationNumber {
			return repository.ErrDuplicate
		}
	}
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error) {
	return m.GetByID(ctx, id)
}

func (m *MockVehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	return m.list(func(*domain.Vehicle) bool { return true }), nil
}

func (m *MockVehicleRepository) ListAssignable(ctx context.Context) ([]*domain.Vehicle, error) {
	return m.list((*domain.Vehicle).IsAssignable), nil
}

func (m *MockVehicleRepository) list(keep func(*domain.Vehicle) bool) []*domain.Vehicle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		if keep(v) {
			copy := *v
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[vehicle.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK ASSIGNMENT REPOSITORY
// ──────────────────────────────────────────────

// MockAssignmentRepository is a mock implementation of AssignmentRepository.
type MockAssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[string]*domain.Assignment

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	ListError   error
}

// NewMockAssignmentRepository creates a new mock assignment repository.
func NewMockAssignmentRepository() *MockAssignmentRepository {
	return &MockAssignmentRepository{
		assignments: make(map[string]*domain.Assignment),
	}
}

// AddAssignment adds an assignment to the mock repository.
func (m *MockAssignmentRepository) AddAssignment(a *domain.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
}

func (m *MockAssignmentRepository) Create(ctx context.Context, a *domain.Assignment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *a
	m.assignments[a.ID] = &copy
	return nil
}

func (m *MockAssignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *MockAssignmentRepository) Update(ctx context.Context, a *domain.Assignment) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *a
	m.assignments[a.ID] = &copy
	return nil
}

func (m *MockAssignmentRepository) ListLiveByDriver(ctx context.Context, driverID string) ([]*domain.Assignment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.list(func(a *domain.Assignment) bool {
		return a.DriverID == driverID && a.Status.IsLive()
	}, false), nil
}

func (m *MockAssignmentRepository) ListLiveByVehicle(ctx context.Context, vehicleID string) ([]*domain.Assignment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.list(func(a *domain.Assignment) bool {
		return a.VehicleID == vehicleID && a.Status.IsLive()
	}, false), nil
}

func (m *MockAssignmentRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Assignment, error) {
	return m.list(func(a *domain.Assignment) bool { return a.DriverID == driverID }, true), nil
}

// list orders by start date (then ID), newest first when desc is set.
func (m *MockAssignmentRepository) list(keep func(*domain.Assignment) bool, desc bool) []*domain.Assignment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Assignment, 0)
	for _, a := range m.assignments {
		if keep(a) {
			copy := *a
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate) != desc
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// GetAssignment returns the stored assignment (for test assertions).
func (m *MockAssignmentRepository) GetAssignment(id string) *domain.Assignment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assignments[id]
}

// CountLive counts live assignments for a driver.
func (m *MockAssignmentRepository) CountLive(driverID string) int {
	return len(m.list(func(a *domain.Assignment) bool {
		return a.DriverID == driverID && a.Status.IsLive()
	}, false))
}

// ──────────────────────────────────────────────
// MOCK SCHEME REPOSITORY
// ──────────────────────────────────────────────

// MockSchemeRepository is a mock implementation of SchemeRepository.
type MockSchemeRepository struct {
	mu      sync.RWMutex
	schemes map[string]*domain.CompensationScheme

	// Counters for verification
	GetByIDCallCount int32
}

// NewMockSchemeRepository creates a new mock scheme repository.
func NewMockSchemeRepository() *MockSchemeRepository {
	return &MockSchemeRepository{
		schemes: make(map[string]*domain.CompensationScheme),
	}
}

// AddScheme adds a scheme to the mock repository.
func (m *MockSchemeRepository) AddScheme(s *domain.CompensationScheme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemes[s.ID] = s
}

func (m *MockSchemeRepository) Create(ctx context.Context, s *domain.CompensationScheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *s
	m.schemes[s.ID] = &copy
	return nil
}

func (m *MockSchemeRepository) GetByID(ctx context.Context, id string) (*domain.CompensationScheme, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schemes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (m *MockSchemeRepository) GetAll(ctx context.Context) ([]*domain.CompensationScheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.CompensationScheme, 0, len(m.schemes))
	for _, s := range m.schemes {
		copy := *s
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockSchemeRepository) Update(ctx context.Context, s *domain.CompensationScheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemes[s.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *s
	m.schemes[s.ID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK DUTY REPOSITORY
// ──────────────────────────────────────────────

// MockDutyRepository is a mock implementation of DutyRepository. Like the
// unique index in Postgres, it refuses a second active duty per driver.
type MockDutyRepository struct {
	mu     sync.RWMutex
	duties map[string]*domain.Duty

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	UpdateError error
}

// NewMockDutyRepository creates a new mock duty repository.
func NewMockDutyRepository() *MockDutyRepository {
	return &MockDutyRepository{
		duties: make(map[string]*domain.Duty),
	}
}

// AddDuty adds a duty to the mock repository.
func (m *MockDutyRepository) AddDuty(d *domain.Duty) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duties[d.ID] = d
}

func (m *MockDutyRepository) Create(ctx context.Context, d *domain.Duty) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.duties {
		if existing.DriverID == d.DriverID && existing.Status == domain.DutyStatusActive {
			return repository.ErrDuplicate
		}
	}
	copy := *d
	m.duties[d.ID] = &copy
	return nil
}

func (m *MockDutyRepository) GetByID(ctx context.Context, id string) (*domain.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.duties[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (m *MockDutyRepository) Update(ctx context.Context, d *domain.Duty) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.duties[d.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *d
	m.duties[d.ID] = &copy
	return nil
}

func (m *MockDutyRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.duties {
		if d.DriverID == driverID && d.Status == domain.DutyStatusActive {
			copy := *d
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockDutyRepository) ListCompleted(ctx context.Context, from, to time.Time) ([]*domain.Duty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Duty, 0)
	for _, d := range m.duties {
		if d.Status != domain.DutyStatusCompleted {
			continue
		}
		if d.StartTime.Before(from) || !d.StartTime.Before(to) {
			continue
		}
		copy := *d
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

// GetDuty returns the stored duty (for test assertions).
func (m *MockDutyRepository) GetDuty(id string) *domain.Duty {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.duties[id]
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs the callback against the mock repositories. There is
// no rollback: tests inject failures before any write.
type MockTransactor struct {
	Repos repository.Repositories

	// Counters for verification
	CallCount int32

	// Error injection
	BeginError error
}

// repositoriesOf groups mock repositories for a MockTransactor.
func repositoriesOf(
	drivers *MockDriverRepository,
	vehicles *MockVehicleRepository,
	assignments *MockAssignmentRepository,
	duties *MockDutyRepository,
) repository.Repositories {
	return repository.Repositories{
		Drivers:     drivers,
		Vehicles:    vehicles,
		Assignments: assignments,
		Duties:      duties,
	}
}

func (m *MockTransactor) WithTx(ctx context.Context, fn func(repository.Repositories) error) error {
	atomic.AddInt32(&m.CallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.Repos)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStore.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []redis.DriverLocation

	// Counters
	UpdateLocationCallCount int32
	RemoveLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make([]redis.DriverLocation, 0),
	}
}

// AddDriverLocation adds a driver location to the mock store.
func (m *MockLocationStore) AddDriverLocation(loc redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, loc)
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Update existing or add new.
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations[i].Lat = lat
			m.locations[i].Lng = lng
			return nil
		}
	}
	m.locations = append(m.locations, redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

func (m *MockLocationStore) GetLocation(ctx context.Context, driverID string) (*redis.DriverLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			copy := loc
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return all locations (mock doesn't do real geo filtering).
	result := make([]redis.DriverLocation, len(m.locations))
	copy(result, m.locations)
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.RemoveLocationCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.DriverID == driverID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu     sync.Mutex
	locks  map[string]heldLock
	order  []string
	tokens int

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// AfterAcquire runs after each successful acquisition, outside the mutex.
	AfterAcquire func(key string)
}

type heldLock struct {
	token  string
	expiry time.Time
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]heldLock),
	}
}

func (m *MockLockStore) acquire(key string, ttl time.Duration) (string, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", m.AcquireError
	}

	m.mu.Lock()
	m.order = append(m.order, key)
	if held, exists := m.locks[key]; exists && time.Now().Before(held.expiry) {
		m.mu.Unlock()
		return "", nil // Lock still held.
	}
	token := m.grant(key, ttl)
	hook := m.AfterAcquire
	m.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	return token, nil
}

// grant must be called with mu held.
func (m *MockLockStore) grant(key string, ttl time.Duration) string {
	m.tokens++
	token := fmt.Sprintf("token-%d", m.tokens)
	m.locks[key] = heldLock{token: token, expiry: time.Now().Add(ttl)}
	return token
}

// release deletes the lock only if token still owns it.
func (m *MockLockStore) release(key, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if held, exists := m.locks[key]; exists && held.token == token {
		delete(m.locks, key)
	}
	return nil
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (string, error) {
	return m.acquire("driver:"+driverID, ttl)
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID, token string) error {
	return m.release("driver:"+driverID, token)
}

func (m *MockLockStore) AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (string, error) {
	return m.acquire("vehicle:"+vehicleID, ttl)
}

func (m *MockLockStore) ReleaseVehicleLock(ctx context.Context, vehicleID, token string) error {
	return m.release("vehicle:"+vehicleID, token)
}

// Hold marks a lock as taken by another request (for test setup), replacing
// any current owner as an expiry followed by a new acquisition would.
func (m *MockLockStore) Hold(key string, ttl time.Duration) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grant(key, ttl)
}

// IsLocked checks if a key ("driver:<id>" or "vehicle:<id>") is held.
func (m *MockLockStore) IsLocked(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, exists := m.locks[key]
	return exists && time.Now().Before(held.expiry)
}

// AcquireOrder returns the keys in the order acquisition was attempted.
func (m *MockLockStore) AcquireOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// ──────────────────────────────────────────────
// MOCK CACHE
// ──────────────────────────────────────────────

// MockCache is an in-memory scheme and driver cache.
type MockCache struct {
	mu      sync.Mutex
	schemes map[string]*redis.CachedScheme
	drivers map[string]*redis.CachedDriver

	// Counters
	SchemeHits        int32
	InvalidateCalls   int32
	DriverInvalidates int32
}

// NewMockCache creates a new mock cache.
func NewMockCache() *MockCache {
	return &MockCache{
		schemes: make(map[string]*redis.CachedScheme),
		drivers: make(map[string]*redis.CachedDriver),
	}
}

func (m *MockCache) GetScheme(ctx context.Context, schemeID string) (*redis.CachedScheme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schemes[schemeID]
	if !ok {
		return nil, nil
	}
	atomic.AddInt32(&m.SchemeHits, 1)
	copy := *s
	return &copy, nil
}

func (m *MockCache) SetScheme(ctx context.Context, scheme *redis.CachedScheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *scheme
	m.schemes[scheme.ID] = &copy
	return nil
}

func (m *MockCache) InvalidateScheme(ctx context.Context, schemeID string) error {
	atomic.AddInt32(&m.InvalidateCalls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schemes, schemeID)
	return nil
}

func (m *MockCache) GetDriver(ctx context.Context, driverID string) (*redis.CachedDriver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[driverID]
	if !ok {
		return nil, nil
	}
	copy := *d
	return &copy, nil
}

func (m *MockCache) SetDriver(ctx context.Context, driver *redis.CachedDriver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockCache) InvalidateDriver(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.DriverInvalidates, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drivers, driverID)
	return nil
}

// HasScheme reports whether a scheme is cached.
func (m *MockCache) HasScheme(schemeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.schemes[schemeID]
	return ok
}

// Ensure mocks implement interfaces.
var (
	_ repository.DriverRepository     = (*MockDriverRepository)(nil)
	_ repository.VehicleRepository    = (*MockVehicleRepository)(nil)
	_ repository.AssignmentRepository = (*MockAssignmentRepository)(nil)
	_ repository.SchemeRepository     = (*MockSchemeRepository)(nil)
	_ repository.DutyRepository       = (*MockDutyRepository)(nil)
	_ repository.Transactor           = (*MockTransactor)(nil)
	_ redis.LocationStoreInterface    = (*MockLocationStore)(nil)
	_ redis.LockStoreInterface        = (*MockLockStore)(nil)
	_ redis.SchemeCacheInterface      = (*MockCache)(nil)
	_ redis.DriverCacheInterface      = (*MockCache)(nil)
)
