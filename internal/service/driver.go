package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/redis"
	"fleet/internal/repository"
)

const maxNearbyRadiusKm = 50

// DriverService handles driver onboarding and GPS location.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    redis.DriverCacheInterface
	driverRepo    repository.DriverRepository
	notifier      *NotificationService
}

// NewDriverService creates a new DriverService. cacheStore may be nil.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	cacheStore redis.DriverCacheInterface,
	driverRepo repository.DriverRepository,
	notifier *NotificationService,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
		notifier:      notifier,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name          string
	Phone         string
	LicenseNumber string
}

// Register creates a driver awaiting approval.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return nil, ErrMissingField
	}

	existing, err := s.driverRepo.GetByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDriverAlreadyRegistered
	}

	driver := &domain.Driver{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
		Status:        domain.DriverStatusPending,
		CreatedAt:     time.Now(),
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDriverAlreadyRegistered
		}
		return nil, err
	}
	return driver, nil
}

// GetDriver returns a driver, reading through the cache when one is configured.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetDriver(ctx, driverID); err == nil && cached != nil {
			return &domain.Driver{
				ID:            cached.ID,
				Name:          cached.Name,
				Phone:         cached.Phone,
				LicenseNumber: cached.LicenseNumber,
				Status:        domain.DriverStatus(cached.Status),
			}, nil
		}
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	s.cacheDriver(ctx, driver)
	return driver, nil
}

// ListDrivers returns every driver.
func (s *DriverService) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// Approve moves a pending driver to ACTIVE.
func (s *DriverService) Approve(ctx context.Context, driverID string) (*domain.Driver, error) {
	return s.review(ctx, driverID, domain.DriverStatusActive)
}

// Reject moves a pending driver to REJECTED.
func (s *DriverService) Reject(ctx context.Context, driverID string) (*domain.Driver, error) {
	return s.review(ctx, driverID, domain.DriverStatusRejected)
}

func (s *DriverService) review(ctx context.Context, driverID string, status domain.DriverStatus) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Status != domain.DriverStatusPending {
		return nil, ErrDriverNotPending
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		return nil, err
	}
	driver.Status = status
	if status == domain.DriverStatusActive {
		driver.ApprovedAt = time.Now()
	}

	s.invalidateDriver(ctx, driverID)
	if s.notifier != nil {
		_ = s.notifier.NotifyDriverReviewed(ctx, driver)
	}
	return driver, nil
}

// Deactivate takes an active driver off the roster and drops their location.
func (s *DriverService) Deactivate(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsActive() {
		return nil, ErrDriverNotActive
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusInactive); err != nil {
		return nil, err
	}
	driver.Status = domain.DriverStatusInactive

	if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
		log.Printf("failed to remove location for driver %s: %v", driverID, err)
	}
	s.invalidateDriver(ctx, driverID)
	return driver, nil
}

// UpdateLocationRequest contains the parameters for updating driver location.
type UpdateLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdateLocation stores an active driver's GPS position.
func (s *DriverService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}

	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return ErrInvalidLocation
	}

	driver, err := s.GetDriver(ctx, req.DriverID)
	if err != nil {
		return err
	}
	if !driver.IsActive() {
		return ErrDriverNotActive
	}

	return s.locationStore.UpdateLocation(ctx, req.DriverID, req.Lat, req.Lng)
}

// GetLocation returns a driver's last position, or nil if unknown.
func (s *DriverService) GetLocation(ctx context.Context, driverID string) (*redis.DriverLocation, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.locationStore.GetLocation(ctx, driverID)
}

// FindNearby lists drivers within radiusKm of a point, nearest first.
func (s *DriverService) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return nil, ErrInvalidLocation
	}
	if radiusKm <= 0 || radiusKm > maxNearbyRadiusKm {
		return nil, ErrInvalidRadius
	}
	return s.locationStore.FindNearbyDrivers(ctx, lat, lng, radiusKm)
}

func (s *DriverService) cacheDriver(ctx context.Context, driver *domain.Driver) {
	if s.cacheStore == nil {
		return
	}
	cached := &redis.CachedDriver{
		ID:            driver.ID,
		Name:          driver.Name,
		Phone:         driver.Phone,
		LicenseNumber: driver.LicenseNumber,
		Status:        string(driver.Status),
	}
	if err := s.cacheStore.SetDriver(ctx, cached); err != nil {
		log.Printf("failed to cache driver %s: %v", driver.ID, err)
	}
}

func (s *DriverService) invalidateDriver(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.InvalidateDriver(ctx, driverID); err != nil {
		log.Printf("failed to invalidate driver cache %s: %v", driverID, err)
	}
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
