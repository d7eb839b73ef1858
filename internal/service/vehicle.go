package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// VehicleService handles vehicle registration and availability.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicleRepo repository.VehicleRepository) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo}
}

// RegisterVehicleRequest contains the parameters for registering a vehicle.
type RegisterVehicleRequest struct {
	RegistrationNumber string
	Model              string
}

// Register adds an active, available vehicle.
func (s *VehicleService) Register(ctx context.Context, req RegisterVehicleRequest) (*domain.Vehicle, error) {
	reg := strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
	if reg == "" {
		return nil, ErrMissingField
	}

	vehicle := &domain.Vehicle{
		ID:                 uuid.New().String(),
		RegistrationNumber: reg,
		Model:              strings.TrimSpace(req.Model),
		Status:             domain.VehicleStatusActive,
		IsAvailable:        true,
		CreatedAt:          time.Now(),
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrVehicleAlreadyRegistered
		}
		return nil, err
	}
	return vehicle, nil
}

// GetVehicle returns a vehicle by ID.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	return s.vehicleRepo.GetByID(ctx, vehicleID)
}

// ListVehicles returns every vehicle, or only assignable ones.
func (s *VehicleService) ListVehicles(ctx context.Context, assignableOnly bool) ([]*domain.Vehicle, error) {
	if assignableOnly {
		return s.vehicleRepo.ListAssignable(ctx)
	}
	return s.vehicleRepo.GetAll(ctx)
}

// UpdateVehicleRequest changes status and/or availability. Nil fields are left as is.
type UpdateVehicleRequest struct {
	VehicleID   string
	Status      *domain.VehicleStatus
	IsAvailable *bool
}

// Update applies a status or availability change. A retired vehicle is never
// available.
func (s *VehicleService) Update(ctx context.Context, req UpdateVehicleRequest) (*domain.Vehicle, error) {
	if req.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		switch *req.Status {
		case domain.VehicleStatusActive, domain.VehicleStatusMaintenance, domain.VehicleStatusRetired:
			vehicle.Status = *req.Status
		default:
			return nil, ErrInvalidVehicleStatus
		}
	}
	if req.IsAvailable != nil {
		vehicle.IsAvailable = *req.IsAvailable
	}
	if vehicle.Status == domain.VehicleStatusRetired {
		vehicle.IsAvailable = false
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}
