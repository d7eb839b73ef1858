package repository

import (
	"context"

	"fleet/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetByIDForUpdate retrieves a vehicle and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error)

	GetAll(ctx context.Context) ([]*domain.Vehicle, error)

	// ListAssignable retrieves ACTIVE vehicles that are marked available.
	ListAssignable(ctx context.Context) ([]*domain.Vehicle, error)

	// Update saves status and availability.
	Update(ctx context.Context, vehicle *domain.Vehicle) error
}
