package repository

import (
	"context"

	"fleet/internal/domain"
)

// AssignmentRepository defines the persistence operations for assignments.
type AssignmentRepository interface {
	// Create persists a new assignment.
	Create(ctx context.Context, assignment *domain.Assignment) error

	// GetByID retrieves an assignment by ID.
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)

	// Update saves status, end date and notes.
	Update(ctx context.Context, assignment *domain.Assignment) error

	// ListLiveByDriver returns every scheduled or active assignment of a
	// driver, ordered by start date.
	ListLiveByDriver(ctx context.Context, driverID string) ([]*domain.Assignment, error)

	// ListLiveByVehicle returns every scheduled or active assignment of a
	// vehicle, ordered by start date.
	ListLiveByVehicle(ctx context.Context, vehicleID string) ([]*domain.Assignment, error)

	// ListByDriver returns all assignments of a driver, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Assignment, error)
}
