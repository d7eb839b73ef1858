package repository

import (
	"context"
	"time"

	"fleet/internal/domain"
)

// DutyRepository defines the persistence operations for duties.
type DutyRepository interface {
	// Create persists a new duty.
	Create(ctx context.Context, duty *domain.Duty) error

	// GetByID retrieves a duty by ID.
	GetByID(ctx context.Context, id string) (*domain.Duty, error)

	// Update updates an existing duty.
	Update(ctx context.Context, duty *domain.Duty) error

	// GetActiveByDriverID retrieves the active duty for a driver.
	// Returns nil if no active duty exists.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Duty, error)

	// ListCompleted returns completed duties whose start time falls in
	// [from, to).
	ListCompleted(ctx context.Context, from, to time.Time) ([]*domain.Duty, error)
}
