package repository

import (
	"context"

	"fleet/internal/domain"
)

// SchemeRepository defines the persistence operations for compensation schemes.
type SchemeRepository interface {
	Create(ctx context.Context, scheme *domain.CompensationScheme) error
	GetByID(ctx context.Context, id string) (*domain.CompensationScheme, error)
	GetAll(ctx context.Context) ([]*domain.CompensationScheme, error)
	Update(ctx context.Context, scheme *domain.CompensationScheme) error
}
