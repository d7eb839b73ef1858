package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `id, registration_number, COALESCE(model, ''), status, is_available, created_at`

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(&v.ID, &v.RegistrationNumber, &v.Model, &v.Status, &v.IsAvailable, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create adds a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, registration_number, model, status, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query, v.ID, v.RegistrationNumber, v.Model, v.Status, v.IsAvailable, v.CreatedAt)
	return mapError(err)
}

func (r *VehicleRepository) getOne(ctx context.Context, query, id string) (*domain.Vehicle, error) {
	v, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	return r.getOne(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a vehicle and holds a row lock on it.
func (r *VehicleRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error) {
	return r.getOne(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 FOR UPDATE`, id)
}

// GetAll retrieves all vehicles.
func (r *VehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	return r.list(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY created_at, id`)
}

// ListAssignable retrieves active, available vehicles.
func (r *VehicleRepository) ListAssignable(ctx context.Context) ([]*domain.Vehicle, error) {
	return r.list(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE status = $1 AND is_available ORDER BY created_at, id`,
		domain.VehicleStatusActive)
}

func (r *VehicleRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Vehicle, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Update saves status and availability.
func (r *VehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE vehicles SET model = $1, status = $2, is_available = $3 WHERE id = $4`,
		v.Model, v.Status, v.IsAvailable, v.ID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

var _ repository.VehicleRepository = (*VehicleRepository)(nil)
