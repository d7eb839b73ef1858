package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// AssignmentRepository is a PostgreSQL implementation of repository.AssignmentRepository.
type AssignmentRepository struct {
	q Querier
}

// NewAssignmentRepository creates a new PostgreSQL assignment repository.
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{q: db}
}

// NewAssignmentRepositoryWithTx creates an assignment repository using a transaction.
func NewAssignmentRepositoryWithTx(tx *sql.Tx) *AssignmentRepository {
	return &AssignmentRepository{q: tx}
}

const assignmentColumns = `id, driver_id, vehicle_id, start_date, end_date, shift_type, status, COALESCE(notes, ''), created_at, ended_at`

func scanAssignment(row rowScanner) (*domain.Assignment, error) {
	var a domain.Assignment
	var endDate, endedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.DriverID,
		&a.VehicleID,
		&a.StartDate,
		&endDate,
		&a.ShiftType,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&endedAt,
	); err != nil {
		return nil, err
	}
	if endDate.Valid {
		d := endDate.Time
		a.EndDate = &d
	}
	if endedAt.Valid {
		a.EndedAt = endedAt.Time
	}
	return &a, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create persists a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *domain.Assignment) error {
	query := `
		INSERT INTO assignments (id, driver_id, vehicle_id, start_date, end_date, shift_type, status, notes, created_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q.ExecContext(ctx, query,
		a.ID,
		a.DriverID,
		a.VehicleID,
		a.StartDate,
		nullDate(a.EndDate),
		a.ShiftType,
		a.Status,
		a.Notes,
		a.CreatedAt,
		nullTime(a.EndedAt),
	)
	return mapError(err)
}

// GetByID retrieves an assignment by ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	a, err := scanAssignment(r.q.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// Update saves status, end date and notes.
func (r *AssignmentRepository) Update(ctx context.Context, a *domain.Assignment) error {
	query := `
		UPDATE assignments
		SET end_date = $1, status = $2, notes = $3, ended_at = $4
		WHERE id = $5
	`
	result, err := r.q.ExecContext(ctx, query, nullDate(a.EndDate), a.Status, a.Notes, nullTime(a.EndedAt), a.ID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// ListLiveByDriver returns the driver's scheduled and active assignments.
func (r *AssignmentRepository) ListLiveByDriver(ctx context.Context, driverID string) ([]*domain.Assignment, error) {
	return r.list(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE driver_id = $1 AND status IN ($2, $3)
		ORDER BY start_date, id`,
		driverID, domain.AssignmentStatusScheduled, domain.AssignmentStatusActive)
}

// ListLiveByVehicle returns the vehicle's scheduled and active assignments.
func (r *AssignmentRepository) ListLiveByVehicle(ctx context.Context, vehicleID string) ([]*domain.Assignment, error) {
	return r.list(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE vehicle_id = $1 AND status IN ($2, $3)
		ORDER BY start_date, id`,
		vehicleID, domain.AssignmentStatusScheduled, domain.AssignmentStatusActive)
}

// ListByDriver returns every assignment of a driver, newest first.
func (r *AssignmentRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Assignment, error) {
	return r.list(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE driver_id = $1
		ORDER BY start_date DESC, id`,
		driverID)
}

func (r *AssignmentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Assignment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ repository.AssignmentRepository = (*AssignmentRepository)(nil)
