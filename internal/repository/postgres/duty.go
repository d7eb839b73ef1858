package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// DutyRepository is a PostgreSQL implementation of repository.DutyRepository.
type DutyRepository struct {
	q Querier
}

// NewDutyRepository creates a new PostgreSQL duty repository.
func NewDutyRepository(db *sql.DB) *DutyRepository {
	return &DutyRepository{q: db}
}

// NewDutyRepositoryWithTx creates a duty repository using a transaction.
func NewDutyRepositoryWithTx(tx *sql.Tx) *DutyRepository {
	return &DutyRepository{q: tx}
}

const dutyColumns = `
	id, driver_id, vehicle_id, scheme_id, status, start_time, end_time,
	revenue, trip_count,
	toll, fuel, pass, insurance, advance, company_pay,
	qr_collection, cash_collection, digital_collection,
	start_cng, end_cng, COALESCE(vehicle_registration, ''),
	earnings, base_earnings, bmg_applied, incentive, bonuses, deductions, gross_earnings`

func scanDuty(row rowScanner) (*domain.Duty, error) {
	var d domain.Duty
	var endTime sql.NullTime
	c := &d.Collections
	if err := row.Scan(
		&d.ID, &d.DriverID, &d.VehicleID, &d.SchemeID, &d.Status, &d.StartTime, &endTime,
		&d.Revenue, &d.TripCount,
		&c.Toll, &c.Fuel, &c.Pass, &c.Insurance, &c.Advance, &c.CompanyPay,
		&c.QRCollection, &c.CashCollection, &c.DigitalCollection,
		&d.StartCNG, &d.EndCNG, &d.VehicleRegistration,
		&d.Earnings, &d.BaseEarnings, &d.BMGApplied, &d.Incentive, &d.Bonuses, &d.Deductions, &d.GrossEarnings,
	); err != nil {
		return nil, err
	}
	if endTime.Valid {
		d.EndTime = endTime.Time
	}
	return &d, nil
}

// Create persists a new duty.
func (r *DutyRepository) Create(ctx context.Context, d *domain.Duty) error {
	query := `
		INSERT INTO duties (id, driver_id, vehicle_id, scheme_id, status, start_time, start_cng, vehicle_registration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		d.ID, d.DriverID, d.VehicleID, d.SchemeID, d.Status, d.StartTime, d.StartCNG, d.VehicleRegistration)
	return mapError(err)
}

// GetByID retrieves a duty by ID.
func (r *DutyRepository) GetByID(ctx context.Context, id string) (*domain.Duty, error) {
	d, err := scanDuty(r.q.QueryRowContext(ctx, `SELECT `+dutyColumns+` FROM duties WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// Update saves the reported figures, computed earnings and status of a duty.
func (r *DutyRepository) Update(ctx context.Context, d *domain.Duty) error {
	query := `
		UPDATE duties SET
			status = $1, end_time = $2, revenue = $3, trip_count = $4,
			toll = $5, fuel = $6, pass = $7, insurance = $8, advance = $9, company_pay = $10,
			qr_collection = $11, cash_collection = $12, digital_collection = $13,
			end_cng = $14,
			earnings = $15, base_earnings = $16, bmg_applied = $17, incentive = $18,
			bonuses = $19, deductions = $20, gross_earnings = $21
		WHERE id = $22
	`
	c := d.Collections
	result, err := r.q.ExecContext(ctx, query,
		d.Status, nullTime(d.EndTime), d.Revenue, d.TripCount,
		c.Toll, c.Fuel, c.Pass, c.Insurance, c.Advance, c.CompanyPay,
		c.QRCollection, c.CashCollection, c.DigitalCollection,
		d.EndCNG,
		d.Earnings, d.BaseEarnings, d.BMGApplied, d.Incentive,
		d.Bonuses, d.Deductions, d.GrossEarnings,
		d.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// GetActiveByDriverID retrieves the active duty for a driver.
// Returns nil if no active duty exists.
func (r *DutyRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Duty, error) {
	query := `SELECT ` + dutyColumns + ` FROM duties WHERE driver_id = $1 AND status = $2 LIMIT 1`

	d, err := scanDuty(r.q.QueryRowContext(ctx, query, driverID, domain.DutyStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// ListCompleted returns completed duties started in [from, to).
func (r *DutyRepository) ListCompleted(ctx context.Context, from, to time.Time) ([]*domain.Duty, error) {
	query := `
		SELECT ` + dutyColumns + ` FROM duties
		WHERE status = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY driver_id, start_time
	`
	rows, err := r.q.QueryContext(ctx, query, domain.DutyStatusCompleted, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var duties []*domain.Duty
	for rows.Next() {
		d, err := scanDuty(rows)
		if err != nil {
			return nil, err
		}
		duties = append(duties, d)
	}
	return duties, rows.Err()
}

// Ensure DutyRepository implements repository.DutyRepository.
var _ repository.DutyRepository = (*DutyRepository)(nil)
