package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// SchemeRepository is a PostgreSQL implementation of repository.SchemeRepository.
// The per-type parameters live in a JSONB column.
type SchemeRepository struct {
	q Querier
}

// NewSchemeRepository creates a new PostgreSQL scheme repository.
func NewSchemeRepository(db *sql.DB) *SchemeRepository {
	return &SchemeRepository{q: db}
}

const schemeColumns = `id, name, scheme_type, minimum_guarantee, config, COALESCE(calculation_formula, ''), is_active, created_at, updated_at`

func scanScheme(row rowScanner) (*domain.CompensationScheme, error) {
	var s domain.CompensationScheme
	var rawConfig []byte
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.SchemeType,
		&s.MinimumGuarantee,
		&rawConfig,
		&s.CalculationFormula,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Config = map[string]any{}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &s.Config); err != nil {
			return nil, fmt.Errorf("scheme %s: decode config: %w", s.ID, err)
		}
	}
	return &s, nil
}

func encodeConfig(cfg map[string]any) ([]byte, error) {
	if cfg == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(cfg)
}

// Create persists a new scheme.
func (r *SchemeRepository) Create(ctx context.Context, s *domain.CompensationScheme) error {
	cfg, err := encodeConfig(s.Config)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO compensation_schemes
			(id, name, scheme_type, minimum_guarantee, config, calculation_formula, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.q.ExecContext(ctx, query,
		s.ID, s.Name, s.SchemeType, s.MinimumGuarantee, cfg, s.CalculationFormula, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return mapError(err)
}

// GetByID retrieves a scheme by ID.
func (r *SchemeRepository) GetByID(ctx context.Context, id string) (*domain.CompensationScheme, error) {
	s, err := scanScheme(r.q.QueryRowContext(ctx, `SELECT `+schemeColumns+` FROM compensation_schemes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetAll retrieves all schemes.
func (r *SchemeRepository) GetAll(ctx context.Context) ([]*domain.CompensationScheme, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+schemeColumns+` FROM compensation_schemes ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemes []*domain.CompensationScheme
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, s)
	}
	return schemes, rows.Err()
}

// Update saves every mutable field of a scheme.
func (r *SchemeRepository) Update(ctx context.Context, s *domain.CompensationScheme) error {
	cfg, err := encodeConfig(s.Config)
	if err != nil {
		return err
	}
	query := `
		UPDATE compensation_schemes
		SET name = $1, scheme_type = $2, minimum_guarantee = $3, config = $4,
		    calculation_formula = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.q.ExecContext(ctx, query,
		s.Name, s.SchemeType, s.MinimumGuarantee, cfg, s.CalculationFormula, s.IsActive, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

var _ repository.SchemeRepository = (*SchemeRepository)(nil)
