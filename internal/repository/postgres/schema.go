package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS drivers (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	phone          TEXT NOT NULL UNIQUE,
	license_number TEXT,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	approved_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS vehicles (
	id                  UUID PRIMARY KEY,
	registration_number TEXT NOT NULL UNIQUE,
	model               TEXT,
	status              TEXT NOT NULL,
	is_available        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS assignments (
	id         UUID PRIMARY KEY,
	driver_id  UUID NOT NULL REFERENCES drivers(id),
	vehicle_id UUID NOT NULL REFERENCES vehicles(id),
	start_date DATE NOT NULL,
	end_date   DATE,
	shift_type TEXT NOT NULL,
	status     TEXT NOT NULL,
	notes      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	ended_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_assignments_driver_live
	ON assignments (driver_id, start_date) WHERE status IN ('scheduled', 'active');
CREATE INDEX IF NOT EXISTS idx_assignments_vehicle_live
	ON assignments (vehicle_id, start_date) WHERE status IN ('scheduled', 'active');

CREATE TABLE IF NOT EXISTS compensation_schemes (
	id                  UUID PRIMARY KEY,
	name                TEXT NOT NULL,
	scheme_type         TEXT NOT NULL,
	minimum_guarantee   NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (minimum_guarantee >= 0),
	config              JSONB NOT NULL DEFAULT '{}',
	calculation_formula TEXT,
	is_active           BOOLEAN NOT NULL DEFAULT TRUE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS duties (
	id                   UUID PRIMARY KEY,
	driver_id            UUID NOT NULL REFERENCES drivers(id),
	vehicle_id           UUID NOT NULL REFERENCES vehicles(id),
	scheme_id            UUID NOT NULL REFERENCES compensation_schemes(id),
	status               TEXT NOT NULL,
	start_time           TIMESTAMPTZ NOT NULL,
	end_time             TIMESTAMPTZ,
	revenue              DOUBLE PRECISION NOT NULL DEFAULT 0,
	trip_count           INTEGER NOT NULL DEFAULT 0,
	toll                 DOUBLE PRECISION NOT NULL DEFAULT 0,
	fuel                 DOUBLE PRECISION NOT NULL DEFAULT 0,
	pass                 DOUBLE PRECISION NOT NULL DEFAULT 0,
	insurance            DOUBLE PRECISION NOT NULL DEFAULT 0,
	advance              DOUBLE PRECISION NOT NULL DEFAULT 0,
	company_pay          DOUBLE PRECISION NOT NULL DEFAULT 0,
	qr_collection        DOUBLE PRECISION NOT NULL DEFAULT 0,
	cash_collection      DOUBLE PRECISION NOT NULL DEFAULT 0,
	digital_collection   DOUBLE PRECISION NOT NULL DEFAULT 0,
	start_cng            DOUBLE PRECISION NOT NULL DEFAULT 0,
	end_cng              DOUBLE PRECISION NOT NULL DEFAULT 0,
	vehicle_registration TEXT,
	earnings             NUMERIC(12, 2) NOT NULL DEFAULT 0,
	base_earnings        NUMERIC(12, 2) NOT NULL DEFAULT 0,
	bmg_applied          NUMERIC(12, 2) NOT NULL DEFAULT 0,
	incentive            NUMERIC(12, 2) NOT NULL DEFAULT 0,
	bonuses              NUMERIC(12, 2) NOT NULL DEFAULT 0,
	deductions           NUMERIC(12, 2) NOT NULL DEFAULT 0,
	gross_earnings       NUMERIC(12, 2) NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_duties_one_active_per_driver
	ON duties (driver_id) WHERE status = 'ACTIVE';
CREATE INDEX IF NOT EXISTS idx_duties_completed_start
	ON duties (start_time) WHERE status = 'COMPLETED';
`

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
