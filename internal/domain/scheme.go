package domain

import "time"

// CompensationScheme is the stored configuration of a driver pay scheme.
// Config is the loosely-typed parameter map as persisted; the earnings
// package turns it into a typed variant before calculating.
type CompensationScheme struct {
	ID                 string
	Name               string
	SchemeType         string
	MinimumGuarantee   float64
	Config             map[string]any
	CalculationFormula string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
