package domain

import "time"

// DutyStatus represents the current status of a duty.
type DutyStatus string

const (
	DutyStatusActive    DutyStatus = "ACTIVE"
	DutyStatusCompleted DutyStatus = "COMPLETED"
	DutyStatusCancelled DutyStatus = "CANCELLED"
)

// Collections holds the per-category money figures reported at duty end.
type Collections struct {
	Toll              float64
	Fuel              float64
	Pass              float64
	Insurance         float64
	Advance           float64
	CompanyPay        float64
	QRCollection      float64
	CashCollection    float64
	DigitalCollection float64
}

// Duty is a single driver shift on a vehicle, from start to end.
type Duty struct {
	ID                  string
	DriverID            string
	VehicleID           string
	SchemeID            string
	Status              DutyStatus
	StartTime           time.Time
	EndTime             time.Time
	Revenue             float64
	TripCount           int
	Collections         Collections
	StartCNG            float64
	EndCNG              float64
	VehicleRegistration string

	// Computed at duty end.
	Earnings      float64
	BaseEarnings  float64
	BMGApplied    float64
	Incentive     float64
	Bonuses       float64
	Deductions    float64
	GrossEarnings float64
}

// PayrollLine is the per-driver aggregate over completed duties in a period.
type PayrollLine struct {
	DriverID      string
	DriverName    string
	Duties        int
	Trips         int
	Revenue       float64
	BaseEarnings  float64
	Incentive     float64
	Bonuses       float64
	Deductions    float64
	BMGApplied    float64
	GrossEarnings float64
	Earnings      float64
}
