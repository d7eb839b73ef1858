package domain

import "time"

// DriverStatus represents the onboarding/employment status of a driver.
type DriverStatus string

const (
	DriverStatusPending  DriverStatus = "PENDING"
	DriverStatusActive   DriverStatus = "ACTIVE"
	DriverStatusRejected DriverStatus = "REJECTED"
	DriverStatusInactive DriverStatus = "INACTIVE"
)

// Driver represents a fleet driver.
type Driver struct {
	ID            string
	Name          string
	Phone         string
	LicenseNumber string
	Status        DriverStatus
	CreatedAt     time.Time
	ApprovedAt    time.Time
}

// IsActive reports whether the driver may be assigned and go on duty.
func (d *Driver) IsActive() bool {
	return d.Status == DriverStatusActive
}
