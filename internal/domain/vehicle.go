package domain

import "time"

// VehicleStatus represents the operational status of a vehicle.
type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "ACTIVE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusRetired     VehicleStatus = "RETIRED"
)

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID                 string
	RegistrationNumber string
	Model              string
	Status             VehicleStatus
	IsAvailable        bool
	CreatedAt          time.Time
}

// IsAssignable reports whether the vehicle can take new assignments.
func (v *Vehicle) IsAssignable() bool {
	return v.Status == VehicleStatusActive && v.IsAvailable
}
