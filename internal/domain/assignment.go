package domain

import "time"

// ShiftType identifies the time-of-day window an assignment covers.
type ShiftType string

const (
	ShiftFullDay ShiftType = "full_day"
	ShiftMorning ShiftType = "morning"
	ShiftEvening ShiftType = "evening"
	ShiftNight   ShiftType = "night"
)

// IsValid reports whether s is a known shift type.
func (s ShiftType) IsValid() bool {
	switch s {
	case ShiftFullDay, ShiftMorning, ShiftEvening, ShiftNight:
		return true
	}
	return false
}

// AssignmentStatus represents the lifecycle state of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusScheduled AssignmentStatus = "scheduled"
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// IsLive reports whether assignments in this state take part in conflict checks.
func (s AssignmentStatus) IsLive() bool {
	return s == AssignmentStatusScheduled || s == AssignmentStatusActive
}

// IsTerminal reports whether no further transitions are allowed.
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusCompleted || s == AssignmentStatusCancelled
}

// Assignment links a driver to a vehicle over a day range and shift.
// Dates are calendar days in UTC; EndDate is inclusive and nil means open-ended.
type Assignment struct {
	ID        string
	DriverID  string
	VehicleID string
	StartDate time.Time
	EndDate   *time.Time
	ShiftType ShiftType
	Status    AssignmentStatus
	Notes     string
	CreatedAt time.Time
	EndedAt   time.Time
}
