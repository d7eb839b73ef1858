/*
Package scheduling decides whether a proposed driver/vehicle assignment
collides with assignments that are already live.

Two assignments collide when their calendar-day ranges intersect and their
shifts share an hour of the day. Completed and cancelled assignments never
collide. Everything here works on records already loaded by the caller.
*/
package scheduling

import (
	"errors"
	"fmt"
	"time"

	"fleet/internal/domain"
)

// ErrInvalidCandidate is returned by Candidate.Validate.
var ErrInvalidCandidate = errors.New("invalid assignment candidate")

// Candidate is a proposed assignment.
type Candidate struct {
	DriverID  string
	VehicleID string
	StartDate time.Time
	EndDate   *time.Time
	ShiftType domain.ShiftType

	// ExcludeID skips one existing assignment, so an edit does not conflict
	// with its own stored row.
	ExcludeID string
}

// Validate checks the candidate's shape.
func (c Candidate) Validate() error {
	if c.DriverID == "" || c.VehicleID == "" {
		return fmt.Errorf("%w: driver and vehicle are required", ErrInvalidCandidate)
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidCandidate)
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidCandidate, FormatDate(c.EndDate), c.StartDate.Format(DateLayout))
	}
	if !c.ShiftType.IsValid() {
		return fmt.Errorf("%w: unknown shift type %q", ErrInvalidCandidate, c.ShiftType)
	}
	return nil
}

// WithDriver returns a copy of c for another driver.
func (c Candidate) WithDriver(id string) Candidate {
	c.DriverID = id
	return c
}

// WithVehicle returns a copy of c for another vehicle.
func (c Candidate) WithVehicle(id string) Candidate {
	c.VehicleID = id
	return c
}

// WithShift returns a copy of c with another shift.
func (c Candidate) WithShift(s domain.ShiftType) Candidate {
	c.ShiftType = s
	return c
}

// Collides reports whether c overlaps a in both date range and shift.
func (c Candidate) Collides(a *domain.Assignment) bool {
	if a == nil || !a.Status.IsLive() {
		return false
	}
	if c.ExcludeID != "" && a.ID == c.ExcludeID {
		return false
	}
	if !DayRangesOverlap(c.StartDate, c.EndDate, a.StartDate, a.EndDate) {
		return false
	}
	return ShiftsOverlap(c.ShiftType, a.ShiftType)
}

// FindConflict returns the first assignment in existing that collides with c,
// or nil. existing is expected to be ordered by start date.
func FindConflict(c Candidate, existing []*domain.Assignment) *domain.Assignment {
	for _, a := range existing {
		if c.Collides(a) {
			return a
		}
	}
	return nil
}

// ConflictResult holds the first colliding assignment on each side. A nil
// field means that side is free.
type ConflictResult struct {
	DriverConflict  *domain.Assignment
	VehicleConflict *domain.Assignment
}

// HasConflict reports whether either side collided.
func (r ConflictResult) HasConflict() bool {
	return r.DriverConflict != nil || r.VehicleConflict != nil
}

// CheckConflicts searches the driver's and the vehicle's live assignments
// independently.
func CheckConflicts(c Candidate, driverAssignments, vehicleAssignments []*domain.Assignment) ConflictResult {
	return ConflictResult{
		DriverConflict:  FindConflict(c, driverAssignments),
		VehicleConflict: FindConflict(c, vehicleAssignments),
	}
}

// Describe renders a conflict for bulk error reports.
func (r ConflictResult) Describe(c Candidate) string {
	switch {
	case r.DriverConflict != nil && r.VehicleConflict != nil:
		return fmt.Sprintf("%s: driver %s conflicts with assignment %s and vehicle %s conflicts with assignment %s",
			c.StartDate.Format(DateLayout), c.DriverID, r.DriverConflict.ID, c.VehicleID, r.VehicleConflict.ID)
	case r.DriverConflict != nil:
		return fmt.Sprintf("%s: driver %s already assigned (assignment %s, %s shift)",
			c.StartDate.Format(DateLayout), c.DriverID, r.DriverConflict.ID, r.DriverConflict.ShiftType)
	case r.VehicleConflict != nil:
		return fmt.Sprintf("%s: vehicle %s already assigned (assignment %s, %s shift)",
			c.StartDate.Format(DateLayout), c.VehicleID, r.VehicleConflict.ID, r.VehicleConflict.ShiftType)
	}
	return ""
}
