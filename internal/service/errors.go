package service

import (
	"errors"

	"fleet/internal/scheduling"
)

var (
	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidSchemeID is returned when scheme ID is empty.
	ErrInvalidSchemeID = errors.New("invalid scheme id")

	// ErrInvalidDutyID is returned when duty ID is empty.
	ErrInvalidDutyID = errors.New("invalid duty id")

	// ErrInvalidAssignmentID is returned when assignment ID is empty.
	ErrInvalidAssignmentID = errors.New("invalid assignment id")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidRadius is returned for a nearby search radius outside (0, 50] km.
	ErrInvalidRadius = errors.New("invalid search radius")

	// ErrMissingField is returned when a required request field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrDriverAlreadyRegistered is returned when the phone number is taken.
	ErrDriverAlreadyRegistered = errors.New("driver already registered")

	// ErrVehicleAlreadyRegistered is returned when the registration number is taken.
	ErrVehicleAlreadyRegistered = errors.New("vehicle already registered")

	// ErrDriverNotPending is returned when approving or rejecting a driver
	// that is not awaiting review.
	ErrDriverNotPending = errors.New("driver is not pending approval")

	// ErrDriverNotActive is returned when an operation needs an approved driver.
	ErrDriverNotActive = errors.New("driver is not active")

	// ErrVehicleUnavailable is returned when a vehicle cannot take assignments.
	ErrVehicleUnavailable = errors.New("vehicle is not available")

	// ErrInvalidVehicleStatus is returned for an unknown vehicle status.
	ErrInvalidVehicleStatus = errors.New("invalid vehicle status")

	// ErrAssignmentConflict is returned when a candidate overlaps a live assignment.
	ErrAssignmentConflict = errors.New("assignment conflict")

	// ErrAssignmentBusy is returned when another request holds the driver or
	// vehicle assignment lock.
	ErrAssignmentBusy = errors.New("driver or vehicle is being assigned by another request")

	// ErrAssignmentTerminal is returned when changing a completed or cancelled assignment.
	ErrAssignmentTerminal = errors.New("assignment already completed or cancelled")

	// ErrInvalidEndDate is returned when an end date precedes the start date.
	ErrInvalidEndDate = errors.New("end date before start date")

	// ErrEmptyBulkRequest is returned when a bulk request carries no items.
	ErrEmptyBulkRequest = errors.New("no assignments in request")

	// ErrDriverHasActiveDuty is returned when driver already has an active duty.
	ErrDriverHasActiveDuty = errors.New("driver already has an active duty")

	// ErrNoAssignmentForDuty is returned when the driver holds no live
	// assignment for the vehicle today.
	ErrNoAssignmentForDuty = errors.New("driver is not assigned to this vehicle today")

	// ErrDutyNotActive is returned when ending or cancelling a duty that is
	// already completed or cancelled.
	ErrDutyNotActive = errors.New("duty is not active")

	// ErrSchemeInactive is returned when starting a duty on a disabled scheme.
	ErrSchemeInactive = errors.New("compensation scheme is inactive")

	// ErrInvalidMinimumGuarantee is returned for a negative or non-finite guarantee.
	ErrInvalidMinimumGuarantee = errors.New("minimum guarantee must be a non-negative number")

	// ErrInvalidFormula is returned when a custom formula does not parse.
	ErrInvalidFormula = errors.New("invalid calculation formula")

	// ErrInvalidPeriod is returned when a payroll period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid payroll period")
)

// ConflictError carries the assignments a candidate collided with.
type ConflictError struct {
	Candidate scheduling.Candidate
	Result    scheduling.ConflictResult
}

func (e *ConflictError) Error() string {
	return ErrAssignmentConflict.Error() + ": " + e.Result.Describe(e.Candidate)
}

func (e *ConflictError) Unwrap() error {
	return ErrAssignmentConflict
}
