package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/earnings"
	"fleet/internal/repository"
	"fleet/internal/scheduling"
	"fleet/internal/service"
)

const timestampLayout = time.RFC3339

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ConflictResponse is the error body of a rejected assignment.
type ConflictResponse struct {
	Error           string              `json:"error"`
	DriverConflict  *AssignmentResponse `json:"driver_conflict,omitempty"`
	VehicleConflict *AssignmentResponse `json:"vehicle_conflict,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)

	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(code, ConflictResponse{
			Error:           err.Error(),
			DriverConflict:  toAssignmentResponsePtr(conflict.Result.DriverConflict),
			VehicleConflict: toAssignmentResponsePtr(conflict.Result.VehicleConflict),
		})
		return
	}

	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidSchemeID),
		errors.Is(err, service.ErrInvalidDutyID),
		errors.Is(err, service.ErrInvalidAssignmentID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidRadius),
		errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidVehicleStatus),
		errors.Is(err, service.ErrInvalidEndDate),
		errors.Is(err, service.ErrEmptyBulkRequest),
		errors.Is(err, service.ErrInvalidMinimumGuarantee),
		errors.Is(err, service.ErrInvalidFormula),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, scheduling.ErrInvalidDate),
		errors.Is(err, scheduling.ErrInvalidCandidate),
		errors.Is(err, scheduling.ErrInvalidPattern),
		errors.Is(err, scheduling.ErrTooManyOccurrences),
		errors.Is(err, earnings.ErrUnsupportedScheme):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrAssignmentConflict),
		errors.Is(err, service.ErrAssignmentBusy),
		errors.Is(err, service.ErrAssignmentTerminal),
		errors.Is(err, service.ErrDriverAlreadyRegistered),
		errors.Is(err, service.ErrVehicleAlreadyRegistered),
		errors.Is(err, service.ErrDriverNotPending),
		errors.Is(err, service.ErrDriverHasActiveDuty),
		errors.Is(err, service.ErrDutyNotActive),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Business rule errors
	case errors.Is(err, service.ErrDriverNotActive),
		errors.Is(err, service.ErrVehicleUnavailable),
		errors.Is(err, service.ErrSchemeInactive),
		errors.Is(err, service.ErrNoAssignmentForDuty):
		return http.StatusUnprocessableEntity

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}
