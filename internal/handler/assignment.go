package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/scheduling"
	"fleet/internal/service"
)

// AssignmentHandler handles HTTP requests for driver-vehicle assignments.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// AssignmentRequest is the HTTP request body describing an assignment.
type AssignmentRequest struct {
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	ShiftType string `json:"shift_type"`
	Notes     string `json:"notes"`
	ExcludeID string `json:"exclude_id"`
}

func (r AssignmentRequest) toService() service.AssignmentRequest {
	return service.AssignmentRequest{
		DriverID:  r.DriverID,
		VehicleID: r.VehicleID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		ShiftType: r.ShiftType,
		Notes:     r.Notes,
		ExcludeID: r.ExcludeID,
	}
}

// BulkAssignmentRequest is the HTTP request body for bulk creation.
type BulkAssignmentRequest struct {
	Assignments []AssignmentRequest `json:"assignments"`
}

// RecurringAssignmentRequest is the HTTP request body for recurring creation.
type RecurringAssignmentRequest struct {
	AssignmentRequest
	Pattern   string `json:"pattern"`
	UntilDate string `json:"until_date"`
}

// EndAssignmentRequest is the HTTP request body for ending an assignment.
type EndAssignmentRequest struct {
	EndDate string `json:"end_date"`
}

// CancelAssignmentRequest is the HTTP request body for cancelling an assignment.
type CancelAssignmentRequest struct {
	Reason string `json:"reason"`
}

// AssignmentResponse is the HTTP response for assignment data.
type AssignmentResponse struct {
	ID        string `json:"id"`
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	ShiftType string `json:"shift_type"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	EndedAt   string `json:"ended_at,omitempty"`
}

// ConflictCheckResponse is the HTTP response for a conflict check.
type ConflictCheckResponse struct {
	HasConflict     bool                `json:"has_conflict"`
	DriverConflict  *AssignmentResponse `json:"driver_conflict,omitempty"`
	VehicleConflict *AssignmentResponse `json:"vehicle_conflict,omitempty"`
}

// SuggestionsResponse is the HTTP response for assignment suggestions.
type SuggestionsResponse struct {
	ConflictCheckResponse
	AlternativeDrivers  []DriverResponse  `json:"alternative_drivers"`
	AlternativeVehicles []VehicleResponse `json:"alternative_vehicles"`
	AlternativeShifts   []string          `json:"alternative_shifts"`
}

// BulkResponse is the HTTP response for bulk and recurring creation.
type BulkResponse struct {
	Success      bool                 `json:"success"`
	CreatedCount int                  `json:"created_count"`
	Created      []AssignmentResponse `json:"created"`
	Errors       []string             `json:"errors"`
}

func toAssignmentResponse(a *domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        a.ID,
		DriverID:  a.DriverID,
		VehicleID: a.VehicleID,
		StartDate: a.StartDate.Format(scheduling.DateLayout),
		EndDate:   scheduling.FormatDate(a.EndDate),
		ShiftType: string(a.ShiftType),
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedAt: formatTime(a.CreatedAt),
		EndedAt:   formatTime(a.EndedAt),
	}
}

func toAssignmentResponsePtr(a *domain.Assignment) *AssignmentResponse {
	if a == nil {
		return nil
	}
	r := toAssignmentResponse(a)
	return &r
}

func toConflictCheckResponse(r scheduling.ConflictResult) ConflictCheckResponse {
	return ConflictCheckResponse{
		HasConflict:     r.HasConflict(),
		DriverConflict:  toAssignmentResponsePtr(r.DriverConflict),
		VehicleConflict: toAssignmentResponsePtr(r.VehicleConflict),
	}
}

func toBulkResponse(r *service.BulkResult) BulkResponse {
	resp := BulkResponse{
		Success:      r.Success,
		CreatedCount: r.CreatedCount,
		Created:      make([]AssignmentResponse, 0, len(r.Created)),
		Errors:       r.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	for _, a := range r.Created {
		resp.Created = append(resp.Created, toAssignmentResponse(a))
	}
	return resp
}

// CheckConflicts handles POST /v1/assignments/check
func (h *AssignmentHandler) CheckConflicts(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.assignmentService.CheckConflicts(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toConflictCheckResponse(*result))
}

// Suggestions handles POST /v1/assignments/suggestions
func (h *AssignmentHandler) Suggestions(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	s, err := h.assignmentService.GenerateSuggestions(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := SuggestionsResponse{
		ConflictCheckResponse: toConflictCheckResponse(s.Conflicts),
		AlternativeDrivers:    make([]DriverResponse, 0, len(s.AlternativeDrivers)),
		AlternativeVehicles:   make([]VehicleResponse, 0, len(s.AlternativeVehicles)),
		AlternativeShifts:     make([]string, 0, len(s.AlternativeShifts)),
	}
	for _, d := range s.AlternativeDrivers {
		resp.AlternativeDrivers = append(resp.AlternativeDrivers, toDriverResponse(d))
	}
	for _, v := range s.AlternativeVehicles {
		resp.AlternativeVehicles = append(resp.AlternativeVehicles, toVehicleResponse(v))
	}
	for _, shift := range s.AlternativeShifts {
		resp.AlternativeShifts = append(resp.AlternativeShifts, string(shift))
	}

	respondJSON(c, http.StatusOK, resp)
}

// Create handles POST /v1/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	a, err := h.assignmentService.CreateAssignment(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toAssignmentResponse(a))
}

// CreateBulk handles POST /v1/assignments/bulk
func (h *AssignmentHandler) CreateBulk(c *gin.Context) {
	var req BulkAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	items := make([]service.AssignmentRequest, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		items = append(items, a.toService())
	}

	result, err := h.assignmentService.CreateBulk(c.Request.Context(), items)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, bulkStatus(result), toBulkResponse(result))
}

// CreateRecurring handles POST /v1/assignments/recurring
func (h *AssignmentHandler) CreateRecurring(c *gin.Context) {
	var req RecurringAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.assignmentService.CreateRecurring(c.Request.Context(), service.RecurringRequest{
		AssignmentRequest: req.AssignmentRequest.toService(),
		Pattern:           req.Pattern,
		UntilDate:         req.UntilDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, bulkStatus(result), toBulkResponse(result))
}

func bulkStatus(r *service.BulkResult) int {
	switch {
	case r.CreatedCount > 0:
		return http.StatusCreated
	case r.Success:
		return http.StatusOK
	default:
		return http.StatusConflict
	}
}

// Get handles GET /v1/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	a, err := h.assignmentService.GetAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAssignmentResponse(a))
}

// ListByDriver handles GET /v1/drivers/:id/assignments
func (h *AssignmentHandler) ListByDriver(c *gin.Context) {
	list, err := h.assignmentService.ListByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AssignmentResponse, 0, len(list))
	for _, a := range list {
		response = append(response, toAssignmentResponse(a))
	}
	respondJSON(c, http.StatusOK, response)
}

// End handles POST /v1/assignments/:id/end
func (h *AssignmentHandler) End(c *gin.Context) {
	var req EndAssignmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	a, err := h.assignmentService.EndAssignment(c.Request.Context(), c.Param("id"), req.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAssignmentResponse(a))
}

// Cancel handles POST /v1/assignments/:id/cancel
func (h *AssignmentHandler) Cancel(c *gin.Context) {
	var req CancelAssignmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	a, err := h.assignmentService.CancelAssignment(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAssignmentResponse(a))
}
