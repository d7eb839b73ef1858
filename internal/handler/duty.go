package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// DutyHandler handles HTTP requests for duties.
type DutyHandler struct {
	dutyService *service.DutyService
}

// NewDutyHandler creates a new DutyHandler.
func NewDutyHandler(dutyService *service.DutyService) *DutyHandler {
	return &DutyHandler{dutyService: dutyService}
}

// StartDutyRequest is the HTTP request body for starting a duty.
type StartDutyRequest struct {
	DriverID  string  `json:"driver_id"`
	VehicleID string  `json:"vehicle_id"`
	SchemeID  string  `json:"scheme_id"`
	StartCNG  float64 `json:"start_cng"`
}

// EndDutyRequest is the HTTP request body for ending a duty.
type EndDutyRequest struct {
	Revenue     float64     `json:"revenue"`
	TripCount   int         `json:"trip_count"`
	Collections Collections `json:"collections"`
	EndCNG      float64     `json:"end_cng"`
}

// DutyResponse is the HTTP response for duty operations.
type DutyResponse struct {
	ID                  string            `json:"id"`
	DriverID            string            `json:"driver_id"`
	VehicleID           string            `json:"vehicle_id"`
	SchemeID            string            `json:"scheme_id"`
	VehicleRegistration string            `json:"vehicle_registration"`
	Status              string            `json:"status"`
	StartTime           string            `json:"start_time"`
	EndTime             string            `json:"end_time,omitempty"`
	Revenue             float64           `json:"revenue"`
	TripCount           int               `json:"trip_count"`
	Earnings            *EarningsResponse `json:"earnings,omitempty"`
}

func toDutyResponse(d *domain.Duty) DutyResponse {
	resp := DutyResponse{
		ID:                  d.ID,
		DriverID:            d.DriverID,
		VehicleID:           d.VehicleID,
		SchemeID:            d.SchemeID,
		VehicleRegistration: d.VehicleRegistration,
		Status:              string(d.Status),
		StartTime:           formatTime(d.StartTime),
		EndTime:             formatTime(d.EndTime),
		Revenue:             d.Revenue,
		TripCount:           d.TripCount,
	}
	if d.Status == domain.DutyStatusCompleted {
		resp.Earnings = &EarningsResponse{
			Earnings:      d.Earnings,
			BaseEarnings:  d.BaseEarnings,
			BMGApplied:    d.BMGApplied,
			Incentive:     d.Incentive,
			Bonuses:       d.Bonuses,
			Deductions:    d.Deductions,
			GrossEarnings: d.GrossEarnings,
		}
	}
	return resp
}

// Start handles POST /v1/duties
func (h *DutyHandler) Start(c *gin.Context) {
	var req StartDutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	duty, err := h.dutyService.StartDuty(c.Request.Context(), service.StartDutyRequest{
		DriverID:  req.DriverID,
		VehicleID: req.VehicleID,
		SchemeID:  req.SchemeID,
		StartCNG:  req.StartCNG,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDutyResponse(duty))
}

// End handles POST /v1/duties/:id/end
func (h *DutyHandler) End(c *gin.Context) {
	var req EndDutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.dutyService.EndDuty(c.Request.Context(), service.EndDutyRequest{
		DutyID:      c.Param("id"),
		Revenue:     req.Revenue,
		TripCount:   req.TripCount,
		Collections: req.Collections.toDomain(),
		EndCNG:      req.EndCNG,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := toDutyResponse(result.Duty)
	earnings := toEarningsResponse(result.Result)
	resp.Earnings = &earnings
	respondJSON(c, http.StatusOK, resp)
}

// Cancel handles POST /v1/duties/:id/cancel
func (h *DutyHandler) Cancel(c *gin.Context) {
	duty, err := h.dutyService.CancelDuty(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDutyResponse(duty))
}

// Get handles GET /v1/duties/:id
func (h *DutyHandler) Get(c *gin.Context) {
	duty, err := h.dutyService.GetDuty(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDutyResponse(duty))
}
