package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// VehicleHandler handles HTTP requests for vehicles.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// RegisterVehicleRequest is the HTTP request body for vehicle registration.
type RegisterVehicleRequest struct {
	RegistrationNumber string `json:"registration_number"`
	Model              string `json:"model"`
}

// UpdateVehicleRequest is the HTTP request body for a status/availability change.
type UpdateVehicleRequest struct {
	Status      *string `json:"status"`
	IsAvailable *bool   `json:"is_available"`
}

// VehicleResponse is the HTTP response for vehicle data.
type VehicleResponse struct {
	ID                 string `json:"id"`
	RegistrationNumber string `json:"registration_number"`
	Model              string `json:"model,omitempty"`
	Status             string `json:"status"`
	IsAvailable        bool   `json:"is_available"`
}

func toVehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                 v.ID,
		RegistrationNumber: v.RegistrationNumber,
		Model:              v.Model,
		Status:             string(v.Status),
		IsAvailable:        v.IsAvailable,
	}
}

// Register handles POST /v1/vehicles
func (h *VehicleHandler) Register(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	vehicle, err := h.vehicleService.Register(c.Request.Context(), service.RegisterVehicleRequest{
		RegistrationNumber: req.RegistrationNumber,
		Model:              req.Model,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetAll handles GET /v1/vehicles; ?assignable=true keeps only active, available vehicles.
func (h *VehicleHandler) GetAll(c *gin.Context) {
	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context(), c.Query("assignable") == "true")
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		response = append(response, toVehicleResponse(v))
	}
	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /v1/vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// Update handles PATCH /v1/vehicles/:id
func (h *VehicleHandler) Update(c *gin.Context) {
	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	update := service.UpdateVehicleRequest{
		VehicleID:   c.Param("id"),
		IsAvailable: req.IsAvailable,
	}
	if req.Status != nil {
		status := domain.VehicleStatus(*req.Status)
		update.Status = &status
	}

	vehicle, err := h.vehicleService.Update(c.Request.Context(), update)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}
