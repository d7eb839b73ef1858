package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/earnings"
	"fleet/internal/service"
)

// SchemeHandler handles HTTP requests for compensation schemes.
type SchemeHandler struct {
	schemeService *service.SchemeService
}

// NewSchemeHandler creates a new SchemeHandler.
func NewSchemeHandler(schemeService *service.SchemeService) *SchemeHandler {
	return &SchemeHandler{schemeService: schemeService}
}

// SchemeRequest is the HTTP request body for creating or updating a scheme.
type SchemeRequest struct {
	Name               string         `json:"name"`
	SchemeType         string         `json:"scheme_type"`
	MinimumGuarantee   float64        `json:"minimum_guarantee"`
	Config             map[string]any `json:"config"`
	CalculationFormula string         `json:"calculation_formula"`
	IsActive           *bool          `json:"is_active"`
}

func (r SchemeRequest) toService() service.SchemeRequest {
	return service.SchemeRequest{
		Name:               r.Name,
		SchemeType:         r.SchemeType,
		MinimumGuarantee:   r.MinimumGuarantee,
		Config:             r.Config,
		CalculationFormula: r.CalculationFormula,
		IsActive:           r.IsActive,
	}
}

// SchemeResponse is the HTTP response for scheme data.
type SchemeResponse struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	SchemeType         string         `json:"scheme_type"`
	MinimumGuarantee   float64        `json:"minimum_guarantee"`
	Config             map[string]any `json:"config"`
	CalculationFormula string         `json:"calculation_formula,omitempty"`
	IsActive           bool           `json:"is_active"`
	UpdatedAt          string         `json:"updated_at,omitempty"`
}

// DutyFigures are the duty inputs of an earnings calculation.
type DutyFigures struct {
	Revenue             float64     `json:"revenue"`
	TripCount           int         `json:"trip_count"`
	StartTime           string      `json:"start_time"`
	EndTime             string      `json:"end_time"`
	Collections         Collections `json:"collections"`
	StartCNG            float64     `json:"start_cng"`
	EndCNG              float64     `json:"end_cng"`
	VehicleRegistration string      `json:"vehicle_registration"`
}

// Collections is the JSON shape of the per-category duty money figures.
type Collections struct {
	Toll              float64 `json:"toll"`
	Fuel              float64 `json:"fuel"`
	Pass              float64 `json:"pass"`
	Insurance         float64 `json:"insurance"`
	Advance           float64 `json:"advance"`
	CompanyPay        float64 `json:"company_pay"`
	QRCollection      float64 `json:"qr_collection"`
	CashCollection    float64 `json:"cash_collection"`
	DigitalCollection float64 `json:"digital_collection"`
}

func (c Collections) toDomain() domain.Collections {
	return domain.Collections{
		Toll:              c.Toll,
		Fuel:              c.Fuel,
		Pass:              c.Pass,
		Insurance:         c.Insurance,
		Advance:           c.Advance,
		CompanyPay:        c.CompanyPay,
		QRCollection:      c.QRCollection,
		CashCollection:    c.CashCollection,
		DigitalCollection: c.DigitalCollection,
	}
}

// EarningsResponse is the HTTP response for an earnings breakdown.
type EarningsResponse struct {
	Earnings      float64 `json:"earnings"`
	BaseEarnings  float64 `json:"base_earnings"`
	BMGApplied    float64 `json:"bmg_applied"`
	Incentive     float64 `json:"incentive"`
	Bonuses       float64 `json:"bonuses"`
	Deductions    float64 `json:"deductions"`
	GrossEarnings float64 `json:"gross_earnings"`
	FormulaError  string  `json:"formula_error,omitempty"`
}

func toSchemeResponse(s *domain.CompensationScheme) SchemeResponse {
	return SchemeResponse{
		ID:                 s.ID,
		Name:               s.Name,
		SchemeType:         s.SchemeType,
		MinimumGuarantee:   s.MinimumGuarantee,
		Config:             s.Config,
		CalculationFormula: s.CalculationFormula,
		IsActive:           s.IsActive,
		UpdatedAt:          formatTime(s.UpdatedAt),
	}
}

func toEarningsResponse(r *earnings.Result) EarningsResponse {
	resp := EarningsResponse{
		Earnings:      r.Earnings.InexactFloat64(),
		BaseEarnings:  r.BaseEarnings.InexactFloat64(),
		BMGApplied:    r.BMGApplied.InexactFloat64(),
		Incentive:     r.Incentive.InexactFloat64(),
		Bonuses:       r.Bonuses.InexactFloat64(),
		Deductions:    r.Deductions.InexactFloat64(),
		GrossEarnings: r.GrossEarnings.InexactFloat64(),
	}
	if r.FormulaError != nil {
		resp.FormulaError = r.FormulaError.Error()
	}
	return resp
}

// Create handles POST /v1/schemes
func (h *SchemeHandler) Create(c *gin.Context) {
	var req SchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	scheme, err := h.schemeService.CreateScheme(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toSchemeResponse(scheme))
}

// Update handles PUT /v1/schemes/:id
func (h *SchemeHandler) Update(c *gin.Context) {
	var req SchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	scheme, err := h.schemeService.UpdateScheme(c.Request.Context(), c.Param("id"), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSchemeResponse(scheme))
}

// Get handles GET /v1/schemes/:id
func (h *SchemeHandler) Get(c *gin.Context) {
	scheme, err := h.schemeService.GetScheme(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSchemeResponse(scheme))
}

// GetAll handles GET /v1/schemes
func (h *SchemeHandler) GetAll(c *gin.Context) {
	schemes, err := h.schemeService.ListSchemes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]SchemeResponse, 0, len(schemes))
	for _, s := range schemes {
		response = append(response, toSchemeResponse(s))
	}
	respondJSON(c, http.StatusOK, response)
}

// Types handles GET /v1/schemes/types
func (h *SchemeHandler) Types(c *gin.Context) {
	types := earnings.SupportedTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	respondJSON(c, http.StatusOK, gin.H{
		"scheme_types":      names,
		"formula_variables": earnings.FormulaVariables(),
	})
}

// Preview handles POST /v1/schemes/:id/preview
func (h *SchemeHandler) Preview(c *gin.Context) {
	var req DutyFigures
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	facts, err := req.toFacts()
	if err != nil {
		badRequest(c, "start_time and end_time must be RFC 3339 timestamps")
		return
	}

	result, err := h.schemeService.Preview(c.Request.Context(), c.Param("id"), facts)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toEarningsResponse(result))
}

func (f DutyFigures) toFacts() (earnings.Facts, error) {
	facts := earnings.Facts{
		Revenue:             f.Revenue,
		TripCount:           f.TripCount,
		Collections:         f.Collections.toDomain(),
		StartCNG:            f.StartCNG,
		EndCNG:              f.EndCNG,
		VehicleRegistration: f.VehicleRegistration,
	}
	var err error
	if f.StartTime != "" {
		if facts.StartTime, err = time.Parse(time.RFC3339, f.StartTime); err != nil {
			return earnings.Facts{}, err
		}
	}
	if f.EndTime != "" {
		if facts.EndTime, err = time.Parse(time.RFC3339, f.EndTime); err != nil {
			return earnings.Facts{}, err
		}
	}
	return facts, nil
}
