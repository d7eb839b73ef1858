package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/scheduling"
	"fleet/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PayrollHandler handles HTTP requests for payroll reports.
type PayrollHandler struct {
	payrollService *service.PayrollService
}

// NewPayrollHandler creates a new PayrollHandler.
func NewPayrollHandler(payrollService *service.PayrollService) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService}
}

// PayrollLineResponse is one driver row of a payroll summary.
type PayrollLineResponse struct {
	DriverID      string  `json:"driver_id,omitempty"`
	DriverName    string  `json:"driver_name"`
	Duties        int     `json:"duties"`
	Trips         int     `json:"trips"`
	Revenue       float64 `json:"revenue"`
	BaseEarnings  float64 `json:"base_earnings"`
	Incentive     float64 `json:"incentive"`
	Bonuses       float64 `json:"bonuses"`
	Deductions    float64 `json:"deductions"`
	BMGApplied    float64 `json:"bmg_applied"`
	GrossEarnings float64 `json:"gross_earnings"`
	Earnings      float64 `json:"earnings"`
}

// PayrollResponse is the HTTP response for a payroll summary.
type PayrollResponse struct {
	From   string                `json:"from"`
	To     string                `json:"to"`
	Lines  []PayrollLineResponse `json:"lines"`
	Totals PayrollLineResponse   `json:"totals"`
}

func toPayrollLineResponse(l domain.PayrollLine) PayrollLineResponse {
	return PayrollLineResponse(l)
}

// Summary handles GET /v1/payroll?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *PayrollHandler) Summary(c *gin.Context) {
	summary, err := h.payrollService.Summary(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := PayrollResponse{
		From:   summary.From.Format(scheduling.DateLayout),
		To:     summary.To.Format(scheduling.DateLayout),
		Lines:  make([]PayrollLineResponse, 0, len(summary.Lines)),
		Totals: toPayrollLineResponse(summary.Totals),
	}
	for _, l := range summary.Lines {
		resp.Lines = append(resp.Lines, toPayrollLineResponse(l))
	}
	respondJSON(c, http.StatusOK, resp)
}

// Export handles GET /v1/payroll/export?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *PayrollHandler) Export(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")

	var buf bytes.Buffer
	if err := h.payrollService.ExportXLSX(c.Request.Context(), from, to, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll_%s_%s.xlsx"`, from, to))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
