package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet/internal/domain"
	"fleet/internal/earnings"
	"fleet/internal/repository"
	"fleet/internal/scheduling"
	"fleet/internal/service"
	"fleet/internal/tests"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		err  error
		want int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("start_date: %w", scheduling.ErrInvalidDate), http.StatusBadRequest},
		{scheduling.ErrTooManyOccurrences, http.StatusBadRequest},
		{&earnings.UnsupportedSchemeError{SchemeType: "x"}, http.StatusBadRequest},
		{&service.ConflictError{}, http.StatusConflict},
		{service.ErrAssignmentBusy, http.StatusConflict},
		{service.ErrDriverHasActiveDuty, http.StatusConflict},
		{service.ErrNoAssignmentForDuty, http.StatusUnprocessableEntity},
		{service.ErrSchemeInactive, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, mapErrorToHTTPStatus(tc.err), "error %v", tc.err)
	}
}

func TestBulkStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusCreated, bulkStatus(&service.BulkResult{Success: true, CreatedCount: 1}))
	assert.Equal(t, http.StatusOK, bulkStatus(&service.BulkResult{Success: true}))
	assert.Equal(t, http.StatusConflict, bulkStatus(&service.BulkResult{Errors: []string{"item 1: x"}}))
}

type assignmentAPI struct {
	router      *gin.Engine
	assignments *tests.MockAssignmentRepository
}

func newAssignmentAPI() *assignmentAPI {
	drivers := tests.NewMockDriverRepository()
	drivers.AddDriver(&domain.Driver{ID: "d1", Name: "Asha", Status: domain.DriverStatusActive})
	drivers.AddDriver(&domain.Driver{ID: "d2", Name: "Ravi", Status: domain.DriverStatusActive})
	vehicles := tests.NewMockVehicleRepository()
	vehicles.AddVehicle(&domain.Vehicle{ID: "v1", RegistrationNumber: "KA01AB1234", Status: domain.VehicleStatusActive, IsAvailable: true})
	vehicles.AddVehicle(&domain.Vehicle{ID: "v2", RegistrationNumber: "KA01AB5678", Status: domain.VehicleStatusActive, IsAvailable: true})
	assignments := tests.NewMockAssignmentRepository()

	tx := &tests.MockTransactor{Repos: repository.Repositories{
		Drivers:     drivers,
		Vehicles:    vehicles,
		Assignments: assignments,
		Duties:      tests.NewMockDutyRepository(),
	}}
	svc := service.NewAssignmentService(tx, assignments, drivers, vehicles, tests.NewMockLockStore(), nil, service.AssignmentConfig{}).
		WithClock(func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) })

	h := NewAssignmentHandler(svc)
	r := gin.New()
	r.POST("/v1/assignments", h.Create)
	r.POST("/v1/assignments/check", h.CheckConflicts)
	r.POST("/v1/assignments/bulk", h.CreateBulk)
	r.POST("/v1/assignments/:id/cancel", h.Cancel)

	return &assignmentAPI{router: r, assignments: assignments}
}

func (a *assignmentAPI) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestCreateAssignment_ConflictBody(t *testing.T) {
	t.Parallel()

	api := newAssignmentAPI()

	w := api.post("/v1/assignments", `{"driver_id":"d1","vehicle_id":"v1","start_date":"2024-03-12","shift_type":"morning"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created AssignmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "scheduled", created.Status)
	assert.Empty(t, created.EndDate)

	w = api.post("/v1/assignments", `{"driver_id":"d1","vehicle_id":"v2","start_date":"2024-03-20","shift_type":"full_day"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	var conflict ConflictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conflict))
	require.NotNil(t, conflict.DriverConflict)
	assert.Equal(t, created.ID, conflict.DriverConflict.ID)
	assert.Nil(t, conflict.VehicleConflict)
	assert.Contains(t, conflict.Error, "assignment conflict")
}

func TestCreateAssignment_BadInput(t *testing.T) {
	t.Parallel()

	api := newAssignmentAPI()

	w := api.post("/v1/assignments", `{"driver_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.post("/v1/assignments", `{"driver_id":"d1","vehicle_id":"v1","start_date":"12-03-2024"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.post("/v1/assignments", `{"driver_id":"nobody","vehicle_id":"v1","start_date":"2024-03-12"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckConflicts_Endpoint(t *testing.T) {
	t.Parallel()

	api := newAssignmentAPI()
	require.Equal(t, http.StatusCreated, api.post("/v1/assignments", `{"driver_id":"d1","vehicle_id":"v1","start_date":"2024-03-10","end_date":"2024-03-15"}`).Code)

	w := api.post("/v1/assignments/check", `{"driver_id":"d2","vehicle_id":"v1","start_date":"2024-03-14","shift_type":"night"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ConflictCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.HasConflict)
	assert.Nil(t, resp.DriverConflict)
	require.NotNil(t, resp.VehicleConflict)
	assert.Equal(t, "full_day", resp.VehicleConflict.ShiftType)
}

func TestCreateBulk_Endpoint(t *testing.T) {
	t.Parallel()

	api := newAssignmentAPI()

	w := api.post("/v1/assignments/bulk", `{"assignments":[
		{"driver_id":"d1","vehicle_id":"v1","start_date":"2024-03-12"},
		{"driver_id":"d2","vehicle_id":"v1","start_date":"2024-03-12"}
	]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp BulkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.CreatedCount)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "vehicle v1 already assigned")

	w = api.post("/v1/assignments/bulk", `{"assignments":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelAssignment_Endpoint(t *testing.T) {
	t.Parallel()

	api := newAssignmentAPI()
	w := api.post("/v1/assignments", `{"driver_id":"d1","vehicle_id":"v1","start_date":"2024-03-10"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created AssignmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = api.post("/v1/assignments/"+created.ID+"/cancel", `{"reason":"driver on leave"}`)
	require.Equal(t, http.StatusOK, w.Code)
	stored := api.assignments.GetAssignment(created.ID)
	assert.Equal(t, domain.AssignmentStatusCancelled, stored.Status)
	assert.Contains(t, stored.Notes, "driver on leave")

	// No body is fine; a second cancel hits the terminal state.
	req := httptest.NewRequest(http.MethodPost, "/v1/assignments/"+created.ID+"/cancel", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
