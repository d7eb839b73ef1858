package tests

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fleet/internal/domain"
	"fleet/internal/scheduling"
	"fleet/internal/service"
)

// ──────────────────────────────────────────────
// 1. ASSIGNMENT CREATION AND CONFLICTS
// ──────────────────────────────────────────────

// 2024-03-10 09:00 UTC
var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

type assignmentFixture struct {
	drivers     *MockDriverRepository
	vehicles    *MockVehicleRepository
	assignments *MockAssignmentRepository
	locks       *MockLockStore
	tx          *MockTransactor
	svc         *service.AssignmentService
}

func newAssignmentFixture(cfg service.AssignmentConfig) *assignmentFixture {
	f := &assignmentFixture{
		drivers:     NewMockDriverRepository(),
		vehicles:    NewMockVehicleRepository(),
		assignments: NewMockAssignmentRepository(),
		locks:       NewMockLockStore(),
	}
	for _, id := range []string{"d1", "d2", "d3"} {
		f.drivers.AddDriver(&domain.Driver{ID: id, Name: "Driver " + id, Status: domain.DriverStatusActive})
	}
	f.drivers.AddDriver(&domain.Driver{ID: "d4", Name: "Pending", Status: domain.DriverStatusPending})

	f.vehicles.AddVehicle(&domain.Vehicle{ID: "v1", RegistrationNumber: "KA01AB1234", Status: domain.VehicleStatusActive, IsAvailable: true})
	f.vehicles.AddVehicle(&domain.Vehicle{ID: "v2", RegistrationNumber: "KA01AB5678", Status: domain.VehicleStatusActive, IsAvailable: true})
	f.vehicles.AddVehicle(&domain.Vehicle{ID: "v3", RegistrationNumber: "KA01AB9999", Status: domain.VehicleStatusMaintenance, IsAvailable: false})

	f.tx = &MockTransactor{Repos: repositoriesOf(f.drivers, f.vehicles, f.assignments, NewMockDutyRepository())}
	f.svc = service.NewAssignmentService(f.tx, f.assignments, f.drivers, f.vehicles, f.locks, nil, cfg).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func (f *assignmentFixture) existing(id, driverID, vehicleID, start, end string, shift domain.ShiftType) {
	s, _ := scheduling.ParseDate("start_date", start)
	e, _ := scheduling.ParseOptionalDate("end_date", end)
	f.assignments.AddAssignment(&domain.Assignment{
		ID:        id,
		DriverID:  driverID,
		VehicleID: vehicleID,
		StartDate: s,
		EndDate:   e,
		ShiftType: shift,
		Status:    domain.AssignmentStatusActive,
	})
}

func TestCreateAssignment_StatusFollowsStartDate(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	ctx := context.Background()

	today, err := f.svc.CreateAssignment(ctx, service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-10", EndDate: "2024-03-10", ShiftType: "morning",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if today.Status != domain.AssignmentStatusActive {
		t.Errorf("expected active for a start of today, got %s", today.Status)
	}

	future, err := f.svc.CreateAssignment(ctx, service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-15", ShiftType: "morning",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if future.Status != domain.AssignmentStatusScheduled {
		t.Errorf("expected scheduled for a future start, got %s", future.Status)
	}
	if future.EndDate != nil {
		t.Errorf("expected open-ended assignment, got end %v", future.EndDate)
	}
	if f.assignments.GetAssignment(future.ID) == nil {
		t.Error("expected assignment to be stored")
	}
}

func TestCreateAssignment_DefaultsToFullDay(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})

	a, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ShiftType != domain.ShiftFullDay {
		t.Errorf("expected full_day, got %s", a.ShiftType)
	}
}

func TestCreateAssignment_LocksDriverThenVehicleAndReleases(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})

	_, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12", ShiftType: "evening",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := f.locks.AcquireOrder()
	if len(order) != 2 || order[0] != "driver:d1" || order[1] != "vehicle:v1" {
		t.Errorf("expected driver lock then vehicle lock, got %v", order)
	}
	if f.locks.IsLocked("driver:d1") || f.locks.IsLocked("vehicle:v1") {
		t.Error("expected both locks to be released")
	}
	if f.drivers.ForUpdateCallCount != 1 {
		t.Errorf("expected driver row lock inside the transaction, got %d", f.drivers.ForUpdateCallCount)
	}
}

func TestCreateAssignment_NonOverlappingShiftsCoexist(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-morning", "d1", "v1", "2024-03-01", "2024-03-31", domain.ShiftMorning)

	for _, shift := range []string{"evening", "night"} {
		_, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
			DriverID: "d1", VehicleID: "v2", StartDate: "2024-03-15", EndDate: "2024-03-20", ShiftType: shift,
		})
		if err != nil {
			t.Errorf("%s shift: unexpected error: %v", shift, err)
		}
	}
}

func TestCreateAssignment_DriverConflictReported(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-morning", "d1", "v1", "2024-03-01", "2024-03-31", domain.ShiftMorning)

	_, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v2", StartDate: "2024-03-15", EndDate: "2024-03-20", ShiftType: "full_day",
	})
	if !errors.Is(err, service.ErrAssignmentConflict) {
		t.Fatalf("expected ErrAssignmentConflict, got %v", err)
	}

	var ce *service.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	if ce.Result.DriverConflict == nil || ce.Result.DriverConflict.ID != "a-morning" {
		t.Errorf("expected driver conflict a-morning, got %+v", ce.Result.DriverConflict)
	}
	if ce.Result.VehicleConflict != nil {
		t.Errorf("expected no vehicle conflict, got %s", ce.Result.VehicleConflict.ID)
	}
	if f.assignments.CreateCallCount != 0 {
		t.Errorf("expected no insert, got %d", f.assignments.CreateCallCount)
	}
}

func TestCreateAssignment_VehicleConflictReported(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-night", "d2", "v1", "2024-03-01", "", domain.ShiftNight)

	_, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-04-01", EndDate: "2024-04-02", ShiftType: "night",
	})

	var ce *service.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if ce.Result.DriverConflict != nil {
		t.Errorf("expected no driver conflict, got %s", ce.Result.DriverConflict.ID)
	}
	if ce.Result.VehicleConflict == nil || ce.Result.VehicleConflict.ID != "a-night" {
		t.Errorf("expected vehicle conflict a-night, got %+v", ce.Result.VehicleConflict)
	}
}

func TestCreateAssignment_LockHeldIsBusy(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.locks.Hold("vehicle:v1", time.Minute)

	_, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12",
	})
	if !errors.Is(err, service.ErrAssignmentBusy) {
		t.Fatalf("expected ErrAssignmentBusy, got %v", err)
	}
	if f.locks.IsLocked("driver:d1") {
		t.Error("expected the driver lock to be released when the vehicle lock fails")
	}
	if f.tx.CallCount != 0 {
		t.Errorf("expected no transaction, got %d", f.tx.CallCount)
	}
}

func TestCreateAssignment_ReleaseKeepsAnotherOwnersLock(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})

	// The driver lock expires while the vehicle lock is taken, and another
	// request picks it up.
	var otherToken string
	f.locks.AfterAcquire = func(key string) {
		if key == "vehicle:v1" {
			otherToken = f.locks.Hold("driver:d1", time.Minute)
		}
	}

	if _, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if otherToken == "" {
		t.Fatal("expected the driver lock to be taken over")
	}
	if !f.locks.IsLocked("driver:d1") {
		t.Error("expected the other request's driver lock to survive the release")
	}
	if f.locks.IsLocked("vehicle:v1") {
		t.Error("expected the vehicle lock to be released")
	}
	if f.locks.ReleaseCallCount != 2 {
		t.Errorf("expected 2 release calls, got %d", f.locks.ReleaseCallCount)
	}
}

func TestCreateAssignment_RejectsInactiveDriverAndUnavailableVehicle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		driverID  string
		vehicleID string
		wantErr   error
	}{
		{name: "pending driver", driverID: "d4", vehicleID: "v1", wantErr: service.ErrDriverNotActive},
		{name: "vehicle in maintenance", driverID: "d1", vehicleID: "v3", wantErr: service.ErrVehicleUnavailable},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newAssignmentFixture(service.AssignmentConfig{})
			_, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
				DriverID: tc.driverID, VehicleID: tc.vehicleID, StartDate: "2024-03-12",
			})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateAssignment_ValidatesInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		req     service.AssignmentRequest
		wantErr error
	}{
		{
			name:    "missing driver",
			req:     service.AssignmentRequest{VehicleID: "v1", StartDate: "2024-03-12"},
			wantErr: service.ErrInvalidDriverID,
		},
		{
			name:    "malformed start date",
			req:     service.AssignmentRequest{DriverID: "d1", VehicleID: "v1", StartDate: "2024-13-01"},
			wantErr: scheduling.ErrInvalidDate,
		},
		{
			name:    "end before start",
			req:     service.AssignmentRequest{DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12", EndDate: "2024-03-11"},
			wantErr: scheduling.ErrInvalidCandidate,
		},
		{
			name:    "unknown shift",
			req:     service.AssignmentRequest{DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12", ShiftType: "afternoon"},
			wantErr: scheduling.ErrInvalidCandidate,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newAssignmentFixture(service.AssignmentConfig{})
			_, err := f.svc.CreateAssignment(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if f.locks.AcquireCallCount != 0 {
				t.Error("expected validation to fail before locking")
			}
		})
	}
}

func TestCreateAssignment_ConcurrentRequestsCreateOne(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})

	const workers = 10
	var created int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateAssignment(context.Background(), service.AssignmentRequest{
				DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12", ShiftType: "morning",
			})
			switch {
			case err == nil:
				atomic.AddInt32(&created, 1)
			case errors.Is(err, service.ErrAssignmentBusy), errors.Is(err, service.ErrAssignmentConflict):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("expected exactly one assignment, got %d", created)
	}
	if n := f.assignments.CountLive("d1"); n != 1 {
		t.Errorf("expected one live assignment for d1, got %d", n)
	}
}

func TestCheckConflicts_ExcludeIDSkipsOwnRow(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-1", "d1", "v1", "2024-03-01", "2024-03-31", domain.ShiftFullDay)

	req := service.AssignmentRequest{DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-05", EndDate: "2024-03-06"}
	res, err := f.svc.CheckConflicts(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DriverConflict == nil || res.VehicleConflict == nil {
		t.Fatalf("expected conflicts on both sides, got %+v", res)
	}

	req.ExcludeID = "a-1"
	res, err = f.svc.CheckConflicts(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HasConflict() {
		t.Errorf("expected no conflict when excluding the row itself, got %+v", res)
	}
}

// ──────────────────────────────────────────────
// 2. SUGGESTIONS
// ──────────────────────────────────────────────

func TestGenerateSuggestions_AlternativesAvoidConflicts(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-1", "d1", "v1", "2024-03-10", "2024-03-20", domain.ShiftFullDay)
	f.existing("a-2", "d3", "v2", "2024-03-11", "2024-03-13", domain.ShiftFullDay)

	s, err := f.svc.GenerateSuggestions(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12", ShiftType: "morning",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Conflicts.HasConflict() {
		t.Fatal("expected the request to conflict")
	}

	// d3 is busy on v2 that day, d4 is pending.
	if len(s.AlternativeDrivers) != 1 || s.AlternativeDrivers[0].ID != "d2" {
		t.Errorf("expected [d2], got %v", driverIDs(s.AlternativeDrivers))
	}
	// v2 is taken by d3 that day, v3 is in maintenance.
	if len(s.AlternativeVehicles) != 0 {
		t.Errorf("expected no alternative vehicles, got %d", len(s.AlternativeVehicles))
	}
	// Full day blocks every shift.
	if len(s.AlternativeShifts) != 0 {
		t.Errorf("expected no alternative shifts, got %v", s.AlternativeShifts)
	}
}

func TestGenerateSuggestions_AlternativeShifts(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-1", "d1", "v1", "2024-03-10", "2024-03-20", domain.ShiftMorning)

	s, err := f.svc.GenerateSuggestions(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12", ShiftType: "morning",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.ShiftType{domain.ShiftEvening, domain.ShiftNight}
	if len(s.AlternativeShifts) != len(want) {
		t.Fatalf("expected %v, got %v", want, s.AlternativeShifts)
	}
	for i := range want {
		if s.AlternativeShifts[i] != want[i] {
			t.Errorf("shift %d: expected %s, got %s", i, want[i], s.AlternativeShifts[i])
		}
	}
}

func TestGenerateSuggestions_CappedAndEmptyWhenFree(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{MaxSuggestions: 1})
	f.existing("a-1", "d1", "v1", "2024-03-10", "", domain.ShiftFullDay)

	s, err := f.svc.GenerateSuggestions(context.Background(), service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.AlternativeDrivers) != 1 || len(s.AlternativeVehicles) != 1 {
		t.Errorf("expected one driver and one vehicle, got %d and %d", len(s.AlternativeDrivers), len(s.AlternativeVehicles))
	}

	free, err := f.svc.GenerateSuggestions(context.Background(), service.AssignmentRequest{
		DriverID: "d2", VehicleID: "v2", StartDate: "2024-03-12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if free.Conflicts.HasConflict() || len(free.AlternativeDrivers) != 0 || len(free.AlternativeVehicles) != 0 {
		t.Errorf("expected empty suggestions for a free request, got %+v", free)
	}
}

func driverIDs(drivers []*domain.Driver) []string {
	ids := make([]string, 0, len(drivers))
	for _, d := range drivers {
		ids = append(ids, d.ID)
	}
	return ids
}

// ──────────────────────────────────────────────
// 3. BULK AND RECURRING
// ──────────────────────────────────────────────

func TestCreateBulk_SkipsFailedItems(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})

	result, err := f.svc.CreateBulk(context.Background(), []service.AssignmentRequest{
		{DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-12"},
		{DriverID: "d1", VehicleID: "v2", StartDate: "2024-03-12"},
		{DriverID: "d2", VehicleID: "v2", StartDate: "not-a-date"},
		{DriverID: "d2", VehicleID: "v2", StartDate: "2024-03-12", ShiftType: "night"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("expected success when at least one item is created")
	}
	if result.CreatedCount != 2 || len(result.Created) != 2 {
		t.Errorf("expected 2 created, got %d", result.CreatedCount)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "driver d1 already assigned") {
		t.Errorf("expected a driver conflict line, got %q", result.Errors[0])
	}
	if !strings.HasPrefix(result.Errors[1], "item 3:") {
		t.Errorf("expected the invalid item to be numbered, got %q", result.Errors[1])
	}
}

func TestCreateBulk_AllFailedAndEmpty(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})

	result, err := f.svc.CreateBulk(context.Background(), []service.AssignmentRequest{
		{DriverID: "d4", VehicleID: "v1", StartDate: "2024-03-12"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success || result.CreatedCount != 0 || len(result.Errors) != 1 {
		t.Errorf("expected a failed result with one error, got %+v", result)
	}

	if _, err := f.svc.CreateBulk(context.Background(), nil); !errors.Is(err, service.ErrEmptyBulkRequest) {
		t.Errorf("expected ErrEmptyBulkRequest, got %v", err)
	}
}

func TestCreateRecurring_WeeklySkipsConflictingWeek(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-busy", "d1", "v2", "2024-03-18", "2024-03-18", domain.ShiftFullDay)

	result, err := f.svc.CreateRecurring(context.Background(), service.RecurringRequest{
		AssignmentRequest: service.AssignmentRequest{
			DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-11", ShiftType: "morning",
		},
		Pattern:   "Weekly",
		UntilDate: "2024-03-31",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CreatedCount != 2 {
		t.Fatalf("expected 2 created, got %d (errors %v)", result.CreatedCount, result.Errors)
	}
	wantStarts := []string{"2024-03-11", "2024-03-25"}
	for i, a := range result.Created {
		if got := a.StartDate.Format(scheduling.DateLayout); got != wantStarts[i] {
			t.Errorf("occurrence %d: expected %s, got %s", i, wantStarts[i], got)
		}
		if a.EndDate == nil || !a.EndDate.Equal(a.StartDate) {
			t.Errorf("occurrence %d: expected a single-day assignment", i)
		}
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "2024-03-18") {
		t.Errorf("expected the 2024-03-18 conflict, got %v", result.Errors)
	}
}

func TestCreateRecurring_Rejections(t *testing.T) {
	t.Parallel()

	base := service.AssignmentRequest{DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-11"}
	testCases := []struct {
		name    string
		pattern string
		until   string
		wantErr error
	}{
		{name: "unknown pattern", pattern: "hourly", until: "2024-03-31", wantErr: scheduling.ErrInvalidPattern},
		{name: "until before start", pattern: "daily", until: "2024-03-01", wantErr: scheduling.ErrInvalidCandidate},
		{name: "bad until date", pattern: "daily", until: "31/03/2024", wantErr: scheduling.ErrInvalidDate},
		{name: "over the cap", pattern: "daily", until: "2024-03-20", wantErr: scheduling.ErrTooManyOccurrences},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newAssignmentFixture(service.AssignmentConfig{MaxOccurrences: 5})
			_, err := f.svc.CreateRecurring(context.Background(), service.RecurringRequest{
				AssignmentRequest: base,
				Pattern:           tc.pattern,
				UntilDate:         tc.until,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if f.assignments.CreateCallCount != 0 {
				t.Error("expected nothing to be created")
			}
		})
	}
}

// ──────────────────────────────────────────────
// 4. END AND CANCEL
// ──────────────────────────────────────────────

func TestEndAssignment_DefaultsToToday(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-1", "d1", "v1", "2024-03-01", "", domain.ShiftFullDay)

	a, err := f.svc.EndAssignment(context.Background(), "a-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != domain.AssignmentStatusCompleted {
		t.Errorf("expected completed, got %s", a.Status)
	}
	if got := scheduling.FormatDate(a.EndDate); got != "2024-03-10" {
		t.Errorf("expected end date 2024-03-10, got %s", got)
	}
	if !a.EndedAt.Equal(fixedNow) {
		t.Errorf("expected EndedAt %v, got %v", fixedNow, a.EndedAt)
	}

	if _, err := f.svc.EndAssignment(context.Background(), "a-1", ""); !errors.Is(err, service.ErrAssignmentTerminal) {
		t.Errorf("expected ErrAssignmentTerminal on second end, got %v", err)
	}
}

func TestEndAssignment_EndBeforeStartRejected(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-1", "d1", "v1", "2024-03-05", "", domain.ShiftFullDay)

	if _, err := f.svc.EndAssignment(context.Background(), "a-1", "2024-03-04"); !errors.Is(err, service.ErrInvalidEndDate) {
		t.Errorf("expected ErrInvalidEndDate, got %v", err)
	}
	if f.assignments.UpdateCallCount != 0 {
		t.Error("expected no update")
	}
}

func TestCancelAssignment_FreesTheSlot(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-1", "d1", "v1", "2024-03-01", "2024-03-31", domain.ShiftFullDay)
	ctx := context.Background()

	a, err := f.svc.CancelAssignment(ctx, "a-1", "vehicle sent for service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != domain.AssignmentStatusCancelled {
		t.Errorf("expected cancelled, got %s", a.Status)
	}
	if !strings.Contains(a.Notes, "vehicle sent for service") {
		t.Errorf("expected the reason in notes, got %q", a.Notes)
	}

	if _, err := f.svc.CreateAssignment(ctx, service.AssignmentRequest{
		DriverID: "d1", VehicleID: "v1", StartDate: "2024-03-15",
	}); err != nil {
		t.Errorf("expected the cancelled slot to be free, got %v", err)
	}

	if _, err := f.svc.CancelAssignment(ctx, "a-1", ""); !errors.Is(err, service.ErrAssignmentTerminal) {
		t.Errorf("expected ErrAssignmentTerminal, got %v", err)
	}
}

func TestListByDriver_NewestFirst(t *testing.T) {
	t.Parallel()

	f := newAssignmentFixture(service.AssignmentConfig{})
	f.existing("a-old", "d1", "v1", "2024-01-01", "2024-01-31", domain.ShiftFullDay)
	f.existing("a-new", "d1", "v2", "2024-03-01", "", domain.ShiftFullDay)
	f.existing("a-other", "d2", "v1", "2024-03-01", "", domain.ShiftFullDay)

	list, err := f.svc.ListByDriver(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a-new" || list[1].ID != "a-old" {
		t.Errorf("expected [a-new a-old], got %d items", len(list))
	}
}
