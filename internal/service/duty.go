package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"

	"fleet/internal/domain"
	"fleet/internal/earnings"
	"fleet/internal/repository"
	"fleet/internal/scheduling"
)

// DutyService handles the duty lifecycle and computes earnings at duty end.
type DutyService struct {
	dutyRepo       repository.DutyRepository
	driverRepo     repository.DriverRepository
	vehicleRepo    repository.VehicleRepository
	assignmentRepo repository.AssignmentRepository
	schemes        *SchemeService
	notifier       *NotificationService
	nrApp          *newrelic.Application
	loc            *time.Location
	now            func() time.Time
}

// NewDutyService creates a new DutyService. notifier and nrApp may be nil;
// loc defaults to UTC.
func NewDutyService(
	dutyRepo repository.DutyRepository,
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	assignmentRepo repository.AssignmentRepository,
	schemes *SchemeService,
	notifier *NotificationService,
	nrApp *newrelic.Application,
	loc *time.Location,
) *DutyService {
	if loc == nil {
		loc = time.UTC
	}
	return &DutyService{
		dutyRepo:       dutyRepo,
		driverRepo:     driverRepo,
		vehicleRepo:    vehicleRepo,
		assignmentRepo: assignmentRepo,
		schemes:        schemes,
		notifier:       notifier,
		nrApp:          nrApp,
		loc:            loc,
		now:            time.Now,
	}
}

// WithClock replaces the service clock.
func (s *DutyService) WithClock(now func() time.Time) *DutyService {
	s.now = now
	return s
}

// StartDutyRequest contains the parameters for starting a duty.
type StartDutyRequest struct {
	DriverID  string
	VehicleID string
	SchemeID  string
	StartCNG  float64
}

// StartDuty opens a duty for a driver on the vehicle they are assigned to today.
func (s *DutyService) StartDuty(ctx context.Context, req StartDutyRequest) (*domain.Duty, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	if req.SchemeID == "" {
		return nil, ErrInvalidSchemeID
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsActive() {
		return nil, ErrDriverNotActive
	}

	// Check if driver already has an active duty.
	existing, err := s.dutyRepo.GetActiveByDriverID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDriverHasActiveDuty
	}

	scheme, err := s.schemes.GetScheme(ctx, req.SchemeID)
	if err != nil {
		return nil, err
	}
	if !scheme.IsActive {
		return nil, ErrSchemeInactive
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.requireAssignment(ctx, req.DriverID, req.VehicleID, scheduling.Day(now, s.loc)); err != nil {
		return nil, err
	}

	duty := &domain.Duty{
		ID:                  uuid.New().String(),
		DriverID:            req.DriverID,
		VehicleID:           req.VehicleID,
		SchemeID:            req.SchemeID,
		Status:              domain.DutyStatusActive,
		StartTime:           now,
		StartCNG:            finiteOrZero(req.StartCNG),
		VehicleRegistration: vehicle.RegistrationNumber,
	}
	if err := s.dutyRepo.Create(ctx, duty); err != nil {
		// The unique active-duty index catches a concurrent start.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDriverHasActiveDuty
		}
		return nil, err
	}
	return duty, nil
}

func (s *DutyService) requireAssignment(ctx context.Context, driverID, vehicleID string, today time.Time) error {
	live, err := s.assignmentRepo.ListLiveByDriver(ctx, driverID)
	if err != nil {
		return err
	}
	for _, a := range live {
		if a.VehicleID == vehicleID && scheduling.CoversDay(a.StartDate, a.EndDate, today) {
			return nil
		}
	}
	return ErrNoAssignmentForDuty
}

// EndDutyRequest carries the figures reported when a duty closes.
type EndDutyRequest struct {
	DutyID      string
	Revenue     float64
	TripCount   int
	Collections domain.Collections
	EndCNG      float64
}

// EndDutyResponse contains the closed duty and its earnings breakdown.
type EndDutyResponse struct {
	Duty   *domain.Duty
	Result *earnings.Result
}

// EndDuty closes an active duty and computes its earnings under the duty's scheme.
func (s *DutyService) EndDuty(ctx context.Context, req EndDutyRequest) (*EndDutyResponse, error) {
	if req.DutyID == "" {
		return nil, ErrInvalidDutyID
	}

	duty, err := s.dutyRepo.GetByID(ctx, req.DutyID)
	if err != nil {
		return nil, err
	}
	if duty.Status != domain.DutyStatusActive {
		return nil, ErrDutyNotActive
	}

	scheme, err := s.schemes.GetScheme(ctx, duty.SchemeID)
	if err != nil {
		return nil, err
	}

	duty.EndTime = s.now()
	duty.Revenue = req.Revenue
	duty.TripCount = req.TripCount
	duty.Collections = req.Collections
	duty.EndCNG = finiteOrZero(req.EndCNG)

	result, err := earnings.Calculate(*scheme, earnings.FactsFromDuty(duty).In(s.loc))
	if err != nil {
		return nil, err
	}
	if result.FormulaError != nil {
		log.Printf("custom formula failed for duty %s (scheme %s): %v", duty.ID, scheme.ID, result.FormulaError)
	}

	duty.Status = domain.DutyStatusCompleted
	duty.Earnings = result.Earnings.InexactFloat64()
	duty.BaseEarnings = result.BaseEarnings.InexactFloat64()
	duty.BMGApplied = result.BMGApplied.InexactFloat64()
	duty.Incentive = result.Incentive.InexactFloat64()
	duty.Bonuses = result.Bonuses.InexactFloat64()
	duty.Deductions = result.Deductions.InexactFloat64()
	duty.GrossEarnings = result.GrossEarnings.InexactFloat64()

	if err := s.dutyRepo.Update(ctx, duty); err != nil {
		return nil, err
	}

	if s.nrApp != nil {
		s.nrApp.RecordCustomEvent("DutyCompleted", map[string]any{
			"dutyId":      duty.ID,
			"driverId":    duty.DriverID,
			"schemeType":  scheme.SchemeType,
			"tripCount":   duty.TripCount,
			"revenue":     duty.Revenue,
			"earnings":    duty.Earnings,
			"bmgApplied":  duty.BMGApplied,
			"formulaFail": result.FormulaError != nil,
		})
	}
	if s.notifier != nil {
		_ = s.notifier.NotifyDutyCompleted(ctx, duty)
	}

	return &EndDutyResponse{Duty: duty, Result: result}, nil
}

// CancelDuty abandons an active duty without computing earnings.
func (s *DutyService) CancelDuty(ctx context.Context, dutyID string) (*domain.Duty, error) {
	if dutyID == "" {
		return nil, ErrInvalidDutyID
	}

	duty, err := s.dutyRepo.GetByID(ctx, dutyID)
	if err != nil {
		return nil, err
	}
	if duty.Status != domain.DutyStatusActive {
		return nil, ErrDutyNotActive
	}

	duty.Status = domain.DutyStatusCancelled
	duty.EndTime = s.now()
	if err := s.dutyRepo.Update(ctx, duty); err != nil {
		return nil, err
	}
	return duty, nil
}

// GetDuty returns a duty by ID.
func (s *DutyService) GetDuty(ctx context.Context, dutyID string) (*domain.Duty, error) {
	if dutyID == "" {
		return nil, ErrInvalidDutyID
	}
	return s.dutyRepo.GetByID(ctx, dutyID)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
