package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/redis"
	"fleet/internal/repository"
	"fleet/internal/scheduling"
)

// AssignmentConfig tunes the assignment service.
type AssignmentConfig struct {
	LockTTL        time.Duration
	MaxSuggestions int
	MaxOccurrences int
	Location       *time.Location // business time zone that decides "today"
}

// AssignmentService schedules drivers onto vehicles without overlaps.
type AssignmentService struct {
	tx             repository.Transactor
	assignmentRepo repository.AssignmentRepository
	driverRepo     repository.DriverRepository
	vehicleRepo    repository.VehicleRepository
	lockStore      redis.LockStoreInterface
	notifier       *NotificationService
	cfg            AssignmentConfig
	now            func() time.Time
}

// NewAssignmentService creates a new AssignmentService. lockStore and
// notifier may be nil.
func NewAssignmentService(
	tx repository.Transactor,
	assignmentRepo repository.AssignmentRepository,
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	lockStore redis.LockStoreInterface,
	notifier *NotificationService,
	cfg AssignmentConfig,
) *AssignmentService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 5
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &AssignmentService{
		tx:             tx,
		assignmentRepo: assignmentRepo,
		driverRepo:     driverRepo,
		vehicleRepo:    vehicleRepo,
		lockStore:      lockStore,
		notifier:       notifier,
		cfg:            cfg,
		now:            time.Now,
	}
}

// WithClock replaces the service clock.
func (s *AssignmentService) WithClock(now func() time.Time) *AssignmentService {
	s.now = now
	return s
}

func (s *AssignmentService) today() time.Time {
	return scheduling.Day(s.now(), s.cfg.Location)
}

// AssignmentRequest describes a proposed assignment. Dates are YYYY-MM-DD;
// an empty EndDate means open-ended.
type AssignmentRequest struct {
	DriverID  string
	VehicleID string
	StartDate string
	EndDate   string
	ShiftType string
	Notes     string
	ExcludeID string
}

func (r AssignmentRequest) candidate() (scheduling.Candidate, error) {
	if strings.TrimSpace(r.DriverID) == "" {
		return scheduling.Candidate{}, ErrInvalidDriverID
	}
	if strings.TrimSpace(r.VehicleID) == "" {
		return scheduling.Candidate{}, ErrInvalidVehicleID
	}

	start, err := scheduling.ParseDate("start_date", r.StartDate)
	if err != nil {
		return scheduling.Candidate{}, err
	}
	end, err := scheduling.ParseOptionalDate("end_date", r.EndDate)
	if err != nil {
		return scheduling.Candidate{}, err
	}

	shift := domain.ShiftType(strings.TrimSpace(r.ShiftType))
	if shift == "" {
		shift = domain.ShiftFullDay
	}

	c := scheduling.Candidate{
		DriverID:  strings.TrimSpace(r.DriverID),
		VehicleID: strings.TrimSpace(r.VehicleID),
		StartDate: start,
		EndDate:   end,
		ShiftType: shift,
		ExcludeID: r.ExcludeID,
	}
	if err := c.Validate(); err != nil {
		return scheduling.Candidate{}, err
	}
	return c, nil
}

// conflicts runs the pure conflict search over the live assignments that
// repo returns for the candidate's driver and vehicle.
func conflicts(ctx context.Context, repo repository.AssignmentRepository, c scheduling.Candidate) (scheduling.ConflictResult, error) {
	byDriver, err := repo.ListLiveByDriver(ctx, c.DriverID)
	if err != nil {
		return scheduling.ConflictResult{}, err
	}
	byVehicle, err := repo.ListLiveByVehicle(ctx, c.VehicleID)
	if err != nil {
		return scheduling.ConflictResult{}, err
	}
	return scheduling.CheckConflicts(c, byDriver, byVehicle), nil
}

// CheckConflicts reports the first live assignment the request collides with
// on the driver side and on the vehicle side. Either may be nil.
func (s *AssignmentService) CheckConflicts(ctx context.Context, req AssignmentRequest) (*scheduling.ConflictResult, error) {
	c, err := req.candidate()
	if err != nil {
		return nil, err
	}
	res, err := conflicts(ctx, s.assignmentRepo, c)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Suggestions are conflict-free alternatives to a proposed assignment, in the
// order the driver and vehicle listings return them.
type Suggestions struct {
	Conflicts           scheduling.ConflictResult
	AlternativeDrivers  []*domain.Driver
	AlternativeVehicles []*domain.Vehicle
	AlternativeShifts   []domain.ShiftType
}

// GenerateSuggestions proposes other drivers, vehicles and shifts when the
// request conflicts. A conflict-free request gets empty suggestions.
func (s *AssignmentService) GenerateSuggestions(ctx context.Context, req AssignmentRequest) (*Suggestions, error) {
	c, err := req.candidate()
	if err != nil {
		return nil, err
	}

	res, err := conflicts(ctx, s.assignmentRepo, c)
	if err != nil {
		return nil, err
	}
	out := &Suggestions{Conflicts: res}
	if !res.HasConflict() {
		return out, nil
	}

	drivers, err := s.driverRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drivers {
		if len(out.AlternativeDrivers) == s.cfg.MaxSuggestions {
			break
		}
		if d.ID == c.DriverID {
			continue
		}
		live, err := s.assignmentRepo.ListLiveByDriver(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		if scheduling.FindConflict(c.WithDriver(d.ID), live) == nil {
			out.AlternativeDrivers = append(out.AlternativeDrivers, d)
		}
	}

	vehicles, err := s.vehicleRepo.ListAssignable(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range vehicles {
		if len(out.AlternativeVehicles) == s.cfg.MaxSuggestions {
			break
		}
		if v.ID == c.VehicleID {
			continue
		}
		live, err := s.assignmentRepo.ListLiveByVehicle(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		if scheduling.FindConflict(c.WithVehicle(v.ID), live) == nil {
			out.AlternativeVehicles = append(out.AlternativeVehicles, v)
		}
	}

	for _, shift := range scheduling.AlternativeShifts(c.ShiftType) {
		alt, err := conflicts(ctx, s.assignmentRepo, c.WithShift(shift))
		if err != nil {
			return nil, err
		}
		if !alt.HasConflict() {
			out.AlternativeShifts = append(out.AlternativeShifts, shift)
		}
	}

	return out, nil
}

// CreateAssignment stores a conflict-free assignment.
func (s *AssignmentService) CreateAssignment(ctx context.Context, req AssignmentRequest) (*domain.Assignment, error) {
	c, err := req.candidate()
	if err != nil {
		return nil, err
	}
	return s.create(ctx, c, strings.TrimSpace(req.Notes))
}

// create serializes writers on the driver and the vehicle with Redis locks,
// then re-checks conflicts inside a transaction that holds row locks on both.
func (s *AssignmentService) create(ctx context.Context, c scheduling.Candidate, notes string) (*domain.Assignment, error) {
	release, err := s.lock(ctx, c.DriverID, c.VehicleID)
	if err != nil {
		return nil, err
	}
	defer release()

	status := domain.AssignmentStatusActive
	if c.StartDate.After(s.today()) {
		status = domain.AssignmentStatusScheduled
	}

	assignment := &domain.Assignment{
		ID:        uuid.New().String(),
		DriverID:  c.DriverID,
		VehicleID: c.VehicleID,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		ShiftType: c.ShiftType,
		Status:    status,
		Notes:     notes,
		CreatedAt: s.now(),
	}

	err = s.tx.WithTx(ctx, func(repos repository.Repositories) error {
		driver, err := repos.Drivers.GetByIDForUpdate(ctx, c.DriverID)
		if err != nil {
			return err
		}
		if !driver.IsActive() {
			return ErrDriverNotActive
		}

		vehicle, err := repos.Vehicles.GetByIDForUpdate(ctx, c.VehicleID)
		if err != nil {
			return err
		}
		if !vehicle.IsAssignable() {
			return ErrVehicleUnavailable
		}

		res, err := conflicts(ctx, repos.Assignments, c)
		if err != nil {
			return err
		}
		if res.HasConflict() {
			return &ConflictError{Candidate: c, Result: res}
		}

		return repos.Assignments.Create(ctx, assignment)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyAssignmentCreated(ctx, assignment)
	}
	return assignment, nil
}

// lock takes the driver lock, then the vehicle lock, always in that order.
func (s *AssignmentService) lock(ctx context.Context, driverID, vehicleID string) (func(), error) {
	if s.lockStore == nil {
		return func() {}, nil
	}

	driverToken, err := s.lockStore.AcquireDriverLock(ctx, driverID, s.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if driverToken == "" {
		return nil, ErrAssignmentBusy
	}

	vehicleToken, err := s.lockStore.AcquireVehicleLock(ctx, vehicleID, s.cfg.LockTTL)
	if err != nil || vehicleToken == "" {
		_ = s.lockStore.ReleaseDriverLock(context.WithoutCancel(ctx), driverID, driverToken)
		if err != nil {
			return nil, err
		}
		return nil, ErrAssignmentBusy
	}

	return func() {
		bg := context.WithoutCancel(ctx)
		if err := s.lockStore.ReleaseVehicleLock(bg, vehicleID, vehicleToken); err != nil {
			log.Printf("failed to release vehicle lock %s: %v", vehicleID, err)
		}
		if err := s.lockStore.ReleaseDriverLock(bg, driverID, driverToken); err != nil {
			log.Printf("failed to release driver lock %s: %v", driverID, err)
		}
	}, nil
}

// BulkResult reports a bulk or recurring creation. Each item either fully
// succeeds or is skipped with an error line.
type BulkResult struct {
	Success      bool
	CreatedCount int
	Created      []*domain.Assignment
	Errors       []string
}

type bulkItem struct {
	label     string
	candidate scheduling.Candidate
	notes     string
	err       error
}

// CreateBulk creates each request independently, skipping the ones that
// conflict or fail validation.
func (s *AssignmentService) CreateBulk(ctx context.Context, reqs []AssignmentRequest) (*BulkResult, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBulkRequest
	}

	items := make([]bulkItem, len(reqs))
	for i, req := range reqs {
		c, err := req.candidate()
		items[i] = bulkItem{
			label:     fmt.Sprintf("item %d", i+1),
			candidate: c,
			notes:     strings.TrimSpace(req.Notes),
			err:       err,
		}
	}
	return s.createAll(ctx, items), nil
}

// RecurringRequest repeats a base assignment until UntilDate.
type RecurringRequest struct {
	AssignmentRequest
	Pattern   string
	UntilDate string
}

// CreateRecurring expands the request into one assignment per occurrence and
// creates them the way CreateBulk does.
func (s *AssignmentService) CreateRecurring(ctx context.Context, req RecurringRequest) (*BulkResult, error) {
	c, err := req.candidate()
	if err != nil {
		return nil, err
	}
	pattern, err := scheduling.ParsePattern(req.Pattern)
	if err != nil {
		return nil, err
	}
	until, err := scheduling.ParseDate("until_date", req.UntilDate)
	if err != nil {
		return nil, err
	}

	occurrences, err := scheduling.ExpandRecurring(c, pattern, until, s.cfg.MaxOccurrences)
	if err != nil {
		return nil, err
	}

	notes := strings.TrimSpace(req.Notes)
	items := make([]bulkItem, len(occurrences))
	for i, occ := range occurrences {
		items[i] = bulkItem{
			label:     occ.StartDate.Format(scheduling.DateLayout),
			candidate: occ,
			notes:     notes,
		}
	}
	return s.createAll(ctx, items), nil
}

func (s *AssignmentService) createAll(ctx context.Context, items []bulkItem) *BulkResult {
	out := &BulkResult{}
	for _, item := range items {
		if item.err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", item.label, item.err))
			continue
		}

		a, err := s.create(ctx, item.candidate, item.notes)
		if err != nil {
			var ce *ConflictError
			if errors.As(err, &ce) {
				out.Errors = append(out.Errors, ce.Result.Describe(ce.Candidate))
			} else {
				out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", item.label, err))
			}
			continue
		}
		out.Created = append(out.Created, a)
	}
	out.CreatedCount = len(out.Created)
	out.Success = out.CreatedCount > 0 || len(out.Errors) == 0
	return out
}

// GetAssignment returns an assignment by ID.
func (s *AssignmentService) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	if id == "" {
		return nil, ErrInvalidAssignmentID
	}
	return s.assignmentRepo.GetByID(ctx, id)
}

// ListByDriver returns a driver's assignments, newest first.
func (s *AssignmentService) ListByDriver(ctx context.Context, driverID string) ([]*domain.Assignment, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.assignmentRepo.ListByDriver(ctx, driverID)
}

// EndAssignment completes a live assignment. An empty endDate means today.
func (s *AssignmentService) EndAssignment(ctx context.Context, id, endDate string) (*domain.Assignment, error) {
	a, err := s.liveAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	end := s.today()
	if strings.TrimSpace(endDate) != "" {
		end, err = scheduling.ParseDate("end_date", endDate)
		if err != nil {
			return nil, err
		}
	}
	if end.Before(a.StartDate) {
		return nil, ErrInvalidEndDate
	}

	a.EndDate = &end
	a.Status = domain.AssignmentStatusCompleted
	a.EndedAt = s.now()
	if err := s.assignmentRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CancelAssignment cancels a live assignment.
func (s *AssignmentService) CancelAssignment(ctx context.Context, id, reason string) (*domain.Assignment, error) {
	a, err := s.liveAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Status = domain.AssignmentStatusCancelled
	a.EndedAt = s.now()
	if reason = strings.TrimSpace(reason); reason != "" {
		if a.Notes != "" {
			a.Notes += "\n"
		}
		a.Notes += "Cancelled: " + reason
	}
	if err := s.assignmentRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyAssignmentCancelled(ctx, a, reason)
	}
	return a, nil
}

func (s *AssignmentService) liveAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	if id == "" {
		return nil, ErrInvalidAssignmentID
	}
	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, ErrAssignmentTerminal
	}
	return a, nil
}
