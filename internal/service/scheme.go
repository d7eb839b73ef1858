package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/earnings"
	"fleet/internal/redis"
	"fleet/internal/repository"
)

// SchemeService manages compensation schemes and previews their earnings.
type SchemeService struct {
	schemeRepo repository.SchemeRepository
	cache      redis.SchemeCacheInterface
	loc        *time.Location
}

// NewSchemeService creates a new SchemeService. cache may be nil.
func NewSchemeService(schemeRepo repository.SchemeRepository, cache redis.SchemeCacheInterface) *SchemeService {
	return &SchemeService{schemeRepo: schemeRepo, cache: cache, loc: time.UTC}
}

// WithLocation sets the business time zone previews read weekdays in.
func (s *SchemeService) WithLocation(loc *time.Location) *SchemeService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// SchemeRequest contains the fields of a scheme create or update.
type SchemeRequest struct {
	Name               string
	SchemeType         string
	MinimumGuarantee   float64
	Config             map[string]any
	CalculationFormula string
	IsActive           *bool
}

func (r *SchemeRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.SchemeType = strings.TrimSpace(r.SchemeType)
	if r.Name == "" {
		return ErrMissingField
	}
	if !earnings.IsSupported(r.SchemeType) {
		return &earnings.UnsupportedSchemeError{SchemeType: r.SchemeType}
	}
	if math.IsNaN(r.MinimumGuarantee) || math.IsInf(r.MinimumGuarantee, 0) || r.MinimumGuarantee < 0 {
		return ErrInvalidMinimumGuarantee
	}
	if earnings.SchemeType(r.SchemeType) == earnings.TypeCustomFormula {
		if err := earnings.ValidateFormula(r.CalculationFormula); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFormula, err)
		}
	}
	return nil
}

// CreateScheme validates and stores a new scheme.
func (s *SchemeService) CreateScheme(ctx context.Context, req SchemeRequest) (*domain.CompensationScheme, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	scheme := &domain.CompensationScheme{
		ID:                 uuid.New().String(),
		Name:               req.Name,
		SchemeType:         req.SchemeType,
		MinimumGuarantee:   req.MinimumGuarantee,
		Config:             req.Config,
		CalculationFormula: req.CalculationFormula,
		IsActive:           req.IsActive == nil || *req.IsActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if scheme.Config == nil {
		scheme.Config = map[string]any{}
	}

	if err := s.schemeRepo.Create(ctx, scheme); err != nil {
		return nil, err
	}
	return scheme, nil
}

// UpdateScheme replaces a scheme's definition and drops its cache entry.
func (s *SchemeService) UpdateScheme(ctx context.Context, schemeID string, req SchemeRequest) (*domain.CompensationScheme, error) {
	if schemeID == "" {
		return nil, ErrInvalidSchemeID
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	scheme, err := s.schemeRepo.GetByID(ctx, schemeID)
	if err != nil {
		return nil, err
	}

	scheme.Name = req.Name
	scheme.SchemeType = req.SchemeType
	scheme.MinimumGuarantee = req.MinimumGuarantee
	scheme.Config = req.Config
	if scheme.Config == nil {
		scheme.Config = map[string]any{}
	}
	scheme.CalculationFormula = req.CalculationFormula
	if req.IsActive != nil {
		scheme.IsActive = *req.IsActive
	}
	scheme.UpdatedAt = time.Now()

	if err := s.schemeRepo.Update(ctx, scheme); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateScheme(ctx, schemeID); err != nil {
			log.Printf("failed to invalidate scheme cache %s: %v", schemeID, err)
		}
	}
	return scheme, nil
}

// GetScheme returns a scheme, reading through the cache.
func (s *SchemeService) GetScheme(ctx context.Context, schemeID string) (*domain.CompensationScheme, error) {
	if schemeID == "" {
		return nil, ErrInvalidSchemeID
	}

	if s.cache != nil {
		cached, err := s.cache.GetScheme(ctx, schemeID)
		if err != nil {
			log.Printf("scheme cache read failed for %s: %v", schemeID, err)
		} else if cached != nil {
			return schemeFromCache(cached), nil
		}
	}

	scheme, err := s.schemeRepo.GetByID(ctx, schemeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetScheme(ctx, schemeToCache(scheme)); err != nil {
			log.Printf("failed to cache scheme %s: %v", schemeID, err)
		}
	}
	return scheme, nil
}

// ListSchemes returns every scheme.
func (s *SchemeService) ListSchemes(ctx context.Context) ([]*domain.CompensationScheme, error) {
	return s.schemeRepo.GetAll(ctx)
}

// Preview computes earnings for hypothetical duty figures without storing anything.
func (s *SchemeService) Preview(ctx context.Context, schemeID string, facts earnings.Facts) (*earnings.Result, error) {
	scheme, err := s.GetScheme(ctx, schemeID)
	if err != nil {
		return nil, err
	}
	return earnings.Calculate(*scheme, facts.In(s.loc))
}

func schemeToCache(s *domain.CompensationScheme) *redis.CachedScheme {
	return &redis.CachedScheme{
		ID:                 s.ID,
		Name:               s.Name,
		SchemeType:         s.SchemeType,
		MinimumGuarantee:   s.MinimumGuarantee,
		Config:             s.Config,
		CalculationFormula: s.CalculationFormula,
		IsActive:           s.IsActive,
		UpdatedAt:          s.UpdatedAt,
	}
}

func schemeFromCache(c *redis.CachedScheme) *domain.CompensationScheme {
	cfg := c.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	return &domain.CompensationScheme{
		ID:                 c.ID,
		Name:               c.Name,
		SchemeType:         c.SchemeType,
		MinimumGuarantee:   c.MinimumGuarantee,
		Config:             cfg,
		CalculationFormula: c.CalculationFormula,
		IsActive:           c.IsActive,
		UpdatedAt:          c.UpdatedAt,
	}
}
