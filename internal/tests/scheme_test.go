package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet/internal/earnings"
	"fleet/internal/repository"
	"fleet/internal/service"
)

// ──────────────────────────────────────────────
// COMPENSATION SCHEMES
// ──────────────────────────────────────────────

func TestCreateScheme_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		req     service.SchemeRequest
		wantErr error
	}{
		{
			name:    "missing name",
			req:     service.SchemeRequest{SchemeType: "piece_rate"},
			wantErr: service.ErrMissingField,
		},
		{
			name:    "unsupported type",
			req:     service.SchemeRequest{Name: "Bogus", SchemeType: "weekly_payout"},
			wantErr: earnings.ErrUnsupportedScheme,
		},
		{
			name:    "negative guarantee",
			req:     service.SchemeRequest{Name: "Neg", SchemeType: "piece_rate", MinimumGuarantee: -1},
			wantErr: service.ErrInvalidMinimumGuarantee,
		},
		{
			name:    "formula with unknown variable",
			req:     service.SchemeRequest{Name: "Bad", SchemeType: "custom_formula", CalculationFormula: "revenue * bonus_rate"},
			wantErr: service.ErrInvalidFormula,
		},
		{
			name:    "formula syntax error",
			req:     service.SchemeRequest{Name: "Bad", SchemeType: "custom_formula", CalculationFormula: "revenue * (0.3"},
			wantErr: service.ErrInvalidFormula,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := service.NewSchemeService(NewMockSchemeRepository(), nil)
			if _, err := svc.CreateScheme(context.Background(), tc.req); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateScheme_DefaultsActive(t *testing.T) {
	t.Parallel()

	svc := service.NewSchemeService(NewMockSchemeRepository(), nil)

	scheme, err := svc.CreateScheme(context.Background(), service.SchemeRequest{
		Name:               "Formula",
		SchemeType:         "custom_formula",
		CalculationFormula: "revenue * 0.3 + trip_count * 10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scheme.IsActive {
		t.Error("expected a new scheme to be active by default")
	}
	if scheme.Config == nil {
		t.Error("expected an empty config map, got nil")
	}
}

func TestGetScheme_ReadsThroughCache(t *testing.T) {
	t.Parallel()

	repo := NewMockSchemeRepository()
	cache := NewMockCache()
	svc := service.NewSchemeService(repo, cache)
	ctx := context.Background()

	created, err := svc.CreateScheme(ctx, service.SchemeRequest{
		Name:       "Per trip",
		SchemeType: "piece_rate",
		Config:     map[string]any{"per_trip_amount": 50},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.GetScheme(ctx, created.ID); err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
	}
	if repo.GetByIDCallCount != 1 {
		t.Errorf("expected one repository read, got %d", repo.GetByIDCallCount)
	}
	if cache.SchemeHits != 2 {
		t.Errorf("expected two cache hits, got %d", cache.SchemeHits)
	}

	if _, err := svc.GetScheme(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateScheme_InvalidatesCache(t *testing.T) {
	t.Parallel()

	repo := NewMockSchemeRepository()
	cache := NewMockCache()
	svc := service.NewSchemeService(repo, cache)
	ctx := context.Background()

	created, err := svc.CreateScheme(ctx, service.SchemeRequest{
		Name:       "Per trip",
		SchemeType: "piece_rate",
		Config:     map[string]any{"per_trip_amount": 50},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.GetScheme(ctx, created.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !cache.HasScheme(created.ID) {
		t.Fatal("expected scheme to be cached")
	}

	inactive := false
	updated, err := svc.UpdateScheme(ctx, created.ID, service.SchemeRequest{
		Name:       "Per trip v2",
		SchemeType: "piece_rate",
		Config:     map[string]any{"per_trip_amount": 60},
		IsActive:   &inactive,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsActive {
		t.Error("expected the scheme to be deactivated")
	}
	if cache.HasScheme(created.ID) {
		t.Error("expected the cache entry to be dropped")
	}

	got, err := svc.GetScheme(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Per trip v2" {
		t.Errorf("expected the updated scheme, got %q", got.Name)
	}
}

func TestPreview_ComputesWithoutStoring(t *testing.T) {
	t.Parallel()

	repo := NewMockSchemeRepository()
	svc := service.NewSchemeService(repo, nil)
	ctx := context.Background()

	scheme, err := svc.CreateScheme(ctx, service.SchemeRequest{
		Name:             "Per trip",
		SchemeType:       "piece_rate",
		MinimumGuarantee: 500,
		Config:           map[string]any{"per_trip_amount": 50},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	testCases := []struct {
		name         string
		trips        int
		wantEarnings float64
		wantBMG      float64
	}{
		{name: "above the guarantee", trips: 12, wantEarnings: 600, wantBMG: 0},
		{name: "below the guarantee", trips: 4, wantEarnings: 500, wantBMG: 300},
	}

	for _, tc := range testCases {
		result, err := svc.Preview(ctx, scheme.ID, earnings.Facts{TripCount: tc.trips})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := result.Earnings.InexactFloat64(); got != tc.wantEarnings {
			t.Errorf("%s: expected earnings %v, got %v", tc.name, tc.wantEarnings, got)
		}
		if got := result.BMGApplied.InexactFloat64(); got != tc.wantBMG {
			t.Errorf("%s: expected BMG %v, got %v", tc.name, tc.wantBMG, got)
		}
	}
}

func TestPreview_WeekdayInBusinessZone(t *testing.T) {
	t.Parallel()

	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	svc := service.NewSchemeService(NewMockSchemeRepository(), nil).WithLocation(ist)
	ctx := context.Background()

	scheme, err := svc.CreateScheme(ctx, service.SchemeRequest{
		Name:       "Daily",
		SchemeType: "daily_payout",
		Config:     map[string]any{"daily_base_amount": 1000, "weekend_bonus_percent": 10},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Saturday 02:00 in Kolkata, still Friday in UTC.
	start := time.Date(2024, 3, 8, 20, 30, 0, 0, time.UTC)
	result, err := svc.Preview(ctx, scheme.ID, earnings.Facts{StartTime: start, EndTime: start.Add(4 * time.Hour)})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if got := result.Bonuses.InexactFloat64(); got != 100 {
		t.Errorf("expected a weekend bonus of 100, got %v", got)
	}
}
