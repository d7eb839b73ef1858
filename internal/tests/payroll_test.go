package tests

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fleet/internal/domain"
	"fleet/internal/scheduling"
	"fleet/internal/service"
)

// ──────────────────────────────────────────────
// PAYROLL
// ──────────────────────────────────────────────

func newPayrollFixture() (*MockDutyRepository, *service.PayrollService) {
	drivers := NewMockDriverRepository()
	drivers.AddDriver(&domain.Driver{ID: "d1", Name: "Zoya", Status: domain.DriverStatusActive})
	drivers.AddDriver(&domain.Driver{ID: "d2", Name: "Arjun", Status: domain.DriverStatusActive})

	duties := NewMockDutyRepository()
	add := func(id, driverID string, start time.Time, status domain.DutyStatus, revenue, earnings float64, trips int) {
		duties.AddDuty(&domain.Duty{
			ID:            id,
			DriverID:      driverID,
			Status:        status,
			StartTime:     start,
			EndTime:       start.Add(8 * time.Hour),
			Revenue:       revenue,
			TripCount:     trips,
			BaseEarnings:  earnings,
			GrossEarnings: earnings,
			Earnings:      earnings,
		})
	}

	day := func(d int) time.Time { return time.Date(2024, 3, d, 9, 0, 0, 0, time.UTC) }
	add("k1", "d1", day(1), domain.DutyStatusCompleted, 2000, 800.10, 10)
	add("k2", "d1", day(2), domain.DutyStatusCompleted, 1500, 600.20, 7)
	add("k3", "d2", day(2), domain.DutyStatusCompleted, 3000, 1200, 12)
	add("k4", "d2", day(3), domain.DutyStatusCancelled, 0, 0, 0)
	add("k5", "ghost", day(3), domain.DutyStatusCompleted, 100, 50, 1)
	add("k6", "d1", day(5), domain.DutyStatusCompleted, 999, 999, 9)

	return duties, service.NewPayrollService(duties, drivers, time.UTC)
}

func TestPayrollSummary_AggregatesPerDriver(t *testing.T) {
	t.Parallel()

	_, svc := newPayrollFixture()

	summary, err := svc.Summary(context.Background(), "2024-03-01", "2024-03-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summary.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(summary.Lines))
	}

	// Sorted by name; an unknown driver falls back to the ID.
	wantOrder := []string{"Arjun", "Zoya", "ghost"}
	for i, name := range wantOrder {
		if summary.Lines[i].DriverName != name {
			t.Errorf("line %d: expected %s, got %s", i, name, summary.Lines[i].DriverName)
		}
	}

	zoya := summary.Lines[1]
	if zoya.Duties != 2 || zoya.Trips != 17 {
		t.Errorf("expected 2 duties and 17 trips, got %d and %d", zoya.Duties, zoya.Trips)
	}
	if zoya.Earnings != 1400.3 {
		t.Errorf("expected 1400.3 earnings, got %v", zoya.Earnings)
	}
	if zoya.Revenue != 3500 {
		t.Errorf("expected 3500 revenue, got %v", zoya.Revenue)
	}

	if summary.Totals.DriverName != "TOTAL" {
		t.Errorf("expected TOTAL line, got %q", summary.Totals.DriverName)
	}
	if summary.Totals.Duties != 4 || summary.Totals.Earnings != 2650.3 {
		t.Errorf("expected 4 duties and 2650.3 earnings, got %d and %v", summary.Totals.Duties, summary.Totals.Earnings)
	}
}

func TestPayrollSummary_SingleDayIsInclusive(t *testing.T) {
	t.Parallel()

	_, svc := newPayrollFixture()

	summary, err := svc.Summary(context.Background(), "2024-03-05", "2024-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Lines) != 1 || summary.Lines[0].DriverID != "d1" {
		t.Fatalf("expected only d1, got %+v", summary.Lines)
	}
	if summary.Totals.Earnings != 999 {
		t.Errorf("expected 999, got %v", summary.Totals.Earnings)
	}
}

func TestPayrollSummary_InvalidPeriod(t *testing.T) {
	t.Parallel()

	_, svc := newPayrollFixture()

	if _, err := svc.Summary(context.Background(), "2024-03-05", "2024-03-01"); !errors.Is(err, service.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := svc.Summary(context.Background(), "March", "2024-03-01"); !errors.Is(err, scheduling.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestPayrollExport_WritesWorkbook(t *testing.T) {
	t.Parallel()

	_, svc := newPayrollFixture()

	var buf bytes.Buffer
	if err := svc.ExportXLSX(context.Background(), "2024-03-01", "2024-03-03", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a non-empty workbook")
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Payroll")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	// Header, three drivers, totals.
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0][1] != "Driver" {
		t.Errorf("expected header Driver, got %q", rows[0][1])
	}
	if rows[1][1] != "Arjun" {
		t.Errorf("expected Arjun first, got %q", rows[1][1])
	}
	if rows[4][1] != "TOTAL" {
		t.Errorf("expected totals row last, got %q", rows[4][1])
	}
}
