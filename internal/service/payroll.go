package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/scheduling"
)

const payrollSheet = "Payroll"

// PayrollService aggregates completed duties into per-driver pay lines.
type PayrollService struct {
	dutyRepo   repository.DutyRepository
	driverRepo repository.DriverRepository
	loc        *time.Location
}

// NewPayrollService creates a new PayrollService. loc defaults to UTC.
func NewPayrollService(dutyRepo repository.DutyRepository, driverRepo repository.DriverRepository, loc *time.Location) *PayrollService {
	if loc == nil {
		loc = time.UTC
	}
	return &PayrollService{dutyRepo: dutyRepo, driverRepo: driverRepo, loc: loc}
}

// PayrollSummary is the payroll for an inclusive date period.
type PayrollSummary struct {
	From   time.Time
	To     time.Time
	Lines  []domain.PayrollLine
	Totals domain.PayrollLine
}

type payrollAcc struct {
	duties, trips int
	revenue       decimal.Decimal
	base          decimal.Decimal
	incentive     decimal.Decimal
	bonuses       decimal.Decimal
	deductions    decimal.Decimal
	bmg           decimal.Decimal
	gross         decimal.Decimal
	earnings      decimal.Decimal
}

func (a *payrollAcc) add(d *domain.Duty) {
	a.duties++
	a.trips += d.TripCount
	a.revenue = a.revenue.Add(decimal.NewFromFloat(d.Revenue))
	a.base = a.base.Add(decimal.NewFromFloat(d.BaseEarnings))
	a.incentive = a.incentive.Add(decimal.NewFromFloat(d.Incentive))
	a.bonuses = a.bonuses.Add(decimal.NewFromFloat(d.Bonuses))
	a.deductions = a.deductions.Add(decimal.NewFromFloat(d.Deductions))
	a.bmg = a.bmg.Add(decimal.NewFromFloat(d.BMGApplied))
	a.gross = a.gross.Add(decimal.NewFromFloat(d.GrossEarnings))
	a.earnings = a.earnings.Add(decimal.NewFromFloat(d.Earnings))
}

func (a *payrollAcc) merge(o *payrollAcc) {
	a.duties += o.duties
	a.trips += o.trips
	a.revenue = a.revenue.Add(o.revenue)
	a.base = a.base.Add(o.base)
	a.incentive = a.incentive.Add(o.incentive)
	a.bonuses = a.bonuses.Add(o.bonuses)
	a.deductions = a.deductions.Add(o.deductions)
	a.bmg = a.bmg.Add(o.bmg)
	a.gross = a.gross.Add(o.gross)
	a.earnings = a.earnings.Add(o.earnings)
}

func (a *payrollAcc) line(driverID, name string) domain.PayrollLine {
	return domain.PayrollLine{
		DriverID:      driverID,
		DriverName:    name,
		Duties:        a.duties,
		Trips:         a.trips,
		Revenue:       a.revenue.Round(2).InexactFloat64(),
		BaseEarnings:  a.base.Round(2).InexactFloat64(),
		Incentive:     a.incentive.Round(2).InexactFloat64(),
		Bonuses:       a.bonuses.Round(2).InexactFloat64(),
		Deductions:    a.deductions.Round(2).InexactFloat64(),
		BMGApplied:    a.bmg.Round(2).InexactFloat64(),
		GrossEarnings: a.gross.Round(2).InexactFloat64(),
		Earnings:      a.earnings.Round(2).InexactFloat64(),
	}
}

// Summary totals completed duties that started between from and to, both
// inclusive (YYYY-MM-DD). Lines are ordered by driver name.
func (s *PayrollService) Summary(ctx context.Context, from, to string) (*PayrollSummary, error) {
	start, err := scheduling.ParseDate("from", from)
	if err != nil {
		return nil, err
	}
	end, err := scheduling.ParseDate("to", to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}

	lower := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.loc)
	upper := time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, s.loc)
	duties, err := s.dutyRepo.ListCompleted(ctx, lower, upper)
	if err != nil {
		return nil, err
	}

	drivers, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(drivers))
	for _, d := range drivers {
		names[d.ID] = d.Name
	}

	byDriver := make(map[string]*payrollAcc)
	for _, d := range duties {
		acc, ok := byDriver[d.DriverID]
		if !ok {
			acc = &payrollAcc{}
			byDriver[d.DriverID] = acc
		}
		acc.add(d)
	}

	summary := &PayrollSummary{From: start, To: end, Lines: make([]domain.PayrollLine, 0, len(byDriver))}
	total := &payrollAcc{}
	for driverID, acc := range byDriver {
		name, ok := names[driverID]
		if !ok {
			name = driverID
		}
		summary.Lines = append(summary.Lines, acc.line(driverID, name))
		total.merge(acc)
	}
	sort.Slice(summary.Lines, func(i, j int) bool {
		if summary.Lines[i].DriverName != summary.Lines[j].DriverName {
			return summary.Lines[i].DriverName < summary.Lines[j].DriverName
		}
		return summary.Lines[i].DriverID < summary.Lines[j].DriverID
	})
	summary.Totals = total.line("", "TOTAL")
	return summary, nil
}

// ExportXLSX writes the period summary to w as a spreadsheet with a totals row.
func (s *PayrollService) ExportXLSX(ctx context.Context, from, to string, w io.Writer) error {
	summary, err := s.Summary(ctx, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(payrollSheet)
	if err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headers := []string{"Driver ID", "Driver", "Duties", "Trips", "Revenue", "Base", "Incentive", "Bonuses", "Deductions", "BMG", "Gross", "Earnings"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(payrollSheet, cell, header); err != nil {
			return err
		}
	}

	rows := append(summary.Lines, summary.Totals)
	for r, line := range rows {
		values := []any{
			line.DriverID, line.DriverName, line.Duties, line.Trips, line.Revenue,
			line.BaseEarnings, line.Incentive, line.Bonuses, line.Deductions,
			line.BMGApplied, line.GrossEarnings, line.Earnings,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(payrollSheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(payrollSheet, "A", "B", 24); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write payroll workbook: %w", err)
	}
	return nil
}
