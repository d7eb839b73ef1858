/*
Package earnings computes driver pay for a duty.

A stored compensation scheme is parsed into one typed variant per payout
method (see scheme.go), its base earnings are computed from the duty facts,
then weekend/overtime bonuses are added, configured deductions subtracted and
the minimum guarantee (BMG) applied as a floor:

	final = base + bonuses - deductions
	if final < minimumGuarantee { bmg = minimumGuarantee - final; final = minimumGuarantee }

The combination runs on unrounded amounts and every money field of the
result is then rounded to two decimal places, so the rounded parts may differ
from the rounded total by a cent. The package holds no state and performs
no I/O.
*/
package earnings

import (
	"time"

	"github.com/shopspring/decimal"

	"fleet/internal/domain"
)

// Result is the computed earnings of one duty.
type Result struct {
	Earnings      decimal.Decimal
	BaseEarnings  decimal.Decimal
	BMGApplied    decimal.Decimal
	Incentive     decimal.Decimal
	Bonuses       decimal.Decimal
	Deductions    decimal.Decimal
	GrossEarnings decimal.Decimal

	// FormulaError is set when a custom formula failed and contributed zero.
	// It is informational; the calculation itself still succeeded.
	FormulaError error
}

// Calculate parses the scheme and computes earnings for the duty facts.
// It fails only with *UnsupportedSchemeError.
func Calculate(scheme domain.CompensationScheme, facts Facts) (*Result, error) {
	plan, err := Parse(scheme)
	if err != nil {
		return nil, err
	}
	return plan.Calculate(facts), nil
}

// Calculate computes earnings for the duty facts.
func (p *Plan) Calculate(facts Facts) *Result {
	facts = facts.normalized()

	c := p.Scheme.compute(facts)
	bonuses := p.Adjustments.bonuses(facts)
	deductions := p.Adjustments.deductions(facts)

	// Only outputs are rounded; the floor compares the unrounded total.
	final := c.base.Add(bonuses).Sub(deductions)
	bmg := decimal.Zero
	if final.LessThan(p.MinimumGuarantee) {
		bmg = p.MinimumGuarantee.Sub(final)
		final = p.MinimumGuarantee
	}

	return &Result{
		Earnings:      final.Round(2),
		BaseEarnings:  c.base.Round(2),
		BMGApplied:    bmg.Round(2),
		Incentive:     c.incentive.Round(2),
		Bonuses:       bonuses.Round(2),
		Deductions:    deductions.Round(2),
		GrossEarnings: c.base.Add(bonuses).Round(2),
		FormulaError:  c.formulaErr,
	}
}

const overtimeThreshold = 12 * time.Hour

func (a Adjustments) bonuses(f Facts) decimal.Decimal {
	total := decimal.Zero

	if !f.StartTime.IsZero() {
		switch f.StartTime.Weekday() {
		case time.Saturday, time.Sunday:
			ref := a.DailyBaseAmount
			if ref.IsZero() {
				ref = a.BaseAmount
			}
			total = total.Add(percentOf(ref, a.WeekendBonusPercent))
		}
	}

	hours := f.dutyHours()
	if hours > overtimeThreshold.Hours() && a.OvertimeRateMultiplier.GreaterThan(decimal.NewFromInt(1)) {
		overtime := decimal.NewFromFloat(hours - overtimeThreshold.Hours())
		hourlyRate := a.DailyBaseAmount.Div(eight)
		premium := a.OvertimeRateMultiplier.Sub(decimal.NewFromInt(1))
		total = total.Add(overtime.Mul(hourlyRate).Mul(premium))
	}

	return total
}

func (a Adjustments) deductions(f Facts) decimal.Decimal {
	fuel := percentOf(decimal.NewFromFloat(f.Revenue), a.FuelDeductionPercent)
	return fuel.
		Add(a.MaintenanceDeduction).
		Add(a.InsuranceDeduction).
		Add(a.OtherDeductions)
}
