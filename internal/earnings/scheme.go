package earnings

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fleet/internal/domain"
)

// SchemeType identifies a payout method.
type SchemeType string

const (
	TypeDailyPayout      SchemeType = "daily_payout"
	TypeMonthlyPayout    SchemeType = "monthly_payout"
	TypePerformanceBased SchemeType = "performance_based"
	TypeHybridCommission SchemeType = "hybrid_commission"
	TypeRevenueSharing   SchemeType = "revenue_sharing"
	TypeFixedSalary      SchemeType = "fixed_salary"
	TypePieceRate        SchemeType = "piece_rate"
	TypeSlabIncentive    SchemeType = "slab_incentive"
	TypeCustomFormula    SchemeType = "custom_formula"

	// Legacy aliases still found on older scheme rows.
	TypeFixed   SchemeType = "fixed"
	TypePerTrip SchemeType = "per_trip"
	TypeMixed   SchemeType = "mixed"
	TypeSlab    SchemeType = "slab"
)

var supportedTypes = []SchemeType{
	TypeDailyPayout,
	TypeMonthlyPayout,
	TypePerformanceBased,
	TypeHybridCommission,
	TypeRevenueSharing,
	TypeFixedSalary,
	TypePieceRate,
	TypeSlabIncentive,
	TypeCustomFormula,
	TypeFixed,
	TypePerTrip,
	TypeMixed,
	TypeSlab,
}

// SupportedTypes returns every accepted scheme type.
func SupportedTypes() []SchemeType {
	out := make([]SchemeType, len(supportedTypes))
	copy(out, supportedTypes)
	return out
}

// IsSupported reports whether t names a known scheme type.
func IsSupported(t string) bool {
	for _, s := range supportedTypes {
		if string(s) == t {
			return true
		}
	}
	return false
}

// Scheme is one parsed payout rule. Each variant carries only the
// parameters its formula reads.
type Scheme interface {
	Type() SchemeType
	compute(f Facts) component
}

// component is the base-earnings contribution of a scheme.
type component struct {
	base       decimal.Decimal
	incentive  decimal.Decimal
	formulaErr error
}

// DailyPayout pays a fixed daily amount plus a percentage of revenue.
type DailyPayout struct {
	BaseAmount       decimal.Decimal
	IncentivePercent decimal.Decimal
}

func (DailyPayout) Type() SchemeType { return TypeDailyPayout }

func (s DailyPayout) compute(f Facts) component {
	incentive := percentOf(decimal.NewFromFloat(f.Revenue), s.IncentivePercent)
	return component{base: s.BaseAmount.Add(incentive), incentive: incentive}
}

// MonthlyPayout spreads a monthly salary over thirty days and adds a revenue
// percentage.
type MonthlyPayout struct {
	BaseSalary       decimal.Decimal
	IncentivePercent decimal.Decimal
}

func (MonthlyPayout) Type() SchemeType { return TypeMonthlyPayout }

func (s MonthlyPayout) compute(f Facts) component {
	incentive := percentOf(decimal.NewFromFloat(f.Revenue), s.IncentivePercent)
	return component{base: s.BaseSalary.Div(thirty).Add(incentive), incentive: incentive}
}

// PerformanceBased pays a base amount, a bonus for each trip past the target
// and a flat bonus once the revenue target is reached.
type PerformanceBased struct {
	BaseAmount        decimal.Decimal
	TargetTrips       decimal.Decimal
	BonusPerExtraTrip decimal.Decimal
	TargetRevenue     decimal.Decimal
	TargetBonus       decimal.Decimal
}

func (PerformanceBased) Type() SchemeType { return TypePerformanceBased }

func (s PerformanceBased) compute(f Facts) component {
	trips := decimal.NewFromInt(int64(f.TripCount))
	revenue := decimal.NewFromFloat(f.Revenue)

	incentive := decimal.Zero
	if trips.GreaterThan(s.TargetTrips) {
		incentive = incentive.Add(trips.Sub(s.TargetTrips).Mul(s.BonusPerExtraTrip))
	}
	if s.TargetRevenue.IsPositive() && revenue.GreaterThanOrEqual(s.TargetRevenue) {
		incentive = incentive.Add(s.TargetBonus)
	}
	return component{base: s.BaseAmount.Add(incentive), incentive: incentive}
}

// HybridCommission combines a base amount with a revenue commission. The
// target bonus applies whenever revenue reaches the target.
type HybridCommission struct {
	BaseAmount       decimal.Decimal
	IncentivePercent decimal.Decimal
	TargetRevenue    decimal.Decimal
	TargetBonus      decimal.Decimal
}

func (HybridCommission) Type() SchemeType { return TypeHybridCommission }

func (s HybridCommission) compute(f Facts) component {
	revenue := decimal.NewFromFloat(f.Revenue)
	incentive := percentOf(revenue, s.IncentivePercent)
	if revenue.GreaterThanOrEqual(s.TargetRevenue) {
		incentive = incentive.Add(s.TargetBonus)
	}
	return component{base: s.BaseAmount.Add(incentive), incentive: incentive}
}

// RevenueSharing pays a share of revenue net of the company expense.
type RevenueSharing struct {
	SharePercent   decimal.Decimal
	CompanyExpense decimal.Decimal
}

func (RevenueSharing) Type() SchemeType { return TypeRevenueSharing }

func (s RevenueSharing) compute(f Facts) component {
	net := decimal.Max(decimal.Zero, decimal.NewFromFloat(f.Revenue).Sub(s.CompanyExpense))
	share := percentOf(net, s.SharePercent)
	return component{base: share, incentive: share}
}

// FixedSalary pays a thirtieth of the monthly salary and allowances.
type FixedSalary struct {
	MonthlySalary decimal.Decimal
	Allowances    decimal.Decimal
}

func (FixedSalary) Type() SchemeType { return TypeFixedSalary }

func (s FixedSalary) compute(Facts) component {
	return component{base: s.MonthlySalary.Add(s.Allowances).Div(thirty), incentive: decimal.Zero}
}

// PieceRate pays per completed trip.
type PieceRate struct {
	PerTripAmount decimal.Decimal
}

func (PieceRate) Type() SchemeType { return TypePieceRate }

func (s PieceRate) compute(f Facts) component {
	return component{base: s.PerTripAmount.Mul(decimal.NewFromInt(int64(f.TripCount))), incentive: decimal.Zero}
}

// Slab is one revenue band of a slab incentive. A Max of zero or less
// disables the band.
type Slab struct {
	Max     decimal.Decimal
	Percent decimal.Decimal
}

// SlabIncentive pays a percentage per revenue band: slab 1 up to Slabs[0].Max,
// slab 2 up to Slabs[1].Max, slab 3 on everything above.
type SlabIncentive struct {
	Slabs [3]Slab
}

func (SlabIncentive) Type() SchemeType { return TypeSlabIncentive }

func (s SlabIncentive) compute(f Facts) component {
	revenue := decimal.NewFromFloat(f.Revenue)
	s1, s2, s3 := s.Slabs[0], s.Slabs[1], s.Slabs[2]

	total := decimal.Zero
	if !s1.Max.IsPositive() {
		return component{base: total, incentive: total}
	}
	total = total.Add(percentOf(decimal.Min(revenue, s1.Max), s1.Percent))

	if !s2.Max.IsPositive() || !s2.Max.GreaterThan(s1.Max) || !revenue.GreaterThan(s1.Max) {
		return component{base: total, incentive: total}
	}
	band := decimal.Min(revenue.Sub(s1.Max), s2.Max.Sub(s1.Max))
	total = total.Add(percentOf(band, s2.Percent))

	if revenue.GreaterThan(s2.Max) {
		total = total.Add(percentOf(revenue.Sub(s2.Max), s3.Percent))
	}
	return component{base: total, incentive: total}
}

// CustomFormula evaluates an admin-authored arithmetic expression. A formula
// that fails to parse or evaluate contributes zero.
type CustomFormula struct {
	Formula string
}

func (CustomFormula) Type() SchemeType { return TypeCustomFormula }

func (s CustomFormula) compute(f Facts) component {
	value, err := EvaluateFormula(s.Formula, f.variables())
	if err != nil {
		return component{base: decimal.Zero, incentive: decimal.Zero, formulaErr: err}
	}
	return component{base: decimal.NewFromFloat(value), incentive: decimal.Zero}
}

// Fixed is the legacy flat per-duty amount.
type Fixed struct {
	Amount decimal.Decimal
}

func (Fixed) Type() SchemeType { return TypeFixed }

func (s Fixed) compute(Facts) component {
	return component{base: s.Amount, incentive: decimal.Zero}
}

// PerTrip is the legacy per-trip rate.
type PerTrip struct {
	PerTripAmount decimal.Decimal
}

func (PerTrip) Type() SchemeType { return TypePerTrip }

func (s PerTrip) compute(f Facts) component {
	return component{base: s.PerTripAmount.Mul(decimal.NewFromInt(int64(f.TripCount))), incentive: decimal.Zero}
}

// Mixed is the legacy base plus percent-of-revenue.
type Mixed struct {
	BaseAmount     decimal.Decimal
	RevenuePercent decimal.Decimal
}

func (Mixed) Type() SchemeType { return TypeMixed }

func (s Mixed) compute(f Facts) component {
	incentive := percentOf(decimal.NewFromFloat(f.Revenue), s.RevenuePercent)
	return component{base: s.BaseAmount.Add(incentive), incentive: incentive}
}

// Tier is one band of the legacy slab list. Max of zero means unbounded.
type Tier struct {
	Min     decimal.Decimal
	Max     decimal.Decimal
	Percent decimal.Decimal
}

// TieredSlab is the legacy ordered min/max/percent list.
type TieredSlab struct {
	Tiers []Tier
}

func (TieredSlab) Type() SchemeType { return TypeSlab }

func (s TieredSlab) compute(f Facts) component {
	revenue := decimal.NewFromFloat(f.Revenue)
	total := decimal.Zero
	for _, t := range s.Tiers {
		if !revenue.GreaterThan(t.Min) {
			continue
		}
		top := revenue
		if t.Max.IsPositive() && t.Max.LessThan(revenue) {
			top = t.Max
		}
		if top.LessThanOrEqual(t.Min) {
			continue
		}
		total = total.Add(percentOf(top.Sub(t.Min), t.Percent))
	}
	return component{base: total, incentive: total}
}

// Adjustments are the bonus and deduction parameters every scheme may carry.
type Adjustments struct {
	DailyBaseAmount        decimal.Decimal
	BaseAmount             decimal.Decimal
	WeekendBonusPercent    decimal.Decimal
	OvertimeRateMultiplier decimal.Decimal
	FuelDeductionPercent   decimal.Decimal
	MaintenanceDeduction   decimal.Decimal
	InsuranceDeduction     decimal.Decimal
	OtherDeductions        decimal.Decimal
}

// Plan is a fully parsed compensation scheme, ready to calculate.
type Plan struct {
	Scheme           Scheme
	Adjustments      Adjustments
	MinimumGuarantee decimal.Decimal
}

// Parse converts a stored scheme into its typed variant. Absent or
// non-numeric parameters default to zero; only an unknown scheme type fails.
func Parse(rec domain.CompensationScheme) (*Plan, error) {
	p := params(rec.Config)

	scheme, err := parseScheme(SchemeType(strings.TrimSpace(rec.SchemeType)), p, rec.CalculationFormula)
	if err != nil {
		return nil, err
	}

	mg := finite(rec.MinimumGuarantee)
	if mg < 0 {
		mg = 0
	}

	return &Plan{
		Scheme: scheme,
		Adjustments: Adjustments{
			DailyBaseAmount:        p.dec("daily_base_amount"),
			BaseAmount:             p.dec("base_amount"),
			WeekendBonusPercent:    p.dec("weekend_bonus_percent"),
			OvertimeRateMultiplier: p.dec("overtime_rate_multiplier"),
			FuelDeductionPercent:   p.dec("fuel_deduction_percent"),
			MaintenanceDeduction:   p.dec("maintenance_deduction"),
			InsuranceDeduction:     p.dec("insurance_deduction"),
			OtherDeductions:        p.dec("other_deductions"),
		},
		MinimumGuarantee: decimal.NewFromFloat(mg),
	}, nil
}

func parseScheme(t SchemeType, p params, formula string) (Scheme, error) {
	switch t {
	case TypeDailyPayout:
		return DailyPayout{
			BaseAmount:       p.dec("daily_base_amount"),
			IncentivePercent: p.dec("daily_incentive_percent"),
		}, nil
	case TypeMonthlyPayout:
		return MonthlyPayout{
			BaseSalary:       p.dec("monthly_base_salary"),
			IncentivePercent: p.dec("monthly_incentive_percent"),
		}, nil
	case TypePerformanceBased:
		return PerformanceBased{
			BaseAmount:        p.dec("daily_base_amount"),
			TargetTrips:       p.dec("target_trips_daily"),
			BonusPerExtraTrip: p.dec("bonus_per_extra_trip"),
			TargetRevenue:     p.dec("target_revenue_daily"),
			TargetBonus:       p.dec("bonus_target_achievement"),
		}, nil
	case TypeHybridCommission:
		return HybridCommission{
			BaseAmount:       p.dec("base_amount"),
			IncentivePercent: p.dec("incentive_percent"),
			TargetRevenue:    p.dec("target_revenue_daily"),
			TargetBonus:      p.dec("bonus_target_achievement"),
		}, nil
	case TypeRevenueSharing:
		return RevenueSharing{
			SharePercent:   p.dec("revenue_share_percent"),
			CompanyExpense: p.dec("company_expense_deduction"),
		}, nil
	case TypeFixedSalary:
		return FixedSalary{
			MonthlySalary: p.dec("fixed_monthly_salary"),
			Allowances:    p.dec("allowances"),
		}, nil
	case TypePieceRate:
		return PieceRate{PerTripAmount: p.dec("per_trip_amount")}, nil
	case TypeSlabIncentive:
		return SlabIncentive{Slabs: [3]Slab{
			{Max: p.dec("slab1_max"), Percent: p.dec("slab1_percent")},
			{Max: p.dec("slab2_max"), Percent: p.dec("slab2_percent")},
			{Max: p.dec("slab3_max"), Percent: p.dec("slab3_percent")},
		}}, nil
	case TypeCustomFormula:
		return CustomFormula{Formula: formula}, nil
	case TypeFixed:
		return Fixed{Amount: p.dec("fixed_amount")}, nil
	case TypePerTrip:
		return PerTrip{PerTripAmount: p.dec("per_trip_amount")}, nil
	case TypeMixed:
		return Mixed{
			BaseAmount:     p.dec("base_amount"),
			RevenuePercent: p.dec("revenue_percent"),
		}, nil
	case TypeSlab:
		return parseTiers(p), nil
	default:
		return nil, &UnsupportedSchemeError{SchemeType: string(t)}
	}
}

func parseTiers(p params) TieredSlab {
	var tiers []Tier
	for _, raw := range p.list("slabs") {
		tp := params(raw)
		tiers = append(tiers, Tier{
			Min:     tp.dec("min"),
			Max:     tp.dec("max"),
			Percent: tp.dec("percent"),
		})
	}
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Min.LessThan(tiers[j].Min)
	})
	return TieredSlab{Tiers: tiers}
}
