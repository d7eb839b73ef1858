package earnings

import (
	"sort"
	"time"

	"fleet/internal/domain"
)

// Facts are the duty figures a calculation runs over.
type Facts struct {
	Revenue             float64
	TripCount           int
	StartTime           time.Time
	EndTime             time.Time
	Collections         domain.Collections
	StartCNG            float64
	EndCNG              float64
	VehicleRegistration string
}

// FactsFromDuty copies the calculation inputs out of a duty record.
func FactsFromDuty(d *domain.Duty) Facts {
	return Facts{
		Revenue:             d.Revenue,
		TripCount:           d.TripCount,
		StartTime:           d.StartTime,
		EndTime:             d.EndTime,
		Collections:         d.Collections,
		StartCNG:            d.StartCNG,
		EndCNG:              d.EndCNG,
		VehicleRegistration: d.VehicleRegistration,
	}
}

// In returns the facts with both timestamps in loc. Weekday rules read the
// start time as-is, so callers pass their business zone.
func (f Facts) In(loc *time.Location) Facts {
	if loc == nil {
		return f
	}
	if !f.StartTime.IsZero() {
		f.StartTime = f.StartTime.In(loc)
	}
	if !f.EndTime.IsZero() {
		f.EndTime = f.EndTime.In(loc)
	}
	return f
}

// normalized clamps revenue to [0, 1_000_000], floors the trip count at zero
// and zeroes every non-finite money figure.
func (f Facts) normalized() Facts {
	f.Revenue = clampRevenue(f.Revenue)
	if f.TripCount < 0 {
		f.TripCount = 0
	}
	c := &f.Collections
	c.Toll = finite(c.Toll)
	c.Fuel = finite(c.Fuel)
	c.Pass = finite(c.Pass)
	c.Insurance = finite(c.Insurance)
	c.Advance = finite(c.Advance)
	c.CompanyPay = finite(c.CompanyPay)
	c.QRCollection = finite(c.QRCollection)
	c.CashCollection = finite(c.CashCollection)
	c.DigitalCollection = finite(c.DigitalCollection)
	f.StartCNG = finite(f.StartCNG)
	f.EndCNG = finite(f.EndCNG)
	return f
}

// dutyHours is the elapsed duty length, zero when either timestamp is missing
// or the end precedes the start.
func (f Facts) dutyHours() float64 {
	if f.StartTime.IsZero() || f.EndTime.IsZero() || !f.EndTime.After(f.StartTime) {
		return 0
	}
	return f.EndTime.Sub(f.StartTime).Hours()
}

// variables is the fixed table custom formulas may reference.
func (f Facts) variables() map[string]float64 {
	c := f.Collections
	return map[string]float64{
		"revenue":            f.Revenue,
		"trip_count":         float64(f.TripCount),
		"duty_hours":         f.dutyHours(),
		"toll":               c.Toll,
		"fuel":               c.Fuel,
		"pass":               c.Pass,
		"insurance":          c.Insurance,
		"advance":            c.Advance,
		"company_pay":        c.CompanyPay,
		"qr_collection":      c.QRCollection,
		"cash_collection":    c.CashCollection,
		"digital_collection": c.DigitalCollection,
		"total_collection":   c.QRCollection + c.CashCollection + c.DigitalCollection,
		"cng_start":          f.StartCNG,
		"cng_end":            f.EndCNG,
		"cng_used":           f.EndCNG - f.StartCNG,
	}
}

// FormulaVariables lists the names a custom formula may use.
func FormulaVariables() []string {
	vars := Facts{}.variables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
