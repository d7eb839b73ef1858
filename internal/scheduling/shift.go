package scheduling

import "fleet/internal/domain"

// window is a time-of-day range in whole hours. A window whose End is not
// after its Start wraps past midnight.
type window struct {
	Start, End int
}

func (w window) wraps() bool { return w.End <= w.Start }

var shiftWindows = map[domain.ShiftType]window{
	domain.ShiftFullDay: {0, 24},
	domain.ShiftMorning: {6, 14},
	domain.ShiftEvening: {14, 22},
	domain.ShiftNight:   {22, 6},
}

// ShiftWindow returns the start and end hour of a shift. Unknown shifts are
// treated as full day.
func ShiftWindow(s domain.ShiftType) (start, end int) {
	w, ok := shiftWindows[s]
	if !ok {
		w = shiftWindows[domain.ShiftFullDay]
	}
	return w.Start, w.End
}

// ShiftsOverlap reports whether two shifts share any hour of the day.
//
// Full day overlaps everything and two night shifts always overlap. A night
// shift only overlaps a non-wrapping shift that starts before 06:00 or ends
// after 22:00, so night does not collide with morning or evening.
func ShiftsOverlap(a, b domain.ShiftType) bool {
	if a == domain.ShiftFullDay || b == domain.ShiftFullDay || !a.IsValid() || !b.IsValid() {
		return true
	}

	wa, wb := shiftWindows[a], shiftWindows[b]
	switch {
	case wa.wraps() && wb.wraps():
		return true
	case wa.wraps():
		return wb.Start < wa.End || wb.End > wa.Start
	case wb.wraps():
		return wa.Start < wb.End || wa.End > wb.Start
	default:
		return !(wa.End <= wb.Start || wb.End <= wa.Start)
	}
}

// AlternativeShifts lists the partial-day shifts other than s, in
// morning/evening/night order. Full day has no alternatives.
func AlternativeShifts(s domain.ShiftType) []domain.ShiftType {
	if s == domain.ShiftFullDay {
		return nil
	}
	var out []domain.ShiftType
	for _, alt := range []domain.ShiftType{domain.ShiftMorning, domain.ShiftEvening, domain.ShiftNight} {
		if alt != s {
			out = append(out, alt)
		}
	}
	return out
}
