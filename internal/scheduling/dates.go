package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of assignment dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for date strings that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// DateParseError reports the field and raw value that failed to parse.
type DateParseError struct {
	Field string
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected YYYY-MM-DD", e.Field, e.Value)
}

func (e *DateParseError) Unwrap() error {
	return ErrInvalidDate
}

// ParseDate parses a calendar day in UTC.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &DateParseError{Field: field, Value: value}
	}
	return t, nil
}

// ParseOptionalDate parses value, returning nil for an empty string.
func ParseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Day truncates t to midnight UTC of its calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar day, or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// DayRangesOverlap reports whether two inclusive day ranges intersect. A nil
// end extends to infinity.
func DayRangesOverlap(start1 time.Time, end1 *time.Time, start2 time.Time, end2 *time.Time) bool {
	if end1 != nil && end1.Before(start2) {
		return false
	}
	if end2 != nil && end2.Before(start1) {
		return false
	}
	return true
}

// CoversDay reports whether the inclusive range [start, end] contains day.
func CoversDay(start time.Time, end *time.Time, day time.Time) bool {
	if day.Before(start) {
		return false
	}
	return end == nil || !day.After(*end)
}
