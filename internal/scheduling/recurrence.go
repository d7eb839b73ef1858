package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Pattern is how often a recurring assignment repeats.
type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
)

var (
	// ErrInvalidPattern is returned for an unknown recurrence pattern.
	ErrInvalidPattern = errors.New("invalid recurrence pattern")

	// ErrTooManyOccurrences is returned when an expansion would exceed the
	// configured cap.
	ErrTooManyOccurrences = errors.New("too many occurrences")
)

// ParsePattern normalizes a pattern name.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPattern, s)
}

// occurrence returns the k-th start date. Monthly steps are taken from the
// original start so a 31st does not drift after a short month.
func (p Pattern) occurrence(start time.Time, k int) time.Time {
	switch p {
	case PatternWeekly:
		return start.AddDate(0, 0, 7*k)
	case PatternMonthly:
		return start.AddDate(0, k, 0)
	default:
		return start.AddDate(0, 0, k)
	}
}

// ExpandRecurring generates one candidate per occurrence of pattern from
// c.StartDate up to and including until. Each occurrence keeps the day span
// of c; an open-ended c yields single-day occurrences. limit caps the number of
// occurrences, zero or less meaning no cap.
func ExpandRecurring(c Candidate, pattern Pattern, until time.Time, limit int) ([]Candidate, error) {
	if _, err := ParsePattern(string(pattern)); err != nil {
		return nil, err
	}
	if until.Before(c.StartDate) {
		return nil, fmt.Errorf("%w: until date %s is before start date %s",
			ErrInvalidCandidate, until.Format(DateLayout), c.StartDate.Format(DateLayout))
	}

	span := 0
	if c.EndDate != nil {
		span = int(c.EndDate.Sub(c.StartDate).Hours() / 24)
	}

	var out []Candidate
	for k := 0; ; k++ {
		start := pattern.occurrence(c.StartDate, k)
		if start.After(until) {
			break
		}
		if limit > 0 && len(out) == limit {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyOccurrences, limit)
		}
		end := start.AddDate(0, 0, span)

		occ := c
		occ.StartDate = start
		occ.EndDate = &end
		out = append(out, occ)
	}
	return out, nil
}
