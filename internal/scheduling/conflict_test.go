package scheduling_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet/internal/domain"
	"fleet/internal/scheduling"
)

func day(s string) time.Time {
	t, err := time.Parse(scheduling.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func assignment(id, driver, vehicle, start string, end *time.Time, shift domain.ShiftType) *domain.Assignment {
	return &domain.Assignment{
		ID:        id,
		DriverID:  driver,
		VehicleID: vehicle,
		StartDate: day(start),
		EndDate:   end,
		ShiftType: shift,
		Status:    domain.AssignmentStatusActive,
	}
}

func TestCheckConflicts_SameShiftOverlappingDates(t *testing.T) {
	existing := assignment("a1", "d1", "v1", "2025-04-01", dayPtr("2025-04-10"), domain.ShiftMorning)

	res := scheduling.CheckConflicts(scheduling.Candidate{
		DriverID:  "d1",
		VehicleID: "v2",
		StartDate: day("2025-04-05"),
		EndDate:   dayPtr("2025-04-07"),
		ShiftType: domain.ShiftMorning,
	}, []*domain.Assignment{existing}, nil)

	require.NotNil(t, res.DriverConflict)
	assert.Equal(t, "a1", res.DriverConflict.ID)
	assert.Nil(t, res.VehicleConflict)
	assert.True(t, res.HasConflict())
}

func TestCheckConflicts_MorningAndEveningDoNotCollide(t *testing.T) {
	existing := assignment("a1", "d1", "v1", "2025-04-01", dayPtr("2025-04-10"), domain.ShiftMorning)

	res := scheduling.CheckConflicts(scheduling.Candidate{
		DriverID:  "d1",
		VehicleID: "v1",
		StartDate: day("2025-04-05"),
		EndDate:   dayPtr("2025-04-07"),
		ShiftType: domain.ShiftEvening,
	}, []*domain.Assignment{existing}, []*domain.Assignment{existing})

	assert.Nil(t, res.DriverConflict)
	assert.Nil(t, res.VehicleConflict)
	assert.False(t, res.HasConflict())
}

func TestCheckConflicts_DriverAndVehicleSearchedIndependently(t *testing.T) {
	forDriver := assignment("a1", "d1", "v9", "2025-04-01", nil, domain.ShiftNight)
	forVehicle := assignment("a2", "d9", "v1", "2025-04-03", dayPtr("2025-04-03"), domain.ShiftFullDay)

	res := scheduling.CheckConflicts(scheduling.Candidate{
		DriverID:  "d1",
		VehicleID: "v1",
		StartDate: day("2025-04-03"),
		ShiftType: domain.ShiftNight,
	}, []*domain.Assignment{forDriver}, []*domain.Assignment{forVehicle})

	require.NotNil(t, res.DriverConflict)
	require.NotNil(t, res.VehicleConflict)
	assert.Equal(t, "a1", res.DriverConflict.ID)
	assert.Equal(t, "a2", res.VehicleConflict.ID)
	assert.Contains(t, res.Describe(scheduling.Candidate{DriverID: "d1", VehicleID: "v1", StartDate: day("2025-04-03")}), "a2")
}

func TestFindConflict_SkipsNonLiveAndExcluded(t *testing.T) {
	done := assignment("a1", "d1", "v1", "2025-04-01", nil, domain.ShiftFullDay)
	done.Status = domain.AssignmentStatusCompleted
	cancelled := assignment("a2", "d1", "v1", "2025-04-01", nil, domain.ShiftFullDay)
	cancelled.Status = domain.AssignmentStatusCancelled
	self := assignment("a3", "d1", "v1", "2025-04-01", nil, domain.ShiftFullDay)
	scheduled := assignment("a4", "d1", "v1", "2025-04-01", nil, domain.ShiftFullDay)
	scheduled.Status = domain.AssignmentStatusScheduled

	c := scheduling.Candidate{
		DriverID:  "d1",
		VehicleID: "v1",
		StartDate: day("2025-04-02"),
		ShiftType: domain.ShiftMorning,
		ExcludeID: "a3",
	}

	got := scheduling.FindConflict(c, []*domain.Assignment{done, cancelled, self, scheduled})
	require.NotNil(t, got)
	assert.Equal(t, "a4", got.ID)

	assert.Nil(t, scheduling.FindConflict(c, []*domain.Assignment{done, cancelled, self}))
}

func TestFindConflict_ReturnsFirstMatch(t *testing.T) {
	first := assignment("a1", "d1", "v1", "2025-04-01", dayPtr("2025-04-05"), domain.ShiftFullDay)
	second := assignment("a2", "d1", "v1", "2025-04-04", dayPtr("2025-04-09"), domain.ShiftFullDay)

	got := scheduling.FindConflict(scheduling.Candidate{
		DriverID: "d1", VehicleID: "v1", StartDate: day("2025-04-04"), ShiftType: domain.ShiftEvening,
	}, []*domain.Assignment{first, second})

	require.NotNil(t, got)
	assert.Equal(t, "a1", got.ID)
}

func TestFindConflict_DateRanges(t *testing.T) {
	existing := assignment("a1", "d1", "v1", "2025-04-10", dayPtr("2025-04-12"), domain.ShiftMorning)

	tests := []struct {
		name     string
		start    string
		end      *time.Time
		conflict bool
	}{
		{"ends the day before", "2025-04-01", dayPtr("2025-04-09"), false},
		{"ends on the first day", "2025-04-01", dayPtr("2025-04-10"), true},
		{"starts on the last day", "2025-04-12", dayPtr("2025-04-20"), true},
		{"starts the day after", "2025-04-13", dayPtr("2025-04-20"), false},
		{"single day inside", "2025-04-11", dayPtr("2025-04-11"), true},
		{"open-ended from before", "2025-03-01", nil, true},
		{"open-ended from after", "2025-04-13", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := scheduling.FindConflict(scheduling.Candidate{
				DriverID: "d1", VehicleID: "v1", StartDate: day(tc.start), EndDate: tc.end, ShiftType: domain.ShiftMorning,
			}, []*domain.Assignment{existing})
			assert.Equal(t, tc.conflict, got != nil)
		})
	}
}

func TestFindConflict_OpenEndedExistingExtendsForever(t *testing.T) {
	existing := assignment("a1", "d1", "v1", "2025-01-01", nil, domain.ShiftEvening)

	got := scheduling.FindConflict(scheduling.Candidate{
		DriverID: "d1", VehicleID: "v1", StartDate: day("2031-12-31"), EndDate: dayPtr("2031-12-31"), ShiftType: domain.ShiftEvening,
	}, []*domain.Assignment{existing})
	assert.NotNil(t, got)
}

func TestFindConflict_Symmetric(t *testing.T) {
	ranges := []struct {
		start string
		end   *time.Time
	}{
		{"2025-04-01", dayPtr("2025-04-03")},
		{"2025-04-03", dayPtr("2025-04-05")},
		{"2025-04-06", nil},
		{"2025-03-20", dayPtr("2025-04-01")},
	}
	shifts := []domain.ShiftType{domain.ShiftFullDay, domain.ShiftMorning, domain.ShiftEvening, domain.ShiftNight}

	for _, ra := range ranges {
		for _, rb := range ranges {
			for _, sa := range shifts {
				for _, sb := range shifts {
					a := assignment("a", "d1", "v1", ra.start, ra.end, sa)
					b := assignment("b", "d1", "v2", rb.start, rb.end, sb)

					ab := scheduling.FindConflict(candidateFrom(a), []*domain.Assignment{b}) != nil
					ba := scheduling.FindConflict(candidateFrom(b), []*domain.Assignment{a}) != nil
					assert.Equal(t, ab, ba, "%s/%s vs %s/%s", ra.start, sa, rb.start, sb)
				}
			}
		}
	}
}

func TestFindConflict_FullDayAbsorbsEveryShift(t *testing.T) {
	for _, other := range []domain.ShiftType{domain.ShiftFullDay, domain.ShiftMorning, domain.ShiftEvening, domain.ShiftNight} {
		existing := assignment("a1", "d1", "v1", "2025-04-01", dayPtr("2025-04-30"), other)

		got := scheduling.FindConflict(scheduling.Candidate{
			DriverID: "d1", VehicleID: "v1", StartDate: day("2025-04-15"), ShiftType: domain.ShiftFullDay,
		}, []*domain.Assignment{existing})
		assert.NotNil(t, got, "full day vs %s", other)
	}
}

// Night shifts are compared by calendar day only; the hours a night shift
// spills into the next morning are not modeled. Adjacent days therefore do not
// conflict, overlapping days always do.
func TestFindConflict_NightShiftAdjacency(t *testing.T) {
	existing := assignment("a1", "d1", "v1", "2025-04-10", dayPtr("2025-04-10"), domain.ShiftNight)

	next := scheduling.Candidate{DriverID: "d1", VehicleID: "v1", StartDate: day("2025-04-11"), EndDate: dayPtr("2025-04-11"), ShiftType: domain.ShiftNight}
	assert.Nil(t, scheduling.FindConflict(next, []*domain.Assignment{existing}))

	morningAfter := next.WithShift(domain.ShiftMorning)
	assert.Nil(t, scheduling.FindConflict(morningAfter, []*domain.Assignment{existing}))

	same := next
	same.StartDate, same.EndDate = day("2025-04-10"), dayPtr("2025-04-10")
	assert.NotNil(t, scheduling.FindConflict(same, []*domain.Assignment{existing}))
}

func TestCandidate_Validate(t *testing.T) {
	valid := scheduling.Candidate{DriverID: "d1", VehicleID: "v1", StartDate: day("2025-04-01"), ShiftType: domain.ShiftMorning}
	assert.NoError(t, valid.Validate())

	tests := map[string]scheduling.Candidate{
		"missing driver":  valid.WithDriver(""),
		"missing vehicle": valid.WithVehicle(""),
		"bad shift":       valid.WithShift("afternoon"),
		"end before start": func() scheduling.Candidate {
			c := valid
			c.EndDate = dayPtr("2025-03-31")
			return c
		}(),
		"zero start": func() scheduling.Candidate {
			c := valid
			c.StartDate = time.Time{}
			return c
		}(),
	}
	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			err := c.Validate()
			assert.True(t, errors.Is(err, scheduling.ErrInvalidCandidate), "%v", err)
		})
	}
}

func candidateFrom(a *domain.Assignment) scheduling.Candidate {
	return scheduling.Candidate{
		DriverID:  a.DriverID,
		VehicleID: a.VehicleID,
		StartDate: a.StartDate,
		EndDate:   a.EndDate,
		ShiftType: a.ShiftType,
	}
}
