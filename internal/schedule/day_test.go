package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakform/trainer-crm/internal/model"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func strp(s string) *string { return &s }

func TestDayOfWeek(t *testing.T) {
	assert.Equal(t, 0, DayOfWeek(monday))
	assert.Equal(t, 5, DayOfWeek(monday.AddDate(0, 0, 5))) // Saturday
	assert.Equal(t, 6, DayOfWeek(monday.AddDate(0, 0, 6))) // Sunday
}

func TestResolveDayFiltersWeekday(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00", MaxBookings: 3, IsActive: true},
		{ID: 2, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", MaxBookings: 3, IsActive: true},
		{ID: 3, DayOfWeek: 0, StartTime: "14:00", EndTime: "17:00", MaxBookings: 2, IsActive: false},
	}

	day := ResolveDay(slots, nil, Demand{PerSlot: map[uint64]int{}}, monday)
	require.True(t, day.Available)
	require.Len(t, day.Openings, 1)
	assert.Equal(t, uint64(1), day.Openings[0].SlotID)
	assert.Equal(t, 3, day.Openings[0].SlotsRemaining)
}

func TestResolveDayUnavailableException(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00", MaxBookings: 3, IsActive: true},
	}
	exceptions := []model.AvailabilityException{
		{StartDate: monday.AddDate(0, 0, -1), EndDate: monday.AddDate(0, 0, 1), ExceptionType: model.ExceptionUnavailable},
	}

	day := ResolveDay(slots, exceptions, Demand{PerSlot: map[uint64]int{}}, monday)
	assert.False(t, day.Available)
	assert.Equal(t, "Trainer unavailable", day.Reason)
	assert.Empty(t, day.Openings)

	// The day after the range is open again.
	after := ResolveDay(slots, exceptions, Demand{PerSlot: map[uint64]int{}}, monday.AddDate(0, 0, 7))
	assert.True(t, after.Available)
}

func TestResolveDayNonBlockingException(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00", MaxBookings: 2, IsActive: true},
	}
	exceptions := []model.AvailabilityException{
		{StartDate: monday, EndDate: monday, ExceptionType: model.ExceptionSpecialHours,
			SpecialStartTime: strp("10:00"), SpecialEndTime: strp("16:00")},
	}

	// Only `unavailable` exceptions block the template.
	day := ResolveDay(slots, exceptions, Demand{PerSlot: map[uint64]int{}}, monday)
	assert.True(t, day.Available)
	require.Len(t, day.Openings, 1)
}

func TestResolveDayCapacity(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00", MaxBookings: 3, IsActive: true},
		{ID: 2, DayOfWeek: 0, StartTime: "14:00", EndTime: "17:00", MaxBookings: 1, IsActive: true},
	}

	day := ResolveDay(slots, nil, Demand{PerSlot: map[uint64]int{1: 2, 2: 1}}, monday)
	require.True(t, day.Available)
	require.Len(t, day.Openings, 1)
	assert.Equal(t, uint64(1), day.Openings[0].SlotID)
	assert.Equal(t, 1, day.Openings[0].SlotsRemaining)
}

func TestResolveDayUnmatchedDemandWeighsEverySlot(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00", MaxBookings: 2, IsActive: true},
		{ID: 2, DayOfWeek: 0, StartTime: "14:00", EndTime: "17:00", MaxBookings: 1, IsActive: true},
	}

	day := ResolveDay(slots, nil, Demand{PerSlot: map[uint64]int{}, Unmatched: 1}, monday)
	require.Len(t, day.Openings, 1)
	assert.Equal(t, uint64(1), day.Openings[0].SlotID)
	assert.Equal(t, 1, day.Openings[0].SlotsRemaining)
}

func TestResolveDayFullyBooked(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00", MaxBookings: 2, IsActive: true},
	}

	day := ResolveDay(slots, nil, Demand{PerSlot: map[uint64]int{1: 5}}, monday)
	assert.False(t, day.Available)
	assert.Empty(t, day.Openings)
}

func TestResolveDayNormalizesClockStrings(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00:00", EndTime: "12:00:00", MaxBookings: 1, IsActive: true},
	}

	day := ResolveDay(slots, nil, Demand{PerSlot: map[uint64]int{}}, monday)
	require.Len(t, day.Openings, 1)
	assert.Equal(t, "09:00", day.Openings[0].StartTime)
	assert.Equal(t, "12:00", day.Openings[0].EndTime)
}

func TestExceptionFor(t *testing.T) {
	exceptions := []model.AvailabilityException{
		{ID: 1, StartDate: monday, EndDate: monday.AddDate(0, 0, 2), ExceptionType: model.ExceptionHoliday},
	}

	assert.NotNil(t, ExceptionFor(exceptions, monday))
	assert.NotNil(t, ExceptionFor(exceptions, monday.AddDate(0, 0, 2))) // inclusive end
	assert.Nil(t, ExceptionFor(exceptions, monday.AddDate(0, 0, 3)))
	assert.Nil(t, ExceptionFor(exceptions, monday.AddDate(0, 0, -1)))

	// Time-of-day on either side is ignored.
	assert.NotNil(t, ExceptionFor(exceptions, monday.Add(23*time.Hour)))
}

func TestMatchSlot(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{ID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00", MaxBookings: 3, IsActive: true},
		{ID: 2, DayOfWeek: 0, StartTime: "14:00", EndTime: "17:00", MaxBookings: 3, IsActive: true},
	}

	s := MatchSlot(slots, monday, "10:30")
	require.NotNil(t, s)
	assert.Equal(t, uint64(1), s.ID)

	// Start is inclusive, end exclusive.
	require.NotNil(t, MatchSlot(slots, monday, "14:00"))
	assert.Nil(t, MatchSlot(slots, monday, "17:00"))

	assert.Nil(t, MatchSlot(slots, monday, "13:00"))
	assert.Nil(t, MatchSlot(slots, monday.AddDate(0, 0, 1), "10:30"))
	assert.Nil(t, MatchSlot(slots, monday, "not-a-time"))
}
