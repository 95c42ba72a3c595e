package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02 15:04", "2026-03-02 "+clock)
	require.NoError(t, err)
	return tm
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"partial front", "10:00", "11:00", "10:30", "11:30", true},
		{"partial back", "10:30", "11:30", "10:00", "11:00", true},
		{"touching end-to-start", "10:00", "11:00", "11:00", "12:00", false},
		{"touching start-to-end", "11:00", "12:00", "10:00", "11:00", false},
		{"disjoint", "08:00", "09:00", "14:00", "15:00", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Overlaps(at(t, c.aStart), at(t, c.aEnd), at(t, c.bStart), at(t, c.bEnd))
			assert.Equal(t, c.want, got)
			// Overlap is symmetric.
			assert.Equal(t, c.want, Overlaps(at(t, c.bStart), at(t, c.bEnd), at(t, c.aStart), at(t, c.aEnd)))
		})
	}
}

func TestFindGapsEmptyDay(t *testing.T) {
	date := at(t, "00:00")
	start, end := WorkWindow(date)

	gaps := FindGaps(start, end, nil, 30*time.Minute)
	require.Len(t, gaps, 1)
	assert.Equal(t, start, gaps[0].Start)
	assert.Equal(t, end, gaps[0].End)
	assert.Equal(t, 12*60, gaps[0].DurationMinutes)
}

func TestFindGapsBetweenSessions(t *testing.T) {
	start, end := WorkWindow(at(t, "00:00"))
	booked := []Interval{
		{Start: at(t, "09:00"), End: at(t, "10:00")},
		{Start: at(t, "12:00"), End: at(t, "13:30")},
	}

	gaps := FindGaps(start, end, booked, 60*time.Minute)
	require.Len(t, gaps, 3)
	assert.Equal(t, at(t, "08:00"), gaps[0].Start)
	assert.Equal(t, at(t, "09:00"), gaps[0].End)
	assert.Equal(t, at(t, "10:00"), gaps[1].Start)
	assert.Equal(t, at(t, "12:00"), gaps[1].End)
	assert.Equal(t, at(t, "13:30"), gaps[2].Start)
	assert.Equal(t, at(t, "20:00"), gaps[2].End)
}

func TestFindGapsMinDurationFilters(t *testing.T) {
	start, end := WorkWindow(at(t, "00:00"))
	booked := []Interval{
		{Start: at(t, "08:45"), End: at(t, "19:30")},
	}

	// 45 min head, 30 min tail; only the head survives a 45 min minimum.
	gaps := FindGaps(start, end, booked, 45*time.Minute)
	require.Len(t, gaps, 1)
	assert.Equal(t, at(t, "08:00"), gaps[0].Start)
	assert.Equal(t, 45, gaps[0].DurationMinutes)
}

func TestFindGapsOverlappingBooked(t *testing.T) {
	start, end := WorkWindow(at(t, "00:00"))
	booked := []Interval{
		{Start: at(t, "09:00"), End: at(t, "11:00")},
		{Start: at(t, "10:00"), End: at(t, "10:30")}, // swallowed by the cursor
		{Start: at(t, "11:00"), End: at(t, "12:00")}, // back-to-back, no gap
	}

	gaps := FindGaps(start, end, booked, 15*time.Minute)
	require.Len(t, gaps, 2)
	assert.Equal(t, at(t, "08:00"), gaps[0].Start)
	assert.Equal(t, at(t, "09:00"), gaps[0].End)
	assert.Equal(t, at(t, "12:00"), gaps[1].Start)
	assert.Equal(t, at(t, "20:00"), gaps[1].End)
}
