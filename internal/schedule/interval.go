package schedule

import "time"

// Working window for the trainer-calendar gap finder.  The original
// product fixes these hours rather than deriving them from the weekly
// template.
const (
    WorkDayStartHour = 8
    WorkDayEndHour   = 20
)

// Interval is a half-open time range [Start, End).
type Interval struct {
    Start time.Time
    End   time.Time
}

// Gap is a free stretch between booked sessions large enough for a
// requested duration.
type Gap struct {
    Start           time.Time
    End             time.Time
    DurationMinutes int
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.  Touching endpoints do not overlap: a
// session ending at 11:00 and one starting at 11:00 coexist.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindGaps walks booked intervals for one day in chronological order
// and returns the gaps inside [workStart, workEnd) that are at least
// minDuration long.  Booked intervals must be sorted by start time;
// overlapping or back-to-back intervals are merged by the cursor.
func FindGaps(workStart, workEnd time.Time, booked []Interval, minDuration time.Duration) []Gap {
    gaps := []Gap{}
    cursor := workStart
    for _, b := range booked {
        if cursor.Before(b.Start) {
            if gap := b.Start.Sub(cursor); gap >= minDuration {
                gaps = append(gaps, Gap{
                    Start:           cursor,
                    End:             b.Start,
                    DurationMinutes: int(gap.Minutes()),
                })
            }
        }
        if b.End.After(cursor) {
            cursor = b.End
        }
    }
    if cursor.Before(workEnd) {
        if gap := workEnd.Sub(cursor); gap >= minDuration {
            gaps = append(gaps, Gap{
                Start:           cursor,
                End:             workEnd,
                DurationMinutes: int(gap.Minutes()),
            })
        }
    }
    return gaps
}

// WorkWindow returns the fixed 08:00–20:00 working window for a date,
// in the date's location.
func WorkWindow(date time.Time) (time.Time, time.Time) {
    y, m, d := date.Date()
    start := time.Date(y, m, d, WorkDayStartHour, 0, 0, 0, date.Location())
    end := time.Date(y, m, d, WorkDayEndHour, 0, 0, 0, date.Location())
    return start, end
}
