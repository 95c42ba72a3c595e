package schedule

import (
    "time"

    "github.com/peakform/trainer-crm/internal/model"
)

// DayOfWeek maps a date to the Monday=0 .. Sunday=6 indexing used by
// the weekly template (Go's time.Weekday is Sunday=0).
func DayOfWeek(date time.Time) int {
    return (int(date.Weekday()) + 6) % 7
}

// SlotOpening is one bookable window on a resolved date together with
// its remaining capacity.
type SlotOpening struct {
    SlotID         uint64
    StartTime      string // "HH:MM"
    EndTime        string // "HH:MM"
    SessionType    *string
    SlotsRemaining int
}

// DayAvailability is the result of resolving one date against a
// trainer's template, exceptions and booking demand.
type DayAvailability struct {
    Available bool
    Reason    string // set when an exception blocks the date
    Openings  []SlotOpening
}

// Demand carries the pending+confirmed booking counts for one
// trainer/date.  PerSlot is keyed by the slot each booking was matched
// to at creation; Unmatched counts bookings with no slot reference,
// which conservatively weigh against every slot of the day.
type Demand struct {
    PerSlot   map[uint64]int
    Unmatched int
}

// ExceptionFor returns the first exception whose inclusive [StartDate,
// EndDate] range covers the date, or nil.  Date comparison ignores the
// time-of-day component.
func ExceptionFor(exceptions []model.AvailabilityException, date time.Time) *model.AvailabilityException {
    d := truncateToDay(date)
    for i := range exceptions {
        if !d.Before(truncateToDay(exceptions[i].StartDate)) && !d.After(truncateToDay(exceptions[i].EndDate)) {
            return &exceptions[i]
        }
    }
    return nil
}

// ResolveDay decides whether a date is bookable and with how much
// capacity.  An `unavailable` exception short-circuits the weekly
// template entirely.  Otherwise each active slot for the date's
// weekday is offered while its remaining capacity is positive;
// remaining capacity never goes below zero.
//
// Slots passed in may belong to any weekday; filtering happens here so
// callers can hand over a trainer's full template.
func ResolveDay(slots []model.AvailabilitySlot, exceptions []model.AvailabilityException, demand Demand, date time.Time) DayAvailability {
    if exc := ExceptionFor(exceptions, date); exc != nil && exc.ExceptionType == model.ExceptionUnavailable {
        return DayAvailability{Available: false, Reason: "Trainer unavailable", Openings: []SlotOpening{}}
    }

    dow := DayOfWeek(date)
    openings := []SlotOpening{}
    for _, slot := range slots {
        if !slot.IsActive || slot.DayOfWeek != dow {
            continue
        }
        used := demand.Unmatched + demand.PerSlot[slot.ID]
        remaining := slot.MaxBookings - used
        if remaining <= 0 {
            continue
        }
        openings = append(openings, SlotOpening{
            SlotID:         slot.ID,
            StartTime:      NormalizeClock(slot.StartTime),
            EndTime:        NormalizeClock(slot.EndTime),
            SessionType:    slot.SessionType,
            SlotsRemaining: remaining,
        })
    }
    return DayAvailability{Available: len(openings) > 0, Openings: openings}
}

// MatchSlot returns the first active slot for the date's weekday whose
// window contains the requested clock time (start inclusive, end
// exclusive), or nil when no template slot covers it.
func MatchSlot(slots []model.AvailabilitySlot, date time.Time, requested string) *model.AvailabilitySlot {
    t, err := ParseClock(requested)
    if err != nil {
        return nil
    }
    dow := DayOfWeek(date)
    for i := range slots {
        s := &slots[i]
        if !s.IsActive || s.DayOfWeek != dow {
            continue
        }
        start, err1 := ParseClock(s.StartTime)
        end, err2 := ParseClock(s.EndTime)
        if err1 != nil || err2 != nil {
            continue
        }
        if start <= t && t < end {
            return s
        }
    }
    return nil
}

func truncateToDay(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
