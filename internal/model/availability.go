package model

import "time"

// Exception types stored in availability_exceptions.exception_type.
// An `unavailable` exception blocks booking for the covered dates
// regardless of the weekly template.
const (
    ExceptionUnavailable  = "unavailable"
    ExceptionSpecialHours = "special_hours"
    ExceptionHoliday      = "holiday"
)

// AvailabilitySlot is one recurring weekly opening in a trainer's
// booking template: a day of week plus a time window.  Multiple slots
// per day are allowed and may overlap (e.g. a personal and a group
// window covering the same hours).  Rows live in `availability_slots`.
//
// DayOfWeek uses Monday=0 .. Sunday=6.  StartTime and EndTime are
// clock times in "HH:MM" form; StartTime < EndTime is enforced at
// creation.  MaxBookings caps concurrent bookings matched to this
// slot on a single date.
type AvailabilitySlot struct {
    ID          uint64    // availability_slots.id
    TrainerID   uint64    // availability_slots.trainer_id
    DayOfWeek   int       // availability_slots.day_of_week (0=Monday .. 6=Sunday)
    StartTime   string    // availability_slots.start_time ("HH:MM")
    EndTime     string    // availability_slots.end_time ("HH:MM")
    SessionType *string   // availability_slots.session_type (nullable)
    MaxBookings int       // availability_slots.max_bookings
    IsActive    bool      // availability_slots.is_active
    CreatedAt   time.Time // availability_slots.created_at
    UpdatedAt   time.Time // availability_slots.updated_at
}

// AvailabilityException overrides the weekly template for a range of
// dates (holiday, vacation, special hours).  Rows live in
// `availability_exceptions`.  StartDate <= EndDate is enforced at
// creation; the range is inclusive on both ends.
type AvailabilityException struct {
    ID               uint64    // availability_exceptions.id
    TrainerID        uint64    // availability_exceptions.trainer_id
    StartDate        time.Time // availability_exceptions.start_date (date only)
    EndDate          time.Time // availability_exceptions.end_date (date only)
    ExceptionType    string    // availability_exceptions.exception_type
    SpecialStartTime *string   // availability_exceptions.special_start_time ("HH:MM", nullable)
    SpecialEndTime   *string   // availability_exceptions.special_end_time ("HH:MM", nullable)
    Reason           *string   // availability_exceptions.reason (nullable)
    CreatedAt        time.Time // availability_exceptions.created_at
}

// ValidExceptionType reports whether t is one of the known exception
// types.
func ValidExceptionType(t string) bool {
    switch t {
    case ExceptionUnavailable, ExceptionSpecialHours, ExceptionHoliday:
        return true
    }
    return false
}

// DayNames maps a Monday-based day index to its English name, used in
// availability listings.
var DayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
