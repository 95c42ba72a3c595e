package model

import "time"

// Session statuses.  A session is soft-deleted by moving it to
// cancelled; cancelled and no-show sessions no longer occupy the
// trainer's calendar for conflict purposes.
const (
    SessionScheduled = "scheduled"
    SessionCompleted = "completed"
    SessionCancelled = "cancelled"
    SessionNoShow    = "no-show"
)

// Session types accepted by sessions and availability slots.
const (
    SessionTypePersonal   = "personal"
    SessionTypeGroup      = "group"
    SessionTypeOnline     = "online"
    SessionTypeAssessment = "assessment"
)

// Session is a scheduled (or completed/cancelled) training appointment
// on a trainer's calendar.  Rows live in the `sessions` table.
//
// Invariant: ScheduledEnd > ScheduledStart, enforced at creation.
// Sessions with status scheduled or completed participate in the
// trainer's conflict universe; cancelled and no-show sessions free
// their time.
type Session struct {
    ID             uint64     // sessions.id
    TrainerID      uint64     // sessions.trainer_id
    ClientID       uint64     // sessions.client_id
    Title          string     // sessions.title
    Description    *string    // sessions.description (nullable)
    SessionType    string     // sessions.session_type
    Location       *string    // sessions.location (nullable)
    MeetingURL     *string    // sessions.meeting_url (nullable, Zoom link for online sessions)
    ScheduledStart time.Time  // sessions.scheduled_start
    ScheduledEnd   time.Time  // sessions.scheduled_end
    ActualStart    *time.Time // sessions.actual_start (nullable)
    ActualEnd      *time.Time // sessions.actual_end (nullable)
    Status         string     // sessions.status
    Notes          *string    // sessions.notes (nullable)
    TrainerNotes   *string    // sessions.trainer_notes (nullable)
    ClientFeedback *string    // sessions.client_feedback (nullable)
    CreatedAt      time.Time  // sessions.created_at
    UpdatedAt      time.Time  // sessions.updated_at
}

// ValidSessionStatus reports whether s is one of the known session
// statuses.
func ValidSessionStatus(s string) bool {
    switch s {
    case SessionScheduled, SessionCompleted, SessionCancelled, SessionNoShow:
        return true
    }
    return false
}

// ValidSessionType reports whether t is one of the known session types.
func ValidSessionType(t string) bool {
    switch t {
    case SessionTypePersonal, SessionTypeGroup, SessionTypeOnline, SessionTypeAssessment:
        return true
    }
    return false
}
