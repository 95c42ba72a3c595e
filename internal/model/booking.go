package model

import "time"

// Booking statuses.  A booking starts as pending.  Confirming,
// declining or cancelling are trainer actions; a confirmed booking can
// still be cancelled, declined and cancelled are terminal.
const (
    BookingPending   = "pending"
    BookingConfirmed = "confirmed"
    BookingDeclined  = "declined"
    BookingCancelled = "cancelled"
)

// Booking is a client- or guest-initiated request for a specific
// date and time, distinct from a confirmed Session.  Rows live in the
// `bookings` table.
//
// Either ClientID or the guest contact fields are set.  SlotID records
// which availability slot the request was matched to at creation time,
// so per-slot capacity can be tracked; it is null for trainer-entered
// bookings that match no template slot.  SessionID links the session
// created when the booking is confirmed.
type Booking struct {
    ID              uint64     // bookings.id
    Reference       string     // bookings.reference (uuid shown to guests)
    TrainerID       uint64     // bookings.trainer_id
    ClientID        *uint64    // bookings.client_id (nullable)
    SlotID          *uint64    // bookings.slot_id (nullable)
    GuestName       *string    // bookings.guest_name (nullable)
    GuestEmail      *string    // bookings.guest_email (nullable)
    GuestPhone      *string    // bookings.guest_phone (nullable)
    RequestedDate   time.Time  // bookings.requested_date (date only)
    RequestedTime   string     // bookings.requested_time ("HH:MM")
    DurationMinutes int        // bookings.duration_minutes
    SessionType     *string    // bookings.session_type (nullable)
    Status          string     // bookings.status
    ClientNotes     *string    // bookings.client_notes (nullable)
    DeclineReason   *string    // bookings.decline_reason (nullable)
    SessionID       *uint64    // bookings.session_id (nullable)
    RequestedAt     time.Time  // bookings.requested_at
    ConfirmedAt     *time.Time // bookings.confirmed_at (nullable)
    CancelledAt     *time.Time // bookings.cancelled_at (nullable)
}

// ValidBookingTransition reports whether a booking may move from one
// status to another.  From pending every trainer action is allowed;
// a confirmed booking can only be cancelled; declined and cancelled
// are terminal.
func ValidBookingTransition(from, to string) bool {
    switch from {
    case BookingPending:
        return to == BookingConfirmed || to == BookingDeclined || to == BookingCancelled
    case BookingConfirmed:
        return to == BookingCancelled
    }
    return false
}

// RequestedBookingStatus reports whether s is a status a trainer may
// request through the status endpoint.  `pending` is the initial state
// only and can never be requested.
func RequestedBookingStatus(s string) bool {
    return s == BookingConfirmed || s == BookingDeclined || s == BookingCancelled
}

// BookingSettings is the per-trainer booking configuration, one row per
// trainer created lazily on first read.  Rows live in
// `booking_settings`.
type BookingSettings struct {
    ID                     uint64    // booking_settings.id
    TrainerID              uint64    // booking_settings.trainer_id (unique)
    EnableOnlineBooking    bool      // booking_settings.enable_online_booking
    RequireApproval        bool      // booking_settings.require_approval
    AllowGuestBooking      bool      // booking_settings.allow_guest_booking
    MinAdvanceHours        int       // booking_settings.min_advance_hours
    MaxAdvanceDays         int       // booking_settings.max_advance_days
    DefaultDurationMinutes int       // booking_settings.default_duration_minutes
    BufferTimeMinutes      int       // booking_settings.buffer_time_minutes
    CancellationHours      int       // booking_settings.cancellation_hours
    NotifyNewBooking       bool      // booking_settings.notify_new_booking
    NotifyCancellation     bool      // booking_settings.notify_cancellation
    SendReminders          bool      // booking_settings.send_reminders
    ReminderHoursBefore    int       // booking_settings.reminder_hours_before
    BookingPageSlug        *string   // booking_settings.booking_page_slug (unique, nullable)
    BookingPageTitle       *string   // booking_settings.booking_page_title (nullable)
    BookingPageDescription *string   // booking_settings.booking_page_description (nullable)
    CreatedAt              time.Time // booking_settings.created_at
    UpdatedAt              time.Time // booking_settings.updated_at
}
