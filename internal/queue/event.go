// Package queue defines the notification events exchanged over the
// message broker and the background consumer that dispatches them.
package queue

// Queue names.  One durable queue carries every notification event;
// the Kind field selects the dispatch path.
const NotificationQueue = "crm.notifications"

// Event kinds.
const (
	KindBookingRequested = "booking.requested"
	KindBookingConfirmed = "booking.confirmed"
	KindBookingDeclined  = "booking.declined"
	KindBookingCancelled = "booking.cancelled"
	KindSessionReminder  = "session.reminder"
	KindDirectEmail      = "message.email"
	KindDirectSMS        = "message.sms"
)

// NotificationEvent is the single payload type published to the
// notification queue.  It carries enough information for the consumer
// to send email or SMS without querying the primary database.
type NotificationEvent struct {
	Kind string `json:"kind"`

	TrainerID    uint64 `json:"trainer_id"`
	TrainerEmail string `json:"trainer_email,omitempty"`
	TrainerName  string `json:"trainer_name,omitempty"`

	RecipientEmail string `json:"recipient_email,omitempty"`
	RecipientPhone string `json:"recipient_phone,omitempty"`
	RecipientName  string `json:"recipient_name,omitempty"`

	BookingReference string `json:"booking_reference,omitempty"`
	RequestedDate    string `json:"requested_date,omitempty"` // "2006-01-02"
	RequestedTime    string `json:"requested_time,omitempty"` // "HH:MM"
	SessionTitle     string `json:"session_title,omitempty"`
	DeclineReason    string `json:"decline_reason,omitempty"`

	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`

	OccurredAt string `json:"occurred_at"` // RFC3339
}
